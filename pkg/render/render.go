package render

import (
	"bytes"
	"context"
	"slices"

	fperrors "github.com/xianaiyang/vlsiFloorplan/pkg/errors"
	fpio "github.com/xianaiyang/vlsiFloorplan/pkg/io"
)

// Output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// Formats lists every supported output format.
var Formats = []string{FormatSVG, FormatPNG, FormatPDF, FormatJSON}

// ContentType returns the MIME type of a format.
func ContentType(format string) string {
	switch format {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatPDF:
		return "application/pdf"
	case FormatJSON:
		return "application/json"
	}
	return "application/octet-stream"
}

// Artifact renders p in the given format.
func Artifact(ctx context.Context, format string, p *fpio.Placement, opts ...Option) ([]byte, error) {
	if p == nil {
		return nil, fperrors.New(fperrors.ErrCodeInvalidInput, "nil placement")
	}
	switch format {
	case FormatSVG:
		return SVG(p.Modules, opts...), nil
	case FormatPNG:
		return PNG(p.Modules, opts...)
	case FormatPDF:
		return ToPDF(ctx, SVG(p.Modules, opts...))
	case FormatJSON:
		var buf bytes.Buffer
		if err := fpio.WriteJSON(p, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, fperrors.New(fperrors.ErrCodeInvalidFormat, "unknown format %q (valid: %v)", format, Formats)
}

// IsFormat reports whether format is supported.
func IsFormat(format string) bool {
	return slices.Contains(Formats, format)
}
