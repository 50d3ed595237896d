package render

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	fperrors "github.com/xianaiyang/vlsiFloorplan/pkg/errors"
	"github.com/xianaiyang/vlsiFloorplan/pkg/floorplan/module"
)

// MaxPixels bounds either side of a PNG canvas.
const MaxPixels = 16384

// labelFont is Go Regular, parsed once from the bundled TTF.
var labelFont = mustParseFont(goregular.TTF)

func mustParseFont(ttf []byte) *opentype.Font {
	f, err := opentype.Parse(ttf)
	if err != nil {
		panic(fmt.Sprintf("render: parse bundled font: %v", err))
	}
	return f
}

// PNG renders mods as a PNG image.
func PNG(mods []module.Module, opts ...Option) ([]byte, error) {
	f := newFrame(mods, newOptions(opts...))
	pw, ph := int(math.Ceil(f.pw)), int(math.Ceil(f.ph))
	if pw > MaxPixels || ph > MaxPixels {
		return nil, fperrors.New(fperrors.ErrCodeInvalidConfig,
			"canvas %dx%d exceeds %d pixels per side, lower the scale", pw, ph, MaxPixels)
	}

	dc := gg.NewContext(max(pw, 1), max(ph, 1))
	dc.SetColor(color.White)
	dc.Clear()

	dc.SetLineWidth(f.options.stroke)
	for _, m := range mods {
		x, y, w, h := f.rect(m)
		dc.DrawRectangle(x, y, w, h)
		if f.options.fill {
			dc.SetRGB255(0xdd, 0xe6, 0xff)
			dc.FillPreserve()
		}
		dc.SetColor(Outline)
		dc.Stroke()
	}

	if f.options.labels {
		face := labelFace(labelSize(f))
		dc.SetFontFace(face)
		dc.SetColor(color.Black)
		for _, m := range mods {
			x, y, w, h := f.rect(m)
			dc.DrawStringAnchored(fmt.Sprint(m.ID), x+w/2, y+h/2, 0.5, 0.5)
		}
		face.Close()
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// labelFace returns a Go Regular face of the given size, or the built-in
// bitmap face if no face can be built at that size.
func labelFace(size float64) font.Face {
	face, err := opentype.NewFace(labelFont, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return basicfont.Face7x13
	}
	return face
}
