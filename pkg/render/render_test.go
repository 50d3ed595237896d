package render

import (
	"bytes"
	"context"
	"image/png"
	"strings"
	"testing"

	"golang.org/x/image/font/basicfont"

	fperrors "github.com/xianaiyang/vlsiFloorplan/pkg/errors"
	"github.com/xianaiyang/vlsiFloorplan/pkg/floorplan/module"
	fpio "github.com/xianaiyang/vlsiFloorplan/pkg/io"
)

var golden = []module.Module{
	{ID: 0, W: 2, H: 3, X: 5, Y: 0},
	{ID: 1, W: 4, H: 1, X: 1, Y: 0},
	{ID: 2, W: 1, H: 5, X: 0, Y: 0},
}

func TestSVG(t *testing.T) {
	svg := string(SVG(golden, WithScale(10), WithStroke(2), WithLabels(true)))

	if !strings.HasPrefix(svg, "<svg") || !strings.HasSuffix(svg, "</svg>\n") {
		t.Fatalf("not an svg document:\n%s", svg)
	}
	// 7x5 units at 10px plus a 1px margin on each side.
	if !strings.Contains(svg, `viewBox="0 0 72.0 52.0"`) {
		t.Errorf("unexpected viewBox in:\n%s", svg)
	}
	if got := strings.Count(svg, `class="module"`); got != len(golden) {
		t.Errorf("got %d module rects, want %d", got, len(golden))
	}
	// Module 1 is one unit tall at y=0, so its top edge sits 4 units below the frame top.
	if !strings.Contains(svg, `id="module-1" class="module" x="11.00" y="41.00" width="40.00" height="10.00"`) {
		t.Errorf("module 1 not flipped correctly:\n%s", svg)
	}
	if !strings.Contains(svg, `stroke="#0000ff"`) {
		t.Error("outline should be blue")
	}
	if got := strings.Count(svg, "<text"); got != len(golden) {
		t.Errorf("got %d labels, want %d", got, len(golden))
	}
}

func TestSVG_DefaultScale(t *testing.T) {
	svg := string(SVG(golden, WithStroke(0)))
	// Longer side (7) maps to DefaultSize.
	if !strings.Contains(svg, `width="800"`) {
		t.Errorf("default scale not applied:\n%s", svg)
	}
	if strings.Contains(svg, "<text") {
		t.Error("labels drawn without WithLabels")
	}
}

func TestPNG(t *testing.T) {
	data, err := PNG(golden, WithScale(10), WithStroke(2), WithLabels(true), WithFill(true))
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 72 || b.Dy() != 52 {
		t.Errorf("image is %dx%d, want 72x52", b.Dx(), b.Dy())
	}
}

func TestMustParseFont(t *testing.T) {
	if labelFont == nil {
		t.Fatal("bundled label font not loaded")
	}
	if _, ok := labelFace(12).(*basicfont.Face); ok {
		t.Error("labelFace(12) fell back to the bitmap face")
	}

	defer func() {
		if recover() == nil {
			t.Error("mustParseFont(garbage) did not panic")
		}
	}()
	mustParseFont([]byte("not a font"))
}

func TestPNG_TooLarge(t *testing.T) {
	_, err := PNG(golden, WithScale(MaxPixels))
	if !fperrors.Is(err, fperrors.ErrCodeInvalidConfig) {
		t.Errorf("error = %v, want INVALID_CONFIG", err)
	}
}

func TestArtifact(t *testing.T) {
	p := &fpio.Placement{Area: 35, Expression: "2 1 V 0 V", Modules: golden}
	ctx := context.Background()

	for _, format := range []string{FormatSVG, FormatPNG, FormatJSON} {
		data, err := Artifact(ctx, format, p, WithScale(4))
		if err != nil {
			t.Errorf("Artifact(%s): %v", format, err)
			continue
		}
		if len(data) == 0 {
			t.Errorf("Artifact(%s) is empty", format)
		}
	}

	if _, err := Artifact(ctx, "bmp", p); !fperrors.Is(err, fperrors.ErrCodeInvalidFormat) {
		t.Errorf("Artifact(bmp) error = %v, want INVALID_FORMAT", err)
	}
	if _, err := Artifact(ctx, FormatSVG, nil); err == nil {
		t.Error("Artifact(nil) should fail")
	}
}

func TestArtifact_PDF(t *testing.T) {
	p := &fpio.Placement{Area: 35, Modules: golden}
	data, err := Artifact(context.Background(), FormatPDF, p)
	if !HasPDFSupport() {
		if !fperrors.Is(err, fperrors.ErrCodeUnsupported) {
			t.Errorf("error = %v, want UNSUPPORTED without rsvg-convert", err)
		}
		return
	}
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("output is not a PDF")
	}
}

func TestContentType(t *testing.T) {
	for _, f := range Formats {
		if ContentType(f) == "application/octet-stream" {
			t.Errorf("ContentType(%s) not set", f)
		}
		if !IsFormat(f) {
			t.Errorf("IsFormat(%s) = false", f)
		}
	}
	if IsFormat("gif") {
		t.Error("IsFormat(gif) = true")
	}
}
