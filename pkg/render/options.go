package render

import (
	"image/color"

	"github.com/xianaiyang/vlsiFloorplan/pkg/floorplan/module"
)

// Defaults.
const (
	DefaultSize   = 800.0
	DefaultStroke = 5.0
)

// Outline is the module outline colour.
var Outline = color.RGBA{B: 0xff, A: 0xff}

// Option configures a renderer.
type Option func(*options)

type options struct {
	scale  float64
	stroke float64
	labels bool
	fill   bool
}

// WithScale sets the number of pixels per floorplan unit. Zero or less picks
// a scale that fits the longer side into DefaultSize pixels.
func WithScale(s float64) Option { return func(o *options) { o.scale = s } }

// WithStroke sets the outline width in pixels.
func WithStroke(w float64) Option { return func(o *options) { o.stroke = w } }

// WithLabels draws each module's ID at its centre.
func WithLabels(on bool) Option { return func(o *options) { o.labels = on } }

// WithFill shades module interiors.
func WithFill(on bool) Option { return func(o *options) { o.fill = on } }

func newOptions(opts ...Option) options {
	o := options{stroke: DefaultStroke}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// frame is the pixel geometry shared by the renderers.
type frame struct {
	scale   float64
	pad     float64
	w, h    int     // bounding box in floorplan units
	pw, ph  float64 // canvas size in pixels
	options options
}

func newFrame(mods []module.Module, o options) frame {
	w, h := module.BoundingBox(mods)
	f := frame{w: w, h: h, options: o, pad: o.stroke / 2}
	f.scale = o.scale
	if f.scale <= 0 {
		f.scale = 1
		if side := max(w, h); side > 0 {
			f.scale = DefaultSize / float64(side)
		}
	}
	f.pw = float64(w)*f.scale + 2*f.pad
	f.ph = float64(h)*f.scale + 2*f.pad
	return f
}

// rect returns the top-left corner and size of m in canvas pixels.
func (f frame) rect(m module.Module) (x, y, w, h float64) {
	x = f.pad + float64(m.X)*f.scale
	y = f.pad + float64(f.h-m.Top())*f.scale
	return x, y, float64(m.W) * f.scale, float64(m.H) * f.scale
}
