// Package render draws packed floorplans.
//
// # Overview
//
// A floorplan is drawn as one outlined rectangle per module inside the
// bounding box of the placement. Coordinates follow the packer: (0,0) is the
// lower-left corner and y grows upwards, so both renderers flip the y axis.
//
//   - [SVG]: vector output, generated directly
//   - [PNG]: raster output drawn with fogleman/gg
//   - [PDF]: the SVG converted with rsvg-convert (from librsvg)
//
// [Artifact] dispatches on a format name and also produces the JSON
// placement document, so callers can treat every output alike:
//
//	data, err := render.Artifact(render.FormatPNG, placement, render.WithLabels(true))
//
// # Options
//
// All renderers share the same [Option] set. The default scale maps the
// longer side of the bounding box to about 800 pixels; outlines are 5 pixels
// wide and blue.
package render
