// Package io reads module lists and reads and writes placements.
//
// # Module Lists
//
// The plain-text input format is a module count followed by one line per
// module with its identifier, width and height:
//
//	3
//	0 2 3
//	1 4 1
//	2 1 5
//
// Tokens may be separated by any whitespace. Use [ImportModules] to read a
// file or [ReadModules] to read from any io.Reader. Dimensions and IDs are
// validated with the rules in pkg/errors.
//
// # Placement Text
//
// [WriteModules] prints one module per line as "id x y h w". Note that the
// height comes before the width.
//
// # Placement JSON
//
// A [Placement] is the complete result of a run and the input of the render
// and inspect commands:
//
//	{
//	  "area": 35,
//	  "expression": "2 1 V 0 V",
//	  "modules": [{"id": 0, "w": 2, "h": 3, "x": 5, "y": 0}, ...]
//	}
//
// Use [ExportJSON] and [ImportJSON] for files, [WriteJSON] and [ReadJSON]
// for streams.
package io
