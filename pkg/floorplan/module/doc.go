// Package module holds the rectangles being floorplanned.
//
// A [Store] owns the modules of one run. Its widths and heights come from the
// input (and are swapped by rotation); its positions are written by the packer
// on every evaluation. [Overlaps] is the post-hoc correctness check: any
// placement produced by packing a valid slicing expression is overlap-free.
package module
