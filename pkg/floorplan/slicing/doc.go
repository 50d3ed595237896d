// Package slicing implements slicing trees, their polish-expression encoding
// and the packer that turns an expression into module coordinates.
//
// # Slicing Trees
//
// A slicing tree recursively cuts a rectangle in two. Every internal node
// carries a [Cutline] ([Horizontal] or [Vertical]) and exactly two children;
// every leaf holds one module. A tree over n modules always has n leaves and
// n-1 internal nodes. [Tree] stores its nodes in an arena and links them by
// index, so moving a subtree is a handful of integer assignments.
//
// # Polish Expressions
//
// The postorder traversal of a tree (left, right, self) is its polish
// expression. For three side-by-side modules built by [Build]:
//
//	2 1 V 0 V
//
// An [Expression] is valid when reading module units as pushes and cutline
// units as pop-two/push-one never underflows and leaves exactly one entry.
//
// # Packing
//
// [Pack] evaluates an expression with a stack of clusters. A vertical cut puts
// the right cluster to the right of the left one (widths add, heights max);
// a horizontal cut puts it on top (heights add, widths max). Because every
// cluster owns a disjoint rectangle, packing a valid expression never produces
// overlapping modules.
//
// # Moves
//
// Four in-place perturbations drive the search, each its own inverse:
//
//   - [Tree.Recut]: flip every cutline under an internal node
//   - [Tree.Rotate]: swap a leaf module's width and height
//   - [Tree.SwapModules]: exchange the modules of two leaves
//   - [Tree.SwapTopology]: exchange two disjoint subtrees
//
// Moves with unsuitable operands are no-ops and report false.
package slicing
