package slicing

import (
	fperrors "github.com/xianaiyang/vlsiFloorplan/pkg/errors"
	"github.com/xianaiyang/vlsiFloorplan/pkg/floorplan/module"
)

// None marks an absent child or parent index.
const None = -1

// Cutline is the orientation of an internal node's split.
type Cutline uint8

const (
	// Horizontal stacks the right operand on top of the left one.
	Horizontal Cutline = iota + 1
	// Vertical places the right operand to the right of the left one.
	Vertical
)

// Flip returns the opposite orientation.
func (c Cutline) Flip() Cutline {
	switch c {
	case Horizontal:
		return Vertical
	case Vertical:
		return Horizontal
	}
	return c
}

func (c Cutline) valid() bool { return c == Horizontal || c == Vertical }

// String returns "H" or "V".
func (c Cutline) String() string {
	switch c {
	case Horizontal:
		return "H"
	case Vertical:
		return "V"
	}
	return "?"
}

// NodeKind distinguishes leaves from internal nodes.
type NodeKind uint8

const (
	// Leaf nodes reference exactly one module and have no children.
	Leaf NodeKind = iota + 1
	// Internal nodes have a cutline and exactly two children.
	Internal
)

// Node is one slot of the tree arena.
//
// Which fields are meaningful depends on Kind: leaves use Module, internal
// nodes use Cutline, Left and Right. Parent is None only for the root.
type Node struct {
	Kind    NodeKind
	Cutline Cutline
	Module  int
	Left    int
	Right   int
	Parent  int
}

// Tree is a strictly binary slicing tree stored as an arena of nodes linked by
// integer indices.
//
// The tree is built once and then mutated in place by the perturbation moves;
// it never grows or shrinks. Leaves refer to modules by their index in the
// backing [module.Store]. Tree is not safe for concurrent use.
type Tree struct {
	store *module.Store
	nodes []Node
	root  int
}

// Build creates the initial slicing tree over every module in store.
//
// The shape is a chain of vertical cuts: internal node k keeps module k as its
// right leaf and continues the chain on its left, and the deepest internal
// node holds the last two modules. For modules 0..n-1 the encoded expression
// is "n-1 n-2 V n-3 V ... 0 V", i.e. all modules side by side.
func Build(store *module.Store) (*Tree, error) {
	if store == nil {
		return nil, fperrors.New(fperrors.ErrCodeInvalidConfig, "nil module store")
	}
	n := store.Len()
	if err := fperrors.ValidateModuleCount(n); err != nil {
		return nil, err
	}

	t := &Tree{store: store, nodes: make([]Node, 0, 2*n-1), root: None}
	prev := None
	for k := 0; k < n-1; k++ {
		in := t.add(Node{Kind: Internal, Cutline: Vertical, Parent: prev})
		if prev == None {
			t.root = in
		} else {
			t.nodes[prev].Left = in
		}
		t.nodes[in].Right = t.add(Node{Kind: Leaf, Module: k, Parent: in})
		prev = in
	}
	t.nodes[prev].Left = t.add(Node{Kind: Leaf, Module: n - 1, Parent: prev})
	return t, nil
}

// add appends an unlinked node; the caller wires its children.
func (t *Tree) add(n Node) int {
	n.Left, n.Right = None, None
	if n.Kind == Internal {
		n.Module = None
	}
	t.nodes = append(t.nodes, n)
	return len(t.nodes) - 1
}

// Store returns the module store the tree's leaves refer to.
func (t *Tree) Store() *module.Store { return t.store }

// Root returns the index of the root node.
func (t *Tree) Root() int { return t.root }

// Len returns the number of nodes, always 2n-1 for n modules.
func (t *Tree) Len() int { return len(t.nodes) }

// Node returns a copy of node i.
func (t *Tree) Node(i int) Node { return t.nodes[i] }

// IsLeaf reports whether i is a valid leaf index.
func (t *Tree) IsLeaf(i int) bool {
	return t.inRange(i) && t.nodes[i].Kind == Leaf
}

// IsInternal reports whether i is a valid internal node index.
func (t *Tree) IsInternal(i int) bool {
	return t.inRange(i) && t.nodes[i].Kind == Internal
}

func (t *Tree) inRange(i int) bool { return i >= 0 && i < len(t.nodes) }

// Module returns the module referenced by leaf i, or nil if i is not a leaf.
func (t *Tree) Module(i int) *module.Module {
	if !t.IsLeaf(i) {
		return nil
	}
	return t.store.At(t.nodes[i].Module)
}

// Classify walks the tree breadth-first from the root and returns the leaf and
// internal node indices in visiting order.
func (t *Tree) Classify() (leaves, internals []int) {
	leaves = make([]int, 0, t.store.Len())
	internals = make([]int, 0, t.store.Len()-1)

	queue := make([]int, 0, len(t.nodes))
	queue = append(queue, t.root)
	for head := 0; head < len(queue); head++ {
		u := queue[head]
		n := t.nodes[u]
		if n.Kind == Leaf {
			leaves = append(leaves, u)
			continue
		}
		internals = append(internals, u)
		if n.Left != None {
			queue = append(queue, n.Left)
		}
		if n.Right != None {
			queue = append(queue, n.Right)
		}
		// A cycle would otherwise spin forever.
		if len(queue) > len(t.nodes) {
			break
		}
	}
	return leaves, internals
}

// Validate checks the structural invariants: n leaves and n-1 internal nodes
// reachable from the root, consistent parent links, and a bijection between
// leaves and modules. A failure indicates corruption and is reported as an
// INVARIANT_VIOLATION error.
func (t *Tree) Validate() error {
	n := t.store.Len()
	leaves, internals := t.Classify()
	if len(leaves) != n || len(internals) != n-1 {
		return fperrors.New(fperrors.ErrCodeInvariant,
			"tree has %d leaves and %d internal nodes, want %d and %d",
			len(leaves), len(internals), n, n-1)
	}
	if t.nodes[t.root].Parent != None {
		return fperrors.New(fperrors.ErrCodeInvariant, "root %d has parent %d", t.root, t.nodes[t.root].Parent)
	}

	seen := make([]bool, n)
	for _, i := range leaves {
		m := t.nodes[i].Module
		if m < 0 || m >= n || seen[m] {
			return fperrors.New(fperrors.ErrCodeInvariant, "leaf %d references module index %d twice or out of range", i, m)
		}
		seen[m] = true
	}
	for _, i := range internals {
		nd := t.nodes[i]
		if !nd.Cutline.valid() {
			return fperrors.New(fperrors.ErrCodeInvariant, "internal node %d has no cutline", i)
		}
		if nd.Left == None || nd.Right == None {
			return fperrors.New(fperrors.ErrCodeInvariant, "internal node %d is missing a child", i)
		}
		if t.nodes[nd.Left].Parent != i || t.nodes[nd.Right].Parent != i {
			return fperrors.New(fperrors.ErrCodeInvariant, "children of node %d do not point back to it", i)
		}
	}
	return nil
}

// Snapshot copies the node arena into dst, growing it if needed.
func (t *Tree) Snapshot(dst []Node) []Node {
	if cap(dst) < len(t.nodes) {
		dst = make([]Node, len(t.nodes))
	}
	dst = dst[:len(t.nodes)]
	copy(dst, t.nodes)
	return dst
}

// Restore replaces the node arena with a snapshot taken from this tree.
// The root never moves, so the snapshot alone describes the whole shape.
func (t *Tree) Restore(snap []Node) {
	copy(t.nodes, snap)
}
