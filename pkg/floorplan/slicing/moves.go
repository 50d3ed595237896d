package slicing

// Move identifies one of the four perturbations.
type Move uint8

const (
	// MoveRecut flips every cutline in the subtree of an internal node.
	MoveRecut Move = iota
	// MoveRotate turns the module of a leaf by 90 degrees.
	MoveRotate
	// MoveSwapModules exchanges the modules of two leaves.
	MoveSwapModules
	// MoveSwapTopology exchanges two disjoint subtrees.
	MoveSwapTopology

	numMoves = 4
)

// Moves lists every move in declaration order.
var Moves = [numMoves]Move{MoveRecut, MoveRotate, MoveSwapModules, MoveSwapTopology}

func (m Move) String() string {
	switch m {
	case MoveRecut:
		return "recut"
	case MoveRotate:
		return "rotate"
	case MoveSwapModules:
		return "swap-modules"
	case MoveSwapTopology:
		return "swap-topology"
	}
	return "unknown"
}

// Apply performs move m on operands a and b (b is ignored by the single
// operand moves) and reports whether the tree changed. Every move is its own
// inverse, so applying the same call again undoes it.
func (t *Tree) Apply(m Move, a, b int) bool {
	switch m {
	case MoveRecut:
		return t.Recut(a)
	case MoveRotate:
		return t.Rotate(a)
	case MoveSwapModules:
		return t.SwapModules(a, b)
	case MoveSwapTopology:
		return t.SwapTopology(a, b)
	}
	return false
}

// Recut flips the cutline of internal node i and of every internal node below
// it. Applying it twice restores the subtree. It is a no-op returning false
// when i is not an internal node.
func (t *Tree) Recut(i int) bool {
	if !t.IsInternal(i) {
		return false
	}
	t.recut(i)
	return true
}

func (t *Tree) recut(i int) {
	n := &t.nodes[i]
	if n.Kind != Internal {
		return
	}
	n.Cutline = n.Cutline.Flip()
	t.recut(n.Left)
	t.recut(n.Right)
}

// Rotate swaps the width and height of the module held by leaf i.
// It is a no-op returning false when i is not a leaf.
func (t *Tree) Rotate(i int) bool {
	m := t.Module(i)
	if m == nil {
		return false
	}
	m.W, m.H = m.H, m.W
	return true
}

// SwapModules exchanges the modules referenced by leaves a and b; the leaves
// themselves stay where they are. It is a no-op returning false unless a and
// b are two distinct leaves.
func (t *Tree) SwapModules(a, b int) bool {
	if a == b || !t.IsLeaf(a) || !t.IsLeaf(b) {
		return false
	}
	t.nodes[a].Module, t.nodes[b].Module = t.nodes[b].Module, t.nodes[a].Module
	return true
}

// SwapTopology exchanges the positions of the subtrees rooted at a and b.
// Each parent's child slot is pointed at the other node and the parent links
// are exchanged. It is a no-op returning false when either node lies in the
// other's subtree (which includes a == b and either being the root).
func (t *Tree) SwapTopology(a, b int) bool {
	if !t.inRange(a) || !t.inRange(b) || t.InSubtree(a, b) || t.InSubtree(b, a) {
		return false
	}
	pa, pb := t.nodes[a].Parent, t.nodes[b].Parent
	sa, sb := t.slot(pa, a), t.slot(pb, b)
	*sa, *sb = b, a
	t.nodes[a].Parent, t.nodes[b].Parent = pb, pa
	return true
}

// slot returns the child field of parent p that holds c.
func (t *Tree) slot(p, c int) *int {
	if t.nodes[p].Left == c {
		return &t.nodes[p].Left
	}
	return &t.nodes[p].Right
}

// InSubtree reports whether node b lies in the subtree rooted at node a.
// A node lies in its own subtree.
func (t *Tree) InSubtree(a, b int) bool {
	if !t.inRange(a) || !t.inRange(b) {
		return false
	}
	for steps := 0; b != None && steps < len(t.nodes); steps++ {
		if b == a {
			return true
		}
		b = t.nodes[b].Parent
	}
	return false
}
