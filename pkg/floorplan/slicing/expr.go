package slicing

import (
	"strconv"
	"strings"

	fperrors "github.com/xianaiyang/vlsiFloorplan/pkg/errors"
	"github.com/xianaiyang/vlsiFloorplan/pkg/floorplan/module"
)

// UnitKind distinguishes the two kinds of expression symbols.
type UnitKind uint8

const (
	// ModuleUnit references a module by store index.
	ModuleUnit UnitKind = iota + 1
	// CutlineUnit is an H or V operator.
	CutlineUnit
)

// Unit is one symbol of a polish expression: either a module reference or a
// cutline operator.
type Unit struct {
	Kind    UnitKind
	Module  int
	Cutline Cutline
}

// ModuleRef returns a unit referencing the module at store index i.
func ModuleRef(i int) Unit { return Unit{Kind: ModuleUnit, Module: i} }

// Cut returns a cutline unit.
func Cut(c Cutline) Unit { return Unit{Kind: CutlineUnit, Module: None, Cutline: c} }

// Expression is the postorder linearisation of a slicing tree. A tree over n
// modules encodes to exactly 2n-1 units.
type Expression []Unit

// Encode writes the postorder traversal of t into buf, which must have exactly
// t.Len() elements. Every element of buf is overwritten.
func (t *Tree) Encode(buf Expression) error {
	if len(buf) != len(t.nodes) {
		return fperrors.New(fperrors.ErrCodeInvalidConfig,
			"expression buffer has %d units, tree has %d nodes", len(buf), len(t.nodes))
	}
	if nth := t.postorder(t.root, 0, buf); nth != len(buf) {
		return fperrors.New(fperrors.ErrCodeInvariant,
			"postorder traversal visited %d of %d nodes", nth, len(buf))
	}
	return nil
}

func (t *Tree) postorder(i, nth int, buf Expression) int {
	if i == None || nth >= len(buf) {
		return nth
	}
	n := t.nodes[i]
	nth = t.postorder(n.Left, nth, buf)
	nth = t.postorder(n.Right, nth, buf)
	if nth >= len(buf) {
		return nth + 1
	}
	if n.Kind == Leaf {
		buf[nth] = ModuleRef(n.Module)
	} else {
		buf[nth] = Cut(n.Cutline)
	}
	return nth + 1
}

// Expression allocates and returns the tree's polish expression. A tree whose
// links do not reach every node yields the INVARIANT_VIOLATION error from
// [Tree.Encode].
func (t *Tree) Expression() (Expression, error) {
	buf := make(Expression, len(t.nodes))
	if err := t.Encode(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// Clone returns an independent copy of e.
func (e Expression) Clone() Expression {
	out := make(Expression, len(e))
	copy(out, e)
	return out
}

// Valid reports whether e satisfies the stack discipline. See [IsValid].
func (e Expression) Valid() bool { return IsValid(e) }

// IsValid reports whether expr is well formed: treating module units as pushes
// and cutline units as pop-two/push-one, the stack never underflows and ends
// with exactly one entry. Units of unknown kind or orientation are invalid.
// No geometry is touched.
func IsValid(expr Expression) bool {
	depth := 0
	for _, u := range expr {
		switch u.Kind {
		case ModuleUnit:
			depth++
		case CutlineUnit:
			if !u.Cutline.valid() || depth < 2 {
				return false
			}
			depth--
		default:
			return false
		}
	}
	return depth == 1
}

// Format renders e using the store's module IDs, e.g. "2 1 V 0 V".
// A nil store prints store indices instead of IDs.
func (e Expression) Format(store *module.Store) string {
	var b strings.Builder
	for i, u := range e {
		if i > 0 {
			b.WriteByte(' ')
		}
		switch u.Kind {
		case ModuleUnit:
			id := u.Module
			if store != nil && u.Module >= 0 && u.Module < store.Len() {
				id = store.At(u.Module).ID
			}
			b.WriteString(strconv.Itoa(id))
		case CutlineUnit:
			b.WriteString(u.Cutline.String())
		default:
			b.WriteByte('?')
		}
	}
	return b.String()
}

// String renders e with store indices.
func (e Expression) String() string { return e.Format(nil) }

// ParseExpression parses a space separated expression of module IDs and the
// operators H and V (case-insensitive) against store. Unknown or repeated IDs
// are rejected; stack discipline is not checked here, use [IsValid] or [Pack].
func ParseExpression(s string, store *module.Store) (Expression, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil, fperrors.New(fperrors.ErrCodeInvalidExpression, "empty expression")
	}

	expr := make(Expression, 0, len(fields))
	used := make(map[int]bool, len(fields))
	for _, f := range fields {
		switch strings.ToUpper(f) {
		case "H":
			expr = append(expr, Cut(Horizontal))
			continue
		case "V":
			expr = append(expr, Cut(Vertical))
			continue
		}
		id, err := strconv.Atoi(f)
		if err != nil {
			return nil, fperrors.Wrap(fperrors.ErrCodeInvalidExpression, err, "invalid symbol %q", f)
		}
		idx, ok := store.Lookup(id)
		if !ok {
			return nil, fperrors.New(fperrors.ErrCodeInvalidExpression, "unknown module id %d", id)
		}
		if used[idx] {
			return nil, fperrors.New(fperrors.ErrCodeInvalidExpression, "module id %d appears twice", id)
		}
		used[idx] = true
		expr = append(expr, ModuleRef(idx))
	}
	return expr, nil
}

// Decode builds the tree whose postorder encoding is expr. The expression must
// be well formed and reference every module of store exactly once; otherwise
// Decode returns an INVALID_EXPRESSION error.
func Decode(store *module.Store, expr Expression) (*Tree, error) {
	if store == nil {
		return nil, fperrors.New(fperrors.ErrCodeInvalidConfig, "nil module store")
	}
	n := store.Len()
	if err := fperrors.ValidateModuleCount(n); err != nil {
		return nil, err
	}
	if len(expr) != 2*n-1 || !IsValid(expr) {
		return nil, fperrors.New(fperrors.ErrCodeInvalidExpression,
			"expression %q does not describe a tree over %d modules", expr.Format(store), n)
	}

	t := &Tree{store: store, nodes: make([]Node, 0, len(expr)), root: None}
	seen := make([]bool, n)
	stack := make([]int, 0, n)
	for _, u := range expr {
		if u.Kind == ModuleUnit {
			if u.Module < 0 || u.Module >= n || seen[u.Module] {
				return nil, fperrors.New(fperrors.ErrCodeInvalidExpression, "bad module reference %d", u.Module)
			}
			seen[u.Module] = true
			stack = append(stack, t.add(Node{Kind: Leaf, Module: u.Module}))
			continue
		}
		l, r := stack[len(stack)-2], stack[len(stack)-1]
		in := t.add(Node{Kind: Internal, Cutline: u.Cutline})
		t.nodes[in].Left, t.nodes[in].Right = l, r
		t.nodes[l].Parent, t.nodes[r].Parent = in, in
		stack = append(stack[:len(stack)-2], in)
	}
	t.root = stack[0]
	t.nodes[t.root].Parent = None
	return t, nil
}
