package slicing

import (
	"errors"
	"math"

	fperrors "github.com/xianaiyang/vlsiFloorplan/pkg/errors"
	"github.com/xianaiyang/vlsiFloorplan/pkg/floorplan/module"
)

// ErrInvalidExpression is wrapped by every packing failure caused by a
// malformed expression.
var ErrInvalidExpression = errors.New("invalid polish expression")

// InvalidArea is the area reported alongside a packing failure. It compares
// worse than every real area.
const InvalidArea int64 = math.MaxInt64

// cluster is a packed sub-expression: the expression positions [begin, end]
// and the bounding box of the modules they reference.
type cluster struct {
	begin, end int
	w, h       int
}

// Packer evaluates expressions into module coordinates. It keeps its cluster
// stack between calls so repeated packing of same-sized expressions does not
// allocate. The zero value is ready to use.
type Packer struct {
	stack []cluster
}

// Pack places the modules of store according to expr and returns the area of
// the enclosing rectangle.
//
// Modules are packed bottom-left: a vertical cut places the right operand to
// the right of the left operand, a horizontal cut places it on top. If expr is
// not a valid expression over store, no module is touched and Pack returns
// [InvalidArea] with an INVALID_EXPRESSION error wrapping
// [ErrInvalidExpression].
func (p *Packer) Pack(store *module.Store, expr Expression) (int64, error) {
	if err := check(store, expr); err != nil {
		return InvalidArea, err
	}

	if cap(p.stack) < len(expr) {
		p.stack = make([]cluster, 0, len(expr))
	}
	stack := p.stack[:0]

	for i, u := range expr {
		if u.Kind == ModuleUnit {
			m := store.At(u.Module)
			m.X, m.Y = 0, 0
			stack = append(stack, cluster{begin: i, end: i, w: m.W, h: m.H})
			continue
		}

		r := stack[len(stack)-1]
		l := stack[len(stack)-2]
		stack = stack[:len(stack)-2]

		merged := cluster{begin: l.begin, end: r.end}
		if u.Cutline == Horizontal {
			shift(store, expr, r, 0, l.h)
			merged.w = max(l.w, r.w)
			merged.h = l.h + r.h
		} else {
			shift(store, expr, r, l.w, 0)
			merged.w = l.w + r.w
			merged.h = max(l.h, r.h)
		}
		stack = append(stack, merged)
	}

	p.stack = stack
	top := stack[0]
	return int64(top.w) * int64(top.h), nil
}

// shift moves every module referenced inside c by (dx, dy).
func shift(store *module.Store, expr Expression, c cluster, dx, dy int) {
	for j := c.begin; j <= c.end; j++ {
		if expr[j].Kind != ModuleUnit {
			continue
		}
		m := store.At(expr[j].Module)
		m.X += dx
		m.Y += dy
	}
}

// Pack is a convenience for packing once with a fresh [Packer].
func Pack(store *module.Store, expr Expression) (int64, error) {
	var p Packer
	return p.Pack(store, expr)
}

// check validates expr against store before any geometry is written.
func check(store *module.Store, expr Expression) error {
	if store == nil {
		return fperrors.Wrap(fperrors.ErrCodeInvalidConfig, ErrInvalidExpression, "nil module store")
	}
	if !IsValid(expr) {
		return fperrors.Wrap(fperrors.ErrCodeInvalidExpression, ErrInvalidExpression,
			"stack discipline violated in %q", expr.String())
	}
	for _, u := range expr {
		if u.Kind == ModuleUnit && (u.Module < 0 || u.Module >= store.Len()) {
			return fperrors.Wrap(fperrors.ErrCodeInvalidExpression, ErrInvalidExpression,
				"module index %d out of range [0, %d)", u.Module, store.Len())
		}
	}
	return nil
}
