package module

import (
	"fmt"

	fperrors "github.com/xianaiyang/vlsiFloorplan/pkg/errors"
)

// Module is a rectangular block to be placed.
//
// W and H are inputs; the rotate move swaps them in place. X and Y are the
// lower-left corner produced by the most recent packing pass and carry no
// meaning between passes.
type Module struct {
	ID int `json:"id"`
	W  int `json:"w"`
	H  int `json:"h"`
	X  int `json:"x"`
	Y  int `json:"y"`
}

// Area returns W*H as an int64.
func (m Module) Area() int64 { return int64(m.W) * int64(m.H) }

// Right returns the x coordinate of the upper-right corner.
func (m Module) Right() int { return m.X + m.W }

// Top returns the y coordinate of the upper-right corner.
func (m Module) Top() int { return m.Y + m.H }

// String returns a compact description such as "3 (2x5 @ 4,0)".
func (m Module) String() string {
	return fmt.Sprintf("%d (%dx%d @ %d,%d)", m.ID, m.W, m.H, m.X, m.Y)
}

// Store owns the modules of one floorplanning run.
//
// Trees, expressions and the packer refer to modules by their index in
// Modules, never by ID. A Store is not safe for concurrent use.
type Store struct {
	Modules []Module
}

// NewStore validates mods and returns a store holding a private copy of them.
// At least two modules with positive dimensions and unique IDs are required.
func NewStore(mods []Module) (*Store, error) {
	if err := fperrors.ValidateModuleCount(len(mods)); err != nil {
		return nil, err
	}
	ids := make([]int, len(mods))
	for i, m := range mods {
		if err := fperrors.ValidateModule(m.ID, m.W, m.H); err != nil {
			return nil, err
		}
		ids[i] = m.ID
	}
	if err := fperrors.ValidateUniqueIDs(ids); err != nil {
		return nil, err
	}

	s := &Store{Modules: make([]Module, len(mods))}
	copy(s.Modules, mods)
	return s, nil
}

// Len returns the number of modules.
func (s *Store) Len() int { return len(s.Modules) }

// At returns a pointer to the module at index i.
func (s *Store) At(i int) *Module { return &s.Modules[i] }

// Lookup returns the index of the module with the given ID.
func (s *Store) Lookup(id int) (int, bool) {
	for i := range s.Modules {
		if s.Modules[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

// Snapshot copies the current modules into dst, growing it if needed, and
// returns it. Passing the previous snapshot back in avoids an allocation.
func (s *Store) Snapshot(dst []Module) []Module {
	if cap(dst) < len(s.Modules) {
		dst = make([]Module, len(s.Modules))
	}
	dst = dst[:len(s.Modules)]
	copy(dst, s.Modules)
	return dst
}

// Restore overwrites every module with the contents of snap.
func (s *Store) Restore(snap []Module) {
	copy(s.Modules, snap)
}

// BoundingBox returns the width and height of the smallest rectangle anchored
// at the origin that contains every placed module.
func (s *Store) BoundingBox() (w, h int) {
	return BoundingBox(s.Modules)
}

// BoundingBox returns the extent of mods measured from the origin.
func BoundingBox(mods []Module) (w, h int) {
	for _, m := range mods {
		w = max(w, m.Right())
		h = max(h, m.Top())
	}
	return w, h
}

// TotalArea returns the summed area of mods, a lower bound for any packing.
func TotalArea(mods []Module) int64 {
	var sum int64
	for _, m := range mods {
		sum += m.Area()
	}
	return sum
}
