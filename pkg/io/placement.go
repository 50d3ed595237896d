package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	fperrors "github.com/xianaiyang/vlsiFloorplan/pkg/errors"
	"github.com/xianaiyang/vlsiFloorplan/pkg/floorplan/module"
)

// Placement is a packed floorplan: the enclosing area, the polish expression
// that produced it (module IDs, H and V) and every module's final geometry.
type Placement struct {
	Area        int64           `json:"area"`
	InitialArea int64           `json:"initial_area,omitempty"`
	Expression  string          `json:"expression,omitempty"`
	Modules     []module.Module `json:"modules"`
}

// Validate checks that the placement describes real modules: valid
// dimensions, unique IDs and no overlapping rectangles.
func (p *Placement) Validate() error {
	if err := fperrors.ValidateModuleCount(len(p.Modules)); err != nil {
		return err
	}
	ids := make([]int, len(p.Modules))
	for i, m := range p.Modules {
		if err := fperrors.ValidateModule(m.ID, m.W, m.H); err != nil {
			return err
		}
		if m.X < 0 || m.Y < 0 {
			return fperrors.New(fperrors.ErrCodeInvalidModule, "module %d has negative position (%d,%d)", m.ID, m.X, m.Y)
		}
		ids[i] = m.ID
	}
	if err := fperrors.ValidateUniqueIDs(ids); err != nil {
		return err
	}
	if pairs := module.Overlaps(p.Modules); len(pairs) > 0 {
		return fperrors.New(fperrors.ErrCodeInvalidInput, "modules %d and %d overlap", pairs[0].A, pairs[0].B)
	}
	return nil
}

// WriteJSON encodes p as indented JSON and writes it to w.
func WriteJSON(p *Placement, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes p to a JSON file at path.
func ExportJSON(p *Placement, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(p, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadJSON decodes and validates a placement from r. Malformed JSON is an
// INVALID_FORMAT error; see [Placement.Validate] for the other checks.
// When the document has no area, it is computed from the bounding box.
func ReadJSON(r io.Reader) (*Placement, error) {
	var p Placement
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fperrors.Wrap(fperrors.ErrCodeInvalidFormat, err, "decode placement")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.Area == 0 {
		w, h := module.BoundingBox(p.Modules)
		p.Area = int64(w) * int64(h)
	}
	return &p, nil
}

// ImportJSON reads a placement from the JSON file at path.
func ImportJSON(path string) (*Placement, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p, err := ReadJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}
