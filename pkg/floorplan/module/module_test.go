package module

import (
	"testing"

	fperrors "github.com/xianaiyang/vlsiFloorplan/pkg/errors"
)

func TestNewStore(t *testing.T) {
	tests := []struct {
		name     string
		mods     []Module
		wantCode fperrors.Code
	}{
		{"valid", []Module{{ID: 0, W: 2, H: 3}, {ID: 1, W: 4, H: 1}}, ""},
		{"single module", []Module{{ID: 0, W: 2, H: 3}}, fperrors.ErrCodeInvalidConfig},
		{"empty", nil, fperrors.ErrCodeInvalidConfig},
		{"zero width", []Module{{ID: 0, W: 0, H: 3}, {ID: 1, W: 4, H: 1}}, fperrors.ErrCodeInvalidModule},
		{"duplicate id", []Module{{ID: 1, W: 2, H: 3}, {ID: 1, W: 4, H: 1}}, fperrors.ErrCodeInvalidModule},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewStore(tt.mods)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("NewStore() error = %v", err)
				}
				if s.Len() != len(tt.mods) {
					t.Errorf("Len() = %d, want %d", s.Len(), len(tt.mods))
				}
				return
			}
			if !fperrors.Is(err, tt.wantCode) {
				t.Errorf("NewStore() error = %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

func TestNewStoreCopiesInput(t *testing.T) {
	mods := []Module{{ID: 0, W: 2, H: 3}, {ID: 1, W: 4, H: 1}}
	s, err := NewStore(mods)
	if err != nil {
		t.Fatal(err)
	}
	s.At(0).W = 99
	if mods[0].W != 2 {
		t.Error("NewStore should not alias the caller's slice")
	}
}

func TestSnapshotRestore(t *testing.T) {
	s, _ := NewStore([]Module{{ID: 0, W: 2, H: 3}, {ID: 1, W: 4, H: 1}})
	snap := s.Snapshot(nil)

	s.At(0).X, s.At(0).W, s.At(0).H = 10, 3, 2
	s.Restore(snap)

	if got := *s.At(0); got != (Module{ID: 0, W: 2, H: 3}) {
		t.Errorf("after Restore module 0 = %v", got)
	}

	again := s.Snapshot(snap)
	if &again[0] != &snap[0] {
		t.Error("Snapshot should reuse a large enough buffer")
	}
}

func TestLookup(t *testing.T) {
	s, _ := NewStore([]Module{{ID: 7, W: 2, H: 3}, {ID: 3, W: 4, H: 1}})
	if i, ok := s.Lookup(3); !ok || i != 1 {
		t.Errorf("Lookup(3) = %d, %v; want 1, true", i, ok)
	}
	if _, ok := s.Lookup(5); ok {
		t.Error("Lookup(5) should miss")
	}
}

func TestBoundingBox(t *testing.T) {
	mods := []Module{
		{ID: 0, W: 2, H: 3, X: 5, Y: 0},
		{ID: 1, W: 4, H: 1, X: 1, Y: 0},
		{ID: 2, W: 1, H: 5, X: 0, Y: 0},
	}
	w, h := BoundingBox(mods)
	if w != 7 || h != 5 {
		t.Errorf("BoundingBox() = %dx%d, want 7x5", w, h)
	}
	if got := TotalArea(mods); got != 15 {
		t.Errorf("TotalArea() = %d, want 15", got)
	}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		mods []Module
		want int
	}{
		{
			name: "side by side",
			mods: []Module{{ID: 0, W: 1, H: 1}, {ID: 1, W: 1, H: 1, X: 1}},
			want: 0,
		},
		{
			name: "stacked",
			mods: []Module{{ID: 0, W: 2, H: 1}, {ID: 1, W: 2, H: 1, Y: 1}},
			want: 0,
		},
		{
			name: "corner touch",
			mods: []Module{{ID: 0, W: 1, H: 1}, {ID: 1, W: 1, H: 1, X: 1, Y: 1}},
			want: 0,
		},
		{
			name: "identical",
			mods: []Module{{ID: 0, W: 2, H: 2}, {ID: 1, W: 2, H: 2}},
			want: 1,
		},
		{
			name: "partial",
			mods: []Module{{ID: 0, W: 2, H: 2}, {ID: 1, W: 2, H: 2, X: 1, Y: 1}, {ID: 2, W: 1, H: 1, X: 5}},
			want: 1,
		},
		{
			name: "contained",
			mods: []Module{{ID: 0, W: 4, H: 4}, {ID: 1, W: 1, H: 1, X: 1, Y: 1}, {ID: 2, W: 1, H: 1, X: 2, Y: 2}},
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pairs := Overlaps(tt.mods)
			if len(pairs) != tt.want {
				t.Errorf("Overlaps() = %v, want %d pairs", pairs, tt.want)
			}
			if CheckOverlap(tt.mods) != (tt.want > 0) {
				t.Errorf("CheckOverlap() = %v, want %v", !(tt.want > 0), tt.want > 0)
			}
		})
	}
}
