package io

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"

	fperrors "github.com/xianaiyang/vlsiFloorplan/pkg/errors"
	"github.com/xianaiyang/vlsiFloorplan/pkg/floorplan/module"
)

// maxModules caps the declared module count so a corrupt header cannot
// trigger a huge allocation.
const maxModules = 1 << 20

// ReadModules parses a plain-text module list from r.
//
// ReadModules returns an INVALID_FORMAT error if a token is not an integer,
// the list is shorter than declared, or trailing tokens follow the last
// module. Module rules (count, positive dimensions, unique IDs) are reported
// with the codes from pkg/errors. ReadModules does not close r.
func ReadModules(r io.Reader) ([]module.Module, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	tok := 0
	next := func(what string) (int, error) {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return 0, fperrors.Wrap(fperrors.ErrCodeInvalidInput, err, "read %s", what)
			}
			return 0, fperrors.New(fperrors.ErrCodeInvalidFormat, "unexpected end of input, expected %s", what)
		}
		tok++
		v, err := strconv.Atoi(sc.Text())
		if err != nil {
			return 0, fperrors.Wrap(fperrors.ErrCodeInvalidFormat, err, "token %d (%s)", tok, what)
		}
		return v, nil
	}

	n, err := next("module count")
	if err != nil {
		return nil, err
	}
	if err := fperrors.ValidateModuleCount(n); err != nil {
		return nil, err
	}
	if n > maxModules {
		return nil, fperrors.New(fperrors.ErrCodeInvalidInput, "module count %d exceeds limit %d", n, maxModules)
	}

	mods := make([]module.Module, n)
	ids := make([]int, n)
	for i := range mods {
		var vals [3]int
		for j, what := range [3]string{"id", "width", "height"} {
			if vals[j], err = next(fmt.Sprintf("module %d %s", i, what)); err != nil {
				return nil, err
			}
		}
		if err := fperrors.ValidateModule(vals[0], vals[1], vals[2]); err != nil {
			return nil, err
		}
		mods[i] = module.Module{ID: vals[0], W: vals[1], H: vals[2]}
		ids[i] = vals[0]
	}
	if err := fperrors.ValidateUniqueIDs(ids); err != nil {
		return nil, err
	}
	if sc.Scan() {
		return nil, fperrors.New(fperrors.ErrCodeInvalidFormat, "unexpected token %q after %d modules", sc.Text(), n)
	}
	return mods, nil
}

// ImportModules reads a module list from the file at path. A missing file is
// reported as FILE_NOT_FOUND.
func ImportModules(path string) ([]module.Module, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	mods, err := ReadModules(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return mods, nil
}

// WriteModules writes one "id x y h w" line per module to w.
func WriteModules(w io.Writer, mods []module.Module) error {
	bw := bufio.NewWriter(w)
	for _, m := range mods {
		if _, err := fmt.Fprintf(bw, "%d %d %d %d %d\n", m.ID, m.X, m.Y, m.H, m.W); err != nil {
			return fmt.Errorf("write module %d: %w", m.ID, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

// ExportModules writes mods to a text file at path.
func ExportModules(path string, mods []module.Module) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteModules(f, mods); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fperrors.Wrap(fperrors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}
