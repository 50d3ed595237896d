package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/xianaiyang/vlsiFloorplan/pkg/config"
	fperrors "github.com/xianaiyang/vlsiFloorplan/pkg/errors"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".cache", appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirXDG(t *testing.T) {
	custom := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", custom)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join(custom, appName); dir != want {
		t.Errorf("cacheDir() with XDG_CACHE_HOME = %q, want %q", dir, want)
	}
}

func TestFileCacheDir(t *testing.T) {
	c := New(os.Stderr, log.InfoLevel)

	c.cfg.Cache.Dir = "/srv/floorplan-cache"
	if dir, err := c.fileCacheDir(); err != nil || dir != "/srv/floorplan-cache" {
		t.Errorf("fileCacheDir() = %q, %v", dir, err)
	}

	c.cfg.Cache.Backend = config.BackendRedis
	if _, err := c.fileCacheDir(); !fperrors.Is(err, fperrors.ErrCodeUnsupported) {
		t.Errorf("redis backend error = %v, want UNSUPPORTED", err)
	}
}
