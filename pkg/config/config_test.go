package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	fperrors "github.com/xianaiyang/vlsiFloorplan/pkg/errors"
	"github.com/xianaiyang/vlsiFloorplan/pkg/floorplan/anneal"
	"github.com/xianaiyang/vlsiFloorplan/pkg/pipeline"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.Equal(t, anneal.DefaultSchedule(), cfg.Anneal.Schedule())
	require.Equal(t, pipeline.DefaultSeed, cfg.Anneal.Seed)
	require.Equal(t, BackendFile, cfg.Cache.Backend)
	require.Equal(t, log.InfoLevel, cfg.LogLevel())
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[anneal]
initial_temperature = 50.0
trials = 200
seed = 7
metropolis = true

[anneal.weights]
swap_topology = 3.0

[render]
formats = ["svg", "png"]
scale = 20.0
labels = true

[cache]
backend = "none"

[log]
level = "debug"

[server]
addr = "127.0.0.1:9000"
request_timeout = "30s"
max_modules = 64
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	// Keys left out keep their defaults.
	require.Equal(t, anneal.DefaultDecay, cfg.Anneal.Decay)
	require.Equal(t, 1.0, cfg.Anneal.Weights.Recut)
	require.Equal(t, 3.0, cfg.Anneal.Weights.SwapTopology)
	require.Equal(t, 50.0, cfg.Anneal.InitialTemperature)
	require.Equal(t, log.DebugLevel, cfg.LogLevel())
	require.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	require.Equal(t, 64, cfg.Server.MaxModules)
	require.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)

	opts := cfg.Options()
	require.Equal(t, uint64(7), *opts.Seed)
	require.True(t, opts.Metropolis)
	require.True(t, opts.Labels)
	require.Equal(t, []string{"svg", "png"}, opts.Formats)
	require.Equal(t, 200, opts.Schedule.Trials)
	require.NoError(t, opts.ValidateAndSetDefaults())
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code fperrors.Code
	}{
		{"syntax", "[anneal\n", fperrors.ErrCodeInvalidConfig},
		{"unknown key", "[anneal]\ntemperature = 3.0\n", fperrors.ErrCodeInvalidConfig},
		{"unknown table", "[database]\nurl = \"x\"\n", fperrors.ErrCodeInvalidConfig},
		{"bad decay", "[anneal]\ndecay = 1.5\n", fperrors.ErrCodeInvalidConfig},
		{"bad format", "[render]\nformats = [\"bmp\"]\n", fperrors.ErrCodeInvalidFormat},
		{"bad backend", "[cache]\nbackend = \"memcached\"\n", fperrors.ErrCodeInvalidConfig},
		{"bad level", "[log]\nlevel = \"loud\"\n", fperrors.ErrCodeInvalidConfig},
		{"too few modules", "[server]\nmax_modules = 1\n", fperrors.ErrCodeInvalidConfig},
		{"wrong type", "[anneal]\ntrials = \"many\"\n", fperrors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			require.True(t, fperrors.Is(err, tt.code), "got %v", err)
		})
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.True(t, fperrors.Is(err, fperrors.ErrCodeFileNotFound), "got %v", err)
}

func TestWrite_RoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Anneal.Seed = 99
	cfg.Render.Formats = []string{"json"}

	var buf bytes.Buffer
	require.NoError(t, cfg.Write(&buf))
	require.Contains(t, buf.String(), "[anneal.weights]")

	loaded, err := Load(writeConfig(t, buf.String()))
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)
}
