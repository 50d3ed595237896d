package pipeline

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xianaiyang/vlsiFloorplan/pkg/cache"
	fperrors "github.com/xianaiyang/vlsiFloorplan/pkg/errors"
	"github.com/xianaiyang/vlsiFloorplan/pkg/floorplan/anneal"
	"github.com/xianaiyang/vlsiFloorplan/pkg/floorplan/module"
)

var golden = []module.Module{
	{ID: 0, W: 2, H: 3},
	{ID: 1, W: 4, H: 1},
	{ID: 2, W: 1, H: 5},
}

func quickOptions() Options {
	return Options{
		Schedule: anneal.Schedule{InitialTemperature: 10, Decay: 0.8, Frozen: 1, Trials: 200},
		Seed:     Seed(7),
	}
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !fperrors.Is(err, fperrors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s", tt.format, fperrors.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptions_Defaults(t *testing.T) {
	var opts Options
	require.NoError(t, opts.ValidateAndSetDefaults())

	require.Equal(t, DefaultSeed, *opts.Seed)
	require.Equal(t, []string{FormatSVG}, opts.Formats)
	require.Equal(t, float64(DefaultStroke), opts.Stroke)
	require.Equal(t, anneal.DefaultSchedule(), opts.Schedule)
	require.NotNil(t, opts.Logger)

	// Idempotent
	require.NoError(t, opts.ValidateAndSetDefaults())
	require.Equal(t, DefaultSeed, *opts.Seed)
}

func TestOptions_ExplicitZeroSeed(t *testing.T) {
	zero := Options{Seed: Seed(0)}
	require.NoError(t, zero.ValidateAndSetDefaults())
	require.Equal(t, uint64(0), zero.SeedValue())

	var unset Options
	require.NoError(t, unset.ValidateAndSetDefaults())

	k := cache.NewDefaultKeyer()
	require.NotEqual(t, k.RunKey("h", unset.RunKeyOpts()), k.RunKey("h", zero.RunKeyOpts()))

	var decoded Options
	require.NoError(t, json.Unmarshal([]byte(`{"seed":0}`), &decoded))
	require.NotNil(t, decoded.Seed)
	require.Equal(t, uint64(0), decoded.SeedValue())
}

func TestOptions_Invalid(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code fperrors.Code
	}{
		{"decay above one", Options{Schedule: anneal.Schedule{Decay: 2}}, fperrors.ErrCodeInvalidConfig},
		{"negative trials", Options{Schedule: anneal.Schedule{Trials: -1}}, fperrors.ErrCodeInvalidConfig},
		{"negative scale", Options{Scale: -1}, fperrors.ErrCodeInvalidConfig},
		{"unknown format", Options{Formats: []string{"gif"}}, fperrors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			require.Error(t, err)
			require.True(t, fperrors.Is(err, tt.code), "got %v", err)
		})
	}
}

func TestOptions_KeyOpts(t *testing.T) {
	a := quickOptions()
	require.NoError(t, a.ValidateAndSetDefaults())
	b := a
	b.Seed = Seed(*a.Seed + 1)

	k := cache.NewDefaultKeyer()
	require.NotEqual(t, k.RunKey("h", a.RunKeyOpts()), k.RunKey("h", b.RunKeyOpts()))

	// Render options do not affect the run.
	c := a
	c.Scale = 40
	require.Equal(t, k.RunKey("h", a.RunKeyOpts()), k.RunKey("h", c.RunKeyOpts()))
	require.NotEqual(t, k.ArtifactKey("h", a.ArtifactKeyOpts("svg")), k.ArtifactKey("h", c.ArtifactKeyOpts("svg")))
}

func TestExecute(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	defer runner.Close()

	opts := quickOptions()
	opts.Formats = []string{FormatSVG, FormatJSON}
	opts.Initial = true

	result, err := runner.Execute(context.Background(), golden, opts)
	require.NoError(t, err)

	require.NotEmpty(t, result.RunID)
	require.NotEmpty(t, result.ModulesHash)
	require.Equal(t, 3, result.Stats.ModuleCount)
	require.Equal(t, int64(6+4+5), result.Stats.ModuleArea)

	run := result.Run
	require.Equal(t, int64(35), run.InitialArea)
	require.Equal(t, "2 1 V 0 V", run.InitialExpression)
	require.LessOrEqual(t, run.Area, run.InitialArea)
	require.GreaterOrEqual(t, run.Area, result.Stats.ModuleArea)
	require.Empty(t, module.Overlaps(run.Modules))

	w, h := module.BoundingBox(run.Modules)
	require.Equal(t, run.Area, int64(w)*int64(h))
	require.Positive(t, run.Stages)
	require.Equal(t, run.Stages*200, run.Trials)

	// The reported expression reproduces the reported placement.
	p, err := Evaluate(golden, run.Expression)
	require.NoError(t, err)
	require.Equal(t, run.Area, p.Area)

	require.Len(t, result.Artifacts, 2)
	require.True(t, strings.HasPrefix(string(result.Artifacts[FormatSVG]), "<svg"))
	require.Contains(t, string(result.Artifacts[FormatJSON]), `"area"`)
	require.Len(t, result.InitialArtifacts, 2)

	require.False(t, result.CacheInfo.OptimizeHit)
	require.False(t, result.CacheInfo.RenderHit)
	require.InDelta(t, float64(15)/float64(run.Area), result.Utilization(), 1e-9)
}

func TestExecute_Deterministic(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	ctx := context.Background()

	a, err := runner.Execute(ctx, golden, quickOptions())
	require.NoError(t, err)
	b, err := runner.Execute(ctx, golden, quickOptions())
	require.NoError(t, err)

	require.Equal(t, a.Run, b.Run)
	require.Equal(t, a.Artifacts, b.Artifacts)
	require.NotEqual(t, a.RunID, b.RunID)
}

func TestExecute_Cache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	runner := NewRunner(c, nil, nil)
	defer runner.Close()
	ctx := context.Background()

	first, err := runner.Execute(ctx, golden, quickOptions())
	require.NoError(t, err)
	require.False(t, first.CacheInfo.OptimizeHit)

	second, err := runner.Execute(ctx, golden, quickOptions())
	require.NoError(t, err)
	require.True(t, second.CacheInfo.OptimizeHit)
	require.True(t, second.CacheInfo.RenderHit)
	require.Equal(t, first.Run, second.Run)
	require.Equal(t, first.Artifacts, second.Artifacts)

	opts := quickOptions()
	opts.Refresh = true
	third, err := runner.Execute(ctx, golden, opts)
	require.NoError(t, err)
	require.False(t, third.CacheInfo.OptimizeHit)
	require.Equal(t, first.Run.Area, third.Run.Area)

	opts = quickOptions()
	opts.Seed = Seed(8)
	fourth, err := runner.Execute(ctx, golden, opts)
	require.NoError(t, err)
	require.False(t, fourth.CacheInfo.OptimizeHit)
}

func TestExecute_InvalidModules(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	ctx := context.Background()

	_, err := runner.Execute(ctx, golden[:1], quickOptions())
	require.True(t, fperrors.IsInvalid(err), "got %v", err)

	dup := []module.Module{{ID: 1, W: 1, H: 1}, {ID: 1, W: 2, H: 2}}
	_, err = runner.Execute(ctx, dup, quickOptions())
	require.True(t, fperrors.IsInvalid(err), "got %v", err)

	flat := []module.Module{{ID: 0, W: 0, H: 1}, {ID: 1, W: 2, H: 2}}
	_, err = runner.Execute(ctx, flat, quickOptions())
	require.True(t, fperrors.Is(err, fperrors.ErrCodeInvalidModule), "got %v", err)
}

func TestExecute_Cancelled(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.Execute(ctx, golden, quickOptions())
	require.ErrorIs(t, err, context.Canceled)
}

func TestExecute_Progress(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	var stages []anneal.Stage
	opts := quickOptions()
	opts.Progress = func(s anneal.Stage) { stages = append(stages, s) }

	result, err := runner.Execute(context.Background(), golden, opts)
	require.NoError(t, err)
	require.Len(t, stages, result.Run.Stages)
	require.Equal(t, result.Run.Area, stages[len(stages)-1].BestArea)
}

func TestRender_NilPlacement(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	_, err := runner.Render(context.Background(), nil, Options{})
	require.True(t, fperrors.Is(err, fperrors.ErrCodeInvalidInput))
}

func TestEvaluate(t *testing.T) {
	p, err := Evaluate(golden, "2 1 V 0 V")
	require.NoError(t, err)
	require.Equal(t, int64(35), p.Area)
	require.Equal(t, "2 1 V 0 V", p.Expression)

	at := map[int][2]int{}
	for _, m := range p.Modules {
		at[m.ID] = [2]int{m.X, m.Y}
	}
	require.Equal(t, map[int][2]int{0: {5, 0}, 1: {1, 0}, 2: {0, 0}}, at)

	// Lower case operators are accepted.
	p, err = Evaluate(golden, "0 1 h 2 v")
	require.NoError(t, err)
	require.Equal(t, int64(5*5), p.Area)
}

func TestEvaluate_Invalid(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"empty", ""},
		{"dangling operand", "2 1 V 0"},
		{"underflow", "2 V 1 0 V"},
		{"unknown id", "2 1 V 9 V"},
		{"repeated id", "2 2 V 0 V"},
		{"bad symbol", "2 1 X 0 V"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Evaluate(golden, tt.expr)
			require.True(t, fperrors.Is(err, fperrors.ErrCodeInvalidExpression), "got %v", err)
		})
	}
}
