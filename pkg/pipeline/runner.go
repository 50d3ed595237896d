package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/xianaiyang/vlsiFloorplan/pkg/cache"
	fperrors "github.com/xianaiyang/vlsiFloorplan/pkg/errors"
	"github.com/xianaiyang/vlsiFloorplan/pkg/floorplan/anneal"
	"github.com/xianaiyang/vlsiFloorplan/pkg/floorplan/module"
	"github.com/xianaiyang/vlsiFloorplan/pkg/floorplan/slicing"
	fpio "github.com/xianaiyang/vlsiFloorplan/pkg/io"
	"github.com/xianaiyang/vlsiFloorplan/pkg/observability"
	"github.com/xianaiyang/vlsiFloorplan/pkg/render"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options and
// module lists; every run builds its own tree.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete optimize → check → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, mods []module.Module, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{RunID: uuid.NewString()}

	// Stage 1: Optimize
	optimizeStart := time.Now()
	run, hash, optimizeHit, err := r.optimize(ctx, mods, opts)
	if err != nil {
		return nil, fmt.Errorf("optimize: %w", err)
	}
	result.Run = run
	result.ModulesHash = hash
	result.Stats.ModuleCount = len(mods)
	result.Stats.ModuleArea = module.TotalArea(mods)
	result.Stats.OptimizeTime = time.Since(optimizeStart)
	result.CacheInfo.OptimizeHit = optimizeHit

	r.Logger.Info("optimized floorplan",
		"run", result.RunID,
		"modules", len(mods),
		"initial_area", run.InitialArea,
		"area", run.Area,
		"cached", optimizeHit,
		"duration", result.Stats.OptimizeTime)

	// Stage 2: Check. Cached runs are checked too.
	if pairs := module.Overlaps(run.Modules); len(pairs) > 0 {
		return nil, fperrors.New(fperrors.ErrCodeInternal,
			"best placement has %d overlapping module pairs (first: %d and %d)",
			len(pairs), pairs[0].A, pairs[0].B)
	}

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, run.Placement(), opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.CacheInfo.RenderHit = renderHit

	if opts.Initial {
		initial, _, err := r.RenderWithCacheInfo(ctx, run.InitialPlacement(), opts)
		if err != nil {
			return nil, fmt.Errorf("render initial: %w", err)
		}
		result.InitialArtifacts = initial
	}
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// OptimizeWithCacheInfo anneals mods with caching and returns cache hit info.
func (r *Runner) OptimizeWithCacheInfo(ctx context.Context, mods []module.Module, opts Options) (*Run, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForOptimize(); err != nil {
		return nil, false, err
	}
	run, _, hit, err := r.optimize(ctx, mods, opts)
	return run, hit, err
}

// Optimize is a convenience wrapper that calls OptimizeWithCacheInfo and discards the cache hit info.
func (r *Runner) Optimize(ctx context.Context, mods []module.Module, opts Options) (*Run, error) {
	run, _, err := r.OptimizeWithCacheInfo(ctx, mods, opts)
	return run, err
}

// optimize expects validated options. It returns the run, the modules hash
// and whether the run came from the cache.
func (r *Runner) optimize(ctx context.Context, mods []module.Module, opts Options) (*Run, string, bool, error) {
	store, err := module.NewStore(mods)
	if err != nil {
		return nil, "", false, err
	}
	hash, err := cache.HashJSON(store.Modules)
	if err != nil {
		return nil, "", false, fmt.Errorf("hash modules: %w", err)
	}
	cacheKey := r.Keyer.RunKey(hash, opts.RunKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached Run
			if err := json.Unmarshal(data, &cached); err == nil && len(cached.Modules) == len(mods) {
				return &cached, hash, true, nil
			}
			// Undecodable entries fall through to recompute
		} else if err != nil {
			opts.Logger.Warn("cache read failed", "key", cacheKey, "err", err)
		}
	}

	pipelineHooks := observability.Pipeline()
	pipelineHooks.OnOptimizeStart(ctx, store.Len())
	start := time.Now()

	run, err := search(ctx, store, opts)
	if err != nil {
		pipelineHooks.OnOptimizeComplete(ctx, slicing.InvalidArea, time.Since(start), err)
		return nil, "", false, err
	}
	pipelineHooks.OnOptimizeComplete(ctx, run.Area, time.Since(start), nil)

	if data, err := json.Marshal(run); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLRun); err != nil {
			opts.Logger.Warn("cache write failed", "key", cacheKey, "err", err)
		}
	}
	return run, hash, false, nil
}

// search builds the initial tree over store, records its placement and
// anneals it.
func search(ctx context.Context, store *module.Store, opts Options) (*Run, error) {
	tree, err := slicing.Build(store)
	if err != nil {
		return nil, err
	}
	expr, err := tree.Expression()
	if err != nil {
		return nil, err
	}
	initialArea, err := slicing.Pack(store, expr)
	if err != nil {
		return nil, err
	}
	run := &Run{
		InitialArea:       initialArea,
		InitialExpression: expr.Format(store),
		Initial:           store.Snapshot(nil),
	}

	a := anneal.Annealer{
		Schedule:   opts.Schedule,
		Seed:       opts.SeedValue(),
		Metropolis: opts.Metropolis,
		Logger:     opts.Logger,
		Progress:   opts.Progress,
	}
	res, err := a.Run(ctx, tree)
	if err != nil {
		return nil, err
	}

	run.Area = res.Area
	run.Expression = res.Expression.Format(store)
	run.Modules = res.Modules
	run.Stages = res.Stages
	run.Trials = res.Trials
	run.Accepted = res.Accepted
	run.Improvements = res.Improvements
	return run, nil
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, p *fpio.Placement, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	if p == nil {
		return nil, false, fperrors.New(fperrors.ErrCodeInvalidInput, "nil placement")
	}
	if err := p.Validate(); err != nil {
		return nil, false, err
	}

	// Compute cache key from placement data
	placementHash, err := cache.HashJSON(p)
	if err != nil {
		return nil, false, fmt.Errorf("hash placement: %w", err)
	}

	// Try to get all formats from cache
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(placementHash, opts.ArtifactKeyOpts(format))
		data, hit, err := r.Cache.Get(ctx, cacheKey)
		if err != nil || !hit {
			break
		}
		artifacts[format] = data
	}
	if len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil // All artifacts from cache
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	rendered := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := render.Artifact(ctx, format, p, opts.RenderOptions()...)
		if err != nil {
			hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
			return nil, false, fmt.Errorf("%s: %w", format, err)
		}
		rendered[format] = data

		cacheKey := r.Keyer.ArtifactKey(placementHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
	}
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), nil)

	return rendered, false, nil // Cache miss
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, p *fpio.Placement, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, p, opts)
	return artifacts, err
}

// Evaluate packs a user supplied polish expression over mods without
// searching. The expression uses module IDs, e.g. "2 1 V 0 V".
func Evaluate(mods []module.Module, expression string) (*fpio.Placement, error) {
	store, err := module.NewStore(mods)
	if err != nil {
		return nil, err
	}
	expr, err := slicing.ParseExpression(expression, store)
	if err != nil {
		return nil, err
	}
	area, err := slicing.Pack(store, expr)
	if err != nil {
		return nil, err
	}
	return &fpio.Placement{
		Area:       area,
		Expression: expr.Format(store),
		Modules:    store.Snapshot(nil),
	}, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
