// Package pipeline provides the floorplanning pipeline shared by the CLI and
// the HTTP server.
//
// This package implements the complete optimize → check → render pipeline so
// every entry point validates, caches and reports results the same way.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Optimize: build the initial slicing tree and anneal it
//  2. Check: verify that the best placement has no overlapping modules
//  3. Render: generate outputs in various formats (SVG, PNG, PDF, JSON)
//
// Optimize and Render results are cached; the check always runs.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Seed:    pipeline.Seed(7),
//	    Formats: []string{"svg", "json"},
//	}
//	result, err := runner.Execute(ctx, mods, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	run, hit, err := runner.Optimize(ctx, mods, opts)
//	artifacts, hit, err := runner.Render(ctx, run.Placement(), opts)
package pipeline

import (
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/xianaiyang/vlsiFloorplan/pkg/cache"
	fperrors "github.com/xianaiyang/vlsiFloorplan/pkg/errors"
	"github.com/xianaiyang/vlsiFloorplan/pkg/floorplan/anneal"
	"github.com/xianaiyang/vlsiFloorplan/pkg/floorplan/module"
	fpio "github.com/xianaiyang/vlsiFloorplan/pkg/io"
	"github.com/xianaiyang/vlsiFloorplan/pkg/render"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultSeed is the default random seed for reproducibility.
	DefaultSeed = uint64(42)

	// DefaultStroke is the default module outline width in pixels.
	DefaultStroke = render.DefaultStroke
)

// Format constants for output formats.
const (
	FormatSVG  = render.FormatSVG
	FormatPNG  = render.FormatPNG
	FormatPDF  = render.FormatPDF
	FormatJSON = render.FormatJSON
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the floorplanning pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Search options
	Schedule   anneal.Schedule `json:"schedule"`
	Seed       *uint64         `json:"seed,omitempty"` // Nil means DefaultSeed; 0 is a valid seed
	Metropolis bool            `json:"metropolis,omitempty"`
	Refresh    bool            `json:"refresh,omitempty"` // Ignore cached runs

	// Render options
	Formats []string `json:"formats,omitempty"`
	Scale   float64  `json:"scale,omitempty"` // Pixels per unit; 0 fits the longer side into 800px
	Stroke  float64  `json:"stroke,omitempty"`
	Labels  bool     `json:"labels,omitempty"`
	Initial bool     `json:"initial,omitempty"` // Also render the initial placement

	// Runtime options (not serialized)
	Logger   *log.Logger        `json:"-"`
	Progress func(anneal.Stage) `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID uniquely identifies this execution.
	RunID string

	// ModulesHash is the content hash of the input modules.
	ModulesHash string

	// Run is the optimisation outcome.
	Run *Run

	// Artifacts contains rendered outputs of the best placement keyed by format.
	Artifacts map[string][]byte

	// InitialArtifacts contains rendered outputs of the initial placement
	// when Options.Initial is set.
	InitialArtifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Run is the cacheable outcome of the optimize stage.
type Run struct {
	InitialArea       int64           `json:"initial_area"`
	InitialExpression string          `json:"initial_expression"`
	Initial           []module.Module `json:"initial"`

	Area       int64           `json:"area"`
	Expression string          `json:"expression"`
	Modules    []module.Module `json:"modules"`

	Stages       int `json:"stages"`
	Trials       int `json:"trials"`
	Accepted     int `json:"accepted"`
	Improvements int `json:"improvements"`
}

// Placement returns the best placement as an I/O document.
func (r *Run) Placement() *fpio.Placement {
	return &fpio.Placement{
		Area:        r.Area,
		InitialArea: r.InitialArea,
		Expression:  r.Expression,
		Modules:     slices.Clone(r.Modules),
	}
}

// InitialPlacement returns the placement of the initial tree.
func (r *Run) InitialPlacement() *fpio.Placement {
	return &fpio.Placement{
		Area:       r.InitialArea,
		Expression: r.InitialExpression,
		Modules:    slices.Clone(r.Initial),
	}
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ModuleCount  int
	ModuleArea   int64 // Sum of module areas, a lower bound for any placement
	OptimizeTime time.Duration
	RenderTime   time.Duration
}

// Utilization is the share of the placement's area covered by modules.
func (r *Result) Utilization() float64 {
	if r.Run == nil || r.Run.Area == 0 {
		return 0
	}
	return float64(r.Stats.ModuleArea) / float64(r.Run.Area)
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	OptimizeHit bool // Whether the run came from cache
	RenderHit   bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fperrors.New(fperrors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks all fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForOptimize(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// Seed returns a pointer to v for [Options.Seed].
func Seed(v uint64) *uint64 { return &v }

// SeedValue returns the seed the search runs with.
func (o *Options) SeedValue() uint64 {
	if o.Seed == nil {
		return DefaultSeed
	}
	return *o.Seed
}

// SetOptimizeDefaults sets default values for the search.
func (o *Options) SetOptimizeDefaults() {
	o.Schedule.SetDefaults()
	if o.Seed == nil {
		o.Seed = Seed(DefaultSeed)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForOptimize validates and sets defaults for the search.
func (o *Options) ValidateForOptimize() error {
	o.SetOptimizeDefaults()
	return o.Schedule.Validate()
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Stroke == 0 {
		o.Stroke = DefaultStroke
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if o.Scale < 0 || o.Stroke < 0 {
		return fperrors.New(fperrors.ErrCodeInvalidConfig, "scale and stroke must not be negative")
	}
	return ValidateFormats(o.Formats)
}

// RenderOptions returns the renderer options.
func (o *Options) RenderOptions() []render.Option {
	return []render.Option{
		render.WithScale(o.Scale),
		render.WithStroke(o.Stroke),
		render.WithLabels(o.Labels),
	}
}

// RunKeyOpts returns cache key options for the optimize stage.
func (o *Options) RunKeyOpts() cache.RunKeyOpts {
	s := o.Schedule
	return cache.RunKeyOpts{
		InitialTemperature: s.InitialTemperature,
		Decay:              s.Decay,
		Frozen:             s.Frozen,
		Trials:             s.Trials,
		Weights:            [4]float64{s.Weights.Recut, s.Weights.Rotate, s.Weights.SwapModules, s.Weights.SwapTopology},
		Seed:               o.SeedValue(),
		Metropolis:         o.Metropolis,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format: format,
		Scale:  o.Scale,
		Stroke: o.Stroke,
		Labels: o.Labels,
	}
}
