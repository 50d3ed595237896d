package anneal

import (
	"math"

	fperrors "github.com/xianaiyang/vlsiFloorplan/pkg/errors"
	"github.com/xianaiyang/vlsiFloorplan/pkg/floorplan/slicing"
)

// Default schedule values.
const (
	DefaultInitialTemperature = 100.0
	DefaultDecay              = 0.95
	DefaultFrozen             = 1.0
	DefaultTrials             = 1000
)

// maxStages bounds the number of temperature stages a schedule may request.
const maxStages = 100_000

// Weights are the relative probabilities of drawing each move. Only the
// ratios matter; all zero means uniform.
type Weights struct {
	Recut        float64 `json:"recut" toml:"recut"`
	Rotate       float64 `json:"rotate" toml:"rotate"`
	SwapModules  float64 `json:"swap_modules" toml:"swap_modules"`
	SwapTopology float64 `json:"swap_topology" toml:"swap_topology"`
}

// UniformWeights gives every move the same probability.
func UniformWeights() Weights {
	return Weights{Recut: 1, Rotate: 1, SwapModules: 1, SwapTopology: 1}
}

func (w Weights) of(m slicing.Move) float64 {
	switch m {
	case slicing.MoveRecut:
		return w.Recut
	case slicing.MoveRotate:
		return w.Rotate
	case slicing.MoveSwapModules:
		return w.SwapModules
	case slicing.MoveSwapTopology:
		return w.SwapTopology
	}
	return 0
}

func (w Weights) total() float64 {
	return w.Recut + w.Rotate + w.SwapModules + w.SwapTopology
}

// Schedule is the cooling schedule of one run.
//
// The search runs Trials moves per stage while the temperature is above
// Frozen, multiplying it by Decay after every stage.
type Schedule struct {
	InitialTemperature float64 `json:"initial_temperature" toml:"initial_temperature"`
	Decay              float64 `json:"decay" toml:"decay"`
	Frozen             float64 `json:"frozen" toml:"frozen"`
	Trials             int     `json:"trials" toml:"trials"`
	Weights            Weights `json:"weights" toml:"weights"`
}

// DefaultSchedule returns the default cooling schedule: 100 → 1 with a 0.95
// decay, 1000 trials per stage, uniform move weights.
func DefaultSchedule() Schedule {
	return Schedule{
		InitialTemperature: DefaultInitialTemperature,
		Decay:              DefaultDecay,
		Frozen:             DefaultFrozen,
		Trials:             DefaultTrials,
		Weights:            UniformWeights(),
	}
}

// SetDefaults fills zero fields with their defaults.
func (s *Schedule) SetDefaults() {
	if s.InitialTemperature == 0 {
		s.InitialTemperature = DefaultInitialTemperature
	}
	if s.Decay == 0 {
		s.Decay = DefaultDecay
	}
	if s.Frozen == 0 {
		s.Frozen = DefaultFrozen
	}
	if s.Trials == 0 {
		s.Trials = DefaultTrials
	}
	if s.Weights == (Weights{}) {
		s.Weights = UniformWeights()
	}
}

// Validate reports an INVALID_CONFIG error for schedules that cannot run or
// would never terminate.
func (s Schedule) Validate() error {
	switch {
	case !(s.InitialTemperature > 0) || math.IsInf(s.InitialTemperature, 0):
		return fperrors.New(fperrors.ErrCodeInvalidConfig, "initial temperature must be positive and finite, got %v", s.InitialTemperature)
	case !(s.Decay > 0 && s.Decay < 1):
		return fperrors.New(fperrors.ErrCodeInvalidConfig, "decay must be in (0, 1), got %v", s.Decay)
	case !(s.Frozen > 0):
		return fperrors.New(fperrors.ErrCodeInvalidConfig, "frozen threshold must be positive, got %v", s.Frozen)
	case s.Trials < 1:
		return fperrors.New(fperrors.ErrCodeInvalidConfig, "trials per stage must be at least 1, got %d", s.Trials)
	}

	w := s.Weights
	if w.Recut < 0 || w.Rotate < 0 || w.SwapModules < 0 || w.SwapTopology < 0 {
		return fperrors.New(fperrors.ErrCodeInvalidConfig, "move weights must be non-negative, got %+v", w)
	}
	if n := s.Stages(); n > maxStages {
		return fperrors.New(fperrors.ErrCodeInvalidConfig, "schedule needs %d stages, limit is %d", n, maxStages)
	}
	return nil
}

// Stages returns how many trial batches the schedule runs.
func (s Schedule) Stages() int {
	if !(s.InitialTemperature > s.Frozen) || !(s.Decay > 0 && s.Decay < 1) || !(s.Frozen > 0) {
		return 0
	}
	n := 0
	for t := s.InitialTemperature; t > s.Frozen && n <= maxStages; t *= s.Decay {
		n++
	}
	return n
}
