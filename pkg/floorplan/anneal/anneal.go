package anneal

import (
	"context"
	"io"
	"math"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"

	fperrors "github.com/xianaiyang/vlsiFloorplan/pkg/errors"
	"github.com/xianaiyang/vlsiFloorplan/pkg/floorplan/module"
	"github.com/xianaiyang/vlsiFloorplan/pkg/floorplan/slicing"
	"github.com/xianaiyang/vlsiFloorplan/pkg/observability"
)

// maxDraws bounds operand redraws for moves that need distinct or disjoint
// operands. A trial whose draws all fail is skipped.
const maxDraws = 64

// ctxCheckInterval is how many trials run between context checks inside a
// stage.
const ctxCheckInterval = 4096

// Stage summarises one completed trial batch.
type Stage struct {
	Index       int
	Temperature float64
	CurrentArea int64
	BestArea    int64
	Accepted    int
}

// Result is the outcome of a run. Modules holds the best placement found and
// has also been written back to the tree's store.
type Result struct {
	Area         int64              `json:"area"`
	InitialArea  int64              `json:"initial_area"`
	Expression   slicing.Expression `json:"-"`
	Modules      []module.Module    `json:"modules"`
	Stages       int                `json:"stages"`
	Trials       int                `json:"trials"`
	Accepted     int                `json:"accepted"`
	Improvements int                `json:"improvements"`
	Duration     time.Duration      `json:"duration"`
}

// Annealer searches for a small-area floorplan by perturbing a slicing tree.
//
// By default every applied move is kept and the walk only remembers the best
// state it has seen. With Metropolis set, a move that worsens the current
// area is kept only with probability exp(-Δ/T) and otherwise undone.
type Annealer struct {
	Schedule   Schedule
	Seed       uint64
	Metropolis bool

	// Logger receives per-stage debug output. Nil discards it.
	Logger *log.Logger
	// Progress, if set, is called after every stage.
	Progress func(Stage)
}

// Optimize runs the default walk over tree with the given schedule and seed.
func Optimize(tree *slicing.Tree, schedule Schedule, seed uint64) (*Result, error) {
	a := Annealer{Schedule: schedule, Seed: seed}
	return a.Run(context.Background(), tree)
}

// NewRand returns the generator a run with the given seed uses.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}

// Accept reports whether a proposal should replace the current solution.
// Improvements are always accepted; at or below the frozen temperature
// nothing else is. Otherwise the proposal wins with probability
// exp(-(proposal-current)/temperature).
func Accept(current, proposal int64, temperature, frozen float64, rng *rand.Rand) bool {
	if proposal < current {
		return true
	}
	if temperature <= frozen {
		return false
	}
	prob := math.Exp(-float64(proposal-current) / temperature)
	return rng.Float64() < prob
}

// run holds the mutable state of one Run call.
type run struct {
	tree      *slicing.Tree
	store     *module.Store
	rng       *rand.Rand
	weights   Weights
	leaves    []int
	internals []int

	// metropolis and frozen drive the acceptance test in step.
	metropolis bool
	frozen     float64

	expr   slicing.Expression
	packer slicing.Packer

	best      int64
	bestExpr  slicing.Expression
	bestMods  []module.Module
	bestNodes []slicing.Node
}

// Run anneals tree in place. On return the tree and its store hold the best
// state found.
//
// A tree whose structure is corrupt yields an INVARIANT_VIOLATION error and no
// result. Run checks ctx between stages and every few thousand trials within
// one; once it is done, Run returns the best result so far together with
// ctx.Err().
func (a *Annealer) Run(ctx context.Context, tree *slicing.Tree) (res *Result, err error) {
	if tree == nil {
		return nil, fperrors.New(fperrors.ErrCodeInvalidConfig, "nil slicing tree")
	}
	sched := a.Schedule
	sched.SetDefaults()
	if err := sched.Validate(); err != nil {
		return nil, err
	}
	logger := a.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	hooks := observability.Anneal()
	start := time.Now()

	r, err := a.init(tree, sched)
	if err != nil {
		hooks.OnRunComplete(ctx, slicing.InvalidArea, 0, time.Since(start), err)
		return nil, err
	}
	res = &Result{InitialArea: r.best}
	hooks.OnRunStart(ctx, r.store.Len(), r.best)
	logger.Debug("annealing", "modules", r.store.Len(), "area", r.best,
		"stages", sched.Stages(), "metropolis", a.Metropolis, "seed", a.Seed)

	defer func() {
		if res == nil {
			hooks.OnRunComplete(ctx, slicing.InvalidArea, 0, time.Since(start), err)
			return
		}
		r.restore(res)
		res.Duration = time.Since(start)
		hooks.OnRunComplete(ctx, res.Area, res.Stages, res.Duration, err)
	}()

	current := r.best
	temperature := sched.InitialTemperature
	for stage := 1; temperature > sched.Frozen; stage++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		accepted := 0
		for i := range sched.Trials {
			if i > 0 && i%ctxCheckInterval == 0 {
				if err := ctx.Err(); err != nil {
					res.Accepted += accepted
					return res, err
				}
			}
			res.Trials++
			next, ok, err := r.step(current, temperature)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			current = next
			accepted++

			if current < r.best {
				r.record(current)
				res.Improvements++
				hooks.OnImprovement(ctx, stage, current)
			}
		}

		res.Stages = stage
		res.Accepted += accepted
		st := Stage{Index: stage, Temperature: temperature, CurrentArea: current, BestArea: r.best, Accepted: accepted}
		hooks.OnStageComplete(ctx, stage, temperature, r.best)
		logger.Debug("stage", "n", stage, "t", temperature, "current", current, "best", r.best, "accepted", accepted)
		if a.Progress != nil {
			a.Progress(st)
		}
		temperature *= sched.Decay
	}
	return res, nil
}

// init classifies the tree, packs it once and seeds the best state.
func (a *Annealer) init(tree *slicing.Tree, sched Schedule) (*run, error) {
	if err := tree.Validate(); err != nil {
		return nil, err
	}
	r := &run{
		tree:       tree,
		store:      tree.Store(),
		rng:        NewRand(a.Seed),
		weights:    sched.Weights,
		metropolis: a.Metropolis,
		frozen:     sched.Frozen,
		expr:       make(slicing.Expression, tree.Len()),
	}
	r.leaves, r.internals = tree.Classify()
	if n := r.store.Len(); len(r.leaves) != n || len(r.internals) != n-1 {
		return nil, fperrors.New(fperrors.ErrCodeInvariant,
			"classified %d leaves and %d internal nodes over %d modules",
			len(r.leaves), len(r.internals), n)
	}

	area, err := r.evaluate()
	if err != nil {
		return nil, err
	}
	if area == slicing.InvalidArea {
		return nil, fperrors.New(fperrors.ErrCodeInvariant, "initial tree does not encode a valid expression")
	}
	r.bestExpr = make(slicing.Expression, tree.Len())
	r.record(area)
	return r, nil
}

// evaluate re-encodes and re-packs the live tree. A packing failure yields
// [slicing.InvalidArea] so it can never become the best; only corruption of
// the tree itself is returned as an error.
func (r *run) evaluate() (int64, error) {
	if err := r.tree.Encode(r.expr); err != nil {
		return slicing.InvalidArea, err
	}
	area, err := r.packer.Pack(r.store, r.expr)
	if err != nil {
		return slicing.InvalidArea, nil
	}
	return area, nil
}

// step applies one randomly drawn move at the given temperature and reports
// the new current area and whether the move was kept. A move the acceptance
// test rejects is undone before step returns, leaving the tree and module
// dimensions as they were.
func (r *run) step(current int64, temperature float64) (int64, bool, error) {
	m := r.pickMove()
	x, y, ok := r.operands(m)
	if !ok || !r.tree.Apply(m, x, y) {
		return current, false, nil
	}

	proposal, err := r.evaluate()
	if err != nil {
		return current, false, err
	}
	if r.metropolis && !Accept(current, proposal, temperature, r.frozen, r.rng) {
		r.tree.Apply(m, x, y)
		return current, false, nil
	}
	return proposal, true, nil
}

func (r *run) record(area int64) {
	r.best = area
	copy(r.bestExpr, r.expr)
	r.bestMods = r.store.Snapshot(r.bestMods)
	r.bestNodes = r.tree.Snapshot(r.bestNodes)
}

// restore writes the best state back into the tree and store and fills in res.
func (r *run) restore(res *Result) {
	r.tree.Restore(r.bestNodes)
	r.store.Restore(r.bestMods)
	res.Area = r.best
	res.Expression = r.bestExpr.Clone()
	res.Modules = r.store.Snapshot(nil)
}

func (r *run) pickMove() slicing.Move {
	total := r.weights.total()
	x := r.rng.Float64() * total
	for _, m := range slicing.Moves {
		w := r.weights.of(m)
		if x < w {
			return m
		}
		x -= w
	}
	// Rounding can leave x just above the last weight.
	for i := len(slicing.Moves) - 1; i >= 0; i-- {
		if r.weights.of(slicing.Moves[i]) > 0 {
			return slicing.Moves[i]
		}
	}
	return slicing.MoveRotate
}

// operands draws node indices for move m. ok is false when no suitable pair
// was found within maxDraws attempts.
func (r *run) operands(m slicing.Move) (x, y int, ok bool) {
	switch m {
	case slicing.MoveRecut:
		return r.internal(), slicing.None, true
	case slicing.MoveRotate:
		return r.leaf(), slicing.None, true
	case slicing.MoveSwapModules:
		for range maxDraws {
			if x, y = r.leaf(), r.leaf(); x != y {
				return x, y, true
			}
		}
	case slicing.MoveSwapTopology:
		for range maxDraws {
			x, y = r.node(), r.node()
			if !r.tree.InSubtree(x, y) && !r.tree.InSubtree(y, x) {
				return x, y, true
			}
		}
	}
	return slicing.None, slicing.None, false
}

func (r *run) leaf() int     { return r.leaves[r.rng.IntN(len(r.leaves))] }
func (r *run) internal() int { return r.internals[r.rng.IntN(len(r.internals))] }

// node picks a leaf or an internal node with equal probability, then a node
// uniformly within that set.
func (r *run) node() int {
	if r.rng.IntN(2) == 0 {
		return r.leaf()
	}
	return r.internal()
}
