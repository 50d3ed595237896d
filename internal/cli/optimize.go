package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	fperrors "github.com/xianaiyang/vlsiFloorplan/pkg/errors"
	"github.com/xianaiyang/vlsiFloorplan/pkg/floorplan/anneal"
	fpio "github.com/xianaiyang/vlsiFloorplan/pkg/io"
	"github.com/xianaiyang/vlsiFloorplan/pkg/pipeline"
)

// optimizeFlags holds the search flags of the optimize command. Render
// flags live in renderFlags.
type optimizeFlags struct {
	renderFlags

	seed        uint64
	temperature float64
	decay       float64
	frozen      float64
	trials      int
	weights     []float64
	metropolis  bool
	initial     bool
	refresh     bool
	text        string
}

// apply overrides opts with the flags the user actually set.
func (f *optimizeFlags) apply(cmd *cobra.Command, opts *pipeline.Options) error {
	f.renderFlags.apply(cmd, opts)

	changed := cmd.Flags().Changed
	if changed("seed") {
		opts.Seed = pipeline.Seed(f.seed)
	}
	if changed("temperature") {
		opts.Schedule.InitialTemperature = f.temperature
	}
	if changed("decay") {
		opts.Schedule.Decay = f.decay
	}
	if changed("frozen") {
		opts.Schedule.Frozen = f.frozen
	}
	if changed("trials") {
		opts.Schedule.Trials = f.trials
	}
	if changed("weights") {
		w, err := parseWeights(f.weights)
		if err != nil {
			return err
		}
		opts.Schedule.Weights = w
	}
	if changed("metropolis") {
		opts.Metropolis = f.metropolis
	}
	if changed("initial") {
		opts.Initial = f.initial
	}
	opts.Refresh = f.refresh
	return nil
}

// parseWeights maps --weights recut,rotate,swap-modules,swap-topology.
func parseWeights(v []float64) (anneal.Weights, error) {
	if len(v) != 4 {
		return anneal.Weights{}, fperrors.New(fperrors.ErrCodeInvalidConfig,
			"--weights needs 4 values (recut,rotate,swap-modules,swap-topology), got %d", len(v))
	}
	return anneal.Weights{Recut: v[0], Rotate: v[1], SwapModules: v[2], SwapTopology: v[3]}, nil
}

// optimizeCommand creates the optimize command: read a module list, anneal
// the slicing tree and write the best placement.
func (c *CLI) optimizeCommand() *cobra.Command {
	var flags optimizeFlags

	cmd := &cobra.Command{
		Use:   "optimize [modules.txt]",
		Short: "Find a small-area floorplan by simulated annealing",
		Long: `Read a module list and search for a slicing floorplan with a small
bounding-box area.

The input is whitespace-separated integers: the module count, then one
"id width height" triple per module.

The search starts from a left-leaning chain of vertical cuts and anneals the
slicing tree with four moves: flip a cutline, rotate a module, swap two
modules and swap two disjoint subtrees. Runs are deterministic for a given
seed and cached by their inputs.`,
		Example: `  floorplan optimize chip.txt
  floorplan optimize chip.txt -f svg,json --labels
  floorplan optimize chip.txt --trials 5000 --decay 0.98 --seed 7
  floorplan optimize chip.txt --text chip.out`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.cfg.Options()
			if err := flags.apply(cmd, &opts); err != nil {
				return err
			}
			return c.runOptimize(cmd, args[0], &flags, opts)
		},
	}

	flags.register(cmd)
	cmd.Flags().Uint64Var(&flags.seed, "seed", pipeline.DefaultSeed, "random seed")
	cmd.Flags().Float64Var(&flags.temperature, "temperature", anneal.DefaultInitialTemperature, "initial temperature")
	cmd.Flags().Float64Var(&flags.decay, "decay", anneal.DefaultDecay, "temperature multiplier per stage (0 < decay < 1)")
	cmd.Flags().Float64Var(&flags.frozen, "frozen", anneal.DefaultFrozen, "stop once the temperature falls to this value")
	cmd.Flags().IntVar(&flags.trials, "trials", anneal.DefaultTrials, "moves per temperature stage")
	cmd.Flags().Float64SliceVar(&flags.weights, "weights", nil, "move weights: recut,rotate,swap-modules,swap-topology")
	cmd.Flags().BoolVar(&flags.metropolis, "metropolis", false, "undo worsening moves with probability 1-exp(-Δ/T)")
	cmd.Flags().BoolVar(&flags.initial, "initial", false, "also write the initial placement")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "ignore cached runs")
	cmd.Flags().StringVar(&flags.text, "text", "", "also write the placement as text lines \"id x y h w\" to this file")

	return cmd
}

func (c *CLI) runOptimize(cmd *cobra.Command, input string, flags *optimizeFlags, opts pipeline.Options) error {
	ctx := cmd.Context()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	mods, err := fpio.ImportModules(input)
	if err != nil {
		return err
	}
	c.Logger.Infof("Loaded %d modules from %s", len(mods), input)

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	stages := opts.Schedule.Stages()
	spinner := newSpinner(ctx, "Annealing...")
	opts.Progress = func(st anneal.Stage) {
		spinner.SetMessage("Annealing: stage %d/%d, T=%.2f, best area %d", st.Index, stages, st.Temperature, st.BestArea)
	}
	spinner.Start()

	result, err := runner.Execute(ctx, mods, opts)
	if err != nil {
		spinner.StopWithError("Optimization failed")
		return err
	}
	spinner.Stop()

	run := result.Run
	base := basePath(flags.output, input)
	paths, err := writeArtifacts(base, "", result.Artifacts, input)
	if err != nil {
		return err
	}
	initialPaths, err := writeArtifacts(base, "initial", result.InitialArtifacts, input)
	if err != nil {
		return err
	}
	if flags.text != "" {
		if err := fpio.ExportModules(flags.text, run.Modules); err != nil {
			return err
		}
		paths = append(paths, flags.text)
	}

	printSuccess("Area %s (initial %s)",
		StyleNumber.Render(fmt.Sprint(run.Area)),
		StyleValue.Render(fmt.Sprint(run.InitialArea)))
	printStats(result.Stats.ModuleCount, run.Stages, run.Trials, result.CacheInfo.OptimizeHit)
	printDetail("utilization %.1f%%, %d accepted, %d improvements",
		100*result.Utilization(), run.Accepted, run.Improvements)
	printDetail("%s", run.Expression)
	for _, p := range append(paths, initialPaths...) {
		printFile(p)
	}

	printNewline()
	printNextStep("Browse the result", fmt.Sprintf("floorplan inspect %s --expr %q", input, run.Expression))
	return nil
}
