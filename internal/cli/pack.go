package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xianaiyang/vlsiFloorplan/pkg/floorplan/module"
	fpio "github.com/xianaiyang/vlsiFloorplan/pkg/io"
	"github.com/xianaiyang/vlsiFloorplan/pkg/pipeline"
)

// packCommand creates the pack command, which places modules according to a
// user-supplied polish expression without searching.
func (c *CLI) packCommand() *cobra.Command {
	var (
		flags renderFlags
		expr  string
	)

	cmd := &cobra.Command{
		Use:   "pack [modules.txt]",
		Short: "Place modules according to a polish expression",
		Long: `Pack the modules of a module list along a postorder polish expression.

Operands are module IDs. "V" places the right operand to the right of the
left one, "H" places it on top. Both are case-insensitive.`,
		Example: `  floorplan pack chip.txt --expr "2 1 V 0 V"
  floorplan pack chip.txt --expr "0 1 H 2 V" -f svg,json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.cfg.Options()
			flags.apply(cmd, &opts)
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}

			mods, err := fpio.ImportModules(args[0])
			if err != nil {
				return err
			}
			p, err := pipeline.Evaluate(mods, expr)
			if err != nil {
				return err
			}

			runner, err := c.newRunner(cmd.Context(), flags.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			artifacts, err := runner.Render(cmd.Context(), p, opts)
			if err != nil {
				return err
			}
			paths, err := writeArtifacts(basePath(flags.output, args[0]), "", artifacts, args[0])
			if err != nil {
				return err
			}

			w, h := module.BoundingBox(p.Modules)
			printSuccess("Area %s", StyleNumber.Render(fmt.Sprint(p.Area)))
			printKeyValue("Bounding box", fmt.Sprintf("%dx%d", w, h))
			printKeyValue("Expression", p.Expression)
			for _, path := range paths {
				printFile(path)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&expr, "expr", "e", "", "polish expression, e.g. \"2 1 V 0 V\"")
	_ = cmd.MarkFlagRequired("expr")
	return cmd
}
