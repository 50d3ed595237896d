package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	fpio "github.com/xianaiyang/vlsiFloorplan/pkg/io"
	"github.com/xianaiyang/vlsiFloorplan/pkg/pipeline"
)

// inspectCommand creates the inspect command, an interactive placement browser.
func (c *CLI) inspectCommand() *cobra.Command {
	var expr string

	cmd := &cobra.Command{
		Use:   "inspect [placement.json | modules.txt --expr EXPR]",
		Short: "Browse a placement in the terminal",
		Long: `Show a placement as a module table next to a character map of the
floorplan. The input is a placement JSON file, or a module list together with
--expr to pack it first. When stdout is not a terminal the table is printed
once instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadPlacement(args[0], expr)
			if err != nil {
				return err
			}

			model := NewPlacementModel(p)
			if !isTerminal(os.Stdout) || !isTerminal(os.Stdin) {
				_, err := fmt.Fprint(cmd.OutOrStdout(), model.Static())
				return err
			}
			_, err = tea.NewProgram(model, tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	cmd.Flags().StringVarP(&expr, "expr", "e", "", "treat the input as a module list and pack this polish expression")
	return cmd
}

// loadPlacement reads a placement JSON file, or packs a module list along
// expr when expr is set.
func loadPlacement(path, expr string) (*fpio.Placement, error) {
	if expr == "" {
		return fpio.ImportJSON(path)
	}
	mods, err := fpio.ImportModules(path)
	if err != nil {
		return nil, err
	}
	return pipeline.Evaluate(mods, expr)
}
