package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	fperrors "github.com/xianaiyang/vlsiFloorplan/pkg/errors"
	"github.com/xianaiyang/vlsiFloorplan/pkg/floorplan/module"
	"github.com/xianaiyang/vlsiFloorplan/pkg/floorplan/slicing"
	fpio "github.com/xianaiyang/vlsiFloorplan/pkg/io"
)

// treeCommand creates the tree command, which draws a slicing tree with
// Graphviz.
func (c *CLI) treeCommand() *cobra.Command {
	var output, format, expr string

	cmd := &cobra.Command{
		Use:   "tree [modules.txt]",
		Short: "Draw the slicing tree as DOT or SVG",
		Long: `Draw the slicing tree of a module list. Without --expr the initial tree
is shown: a chain of vertical cuts with all modules side by side.`,
		Example: `  floorplan tree chip.txt
  floorplan tree chip.txt --expr "0 1 H 2 V" -f svg -o tree.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mods, err := fpio.ImportModules(args[0])
			if err != nil {
				return err
			}
			tree, err := loadTree(mods, expr)
			if err != nil {
				return err
			}

			var data []byte
			switch format {
			case "dot":
				data = []byte(tree.ToDOT())
			case "svg":
				if data, err = tree.RenderSVG(cmd.Context()); err != nil {
					return err
				}
			default:
				return fperrors.New(fperrors.ErrCodeInvalidFormat, "unsupported tree format %q (want dot or svg)", format)
			}

			if output == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			printSuccess("Wrote slicing tree (%d nodes)", tree.Len())
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "dot", "output format: dot, svg")
	cmd.Flags().StringVarP(&expr, "expr", "e", "", "polish expression to draw instead of the initial tree")
	return cmd
}

// loadTree packs mods along expr, or along the initial tree when expr is
// empty, and returns the tree.
func loadTree(mods []module.Module, expr string) (*slicing.Tree, error) {
	store, err := module.NewStore(mods)
	if err != nil {
		return nil, err
	}

	var tree *slicing.Tree
	if expr == "" {
		tree, err = slicing.Build(store)
	} else {
		var e slicing.Expression
		if e, err = slicing.ParseExpression(expr, store); err != nil {
			return nil, err
		}
		tree, err = slicing.Decode(store, e)
	}
	if err != nil {
		return nil, err
	}
	e, err := tree.Expression()
	if err != nil {
		return nil, err
	}
	if _, err := slicing.Pack(store, e); err != nil {
		return nil, err
	}
	return tree, nil
}
