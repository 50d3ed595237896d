package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	fperrors "github.com/xianaiyang/vlsiFloorplan/pkg/errors"
	fpio "github.com/xianaiyang/vlsiFloorplan/pkg/io"
	"github.com/xianaiyang/vlsiFloorplan/pkg/pipeline"
	"github.com/xianaiyang/vlsiFloorplan/pkg/render"
)

// renderFlags are the output flags shared by optimize, pack and render.
type renderFlags struct {
	output  string
	formats string
	scale   float64
	stroke  float64
	labels  bool
	noCache bool
}

func (f *renderFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output base path (default: input path without extension)")
	cmd.Flags().StringVarP(&f.formats, "format", "f", "", "output format(s): svg, png, pdf, json (comma-separated)")
	cmd.Flags().Float64Var(&f.scale, "scale", 0, "pixels per unit (0 fits the drawing to 800px)")
	cmd.Flags().Float64Var(&f.stroke, "stroke", pipeline.DefaultStroke, "outline width in pixels")
	cmd.Flags().BoolVar(&f.labels, "labels", false, "draw module IDs")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
}

// apply overrides opts with the flags the user actually set.
func (f *renderFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	if cmd.Flags().Changed("format") {
		opts.Formats = parseFormats(f.formats)
	}
	if cmd.Flags().Changed("scale") {
		opts.Scale = f.scale
	}
	if cmd.Flags().Changed("stroke") {
		opts.Stroke = f.stroke
	}
	if cmd.Flags().Changed("labels") {
		opts.Labels = f.labels
	}
}

// renderCommand creates the render command for drawing an existing placement.
func (c *CLI) renderCommand() *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "render [placement.json]",
		Short: "Render a placement JSON file to SVG, PNG or PDF",
		Long: `Render a placement produced by "floorplan optimize -f json" or
"floorplan pack -f json". The placement is validated before drawing: module
dimensions must be positive, IDs unique and rectangles must not overlap.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.cfg.Options()
			flags.apply(cmd, &opts)
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}

			p, err := fpio.ImportJSON(args[0])
			if err != nil {
				return err
			}

			runner, err := c.newRunner(cmd.Context(), flags.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			prog := newProgress(c.Logger)
			artifacts, hit, err := runner.RenderWithCacheInfo(cmd.Context(), p, opts)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Rendered %d modules", len(p.Modules)))

			paths, err := writeArtifacts(basePath(flags.output, args[0]), "", artifacts, args[0])
			if err != nil {
				return err
			}
			printSuccess("Rendered placement (area %s)", StyleNumber.Render(fmt.Sprint(p.Area)))
			printStats(len(p.Modules), 0, 0, hit)
			for _, path := range paths {
				printFile(path)
			}
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

// =============================================================================
// Output Files
// =============================================================================

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .pdf, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if render.IsFormat(strings.TrimPrefix(ext, ".")) {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// artifactPath builds "base[.suffix].format".
func artifactPath(base, suffix, format string) string {
	if suffix != "" {
		return base + "." + suffix + "." + format
	}
	return base + "." + format
}

// writeArtifacts writes each artifact next to base, in format order, and
// returns the written paths. It refuses to overwrite input.
func writeArtifacts(base, suffix string, artifacts map[string][]byte, input string) ([]string, error) {
	formats := make([]string, 0, len(artifacts))
	for f := range artifacts {
		formats = append(formats, f)
	}
	slices.SortFunc(formats, func(a, b string) int {
		return slices.Index(render.Formats, a) - slices.Index(render.Formats, b)
	})

	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		path := artifactPath(base, suffix, f)
		if input != "" && sameFile(path, input) {
			return paths, fperrors.New(fperrors.ErrCodeInvalidInput,
				"output %s would overwrite the input file; use -o", path)
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return paths, fmt.Errorf("create %s: %w", dir, err)
			}
		}
		if err := os.WriteFile(path, artifacts[f], 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
