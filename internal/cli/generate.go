package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/heightwalk/pkg/config"
	"github.com/matzehuels/heightwalk/pkg/errors"
	"github.com/matzehuels/heightwalk/pkg/pipeline"
	"github.com/matzehuels/heightwalk/pkg/walk"
)

const defaultOutput = "heightmap"

// simFlags holds the simulation, seed and blur flags shared by generate
// and preview.
type simFlags struct {
	preset         string
	size           int
	maxLongAge     int
	maxShortAge    int
	maxGenerations int
	children       int
	longDiv        float64
	shortDiv       float64
	branchFreq     int
	paint          string
	initial        string
	seed           uint64
	seedHex        string
	radius         int
	detailMax      int
	saturate       bool
}

// register adds the shared flags to cmd. Defaults mirror the default preset;
// only flags the user sets override the chosen preset.
func (f *simFlags) register(cmd *cobra.Command) {
	def := config.Default()
	fs := cmd.Flags()
	fs.StringVarP(&f.preset, "preset", "p", config.PresetDefault, "preset name or TOML file")
	fs.IntVar(&f.size, "size", def.Simulation.Size, "grid side length")
	fs.IntVar(&f.maxLongAge, "max-long-age", def.Simulation.MaxLongAge, "steps taken by long walkers")
	fs.IntVar(&f.maxShortAge, "max-short-age", def.Simulation.MaxShortAge, "steps taken by short branches")
	fs.IntVar(&f.maxGenerations, "max-generations", def.Simulation.MaxGenerations, "branching depth")
	fs.IntVar(&f.children, "children", def.Simulation.Children, "long walkers spawned per death")
	fs.Float64Var(&f.longDiv, "long-divergence", def.Simulation.MaxLongAngleDivergence, "heading spread of children (radians)")
	fs.Float64Var(&f.shortDiv, "short-divergence", def.Simulation.MaxShortAngleDivergence, "heading spread of short branches (radians)")
	fs.IntVar(&f.branchFreq, "branch-frequency", def.Simulation.ShortBranchFrequency, "steps between short branches (0 disables)")
	fs.StringVar(&f.paint, "paint", def.Simulation.Paint.String(), "paint mode: age, cumulative-age, generation, constant")
	fs.StringVar(&f.initial, "initial", def.Simulation.InitialWalkers.String(), "initial walkers: cardinals-and-ordinals, cardinals, ordinals")
	fs.Uint64Var(&f.seed, "seed", 0, "fixed 64-bit seed (default: fresh entropy)")
	fs.StringVar(&f.seedHex, "seed-hex", "", "8 seed bytes as hex, decoded little-endian")
	fs.IntVar(&f.radius, "radius", def.Blur.Radius, "base blur radius (0 disables)")
	fs.IntVar(&f.detailMax, "detail-max", -1, "detail pass ceiling 0-255 (-1 disables)")
	fs.BoolVar(&f.saturate, "saturate", false, "clamp base+detail at 255 instead of wrapping")

	_ = cmd.RegisterFlagCompletionFunc("preset", completePresets)
	_ = cmd.RegisterFlagCompletionFunc("paint", fixedCompletions("age", "cumulative-age", "generation", "constant"))
	_ = cmd.RegisterFlagCompletionFunc("initial", fixedCompletions("cardinals-and-ordinals", "cardinals", "ordinals"))
}

// options builds pipeline options from the preset plus explicitly set flags.
func (f *simFlags) options(cmd *cobra.Command) (pipeline.Options, error) {
	p, err := resolvePreset(f.preset)
	if err != nil {
		return pipeline.Options{}, err
	}
	opts := p.Options()

	changed := cmd.Flags().Changed
	if changed("size") {
		opts.Size = f.size
	}
	if changed("max-long-age") {
		opts.MaxLongAge = f.maxLongAge
	}
	if changed("max-short-age") {
		opts.MaxShortAge = f.maxShortAge
	}
	if changed("max-generations") {
		opts.MaxGenerations = f.maxGenerations
	}
	if changed("children") {
		opts.Children = f.children
	}
	if changed("long-divergence") {
		opts.MaxLongAngleDivergence = f.longDiv
	}
	if changed("short-divergence") {
		opts.MaxShortAngleDivergence = f.shortDiv
	}
	if changed("branch-frequency") {
		opts.ShortBranchFrequency = f.branchFreq
	}
	if changed("paint") {
		if opts.Paint, err = walk.ParsePaint(f.paint); err != nil {
			return pipeline.Options{}, err
		}
	}
	if changed("initial") {
		if opts.InitialWalkers, err = walk.ParseInitialWalkers(f.initial); err != nil {
			return pipeline.Options{}, err
		}
	}
	if changed("seed") {
		s := f.seed
		opts.Seed = &s
	}
	if changed("seed-hex") {
		opts.SeedHex = f.seedHex
	}
	if changed("radius") {
		opts.Radius = f.radius
	}
	if changed("detail-max") {
		if f.detailMax < 0 {
			opts.DetailMax = nil
		} else {
			d := f.detailMax
			opts.DetailMax = &d
		}
	}
	if changed("saturate") {
		opts.Saturate = f.saturate
	}
	return opts, nil
}

// generateOpts holds the command-line flags for the generate command.
type generateOpts struct {
	sim     simFlags
	output  string // output base path, "-" for stdout
	formats string // comma-separated formats
	scale   int    // upscale factor for image formats
}

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	var opts generateOpts

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Simulate a heightmap and write it to disk",
		Long: `Simulate branching walkers, scale their ages into heights and write the
result in every requested format. Settings come from a preset; individual
flags override it.

Examples:
  heightwalk generate -o island --seed 7
  heightwalk generate --preset dense -f png,json --scale 2
  heightwalk generate -f raw -o - > heights.raw`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			popts, err := opts.sim.options(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("format") {
				popts.Formats = pipeline.ParseFormats(opts.formats)
			}
			if cmd.Flags().Changed("scale") {
				popts.Scale = opts.scale
			}
			return c.runGenerate(cmd.Context(), popts, opts.output, cmd.OutOrStdout())
		},
	}

	opts.sim.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", defaultOutput, "output base path (- writes the single format to stdout)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", pipeline.FormatPNG, "output format(s): "+strings.Join(pipeline.FormatNames, ", "))
	cmd.Flags().IntVar(&opts.scale, "scale", 1, "integer upscale for png, mask and tiff")
	_ = cmd.RegisterFlagCompletionFunc("format", fixedCompletions(pipeline.FormatNames...))

	return cmd
}

// runGenerate executes the pipeline and writes one file per format.
func (c *CLI) runGenerate(ctx context.Context, opts pipeline.Options, output string, stdout io.Writer) error {
	logger := loggerFromContext(ctx)
	opts.Logger = logger
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if output == "-" && len(opts.Formats) != 1 {
		return fmt.Errorf("stdout output requires exactly one format, got %d", len(opts.Formats))
	}
	if output != "-" {
		if err := errors.ValidateOutputPath(output); err != nil {
			return err
		}
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Growing %d×%d heightmap...", opts.Size, opts.Size))
	if logger.GetLevel() > LogDebug {
		spinner.Start()
	}
	result, err := c.newRunner().Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Generation failed")
		return err
	}
	spinner.Stop()

	if output == "-" {
		_, err := stdout.Write(result.Artifacts[opts.Formats[0]])
		return err
	}

	base := basePath(output)
	for _, format := range opts.Formats {
		path := base + "." + pipeline.Extension(format)
		if err := writeFile(path, result.Artifacts[format]); err != nil {
			return err
		}
		printFile(path)
	}
	printStats(result)
	printNextStep("Explore it interactively", fmt.Sprintf("%s preview --size %d --seed %d", appName, opts.Size, result.Seed))
	return nil
}

// basePath strips a known format extension from output so that
// "island.png" and "island" both yield "island".
func basePath(output string) string {
	if strings.HasSuffix(output, ".mask.png") {
		return strings.TrimSuffix(output, ".mask.png")
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// writeFile writes data to path, creating parent directories.
func writeFile(path string, data []byte) error {
	if err := errors.ValidateOutputPath(path); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

func fixedCompletions(values ...string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}
