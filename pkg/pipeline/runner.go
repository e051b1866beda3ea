package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/heightwalk/pkg/heightmap"
	"github.com/matzehuels/heightwalk/pkg/observability"
	"github.com/matzehuels/heightwalk/pkg/walk"
)

// Result holds the outputs of a pipeline run.
type Result struct {
	// ID identifies the run. The API returns it in the X-Run-ID header.
	ID string

	// Seed is the resolved 64-bit seed.
	Seed uint64

	// Params are the simulation parameters actually used.
	Params walk.Params

	// MaxAge is the scaling denominator derived from Params.
	MaxAge uint64

	// Heights is the scaled heightmap, Size*Size samples.
	Heights []byte

	// Blurred is the blurred heightmap, or nil when the blur stage was skipped.
	Blurred []byte

	// Artifacts maps each requested format to its encoded bytes.
	Artifacts map[string][]byte

	Stats Stats
}

// Stats reports per-stage counters and timings.
type Stats struct {
	Visited      int
	SimulateTime time.Duration
	BlurTime     time.Duration
	RenderTime   time.Duration
}

// Output returns the final heightmap: Blurred when present, else Heights.
func (r *Result) Output() []byte {
	if r.Blurred != nil {
		return r.Blurred
	}
	return r.Heights
}

// Size returns the grid side length.
func (r *Result) Size() int { return r.Params.Size }

// Runner executes the heightmap pipeline.
//
// The Runner is stateless apart from its simulator and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Simulator walk.Simulator
	Logger    *log.Logger
}

// NewRunner creates a runner.
// If sim is nil, the angled walker is used. If logger is nil, log.Default() is used.
func NewRunner(sim walk.Simulator, logger *log.Logger) *Runner {
	if sim == nil {
		sim = walk.AngledWalker{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Simulator: sim, Logger: logger}
}

// Execute runs the complete seed → simulate → blur → render pipeline.
// The context is checked between stages; a stage in progress runs to completion.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{ID: uuid.NewString()}
	logger := opts.Logger.With("run", result.ID)

	// Stage 1: Simulate
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := r.Simulate(ctx, opts, result); err != nil {
		return nil, fmt.Errorf("simulate: %w", err)
	}
	logger.Info("simulated walk",
		"size", opts.Size,
		"seed", fmt.Sprintf("%016x", result.Seed),
		"max_age", result.MaxAge,
		"visited", result.Stats.Visited,
		"duration", result.Stats.SimulateTime)

	// Stage 2: Blur
	if opts.Blurs() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r.Blur(ctx, opts, result)
		logger.Info("blurred heightmap",
			"radius", opts.Radius,
			"detail", opts.DetailMax != nil,
			"duration", result.Stats.BlurTime)
	}

	// Stage 3: Render
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	renderStart := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	artifacts, err := Render(result, opts)
	result.Stats.RenderTime = time.Since(renderStart)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, result.Stats.RenderTime, err)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts

	logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Simulate resolves the seed, runs the simulator and scales ages into
// result.Heights.
func (r *Runner) Simulate(ctx context.Context, opts Options, result *Result) error {
	if err := opts.ValidateForSimulate(); err != nil {
		return err
	}
	start := time.Now()
	observability.Pipeline().OnSimulateStart(ctx, opts.Size)

	result.Seed = opts.SeedSource().Seed()
	result.Params = opts.WalkParams(result.Seed)
	grid := heightmap.Invoke(r.Simulator, result.Params)
	result.MaxAge = grid.MaxAge
	result.Heights = heightmap.FromAges(grid.Ages, grid.MaxAge)
	result.Stats.Visited = countVisited(grid.Ages)
	result.Stats.SimulateTime = time.Since(start)

	opts.Logger.Debug("scaled ages", "cells", len(grid.Ages), "max_height", heightmap.MaxHeight)
	observability.Pipeline().OnSimulateComplete(ctx, opts.Size, result.Stats.Visited, result.Stats.SimulateTime, nil)
	return nil
}

// Blur applies the base pass, and the detail pass when DetailMax is set,
// to result.Heights and stores the composite in result.Blurred.
func (r *Runner) Blur(ctx context.Context, opts Options, result *Result) {
	start := time.Now()
	observability.Pipeline().OnBlurStart(ctx, opts.Radius, opts.DetailMax != nil)

	size := result.Size()
	result.Blurred = heightmap.Composite(result.Heights, size, size, opts.Radius, compositeOptions(opts)...)
	result.Stats.BlurTime = time.Since(start)

	observability.Pipeline().OnBlurComplete(ctx, opts.Radius, result.Stats.BlurTime)
}

func compositeOptions(opts Options) []heightmap.Option {
	var out []heightmap.Option
	if opts.DetailMax != nil {
		out = append(out, heightmap.WithDetail(*opts.DetailMax))
	}
	if opts.Saturate {
		out = append(out, heightmap.WithSaturation())
	}
	return out
}

func countVisited(ages []uint32) int {
	n := 0
	for _, v := range ages {
		if v != 0 {
			n++
		}
	}
	return n
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
