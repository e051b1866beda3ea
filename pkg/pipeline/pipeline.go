// Package pipeline provides the heightmap pipeline for heightwalk.
//
// This package implements the complete seed → simulate → scale → blur →
// render pipeline used by the CLI, the HTTP API and the preview TUI. By
// centralising this logic, every entry point applies the same defaults and
// validation.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Seed: resolve a fixed seed, caller bytes, or fresh entropy
//  2. Simulate: run the branching walk and scale ages to heights
//  3. Blur: optionally apply the base and detail passes
//  4. Render: encode outputs (raw, rgba, png, mask, tiff, json)
//
// # Usage
//
// One-shot operations (no logging, no options):
//
//	heights := pipeline.Generate(params, seed.Fixed(1))
//	rgba := pipeline.ToImage(heights)
//	shaded := pipeline.HeightmapBlurDetail(heights, 8, 64)
//
// The full pipeline with logging and encoded artifacts:
//
//	runner := pipeline.NewRunner(nil, logger)
//	opts := pipeline.DefaultOptions()
//	opts.Formats = []string{pipeline.FormatPNG, pipeline.FormatJSON}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	png := result.Artifacts["png"]
package pipeline

import (
	"encoding/hex"
	"io"
	"math"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/heightwalk/pkg/errors"
	"github.com/matzehuels/heightwalk/pkg/seed"
	"github.com/matzehuels/heightwalk/pkg/walk"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and TUI
// =============================================================================

const (
	// DefaultSize is the grid side length.
	DefaultSize = 512

	// MaxSize bounds the grid side to keep buffers in memory.
	MaxSize = 4096

	// DefaultMaxLongAge is the number of steps a long walker takes.
	DefaultMaxLongAge = 120

	// DefaultMaxShortAge is the number of steps a short branch takes.
	DefaultMaxShortAge = 12

	// DefaultMaxGenerations is the branching depth of long walkers.
	DefaultMaxGenerations = 4

	// DefaultChildren is the number of long walkers spawned per death.
	DefaultChildren = 2

	// DefaultMaxLongAngleDivergence is the heading spread of children (radians).
	DefaultMaxLongAngleDivergence = math.Pi / 6

	// DefaultMaxShortAngleDivergence is the heading spread of short branches (radians).
	DefaultMaxShortAngleDivergence = math.Pi / 3

	// DefaultShortBranchFrequency sprouts a short branch every 20 steps.
	DefaultShortBranchFrequency = 20

	// DefaultRadius is the base blur radius.
	DefaultRadius = 8

	// DefaultDetailMax is the detail pass ceiling used by presets.
	DefaultDetailMax = 64

	// MaxScale bounds the PNG/TIFF upscale factor.
	MaxScale = 16

	// MaxRadius bounds the base blur radius. Blur cost grows with the
	// radius, not only with the image.
	MaxRadius = 256

	// MaxWalkers bounds walk.Params.Walkers, the walkers one run may queue.
	MaxWalkers = 1 << 18

	// MaxSteps bounds walk.Params.Steps, the paint operations of one run.
	MaxSteps = 1 << 28
)

// Format constants for output formats.
const (
	FormatRaw  = "raw"  // 8-bit heights, row-major
	FormatRGBA = "rgba" // binary RGBA mask bytes
	FormatPNG  = "png"  // grayscale heightmap
	FormatMask = "mask" // binary mask as PNG
	FormatTIFF = "tiff" // grayscale heightmap
	FormatJSON = "json" // run metadata
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatRaw:  true,
	FormatRGBA: true,
	FormatPNG:  true,
	FormatMask: true,
	FormatTIFF: true,
	FormatJSON: true,
}

// FormatNames lists the supported formats in display order.
var FormatNames = []string{FormatPNG, FormatMask, FormatTIFF, FormatRaw, FormatRGBA, FormatJSON}

// Extension returns the file extension for a format.
func Extension(format string) string {
	switch format {
	case FormatMask:
		return "mask.png"
	case FormatRGBA:
		return "rgba"
	default:
		return format
	}
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the heightmap pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Simulation options
	Size                    int                 `json:"size"`
	MaxLongAge              int                 `json:"max_long_age"`
	MaxShortAge             int                 `json:"max_short_age"`
	MaxGenerations          int                 `json:"max_generations"`
	Children                int                 `json:"children"`
	MaxLongAngleDivergence  float64             `json:"max_long_angle_divergence"`
	MaxShortAngleDivergence float64             `json:"max_short_angle_divergence"`
	ShortBranchFrequency    int                 `json:"short_branch_frequency"`
	Paint                   walk.Paint          `json:"paint"`
	InitialWalkers          walk.InitialWalkers `json:"initial_walkers"`

	// Seed options. Seed wins over SeedHex; with neither, entropy is used.
	Seed    *uint64 `json:"seed,omitempty"`
	SeedHex string  `json:"seed_hex,omitempty"` // 8 bytes as 16 hex chars

	// Blur options. The blur stage runs when Radius > 0 or DetailMax is set.
	Radius    int  `json:"radius,omitempty"`
	DetailMax *int `json:"detail_max,omitempty"`
	Saturate  bool `json:"saturate,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Scale   int      `json:"scale,omitempty"` // integer upscale for png/mask/tiff

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// DefaultOptions returns options populated with the default simulation
// parameters and no blur.
func DefaultOptions() Options {
	return Options{
		Size:                    DefaultSize,
		MaxLongAge:              DefaultMaxLongAge,
		MaxShortAge:             DefaultMaxShortAge,
		MaxGenerations:          DefaultMaxGenerations,
		Children:                DefaultChildren,
		MaxLongAngleDivergence:  DefaultMaxLongAngleDivergence,
		MaxShortAngleDivergence: DefaultMaxShortAngleDivergence,
		ShortBranchFrequency:    DefaultShortBranchFrequency,
		Paint:                   walk.PaintAge,
		InitialWalkers:          walk.CardinalsAndOrdinals,
		Formats:                 []string{FormatPNG},
		Scale:                   1,
	}
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: %s)", format, strings.Join(FormatNames, ", "))
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

// ParseFormats parses a comma-separated format string into a slice.
// Empty input yields the default ["png"].
func ParseFormats(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{FormatPNG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(strings.ToLower(f)); f != "" && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateRadius checks a base blur radius.
func ValidateRadius(r int) error {
	if r < 0 || r > MaxRadius {
		return errors.New(errors.ErrCodeInvalidRadius, "radius must be between 0 and %d, got %d", MaxRadius, r)
	}
	return nil
}

// ValidateDetailMax checks a detail pass ceiling.
func ValidateDetailMax(d int) error {
	if d < 0 || d > 255 {
		return errors.New(errors.ErrCodeInvalidParams, "detail_max must be between 0 and 255, got %d", d)
	}
	return nil
}

// ValidateBudget rejects simulations whose walker count or paint work
// exceeds MaxWalkers or MaxSteps.
func ValidateBudget(p walk.Params) error {
	if n := p.Walkers(); n > MaxWalkers {
		return errors.New(errors.ErrCodeInvalidParams,
			"children=%d max_generations=%d start up to %d walkers (limit %d)", p.Children, p.MaxGenerations, n, MaxWalkers)
	}
	if n := p.Steps(); n > MaxSteps {
		return errors.New(errors.ErrCodeInvalidParams,
			"simulation would paint up to %d cells (limit %d)", n, MaxSteps)
	}
	return nil
}

// ValidateAndSetDefaults checks all fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetDefaults()
	if err := o.ValidateForSimulate(); err != nil {
		return err
	}
	if err := o.ValidateForBlur(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetDefaults fills zero-valued fields that have no meaningful zero.
func (o *Options) SetDefaults() {
	if o.Size == 0 {
		o.Size = DefaultSize
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatPNG}
	}
	if o.Scale == 0 {
		o.Scale = 1
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForSimulate checks the simulation and seed fields.
func (o *Options) ValidateForSimulate() error {
	if o.Size < 1 || o.Size > MaxSize {
		return errors.New(errors.ErrCodeInvalidParams, "size must be between 1 and %d, got %d", MaxSize, o.Size)
	}
	p := o.WalkParams(0)
	if err := p.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidParams, err, "invalid simulation parameters")
	}
	if err := ValidateBudget(p); err != nil {
		return err
	}
	if o.SeedHex != "" {
		if _, err := hex.DecodeString(o.SeedHex); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "seed_hex is not hexadecimal")
		}
	}
	return nil
}

// ValidateForBlur checks the blur fields.
func (o *Options) ValidateForBlur() error {
	if err := ValidateRadius(o.Radius); err != nil {
		return err
	}
	if o.DetailMax != nil {
		return ValidateDetailMax(*o.DetailMax)
	}
	return nil
}

// ValidateForRender checks the render fields.
func (o *Options) ValidateForRender() error {
	if o.Scale < 1 || o.Scale > MaxScale {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be between 1 and %d, got %d", MaxScale, o.Scale)
	}
	return ValidateFormats(o.Formats)
}

// Blurs reports whether the blur stage runs.
func (o *Options) Blurs() bool {
	return o.Radius > 0 || o.DetailMax != nil
}

// SeedSource returns where the run's seed comes from.
func (o *Options) SeedSource() seed.Source {
	switch {
	case o.Seed != nil:
		return seed.Fixed(*o.Seed)
	case o.SeedHex != "":
		b, err := hex.DecodeString(o.SeedHex)
		if err != nil {
			return seed.Bytes(nil)
		}
		return seed.Bytes(b)
	default:
		return seed.Entropy{}
	}
}

// WalkParams returns the simulation parameters for the given seed.
func (o *Options) WalkParams(s uint64) walk.Params {
	return walk.Params{
		Size:                    o.Size,
		MaxLongAge:              o.MaxLongAge,
		MaxShortAge:             o.MaxShortAge,
		MaxGenerations:          o.MaxGenerations,
		Children:                o.Children,
		MaxLongAngleDivergence:  o.MaxLongAngleDivergence,
		MaxShortAngleDivergence: o.MaxShortAngleDivergence,
		ShortBranchFrequency:    o.ShortBranchFrequency,
		Paint:                   o.Paint,
		InitialWalkers:          o.InitialWalkers,
		Seed:                    s,
	}
}

// Wants reports whether format was requested.
func (o *Options) Wants(format string) bool {
	return slices.Contains(o.Formats, format)
}
