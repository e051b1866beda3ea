// Package config loads heightwalk presets from TOML.
//
// A preset bundles simulation parameters, blur settings and output options
// under a name. Three presets are built in (default, dense, sparse); any
// other name is treated as a path to a TOML file:
//
//	name = "ridges"
//	description = "long straight ridges"
//
//	[simulation]
//	size = 512
//	max_long_age = 200
//	max_short_age = 8
//	max_generations = 3
//	children = 2
//	max_long_angle_divergence = 0.2
//	max_short_angle_divergence = 1.0
//	short_branch_frequency = 20
//	paint = "age"
//	initial_walkers = "cardinals-and-ordinals"
//
//	[blur]
//	radius = 8
//	detail_max = 64
//	saturate = false
//
//	[output]
//	formats = ["png"]
//	scale = 1
//
// Keys missing from a file keep the values of the default preset. Unknown
// keys are rejected.
package config

import (
	"bytes"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/heightwalk/pkg/errors"
	"github.com/matzehuels/heightwalk/pkg/pipeline"
	"github.com/matzehuels/heightwalk/pkg/walk"
)

// Preset is a named pipeline configuration.
type Preset struct {
	Name        string      `toml:"name"`
	Description string      `toml:"description,omitempty"`
	Simulation  walk.Params `toml:"simulation"`
	Blur        Blur        `toml:"blur"`
	Output      Output      `toml:"output"`
}

// Blur holds the blur stage settings.
type Blur struct {
	Radius    int  `toml:"radius"`
	DetailMax *int `toml:"detail_max,omitempty"`
	Saturate  bool `toml:"saturate"`
}

// Output holds the render stage settings.
type Output struct {
	Formats []string `toml:"formats"`
	Scale   int      `toml:"scale"`
}

// Options converts the preset into pipeline options.
// The seed is left unset so each run draws fresh entropy.
func (p Preset) Options() pipeline.Options {
	s := p.Simulation
	return pipeline.Options{
		Size:                    s.Size,
		MaxLongAge:              s.MaxLongAge,
		MaxShortAge:             s.MaxShortAge,
		MaxGenerations:          s.MaxGenerations,
		Children:                s.Children,
		MaxLongAngleDivergence:  s.MaxLongAngleDivergence,
		MaxShortAngleDivergence: s.MaxShortAngleDivergence,
		ShortBranchFrequency:    s.ShortBranchFrequency,
		Paint:                   s.Paint,
		InitialWalkers:          s.InitialWalkers,
		Radius:                  p.Blur.Radius,
		DetailMax:               cloneInt(p.Blur.DetailMax),
		Saturate:                p.Blur.Saturate,
		Formats:                 slices.Clone(p.Output.Formats),
		Scale:                   p.Output.Scale,
	}
}

// Validate checks the preset by validating the options it produces.
func (p Preset) Validate() error {
	opts := p.Options()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "preset %q", p.Name)
	}
	return nil
}

// Encode writes the preset as TOML.
func (p Preset) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(p)
}

// =============================================================================
// Loading
// =============================================================================

// Resolve returns the built-in preset called nameOrPath, or loads it from a
// file when no built-in matches.
func Resolve(nameOrPath string) (Preset, error) {
	if p, ok := Builtin(nameOrPath); ok {
		return p, nil
	}
	if !strings.ContainsAny(nameOrPath, `/\.`) {
		return Preset{}, errors.New(errors.ErrCodeNotFound,
			"unknown preset %q (built-ins: %s)", nameOrPath, strings.Join(Names(), ", "))
	}
	return Load(nameOrPath)
}

// Load reads a preset from a TOML file.
func Load(path string) (Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Preset{}, errors.New(errors.ErrCodeFileNotFound, "preset file not found: %s", path)
		}
		return Preset{}, errors.Wrap(errors.ErrCodeInvalidPath, err, "read preset %s", path)
	}
	return Decode(data)
}

// Decode parses TOML on top of the default preset and validates the result.
func Decode(data []byte) (Preset, error) {
	p := Default()
	p.Name = ""
	p.Description = ""

	md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&p)
	if err != nil {
		return Preset{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse preset")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Preset{}, errors.New(errors.ErrCodeInvalidConfig, "unknown preset keys: %s", strings.Join(keys, ", "))
	}
	if p.Name == "" {
		p.Name = "custom"
	}
	if err := p.Validate(); err != nil {
		return Preset{}, err
	}
	return p, nil
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
