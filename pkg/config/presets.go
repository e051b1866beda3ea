package config

import (
	"math"

	"github.com/matzehuels/heightwalk/pkg/pipeline"
	"github.com/matzehuels/heightwalk/pkg/walk"
)

// Built-in preset names.
const (
	PresetDefault = "default"
	PresetDense   = "dense"
	PresetSparse  = "sparse"
)

// Names lists the built-in presets.
func Names() []string {
	return []string{PresetDefault, PresetDense, PresetSparse}
}

// Default returns the default preset.
func Default() Preset {
	p, _ := Builtin(PresetDefault)
	return p
}

// Builtin returns the built-in preset called name.
func Builtin(name string) (Preset, bool) {
	switch name {
	case PresetDefault:
		return Preset{
			Name:        PresetDefault,
			Description: "balanced branching with a soft detail pass",
			Simulation: walk.Params{
				Size:                    pipeline.DefaultSize,
				MaxLongAge:              pipeline.DefaultMaxLongAge,
				MaxShortAge:             pipeline.DefaultMaxShortAge,
				MaxGenerations:          pipeline.DefaultMaxGenerations,
				Children:                pipeline.DefaultChildren,
				MaxLongAngleDivergence:  pipeline.DefaultMaxLongAngleDivergence,
				MaxShortAngleDivergence: pipeline.DefaultMaxShortAngleDivergence,
				ShortBranchFrequency:    pipeline.DefaultShortBranchFrequency,
				Paint:                   walk.PaintAge,
				InitialWalkers:          walk.CardinalsAndOrdinals,
			},
			Blur:   Blur{Radius: pipeline.DefaultRadius, DetailMax: intPtr(pipeline.DefaultDetailMax)},
			Output: Output{Formats: []string{pipeline.FormatPNG}, Scale: 1},
		}, true

	case PresetDense:
		return Preset{
			Name:        PresetDense,
			Description: "deep branching that fills most of the grid",
			Simulation: walk.Params{
				Size:                    pipeline.DefaultSize,
				MaxLongAge:              160,
				MaxShortAge:             16,
				MaxGenerations:          5,
				Children:                3,
				MaxLongAngleDivergence:  math.Pi / 4,
				MaxShortAngleDivergence: math.Pi / 2,
				ShortBranchFrequency:    10,
				Paint:                   walk.PaintAge,
				InitialWalkers:          walk.CardinalsAndOrdinals,
			},
			Blur:   Blur{Radius: 6, DetailMax: intPtr(96)},
			Output: Output{Formats: []string{pipeline.FormatPNG}, Scale: 1},
		}, true

	case PresetSparse:
		return Preset{
			Name:        PresetSparse,
			Description: "few long, nearly straight ridges",
			Simulation: walk.Params{
				Size:                    pipeline.DefaultSize,
				MaxLongAge:              200,
				MaxShortAge:             6,
				MaxGenerations:          2,
				Children:                2,
				MaxLongAngleDivergence:  math.Pi / 12,
				MaxShortAngleDivergence: math.Pi / 4,
				ShortBranchFrequency:    40,
				Paint:                   walk.PaintAge,
				InitialWalkers:          walk.Cardinals,
			},
			Blur:   Blur{Radius: 10, DetailMax: intPtr(32)},
			Output: Output{Formats: []string{pipeline.FormatPNG}, Scale: 1},
		}, true
	}
	return Preset{}, false
}

func intPtr(v int) *int { return &v }
