// Package pkg provides the core libraries for Heightwalk heightmap generation.
//
// # Overview
//
// Heightwalk grows a branching random walk on a square grid, turns the age
// each cell was painted at into an 8-bit height, and post-processes the
// result into masks, blurred maps and image files.
//
// The typical data flow:
//
//	seed source (entropy, bytes, fixed)
//	         ↓
//	    [walk] simulation (per-cell ages)
//	         ↓
//	    [heightmap] scaling (ages → heights)
//	         ↓
//	    [blur] + [heightmap] compositing (optional)
//	         ↓
//	    raw/RGBA/PNG/TIFF/JSON output
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/heightwalk/pkg/pipeline"
//	    "github.com/matzehuels/heightwalk/pkg/seed"
//	)
//
//	heights := pipeline.Generate(pipeline.GenerateParams{
//	    Size: 256, MaxLongAge: 120, MaxShortAge: 12,
//	    MaxGenerations: 4, Children: 2,
//	    MaxLongAngleDivergence: 0.3, MaxShortAngleDivergence: 0.6,
//	}, seed.Fixed(42))
//	rgba := pipeline.ToImage(heights)
//	soft := pipeline.HeightmapBlur(heights, 8)
//
// # Main Packages
//
// [seed] - Seed sources. Eight bytes of entropy are read little-endian;
// a failed read falls back to a fixed constant.
//
// [walk] - Simulation parameters and the angled random walk simulator.
//
// [heightmap] - Age scaling, the binary alpha mask and the base/detail
// composite with wrap or saturate overflow.
//
// [blur] - Separable stack blur over 8-bit single-channel buffers.
//
// [pipeline] - Options, validation, the staged [pipeline.Runner] and the
// render sinks. Used by the CLI, the HTTP API and the WebAssembly build so
// that all entry points behave the same.
//
// [config] - Built-in and TOML presets.
//
// [api] - chi HTTP handlers over the pipeline.
//
// [errors] - Coded errors with HTTP status mapping.
//
// [observability] - Pipeline and HTTP hooks for tracing and metrics.
//
// [seed]: https://pkg.go.dev/github.com/matzehuels/heightwalk/pkg/seed
// [walk]: https://pkg.go.dev/github.com/matzehuels/heightwalk/pkg/walk
// [heightmap]: https://pkg.go.dev/github.com/matzehuels/heightwalk/pkg/heightmap
// [blur]: https://pkg.go.dev/github.com/matzehuels/heightwalk/pkg/blur
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/heightwalk/pkg/pipeline
// [config]: https://pkg.go.dev/github.com/matzehuels/heightwalk/pkg/config
// [api]: https://pkg.go.dev/github.com/matzehuels/heightwalk/pkg/api
// [errors]: https://pkg.go.dev/github.com/matzehuels/heightwalk/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/heightwalk/pkg/observability
package pkg
