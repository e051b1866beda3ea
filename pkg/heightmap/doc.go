// Package heightmap turns simulated age grids into displayable heightmaps.
//
// # Pipeline
//
// The stages are pure functions over freshly allocated buffers:
//
//  1. [Invoke]: run a [walk.Simulator] and flatten its grid row-major into an
//     [AgeGrid], together with the normalising MaxAge.
//  2. [FromAges]: scale every age to an 8-bit height sample. Age 0 stays 0
//     ("no terrain"); younger cells are taller.
//  3. Either [Mask], a binary RGBA visited/unvisited mask, or
//     [Composite], a broad base blur plus a clamped small-radius detail
//     blur summed into a shaded heightmap.
//
// Nothing in this package keeps state between calls, so every function is
// safe for concurrent use.
//
// # Example
//
//	p := walk.Params{Size: 512, MaxLongAge: 100, MaxGenerations: 4, Children: 2, Seed: 1}
//	grid := heightmap.Invoke(walk.AngledWalker{}, p)
//	heights := heightmap.FromAges(grid.Ages, grid.MaxAge)
//	shaded := heightmap.Composite(heights, grid.Size, grid.Size, 8, heightmap.WithDetail(64))
package heightmap
