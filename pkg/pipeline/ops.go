package pipeline

import (
	"github.com/matzehuels/heightwalk/pkg/heightmap"
	"github.com/matzehuels/heightwalk/pkg/seed"
	"github.com/matzehuels/heightwalk/pkg/walk"
)

// =============================================================================
// Exported Operations
// =============================================================================
//
// These are stateless one-shot functions: every call allocates fresh buffers
// and never modifies its input. They never fail; inputs outside the
// documented domain are normalised instead.

// HelloValue is the constant returned by Hello.
const HelloValue uint32 = 42

// Hello is a diagnostic check. It always returns 42.
func Hello() uint32 { return HelloValue }

// GenerateParams are the inputs of Generate. The zero values of
// ShortBranchFrequency and InitialWalkers select the defaults: a short
// branch every DefaultShortBranchFrequency steps from all eight headings.
type GenerateParams struct {
	Size                    int
	MaxLongAge              int
	MaxShortAge             int
	MaxGenerations          int
	Children                int
	MaxLongAngleDivergence  float64
	MaxShortAngleDivergence float64
	Paint                   walk.Paint

	ShortBranchFrequency int
	// NoShortBranches turns short branches off regardless of
	// ShortBranchFrequency.
	NoShortBranches bool
	InitialWalkers  walk.InitialWalkers
}

// WalkParams resolves the defaults and returns the simulation parameters.
func (gp GenerateParams) WalkParams() walk.Params {
	freq := gp.ShortBranchFrequency
	switch {
	case gp.NoShortBranches:
		freq = 0
	case freq == 0:
		freq = DefaultShortBranchFrequency
	}
	return walk.Params{
		Size:                    gp.Size,
		MaxLongAge:              gp.MaxLongAge,
		MaxShortAge:             gp.MaxShortAge,
		MaxGenerations:          gp.MaxGenerations,
		Children:                gp.Children,
		MaxLongAngleDivergence:  gp.MaxLongAngleDivergence,
		MaxShortAngleDivergence: gp.MaxShortAngleDivergence,
		ShortBranchFrequency:    freq,
		Paint:                   gp.Paint,
		InitialWalkers:          gp.InitialWalkers,
	}
}

// Generate seeds, simulates and scales a heightmap with the angled walker.
// The seed comes from src; a nil src draws fresh entropy.
// The result holds gp.Size*gp.Size height samples.
func Generate(gp GenerateParams, src seed.Source) []byte {
	return GenerateWith(walk.AngledWalker{}, gp.WalkParams(), src)
}

// GenerateWith is Generate with a caller-supplied simulator.
func GenerateWith(sim walk.Simulator, p walk.Params, src seed.Source) []byte {
	if src == nil {
		src = seed.Entropy{}
	}
	p.Seed = src.Seed()
	grid := heightmap.Invoke(sim, p)
	return heightmap.FromAges(grid.Ages, grid.MaxAge)
}

// ToImage expands heights into a binary RGBA mask of 4*len(heights) bytes.
func ToImage(heights []byte) []byte {
	return heightmap.Mask(heights)
}

// HeightmapBlur runs the base blur pass only.
// See Side for how the buffer dimensions are inferred.
func HeightmapBlur(heights []byte, radius int) []byte {
	w, h := Side(len(heights))
	return heightmap.Composite(heights, w, h, radius)
}

// HeightmapBlurDetail runs the base pass plus the detail pass capped at
// detailMax and returns their wrapping 8-bit sum.
func HeightmapBlurDetail(heights []byte, radius, detailMax int) []byte {
	w, h := Side(len(heights))
	return heightmap.Composite(heights, w, h, radius, heightmap.WithDetail(detailMax))
}

// Side infers the dimensions of a square buffer of n samples.
// A length that is not a perfect square is treated as a single n×1 row.
func Side(n int) (width, height int) {
	if n <= 0 {
		return 0, 0
	}
	s := isqrt(n)
	if s*s == n {
		return s, s
	}
	return n, 1
}

func isqrt(n int) int {
	x := n
	y := (x + 1) / 2
	for y < x {
		x = y
		y = (x + n/x) / 2
	}
	return x
}
