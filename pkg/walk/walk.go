// Package walk implements the angled branching random walk that produces
// age grids.
//
// A run starts a set of root walkers at the grid centre. Each long walker
// travels MaxLongAge unit steps along a fixed heading, sprouting a short
// branch every ShortBranchFrequency steps. When a long walker finishes, it
// spawns Children new long walkers whose headings diverge by up to
// MaxLongAngleDivergence radians, until MaxGenerations is reached. Walkers
// that leave the grid die without offspring.
//
// The result is a Size×Size grid of unsigned ages where 0 means "never
// visited". How ages are encoded depends on [Paint]. The largest age any
// walker can paint is [Params.MaxAge].
//
// Runs are deterministic for a fixed [Params.Seed].
package walk

import (
	"math"
	"math/rand/v2"
)

// Simulator produces a Size×Size age grid for the given parameters.
type Simulator interface {
	Simulate(p Params) [][]uint32
}

// AngledWalker is the default Simulator.
type AngledWalker struct{}

// pcgStream decorrelates the second PCG word from the seed.
const pcgStream = 0x9e3779b97f4a7c15

type walker struct {
	x, y       float64
	heading    float64
	age        uint64
	steps      int
	generation int
	short      bool
}

// Simulate implements Simulator.
func (AngledWalker) Simulate(p Params) [][]uint32 {
	size := max(p.Size, 0)
	grid := make([][]uint32, size)
	for i := range grid {
		grid[i] = make([]uint32, size)
	}
	if size == 0 {
		return grid
	}

	rng := rand.New(rand.NewPCG(p.Seed, p.Seed^pcgStream))
	longDiv := sanitize(p.MaxLongAngleDivergence)
	shortDiv := sanitize(p.MaxShortAngleDivergence)
	pt := painter{grid: grid, mode: p.Paint, maxAge: p.MaxAge()}

	centre := float64(size) / 2
	var queue []walker
	for _, h := range p.InitialWalkers.Headings() {
		queue = append(queue, walker{x: centre, y: centre, heading: h, age: 1, steps: max(p.MaxLongAge, 0)})
	}

	for len(queue) > 0 {
		w := queue[0]
		queue = queue[1:]

		// Short branches start on a cell their parent already painted.
		if !w.short && !pt.paint(w) {
			continue
		}

		dx, dy := math.Cos(w.heading), math.Sin(w.heading)
		alive := true
		for i := 1; i <= w.steps; i++ {
			w.x += dx
			w.y += dy
			w.age++
			if !pt.paint(w) {
				alive = false
				break
			}
			if !w.short && p.MaxShortAge > 0 && p.ShortBranchFrequency > 0 && i%p.ShortBranchFrequency == 0 {
				queue = append(queue, walker{
					x: w.x, y: w.y,
					heading:    w.heading + spread(rng, shortDiv),
					age:        w.age,
					steps:      p.MaxShortAge,
					generation: w.generation,
					short:      true,
				})
			}
		}

		if !alive || w.short || w.generation >= p.MaxGenerations {
			continue
		}
		for c := 0; c < p.Children; c++ {
			queue = append(queue, walker{
				x: w.x, y: w.y,
				heading:    w.heading + spread(rng, longDiv),
				age:        w.age + 1,
				steps:      max(p.MaxLongAge, 0),
				generation: w.generation + 1,
			})
		}
	}
	return grid
}

// spread returns a uniform offset in [-d, d).
func spread(rng *rand.Rand, d float64) float64 {
	if d == 0 {
		return 0
	}
	return (rng.Float64()*2 - 1) * d
}

func sanitize(f float64) float64 {
	if !finite(f) {
		return 0
	}
	return f
}

type painter struct {
	grid   [][]uint32
	mode   Paint
	maxAge uint64
}

// paint marks the cell under w and reports whether w is still on the grid.
func (pt painter) paint(w walker) bool {
	x, y := math.Floor(w.x), math.Floor(w.y)
	n := float64(len(pt.grid))
	if x < 0 || y < 0 || x >= n || y >= n {
		return false
	}
	cell := &pt.grid[int(y)][int(x)]
	age := min(w.age, pt.maxAge)

	switch pt.mode {
	case PaintCumulativeAge:
		*cell = clamp32(min(uint64(*cell)+age, pt.maxAge))
	case PaintGeneration:
		*cell = clamp32(uint64(w.generation) + 1)
	case PaintConstant:
		*cell = 1
	default:
		*cell = clamp32(age)
	}
	return true
}

func clamp32(v uint64) uint32 {
	if v > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(v)
}

// Fixed is a Simulator that returns a copy of a canned grid, ignoring the
// parameters. It is intended for tests and replays.
type Fixed [][]uint32

// Simulate implements Simulator.
func (f Fixed) Simulate(Params) [][]uint32 {
	out := make([][]uint32, len(f))
	for i, row := range f {
		out[i] = append([]uint32(nil), row...)
	}
	return out
}

var (
	_ Simulator = AngledWalker{}
	_ Simulator = Fixed(nil)
)
