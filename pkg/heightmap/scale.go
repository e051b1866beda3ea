package heightmap

import (
	"github.com/matzehuels/heightwalk/pkg/walk"
)

// MaxHeight is the largest height a scaled age can take. 255 is left free
// as headroom for additive compositing.
const MaxHeight = 254

// AgeGrid is a flattened Size×Size simulation result.
type AgeGrid struct {
	Size   int
	Ages   []uint32
	MaxAge uint64
}

// Invoke runs sim with p and flattens the result row-major.
//
// The returned grid always holds exactly Size*Size ages: short rows are
// zero-padded and extra rows or columns are dropped. MaxAge is computed from
// p, never from the data.
func Invoke(sim walk.Simulator, p walk.Params) AgeGrid {
	size := max(p.Size, 0)
	ages := make([]uint32, size*size)
	rows := sim.Simulate(p)
	for y := 0; y < size && y < len(rows); y++ {
		copy(ages[y*size:(y+1)*size], rows[y])
	}
	return AgeGrid{Size: size, Ages: ages, MaxAge: p.MaxAge()}
}

// Scale maps one age to a height sample.
//
// Age 0 maps to 0. Any other age maps to
//
//	trunc(clamp((maxAge-age)/maxAge * 255, 0, 254))
//
// so older cells are lower. Ages above maxAge are treated as maxAge, and a
// visited cell that would truncate to 0 is lifted to 1 so that 0 keeps
// meaning "unvisited". A maxAge of 0 is treated as 1.
func Scale(age uint32, maxAge uint64) uint8 {
	if age == 0 {
		return 0
	}
	maxAge = max(maxAge, 1)
	v := min(uint64(age), maxAge)

	h := float64(maxAge-v) / float64(maxAge) * 255.0
	h = min(max(h, 0), MaxHeight)
	if h < 1 {
		return 1
	}
	return uint8(h)
}

// FromAges scales every age in ages. The result has the same length.
func FromAges(ages []uint32, maxAge uint64) []byte {
	out := make([]byte, len(ages))
	for i, v := range ages {
		out[i] = Scale(v, maxAge)
	}
	return out
}
