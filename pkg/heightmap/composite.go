package heightmap

import (
	"github.com/matzehuels/heightwalk/pkg/blur"
)

// DetailRadius is the blur radius of the detail pass.
const DetailRadius = 4

// Policy decides how base+detail sums above 255 are stored.
type Policy int

const (
	// Wrap keeps the low 8 bits of the sum (plain uint8 addition).
	Wrap Policy = iota
	// Saturate clamps the sum to 255.
	Saturate
)

// String returns the policy name.
func (p Policy) String() string {
	if p == Saturate {
		return "saturate"
	}
	return "wrap"
}

// Option configures Composite.
type Option func(*compositor)

type compositor struct {
	detail    bool
	detailMax uint8
	policy    Policy
}

// WithDetail enables the detail pass with the given ceiling. Samples above
// detailMax are capped before the detail blur. Values outside [0,255] are
// clamped into range.
func WithDetail(detailMax int) Option {
	return func(c *compositor) {
		c.detail = true
		c.detailMax = uint8(min(max(detailMax, 0), 255))
	}
}

// WithSaturation makes the composite clamp sums at 255 instead of wrapping.
func WithSaturation() Option {
	return func(c *compositor) { c.policy = Saturate }
}

// WithPolicy sets the overflow policy explicitly.
func WithPolicy(p Policy) Option {
	return func(c *compositor) { c.policy = p }
}

// Composite blurs a width×height heightmap.
//
// Without WithDetail only the base pass runs: a stack blur of the given
// radius. With WithDetail the result is base + detail, where detail is the
// input capped at the ceiling and blurred at DetailRadius. The sum wraps
// unless WithSaturation is given. heights is never modified.
//
// Composite panics if len(heights) != width*height.
func Composite(heights []byte, width, height, radius int, opts ...Option) []byte {
	c := compositor{}
	for _, opt := range opts {
		opt(&c)
	}

	if !c.detail {
		checkDims(heights, width, height)
		return blur.Bytes(heights, width, height, radius)
	}

	base, detail := Passes(heights, width, height, radius, c.detailMax)
	for i, d := range detail {
		base[i] = add(base[i], d, c.policy)
	}
	return base
}

// Passes returns the base and detail passes of Composite separately.
// Each pass works on its own copy of heights.
func Passes(heights []byte, width, height, radius int, detailMax uint8) (base, detail []byte) {
	checkDims(heights, width, height)

	base = blur.Bytes(heights, width, height, radius)

	capped := make([]byte, len(heights))
	for i, v := range heights {
		capped[i] = min(v, detailMax)
	}
	detail = blur.Bytes(capped, width, height, DetailRadius)
	return base, detail
}

func add(a, b uint8, p Policy) uint8 {
	if p == Saturate && int(a)+int(b) > 255 {
		return 255
	}
	return a + b
}
