// Package blur implements a stack blur over rectangular sample buffers.
//
// The stack blur replaces every sample with a triangle-weighted average of
// its (2r+1)-wide neighbourhood, first along rows and then along columns.
// Weights fall off linearly from r+1 at the centre to 1 at the edge of the
// window, and the sum is divided by (r+1)². Samples beyond the buffer edge
// are replicated from the nearest edge sample. Each axis pass truncates
// towards zero. The result is deterministic and costs O(pixels + r·(w+h)).
//
// Samples are projected to int for accumulation and un-projected on the way
// out, so any sample type can be blurred:
//
//	out := blur.Stack(px, w, h, 8,
//	    func(p uint16) int { return int(p) },
//	    func(v int) uint16 { return uint16(v) })
package blur

import "fmt"

// Stack blurs buf, a row-major width×height buffer, with the given radius
// and returns a new buffer. buf is not modified. A radius of zero or less
// returns an unmodified copy.
//
// Stack panics if len(buf) != width*height.
func Stack[T any](buf []T, width, height, radius int, project func(T) int, unproject func(int) T) []T {
	if width < 0 || height < 0 || len(buf) != width*height {
		panic(fmt.Sprintf("blur: buffer of %d samples does not match %dx%d", len(buf), width, height))
	}

	out := make([]T, len(buf))
	if radius <= 0 || len(buf) == 0 {
		copy(out, buf)
		return out
	}

	acc := make([]int, len(buf))
	for i, p := range buf {
		acc[i] = project(p)
	}

	div := (radius + 1) * (radius + 1)
	line := make([]int, max(width, height))
	res := make([]int, max(width, height))
	box := make([]int, max(width, height)+radius)

	for y := 0; y < height; y++ {
		row := acc[y*width : (y+1)*width]
		copy(line, row)
		triangle(line[:width], res[:width], box, radius, div)
		copy(row, res[:width])
	}

	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			line[y] = acc[y*width+x]
		}
		triangle(line[:height], res[:height], box, radius, div)
		for y := 0; y < height; y++ {
			acc[y*width+x] = res[y]
		}
	}

	for i, v := range acc {
		out[i] = unproject(v)
	}
	return out
}

// Bytes is Stack for 8-bit samples.
func Bytes(buf []byte, width, height, radius int) []byte {
	return Stack(buf, width, height, radius,
		func(p byte) int { return int(p) },
		func(v int) byte { return byte(v) })
}

// triangle writes the triangle-weighted average of src into dst.
//
// The triangle kernel is the convolution of two boxes of width r+1, so the
// line is box-summed forward into box (which must hold len(src)+r values)
// and the box sums are summed again backward.
func triangle(src, dst, box []int, r, div int) {
	n := len(src)
	at := func(i int) int {
		switch {
		case i < 0:
			return src[0]
		case i >= n:
			return src[n-1]
		}
		return src[i]
	}

	// box[t] = sum of src[t-r .. t], edge-replicated.
	s := 0
	for j := -r; j <= 0; j++ {
		s += at(j)
	}
	box[0] = s
	for t := 1; t < n+r; t++ {
		s += at(t) - at(t-r-1)
		box[t] = s
	}

	// dst[i] = sum of box[i .. i+r].
	s = 0
	for t := 0; t <= r; t++ {
		s += box[t]
	}
	dst[0] = s / div
	for i := 1; i < n; i++ {
		s += box[i+r] - box[i-1]
		dst[i] = s / div
	}
}
