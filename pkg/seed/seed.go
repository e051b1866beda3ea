// Package seed derives 64-bit simulation seeds from entropy.
//
// Seeds are always decoded from exactly 8 bytes, little-endian. When the
// entropy source fails, or when caller-supplied bytes have the wrong length,
// the fixed pattern [1,2,3,4,5,6,7,8] is used instead. Seeding never fails:
// a deterministic seed is preferred over aborting generation.
//
// # Usage
//
//	s := seed.Random()                   // crypto/rand, falls back on error
//	s = seed.FromBytes([]byte{...})      // exactly 8 bytes, else Fallback
//	s = seed.FromReader(r)               // any io.Reader
//
// The [Source] interface lets callers pass any of these strategies into the
// pipeline:
//
//	heights := pipeline.Generate(params, seed.Fixed(42))
package seed

import (
	"crypto/rand"
	"encoding/binary"
	"io"
)

// Size is the number of entropy bytes consumed per seed.
const Size = 8

// FallbackBytes is substituted whenever entropy cannot be obtained.
var FallbackBytes = [Size]byte{1, 2, 3, 4, 5, 6, 7, 8}

// Fallback is FallbackBytes decoded little-endian.
const Fallback uint64 = 0x0807060504030201

// FromBytes decodes b as a little-endian uint64.
// Any length other than 8 yields Fallback.
func FromBytes(b []byte) uint64 {
	if len(b) != Size {
		return Fallback
	}
	return binary.LittleEndian.Uint64(b)
}

// FromReader reads 8 bytes from r and decodes them.
// A nil reader, a read error or a short read yields Fallback.
func FromReader(r io.Reader) uint64 {
	if r == nil {
		return Fallback
	}
	var buf [Size]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Fallback
	}
	return binary.LittleEndian.Uint64(buf[:])
}

// Random returns a seed drawn from crypto/rand.
func Random() uint64 {
	return FromReader(rand.Reader)
}

// Source produces a simulation seed.
type Source interface {
	Seed() uint64
}

// Entropy reads a seed from an io.Reader. The zero value uses crypto/rand.
type Entropy struct {
	Reader io.Reader
}

// Seed implements Source.
func (e Entropy) Seed() uint64 {
	if e.Reader == nil {
		return Random()
	}
	return FromReader(e.Reader)
}

// Bytes is caller-supplied seed material.
type Bytes []byte

// Seed implements Source.
func (b Bytes) Seed() uint64 { return FromBytes(b) }

// Fixed is a pre-computed seed.
type Fixed uint64

// Seed implements Source.
func (f Fixed) Seed() uint64 { return uint64(f) }

var (
	_ Source = Entropy{}
	_ Source = Bytes(nil)
	_ Source = Fixed(0)
)
