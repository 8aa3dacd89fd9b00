// Package seedrng provides a small deterministic pseudo-random generator
// keyed by a string or number seed.
//
// The same seed always yields the same infinite sequence of draws, across
// process restarts and platforms. The generator is meant for visual
// placement and animation, not for anything security related.
package seedrng

import (
	"math"
	"strconv"
	"unicode/utf16"
)

// FNV-1a style constants used by HashToSeed.
const (
	hashOffset uint32 = 2166136261
	hashPrime  uint32 = 16777619
)

// mulberry32 increment.
const golden uint32 = 0x6d2b79f5

// twoTo32 normalizes a 32-bit draw into [0,1).
const twoTo32 = 4294967296.0

// Rand is anything that yields uniform draws in [0,1).
type Rand interface {
	Float64() float64
}

// Source is a mulberry32 generator. The zero value is a valid generator
// seeded with 0. A Source is not safe for concurrent use.
type Source struct {
	state uint32
}

// HashToSeed maps a string to a 32-bit seed. Each UTF-16 code unit is
// XORed into the accumulator, which is then multiplied by the FNV prime
// modulo 2^32. The empty string hashes to the offset basis.
func HashToSeed(s string) uint32 {
	h := hashOffset
	for _, cu := range utf16.Encode([]rune(s)) {
		h ^= uint32(cu)
		h *= hashPrime
	}
	return h
}

// Mulberry32 returns a generator whose state starts at seed.
func Mulberry32(seed uint32) *Source {
	return &Source{state: seed}
}

// FromSeed returns the generator for a string seed.
func FromSeed(seed string) *Source {
	return Mulberry32(HashToSeed(seed))
}

// FromNumber returns the generator for a numeric seed. The number is
// rendered to text first so that 42 and "42" share a sequence.
func FromNumber(n float64) *Source {
	return FromSeed(NumberString(n))
}

// NumberString renders n the way a number-to-string conversion in a
// browser would for the values seeds realistically take: integers
// without a fractional part, shortest round-trip decimals otherwise,
// and the literal names of the non-finite values.
func NumberString(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "Infinity"
	case math.IsInf(n, -1):
		return "-Infinity"
	case n == 0:
		// covers negative zero as well
		return "0"
	}
	abs := math.Abs(n)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(n, 'e', -1, 64)
		return trimExponent(s)
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// trimExponent turns Go's "1e+21" / "1e-07" into "1e+21" / "1e-7".
func trimExponent(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] != 'e' || i+2 >= len(s) {
			continue
		}
		j := i + 2
		for j < len(s)-1 && s[j] == '0' {
			j++
		}
		return s[:i+2] + s[j:]
	}
	return s
}

// Uint32 advances the generator and returns the raw 32-bit draw.
func (s *Source) Uint32() uint32 {
	s.state += golden
	t := s.state
	x := (t ^ (t >> 15)) * (1 | t)
	x ^= x + (x^(x>>7))*(61|x)
	return x ^ (x >> 14)
}

// Float64 returns the next draw in [0,1).
func (s *Source) Float64() float64 {
	return float64(s.Uint32()) / twoTo32
}

// Between returns min + (max-min)*r.Float64().
func Between(r Rand, min, max float64) float64 {
	return min + (max-min)*r.Float64()
}

// Int returns a uniform integer in [lo, hi]. The scaled draw is clamped
// into range to absorb floating point edge cases.
func Int(r Rand, lo, hi int) int {
	v := int(math.Floor(Between(r, float64(lo), float64(hi)+1)))
	return max(lo, min(hi, v))
}
