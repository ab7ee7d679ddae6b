// Package synthetic generates illustrative campaign finance and voting record
// data for officials that have no authoritative source. Output is a pure
// function of the entity id and inputs; the clock and global randomness are
// never consulted.
package synthetic

import "unicode/utf16"

const (
	modulus    = 2147483647
	multiplier = 16807
)

// Source is a Park-Miller minimal standard generator seeded from a string.
// It is not safe for concurrent use.
type Source struct {
	state int64
}

// NewSource seeds a generator from seed.
func NewSource(seed string) *Source {
	s := int64(Hash(seed))
	if s < 0 {
		s = -s
	}
	s %= modulus
	if s <= 0 {
		s += modulus - 1
	}
	return &Source{state: s}
}

// Float64 returns the next value in [0, 1).
func (s *Source) Float64() float64 {
	s.state = s.state * multiplier % modulus
	return float64(s.state) / modulus
}

// Range returns the next value scaled into [lo, hi).
func (s *Source) Range(lo, hi float64) float64 {
	return lo + s.Float64()*(hi-lo)
}

// Intn returns the next value in [0, n).
func (s *Source) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(s.Float64() * float64(n))
}

// Hash is the 32-bit polynomial rolling hash (h*31 + c) over the UTF-16 code
// units of seed, with two's complement wraparound.
func Hash(seed string) int32 {
	var h int32
	for _, c := range utf16.Encode([]rune(seed)) {
		h = h*31 + int32(c)
	}
	return h
}
