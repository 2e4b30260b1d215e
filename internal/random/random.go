// Package random provides index-addressed random values so decorative content
// is a pure function of (seed, index).
package random

// Source yields a value in [0, 1) for each index. Implementations must return the
// same value for the same index every time.
type Source interface {
	Float64(index uint64) float64
}

// Seeded hashes (seed, index) with SplitMix64.
type Seeded struct {
	Seed uint64
}

func NewSeeded(seed uint64) Seeded {
	return Seeded{Seed: seed}
}

func (s Seeded) Float64(index uint64) float64 {
	z := s.Seed + (index+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	z ^= z >> 31
	// 53 high bits → [0, 1)
	return float64(z>>11) / (1 << 53)
}

// Sequence replays fixed values, cycling when the index runs past the end.
// Used to make tests deterministic.
type Sequence []float64

func (s Sequence) Float64(index uint64) float64 {
	if len(s) == 0 {
		return 0
	}
	return s[index%uint64(len(s))]
}

// Stream hands out consecutive indexes from a Source, starting at Offset.
// It is a convenience for generators that draw many values in a row; it is not
// safe for concurrent use.
type Stream struct {
	Src    Source
	Offset uint64
}

func (st *Stream) Next() float64 {
	v := st.Src.Float64(st.Offset)
	st.Offset++
	return v
}

// Range returns a value in [lo, hi).
func (st *Stream) Range(lo, hi float64) float64 {
	return lo + st.Next()*(hi-lo)
}

// Centered returns a value in [-span/2, span/2).
func (st *Stream) Centered(span float64) float64 {
	return (st.Next() - 0.5) * span
}

// Intn returns an int in [0, n). n <= 0 yields 0.
func (st *Stream) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	i := int(st.Next() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}
