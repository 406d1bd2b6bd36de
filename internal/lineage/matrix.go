// Package lineage builds a pairwise similarity matrix between clones from
// their encoded recordings.
package lineage

import (
	"errors"
	"fmt"
	"math"

	"github.com/mchu-1/barcode-simulator/internal/encode"
)

var ErrWidthMismatch = errors.New("lineage: code width does not match parity")

// Matrix is a square similarity matrix indexed by clone.
type Matrix [][]float64

// Size returns the number of clones.
func (m Matrix) Size() int { return len(m) }

// MinMax returns the smallest and largest entries. An empty matrix gives 0, 0.
func (m Matrix) MinMax() (lo, hi float64) {
	if len(m) == 0 {
		return 0, 0
	}
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, row := range m {
		for _, v := range row {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	return lo, hi
}

// Profile returns the per-bit frequency of set bits across codes.
func Profile(codes []encode.Code, parity int) ([]float64, error) {
	prof := make([]float64, parity)
	if len(codes) == 0 {
		return prof, nil
	}
	for _, c := range codes {
		if c.Width() != parity {
			return nil, fmt.Errorf("%w: got %d, want %d", ErrWidthMismatch, c.Width(), parity)
		}
		for i := 0; i < parity; i++ {
			if c.Bit(i) {
				prof[i]++
			}
		}
	}
	for i := range prof {
		prof[i] /= float64(len(codes))
	}
	return prof, nil
}

// Build computes the cosine similarity between every pair of clone
// profiles. Clones whose cells carry no recordings have similarity 0 to
// everything, themselves included.
func Build(codes [][]encode.Code, parity int) (Matrix, error) {
	if parity < 1 {
		return nil, fmt.Errorf("%w, got %d", encode.ErrInvalidParity, parity)
	}

	profiles := make([][]float64, len(codes))
	norms := make([]float64, len(codes))
	for i, clone := range codes {
		p, err := Profile(clone, parity)
		if err != nil {
			return nil, fmt.Errorf("clone %d: %w", i, err)
		}
		profiles[i] = p
		norms[i] = math.Sqrt(dot(p, p))
	}

	m := make(Matrix, len(codes))
	for i := range m {
		m[i] = make([]float64, len(codes))
	}
	for i := range profiles {
		for j := i; j < len(profiles); j++ {
			v := 0.0
			if norms[i] > 0 && norms[j] > 0 {
				v = math.Min(dot(profiles[i], profiles[j])/(norms[i]*norms[j]), 1)
			}
			m[i][j] = v
			m[j][i] = v
		}
	}
	return m, nil
}

func dot(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}
