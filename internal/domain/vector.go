package domain

import "math"

// SparseVector maps vocabulary column to weight. Absent columns are zero.
type SparseVector map[int]float64

// Dot returns the inner product of v and w.
func (v SparseVector) Dot(w SparseVector) float64 {
	if len(w) < len(v) {
		v, w = w, v
	}
	sum := 0.0
	for idx, a := range v {
		if b, ok := w[idx]; ok {
			sum += a * b
		}
	}
	return sum
}

// Norm returns the L2 norm of v.
func (v SparseVector) Norm() float64 {
	sum := 0.0
	for _, a := range v {
		sum += a * a
	}
	return math.Sqrt(sum)
}

// Cosine returns the cosine similarity of v and w; zero vectors score 0.
func (v SparseVector) Cosine(w SparseVector) float64 {
	nv, nw := v.Norm(), w.Norm()
	if nv == 0 || nw == 0 {
		return 0
	}
	return v.Dot(w) / (nv * nw)
}

// MaxIndex returns the largest populated column, or -1 for an empty vector.
func (v SparseVector) MaxIndex() int {
	max := -1
	for idx := range v {
		if idx > max {
			max = idx
		}
	}
	return max
}
