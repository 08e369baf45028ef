// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lbfgs

import (
	"gonum.org/v1/gonum/mat"

	"github.com/pathfinder-go/pathfinder/internal/blas"
)

// History is the bounded, append-only ring buffer of (Δx, Δg) pairs the
// L-BFGS driver accumulates across successful steps — the teacher's
// `updateCorrection` ring-buffer bookkeeping (lbfgsb/update.go), generalized
// away from the bound-constrained compact representation to the plain
// pairs Pathfinder's Taylor approximation builder consumes directly.
//
// Invariant: Len() <= capacity, and the window holds exactly the most
// recent accepted updates in chronological order.
type History struct {
	capacity int
	dim      int
	s, y     [][]float64
	head     int
	n        int
}

// NewHistory allocates a history window of the given dimension and
// capacity (the L-BFGS memory size h).
func NewHistory(dim, capacity int) *History {
	return &History{
		capacity: capacity,
		dim:      dim,
		s:        make([][]float64, capacity),
		y:        make([][]float64, capacity),
	}
}

// Len reports how many pairs are currently stored.
func (h *History) Len() int { return h.n }

// Push appends a new (Δx, Δg) pair, evicting the oldest entry once the
// window is at capacity. The slices are copied; callers may reuse dx, dg.
func (h *History) Push(dx, dg []float64) {
	idx := (h.head + h.n) % h.capacity
	if h.n == h.capacity {
		idx = h.head
		h.head = (h.head + 1) % h.capacity
	} else {
		h.n++
	}
	if h.s[idx] == nil {
		h.s[idx] = make([]float64, h.dim)
		h.y[idx] = make([]float64, h.dim)
	}
	copy(h.s[idx], dx)
	copy(h.y[idx], dg)
}

// At returns the i-th pair in chronological order, i=0 the oldest of the
// pairs currently retained, i=Len()-1 the newest.
func (h *History) At(i int) (dx, dg []float64) {
	idx := (h.head + i) % h.capacity
	return h.s[idx], h.y[idx]
}

// Newest returns the most recently pushed pair, or (nil, nil) if empty.
func (h *History) Newest() (dx, dg []float64) {
	if h.n == 0 {
		return nil, nil
	}
	return h.At(h.n - 1)
}

// Matrices assembles the window into dense (row-major) matrices S, Y of
// shape dim×Len(), one pair per column, columns ordered oldest to newest —
// the contiguous
// buffers the Taylor approximation builder (§4.3) forms R = upper(SᵀY)
// and NinvRST from.
func (h *History) Matrices() (s, y *mat.Dense) {
	m := h.n
	s = mat.NewDense(h.dim, m, nil)
	y = mat.NewDense(h.dim, m, nil)
	sRaw, yRaw := s.RawMatrix(), y.RawMatrix()
	for j := 0; j < m; j++ {
		dx, dg := h.At(j)
		blas.SetColumnStrided(h.dim, dx, sRaw.Data, j, sRaw.Stride)
		blas.SetColumnStrided(h.dim, dg, yRaw.Data, j, yRaw.Stride)
	}
	return s, y
}
