// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package taylor

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Samples pushes a D×K matrix of IID standard normal columns U through the
// approximation, returning one unconstrained draw per column (spec.md
// §4.4).
func (a *Approximation) Samples(u *mat.Dense) *mat.Dense {
	d, k := u.Dims()
	draws := mat.NewDense(d, k, nil)

	if a.UseFull {
		draws.Mul(a.L.T(), u)
	} else {
		_, cols := a.Q.Dims()
		u1 := mat.NewDense(cols, k, nil)
		u1.Mul(a.Q.T(), u)

		lMinusI := mat.DenseCopyOf(a.L)
		r, _ := lMinusI.Dims()
		for i := 0; i < r; i++ {
			lMinusI.Set(i, i, lMinusI.At(i, i)-1)
		}

		qTerm := mat.NewDense(d, k, nil)
		qTerm.Mul(a.Q, matMul(lMinusI, u1))
		qTerm.Add(qTerm, u)

		for i := 0; i < d; i++ {
			s := math.Sqrt(a.Alpha[i])
			for j := 0; j < k; j++ {
				draws.Set(i, j, s*qTerm.At(i, j))
			}
		}
	}

	for j := 0; j < k; j++ {
		for i := 0; i < d; i++ {
			draws.Set(i, j, draws.At(i, j)+a.XCenter[i])
		}
	}
	return draws
}

func matMul(a, b *mat.Dense) *mat.Dense {
	r, _ := a.Dims()
	_, c := b.Dims()
	out := mat.NewDense(r, c, nil)
	out.Mul(a, b)
	return out
}

// LogQ computes log q(sample) for each column u of U directly from the
// underlying standard normal (spec.md §4.4): an analytic Gaussian density
// in the approximation's own coordinates, independent of which branch
// (full or sparse) produced the draw.
func (a *Approximation) LogQ(u *mat.Dense) []float64 {
	d, k := u.Dims()
	out := make([]float64, k)
	constTerm := float64(d) * math.Log(2*math.Pi)
	for j := 0; j < k; j++ {
		sq := 0.0
		for i := 0; i < d; i++ {
			v := u.At(i, j)
			sq += v * v
		}
		out[j] = -a.LogDetChol - 0.5*(sq+constTerm)
	}
	return out
}
