// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lbfgs

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// curvatureOK reports whether the latest (Δx, Δg) = (Sk, Yk) pair passes
// the curvature test that gates a diagonal α update: Dk = Yk·Sk must be
// positive, and the curvature ratio |Yk·Yk|/Dk must not blow up.
func curvatureOK(sk, yk []float64) (dk float64, ok bool) {
	dk = floats.Dot(yk, sk)
	if dk <= 0 {
		return dk, false
	}
	yy := floats.Dot(yk, yk)
	return dk, math.Abs(yy)/dk <= 1e12
}

// UpdateAlpha applies the Gilbert–Lemaréchal (1989) eq. 4.9 diagonal
// inverse-Hessian update to alpha given the newest history pair (sk, yk).
// It returns the (possibly unchanged) diagonal and whether the update was
// accepted. alpha is never mutated in place — callers own the returned
// slice — so a rejected update leaves the caller's original slice valid to
// keep using.
func UpdateAlpha(alpha, sk, yk []float64) (next []float64, accepted bool) {
	dk, ok := curvatureOK(sk, yk)
	if !ok {
		return alpha, false
	}

	n := len(alpha)
	a := 0.0 // Yᵀ diag(alpha) Y
	s := 0.0 // Sᵀ diag(1/alpha) S
	for i := 0; i < n; i++ {
		a += alpha[i] * yk[i] * yk[i]
		s += sk[i] * sk[i] / alpha[i]
	}

	next = make([]float64, n)
	for i := 0; i < n; i++ {
		denom := a/alpha[i] + yk[i]*yk[i] - (a/s)*(sk[i]/alpha[i])*(sk[i]/alpha[i])
		next[i] = dk / denom
		if next[i] <= 0 {
			panic(fmt.Sprintf("lbfgs: diagonal update produced non-positive alpha[%d] = %v", i, next[i]))
		}
	}
	return next, true
}
