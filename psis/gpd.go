// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package psis

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

const (
	minGridPts  = 30
	priorWeight = 3.0
	shrinkageA  = 10.0
)

// GpdFit fits a Generalized Pareto (σ, k) to x via the Zhang–Stephens
// (2009) profile-likelihood grid estimator, with the Bayesian shrinkage
// toward k~N(0.5) the original PSIS implementation applies. x must be
// sorted ascending.
func GpdFit(x []float64) (sigma, k float64) {
	n := len(x)
	m := minGridPts + int(math.Sqrt(float64(n)))

	qIdx := int(float64(n)/4+0.5) - 1
	if qIdx < 0 {
		qIdx = 0
	}
	xStar := x[qIdx]
	xMax := x[n-1]

	thetas := make([]float64, m)
	ll := make([]float64, m)
	for j := 1; j <= m; j++ {
		theta := 1/xMax + (1-math.Sqrt(float64(m)/(float64(j)-0.5)))/(priorWeight*xStar)
		thetas[j-1] = theta
		ll[j-1] = float64(n) * profileLogLik(theta, x)
	}

	lse := floats.LogSumExp(ll)
	w := make([]float64, m)
	thetaHat := 0.0
	for j := range w {
		w[j] = math.Exp(ll[j] - lse)
		thetaHat += w[j] * thetas[j]
	}

	khat := meanLog1pNeg(thetaHat, x)
	sigma = -khat / thetaHat
	k = khat*float64(n)/(float64(n)+shrinkageA) + shrinkageA*0.5/(float64(n)+shrinkageA)
	return sigma, k
}

// profileLogLik returns ℓ_x(θ) = log(-θ/k̂) - k̂ - 1 where
// k̂(θ) = mean_i log1p(-θ xᵢ).
func profileLogLik(theta float64, x []float64) float64 {
	khat := meanLog1pNeg(theta, x)
	return math.Log(-theta/khat) - khat - 1
}

func meanLog1pNeg(theta float64, x []float64) float64 {
	sum := 0.0
	for _, xi := range x {
		sum += math.Log1p(-theta * xi)
	}
	return sum / float64(len(x))
}
