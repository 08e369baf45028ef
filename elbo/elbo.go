// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package elbo estimates the evidence lower bound of a Taylor
// approximation by Monte Carlo (spec.md §4.5): draw standard normals,
// push them through the approximation, evaluate the target, and average
// log p - log q. Grounded on the teacher's Evaluation functor shape
// (`_examples/curioloop-optimizer/lbfgsb/optimize.go`'s `Evaluation`) and
// on `linucb_hybrid.go`'s `rng.NormFloat64()` sampling idiom.
package elbo

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/pathfinder-go/pathfinder/taylor"
)

// LogDensity evaluates the target's log density at an unconstrained draw.
// An error models the model's log_prob throwing — the estimator maps it to
// -Inf for that draw rather than aborting (spec.md §4.5 step 4, §7
// LogProbDivergence).
type LogDensity func(u []float64) (float64, error)

// Estimate is the Monte Carlo ELBO result (spec.md §3 ElboEstimate).
type Estimate struct {
	Elbo        float64
	FnCalls     int
	RepeatDraws *mat.Dense // D×K
	LpMat       *mat.Dense // K×2: col 0 = log q, col 1 = log p
	LpRatio     []float64
}

// Run draws K standard-normal columns, pushes them through approx, scores
// each under logDensity, and returns the ELBO estimate.
func Run(logDensity LogDensity, approx *taylor.Approximation, k int, rng *rand.Rand) *Estimate {
	d := len(approx.XCenter)

	u := mat.NewDense(d, k, nil)
	for j := 0; j < k; j++ {
		for i := 0; i < d; i++ {
			u.Set(i, j, rng.NormFloat64())
		}
	}

	logQ := approx.LogQ(u)
	draws := approx.Samples(u)

	lpMat := mat.NewDense(k, 2, nil)
	lpRatio := make([]float64, k)
	fnCalls := 0

	col := make([]float64, d)
	for j := 0; j < k; j++ {
		for i := 0; i < d; i++ {
			col[i] = draws.At(i, j)
		}
		lp, err := logDensity(col)
		fnCalls++
		if err != nil {
			lp = math.Inf(-1)
		}
		lpMat.Set(j, 0, logQ[j])
		lpMat.Set(j, 1, lp)
		lpRatio[j] = lp - logQ[j]
	}

	return &Estimate{
		Elbo:        stat.Mean(lpRatio, nil),
		FnCalls:     fnCalls,
		RepeatDraws: draws,
		LpMat:       lpMat,
		LpRatio:     lpRatio,
	}
}
