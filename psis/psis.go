// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package psis

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Result bundles the Pareto-smoothed importance weights together with the
// tail shape estimate, when a tail fit was actually performed.
type Result struct {
	Weights []float64
	Khat    float64 // NaN if no tail smoothing was attempted
}

// Smooth implements the PSIS façade (spec.md §4.7, §2 "PSIS façade"): given
// a vector of log importance-ratios and a caller-chosen tail length,
// return normalized importance weights with the upper tail replaced by a
// fitted Generalized Pareto quantile when the tail is long enough and
// varied enough to fit.
func Smooth(logRatios []float64, tailLen int) Result {
	s := len(logRatios)
	lw := make([]float64, s)
	maxLw := floats.Max(logRatios)
	for i, v := range logRatios {
		lw[i] = v - maxLw
	}

	khat := math.NaN()

	if tailLen >= 5 {
		values, indices := selectTopK(lw, tailLen+1)
		cutoff := values[0]
		tail := values[1:]

		spread := floats.Max(tail) - floats.Min(tail)
		if spread > 10*dblMin {
			shifted := make([]float64, len(tail))
			for i, v := range tail {
				shifted[i] = math.Exp(v) - math.Exp(cutoff)
			}
			sigma, k := GpdFit(shifted)

			if !math.IsInf(k, 0) {
				khat = k
				h := len(tail)
				for i := 0; i < h; i++ {
					p := (float64(i+1) - 0.5) / float64(h)
					smoothed := math.Log(sigma*math.Expm1(-k*math.Log1p(-p))/k + math.Exp(cutoff))
					lw[indices[i+1]] = smoothed
				}
			}
		}
	}

	for i, v := range lw {
		if v > 0 {
			lw[i] = 0
		}
	}

	shiftedLw := make([]float64, s)
	for i, v := range lw {
		shiftedLw[i] = v + maxLw
	}
	lse := floats.LogSumExp(shiftedLw)

	weights := make([]float64, s)
	for i, v := range shiftedLw {
		weights[i] = math.Exp(v - lse)
	}

	return Result{Weights: weights, Khat: khat}
}

// dblMin is C++'s std::numeric_limits<double>::min(), the smallest
// normalized positive double (~2.225e-308) — what
// original_source/src/stan/services/psis/psis.hpp compares the tail
// spread against, not machine epsilon.
const dblMin = 2.2250738585072014e-308
