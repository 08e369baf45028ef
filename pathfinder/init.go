// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pathfinder

import (
	"math"
	"math/rand/v2"

	"github.com/pathfinder-go/pathfinder/lbfgs"
)

const initRetryBudget = 10

// initParams draws the starting unconstrained vector: user-supplied
// components from cfg.Init verbatim, the rest Uniform(-r, r) (spec.md §4.6
// INIT). It retries the random components up to initRetryBudget times if
// the model's log density is undefined there (spec.md §7
// InitializationFailure).
func initParams(b *built, rng *rand.Rand, eval lbfgs.Eval) (x0 []float64, f0 float64, g0 []float64, ok bool) {
	dim := b.cfg.Dim
	r := b.cfg.InitRadius
	g0 = make([]float64, dim)

	for attempt := 0; attempt < initRetryBudget; attempt++ {
		x0 = make([]float64, dim)
		for i := 0; i < dim; i++ {
			if b.cfg.Init != nil && !math.IsNaN(b.cfg.Init[i]) {
				x0[i] = b.cfg.Init[i]
				continue
			}
			x0[i] = r * (2*rng.Float64() - 1)
		}

		f, err := eval(x0, g0)
		if err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return x0, f, g0, true
		}
	}
	return nil, 0, nil, false
}
