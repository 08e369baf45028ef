// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pathfinder

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/pathfinder-go/pathfinder/taylor"
)

// topUp draws `remaining` additional samples from the best approximation
// and evaluates their log density (spec.md §4.6 TOPUP). Any panic while
// doing so is recovered and reported as an error — per spec.md's
// TopUpFailure, the caller falls back silently to the ELBO-phase draws
// rather than failing the whole path.
func topUp(approx *taylor.Approximation, model Model, rng *rand.Rand, remaining int) (draws *mat.Dense, logQ, logP []float64, calls int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during top-up: %v", r)
			draws, logQ, logP, calls = nil, nil, nil, 0
		}
	}()

	d := len(approx.XCenter)
	u := mat.NewDense(d, remaining, nil)
	for j := 0; j < remaining; j++ {
		for i := 0; i < d; i++ {
			u.Set(i, j, rng.NormFloat64())
		}
	}

	draws = approx.Samples(u)
	logQ = approx.LogQ(u)
	logP = make([]float64, remaining)

	col := make([]float64, d)
	for j := 0; j < remaining; j++ {
		for i := 0; i < d; i++ {
			col[i] = draws.At(i, j)
		}
		lp, _, lerr := model.LogDensity(col)
		calls++
		if lerr != nil {
			lp = math.Inf(-1)
		}
		logP[j] = lp
	}

	return draws, logQ, logP, calls, nil
}
