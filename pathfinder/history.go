// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pathfinder

import (
	"gonum.org/v1/gonum/mat"

	"github.com/pathfinder-go/pathfinder/lbfgs"
	"github.com/pathfinder-go/pathfinder/taylor"
)

// taylorHistory assembles the driver's ring buffer into the contiguous
// (Y, Dk, NinvRST) triple the Taylor builder consumes (spec.md §4.6 step
// 4, §9 "in-place triangular solve"): R = upper(SᵀY), Dk = diag(R), solve
// R·X = Sᵀ for X, NinvRST = −X.
func taylorHistory(hist *lbfgs.History) (taylor.History, error) {
	h := hist.Len()
	if h == 0 {
		return taylor.History{}, nil
	}

	s, y := hist.Matrices() // dim×h each

	sty := mat.NewDense(h, h, nil)
	sty.Mul(s.T(), y)

	dk := make([]float64, h)
	r := mat.NewDense(h, h, nil)
	for i := 0; i < h; i++ {
		dk[i] = sty.At(i, i)
		for j := i; j < h; j++ {
			r.Set(i, j, sty.At(i, j))
		}
	}

	var x mat.Dense
	if err := x.Solve(r, s.T()); err != nil {
		return taylor.History{}, err
	}
	_, d := x.Dims()

	ninvrst := mat.NewDense(h, d, nil)
	ninvrst.Scale(-1, &x)

	return taylor.History{Y: y, Dk: dk, NinvRST: ninvrst}, nil
}
