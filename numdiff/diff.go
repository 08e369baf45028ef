// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package numdiff estimates a Jacobian by central finite differences. It
// backs the test suite's only numeric-differentiation need: checking a
// Model.LogDensity gradient against a central-difference approximation
// (pathfinder/gradcheck_test.go), so it implements just that one scheme
// unbounded, rather than the teacher's full forward/central/bounded
// machinery.
package numdiff

import (
	"errors"
	"math"
)

// cubeEps is the cube root of machine epsilon, the standard step-size
// scale for a second-order-accurate central difference.
var cubeEps = math.Pow(math.Nextafter(1, 2)-1, 1.0/3)

// Method selects a finite-difference scheme. Central is the only one
// implemented.
type Method int

const (
	Central Method = iota
)

// ApproxSpec describes the function to differentiate: Object maps an
// N-vector x to an M-vector y.
type ApproxSpec struct {
	N, M   int
	Object func(x, y []float64)
	Method Method
}

// Diff fills diff (length N*M, column i holding ∂y/∂x_i) with the
// central-difference Jacobian of Object at x0. x0 is perturbed and
// restored in place; callers may reuse it afterward.
func (as *ApproxSpec) Diff(x0, diff []float64) error {
	switch {
	case as.N <= 0 || as.M <= 0:
		return errors.New("numdiff: non-positive dimensions")
	case as.Method != Central:
		return errors.New("numdiff: unsupported method")
	case as.Object == nil:
		return errors.New("numdiff: object function is required")
	case as.N != len(x0):
		return errors.New("numdiff: invalid x0 dimensions")
	case as.N*as.M != len(diff):
		return errors.New("numdiff: invalid diff dimensions")
	}

	n, m := as.N, as.M
	f1 := make([]float64, m)
	f2 := make([]float64, m)
	for i := 0; i < n; i++ {
		x := x0[i]
		h := math.Copysign(cubeEps, x) * math.Max(1, math.Abs(x))

		x0[i] = x - h
		as.Object(x0, f1)
		x0[i] = x + h
		as.Object(x0, f2)
		x0[i] = x

		d := 1 / (2 * h)
		for j := 0; j < m; j++ {
			diff[i+j*n] = (f2[j] - f1[j]) * d
		}
	}
	return nil
}
