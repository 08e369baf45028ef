// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package numdiff

import (
	"math"
	"testing"
)

func quadratic(x, y []float64) {
	// f(x) = sum(x_i^2), so ∂f/∂x_i = 2*x_i.
	sum := 0.0
	for _, v := range x {
		sum += v * v
	}
	y[0] = sum
}

func TestDiffMatchesAnalyticGradient(t *testing.T) {
	x0 := []float64{1.5, -2.0, 0.25}
	spec := ApproxSpec{N: 3, M: 1, Method: Central, Object: quadratic}

	diff := make([]float64, 3)
	if err := spec.Diff(x0, diff); err != nil {
		t.Fatalf("Diff: %v", err)
	}

	for i, xi := range x0 {
		want := 2 * xi
		if math.Abs(diff[i]-want) > 1e-6 {
			t.Fatalf("diff[%d] = %v, want %v", i, diff[i], want)
		}
	}

	// x0 must be restored, not left perturbed.
	want := []float64{1.5, -2.0, 0.25}
	for i := range want {
		if x0[i] != want[i] {
			t.Fatalf("x0[%d] = %v, want unchanged %v", i, x0[i], want[i])
		}
	}
}

func TestDiffRejectsBadDimensions(t *testing.T) {
	valid := ApproxSpec{N: 2, M: 1, Method: Central, Object: quadratic}

	cases := []struct {
		name string
		spec ApproxSpec
		x0   []float64
		diff []float64
	}{
		{"zero N", ApproxSpec{N: 0, M: 1, Method: Central, Object: quadratic}, []float64{}, []float64{}},
		{"zero M", ApproxSpec{N: 2, M: 0, Method: Central, Object: quadratic}, []float64{1, 2}, []float64{}},
		{"nil object", ApproxSpec{N: 2, M: 1, Method: Central}, []float64{1, 2}, make([]float64, 2)},
		{"wrong method", ApproxSpec{N: 2, M: 1, Method: Method(99), Object: quadratic}, []float64{1, 2}, make([]float64, 2)},
		{"mismatched x0", valid, []float64{1, 2, 3}, make([]float64, 2)},
		{"mismatched diff", valid, []float64{1, 2}, make([]float64, 1)},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := c.spec
			if err := s.Diff(c.x0, c.diff); err == nil {
				t.Fatalf("Diff: want error, got nil")
			}
		})
	}
}
