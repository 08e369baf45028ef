package lbfgs

import (
	"math"
	"testing"
)

func TestUpdateAlphaAccepts(t *testing.T) {
	alpha := []float64{1, 1}
	sk := []float64{0.5, -0.2}
	yk := []float64{0.3, 0.1}

	next, ok := UpdateAlpha(alpha, sk, yk)
	if !ok {
		t.Fatalf("expected curvature test to accept, Yk·Sk = %v", sk[0]*yk[0]+sk[1]*yk[1])
	}
	for i, v := range next {
		if v <= 0 {
			t.Fatalf("alpha[%d] = %v, want > 0", i, v)
		}
	}
	if math.IsNaN(next[0]) || math.IsNaN(next[1]) {
		t.Fatalf("alpha contains NaN: %v", next)
	}
}

func TestUpdateAlphaRejectsNonPositiveCurvature(t *testing.T) {
	alpha := []float64{1, 1}
	sk := []float64{1, 0}
	yk := []float64{-1, 0} // Yk·Sk = -1 <= 0

	next, ok := UpdateAlpha(alpha, sk, yk)
	if ok {
		t.Fatalf("expected rejection for non-positive curvature")
	}
	if &next[0] != &alpha[0] {
		t.Fatalf("rejected update must return the original alpha slice unchanged")
	}
}

func TestUpdateAlphaRejectsExtremeCurvatureRatio(t *testing.T) {
	alpha := []float64{1, 1}
	sk := []float64{1e-13, 0}
	yk := []float64{1, 0} // Yk·Yk / Dk = 1e13 > 1e12

	_, ok := UpdateAlpha(alpha, sk, yk)
	if ok {
		t.Fatalf("expected rejection for extreme curvature ratio")
	}
}
