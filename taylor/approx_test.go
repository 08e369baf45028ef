package taylor

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestBuildEmptyHistoryIsDiagonal(t *testing.T) {
	alpha := []float64{2, 3}
	point := []float64{1, 1}
	grad := []float64{0.5, -0.5}

	a, err := Build(2, History{}, alpha, point, grad)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !a.UseFull || a.Q != nil {
		t.Fatalf("empty-history approximation must be full with no Q")
	}
	wantCenter := []float64{1 - 2*0.5, 1 - 3*-0.5}
	for i, w := range wantCenter {
		if math.Abs(a.XCenter[i]-w) > 1e-12 {
			t.Fatalf("XCenter[%d] = %v, want %v", i, a.XCenter[i], w)
		}
	}
}

func TestFullFormSelectedWhenHistoryDeep(t *testing.T) {
	d, h := 2, 2 // 2h=4 >= d=2 -> full
	y := mat.NewDense(d, h, []float64{0.2, 0.1, -0.1, 0.3})
	dk := []float64{1.0, 1.0}
	ninvRST := mat.NewDense(h, d, []float64{-0.1, 0.05, 0.02, -0.2})
	alpha := []float64{1, 1}
	point := []float64{0, 0}
	grad := []float64{0.1, -0.1}

	a, err := Build(d, History{Y: y, Dk: dk, NinvRST: ninvRST}, alpha, point, grad)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !a.UseFull || a.Q != nil {
		t.Fatalf("use_full must hold and Q must be nil when 2h >= D")
	}
	r, c := a.L.Dims()
	if r != d || c != d {
		t.Fatalf("L dims = (%d,%d), want (%d,%d)", r, c, d, d)
	}
	for i := 0; i < d; i++ {
		if a.L.At(i, i) <= 0 {
			t.Fatalf("L diagonal must be positive at %d, got %v", i, a.L.At(i, i))
		}
	}
}

func TestSparseFormSelectedWhenHistoryShallow(t *testing.T) {
	d, h := 6, 1 // 2h=2 < d=6 -> sparse
	y := mat.NewDense(d, h, []float64{0.1, 0.2, -0.1, 0.05, 0.0, 0.3})
	dk := []float64{1.0}
	ninvRST := mat.NewDense(h, d, []float64{-0.05, 0.02, 0.01, -0.03, 0.04, -0.02})
	alpha := make([]float64, d)
	point := make([]float64, d)
	grad := make([]float64, d)
	for i := range alpha {
		alpha[i] = 1
		grad[i] = 0.1
	}

	a, err := Build(d, History{Y: y, Dk: dk, NinvRST: ninvRST}, alpha, point, grad)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if a.UseFull {
		t.Fatalf("expected sparse form when 2h < D")
	}
	if a.Q == nil {
		t.Fatalf("sparse form must populate Q")
	}
	qr, qc := a.Q.Dims()
	if qr != d || qc != 2*h {
		t.Fatalf("Q dims = (%d,%d), want (%d,%d)", qr, qc, d, 2*h)
	}
}
