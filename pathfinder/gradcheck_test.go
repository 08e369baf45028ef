package pathfinder

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/pathfinder-go/pathfinder/numdiff"
)

// checkGradient verifies model.LogDensity's analytic gradient at u against
// a central finite-difference Jacobian, the same oracle role `numdiff`
// plays in the teacher's own test suite (numeric differentiation as a
// correctness check, not a production code path).
func checkGradient(t *testing.T, model Model, u []float64, tol float64) {
	t.Helper()
	n := len(u)
	_, analytic, err := model.LogDensity(u)
	if err != nil {
		t.Fatalf("LogDensity: %v", err)
	}

	spec := numdiff.ApproxSpec{
		N:      n,
		M:      1,
		Method: numdiff.Central,
		Object: func(x, y []float64) {
			lp, _, err := model.LogDensity(x)
			if err != nil {
				lp = math.NaN()
			}
			y[0] = lp
		},
	}
	numeric := make([]float64, n)
	if err := spec.Diff(u, numeric); err != nil {
		t.Fatalf("numdiff.Diff: %v", err)
	}

	for i := range analytic {
		if math.Abs(analytic[i]-numeric[i]) > tol {
			t.Fatalf("grad[%d] analytic=%v numeric=%v, want within %v", i, analytic[i], numeric[i], tol)
		}
	}
}

func TestGaussianModelGradientMatchesFiniteDifference(t *testing.T) {
	sigma := mat.NewSymDense(2, nil)
	sigma.SetSym(0, 0, 2)
	sigma.SetSym(0, 1, 0.5)
	sigma.SetSym(1, 1, 1)
	model := newGaussianModel([]float64{3, -1}, sigma)

	checkGradient(t, model, []float64{1.2, -0.4}, 1e-5)
}

func TestRosenbrockGradientMatchesFiniteDifference(t *testing.T) {
	checkGradient(t, rosenbrockModel{}, []float64{0.3, 0.2}, 1e-4)
}
