package taylor

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestSamplesAtZeroEqualsCenter(t *testing.T) {
	alpha := []float64{2, 3}
	point := []float64{1, -2}
	grad := []float64{0, 0}

	a, err := Build(2, History{}, alpha, point, grad)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	u := mat.NewDense(2, 3, nil) // all zero columns
	draws := a.Samples(u)
	r, c := draws.Dims()
	if r != 2 || c != 3 {
		t.Fatalf("draws dims = (%d,%d), want (2,3)", r, c)
	}
	for j := 0; j < c; j++ {
		for i := 0; i < r; i++ {
			if math.Abs(draws.At(i, j)-a.XCenter[i]) > 1e-10 {
				t.Fatalf("draws[%d][%d] = %v, want x_center %v", i, j, draws.At(i, j), a.XCenter[i])
			}
		}
	}
}

func TestLogQFormula(t *testing.T) {
	alpha := []float64{1, 1}
	a, err := Build(2, History{}, alpha, []float64{0, 0}, []float64{0, 0})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	u := mat.NewDense(2, 1, []float64{1.5, -0.5})
	lq := a.LogQ(u)
	want := -a.LogDetChol - 0.5*(1.5*1.5+0.5*0.5+2*math.Log(2*math.Pi))
	if math.Abs(lq[0]-want) > 1e-12 {
		t.Fatalf("LogQ = %v, want %v", lq[0], want)
	}
}
