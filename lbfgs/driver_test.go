package lbfgs

import (
	"math"
	"testing"
)

// quadratic f(x) = 0.5 (x-mu)ᵀ A (x-mu), grad = A(x-mu), A diagonal SPD.
func quadraticEval(mu, a []float64) Eval {
	return func(x, g []float64) (float64, error) {
		f := 0.0
		for i := range x {
			d := x[i] - mu[i]
			g[i] = a[i] * d
			f += 0.5 * a[i] * d * d
		}
		return f, nil
	}
}

func TestDriverConvergesOnQuadratic(t *testing.T) {
	mu := []float64{3, -1}
	a := []float64{2, 5}
	eval := quadraticEval(mu, a)

	x0 := []float64{0, 0}
	g0 := make([]float64, 2)
	f0, _ := eval(x0, g0)

	cfg := Config{
		Dim:         2,
		HistorySize: 5,
		InitStep:    1,
		Tol: Tolerances{
			GradNorm: 1e-10,
			MaxIters: 100,
		},
	}
	d := NewDriver(cfg, eval, x0, f0, g0)

	var code StepCode
	for i := 0; i < cfg.Tol.MaxIters; i++ {
		code = d.Step()
		if code != StepAdvance {
			break
		}
	}

	if code != StepConvGrad {
		t.Fatalf("expected StepConvGrad, got %v (%s)", code, CodeString(code))
	}
	for i, want := range mu {
		if math.Abs(d.CurrX()[i]-want) > 1e-4 {
			t.Fatalf("x[%d] = %v, want close to %v", i, d.CurrX()[i], want)
		}
	}
	if d.History().Len() == 0 {
		t.Fatalf("expected at least one accepted curvature update in the history")
	}
}

func TestDriverStopsAtMaxIters(t *testing.T) {
	mu := []float64{3, -1}
	a := []float64{2, 5}
	eval := quadraticEval(mu, a)

	x0 := []float64{100, 100}
	g0 := make([]float64, 2)
	f0, _ := eval(x0, g0)

	cfg := Config{
		Dim:         2,
		HistorySize: 5,
		InitStep:    1,
		Tol:         Tolerances{MaxIters: 1},
	}
	d := NewDriver(cfg, eval, x0, f0, g0)

	code := d.Step()
	if code != StepConvMaxIters {
		t.Fatalf("expected StepConvMaxIters once iter reaches max_iters, got %v (%s)", code, CodeString(code))
	}
}
