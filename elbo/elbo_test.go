package elbo

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/pathfinder-go/pathfinder/taylor"
)

func standardNormalLogDensity(d int) LogDensity {
	return func(u []float64) (float64, error) {
		sq := 0.0
		for _, v := range u {
			sq += v * v
		}
		return -0.5*sq - 0.5*float64(d)*math.Log(2*math.Pi), nil
	}
}

func TestElboExactForMatchingApproximation(t *testing.T) {
	d := 2
	alpha := []float64{1, 1}
	approx, err := taylor.Build(d, taylor.History{}, alpha, []float64{0, 0}, []float64{0, 0})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	rng := rand.New(rand.NewPCG(42, 0))
	est := Run(standardNormalLogDensity(d), approx, 20000, rng)

	if math.Abs(est.Elbo) > 0.05 {
		t.Fatalf("ELBO = %v, want close to 0 when q matches p exactly", est.Elbo)
	}
	if est.FnCalls != 20000 {
		t.Fatalf("FnCalls = %d, want 20000", est.FnCalls)
	}
	r, c := est.RepeatDraws.Dims()
	if r != d || c != 20000 {
		t.Fatalf("RepeatDraws dims = (%d,%d), want (%d,20000)", r, c, d)
	}
}

func TestElboDivergentLogProbMapsToNegInf(t *testing.T) {
	d := 1
	alpha := []float64{1}
	approx, err := taylor.Build(d, taylor.History{}, alpha, []float64{0}, []float64{0})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	logDensity := func(u []float64) (float64, error) {
		if u[0] < 0 {
			return 0, errAlways
		}
		return -0.5 * u[0] * u[0], nil
	}

	rng := rand.New(rand.NewPCG(1, 1))
	est := Run(logDensity, approx, 200, rng)

	finite := 0
	for _, v := range est.LpRatio {
		if !math.IsInf(v, -1) {
			finite++
		}
	}
	if finite == 0 {
		t.Fatalf("expected some finite lp_ratio entries")
	}
	if finite == len(est.LpRatio) {
		t.Fatalf("expected some -Inf entries from the divergent half")
	}
}

type staticErr string

func (e staticErr) Error() string { return string(e) }

const errAlways = staticErr("diverged")
