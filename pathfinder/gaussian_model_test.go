package pathfinder

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// gaussianModel is a Model wrapping an unnormalized N(mu, Sigma) target,
// used across the end-to-end tests below in place of a differentiable
// probabilistic-programming model (spec.md §1 keeps that external).
type gaussianModel struct {
	mu       []float64
	sigmaInv *mat.Dense
	logDet   float64
	names    []string
}

func newGaussianModel(mu []float64, sigma *mat.SymDense) *gaussianModel {
	d := len(mu)
	var chol mat.Cholesky
	if ok := chol.Factorize(sigma); !ok {
		panic("newGaussianModel: sigma not positive definite")
	}
	var sigmaInv mat.Dense
	sigmaInv.Inverse(sigma)

	logDet := chol.LogDet()
	names := make([]string, d)
	for i := range names {
		names[i] = fmt.Sprintf("x%d", i+1)
	}
	return &gaussianModel{mu: mu, sigmaInv: &sigmaInv, logDet: logDet, names: names}
}

func (m *gaussianModel) LogDensity(u []float64) (float64, []float64, error) {
	d := len(u)
	diff := make([]float64, d)
	for i := range diff {
		diff[i] = u[i] - m.mu[i]
	}
	sInvDiff := make([]float64, d)
	mat.NewVecDense(d, sInvDiff).MulVec(m.sigmaInv, mat.NewVecDense(d, diff))

	quad := 0.0
	for i := range diff {
		quad += diff[i] * sInvDiff[i]
	}
	lp := -0.5*quad - 0.5*float64(d)*math.Log(2*math.Pi) - 0.5*m.logDet

	grad := make([]float64, d)
	for i := range grad {
		grad[i] = -sInvDiff[i]
	}
	return lp, grad, nil
}

func (m *gaussianModel) WriteArray(_ *rand.Rand, uncon []float64) ([]float64, error) {
	out := make([]float64, len(uncon))
	copy(out, uncon)
	return out, nil
}

func (m *gaussianModel) ConstrainedParamNames() []string { return m.names }

func identitySigma(d int) *mat.SymDense {
	s := mat.NewSymDense(d, nil)
	for i := 0; i < d; i++ {
		s.SetSym(i, i, 1)
	}
	return s
}
