// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package taylor builds the Taylor (normal) approximation of the target
// at an L-BFGS iterate, per spec.md §4.3: a dense full form when the
// history is deep relative to the dimension, and a low-rank-plus-diagonal
// sparse form otherwise. The R·X = Sᵀ solve that produces NinvRST is done
// by the caller before Build (pathfinder's taylorHistory); this package
// uses `gonum/mat`'s Cholesky and QR for the factorizations the teacher's
// bound-constrained code never needed.
package taylor

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Approximation is the multivariate normal approximating the target at
// one L-BFGS iterate (spec.md §3 TaylorApproximation).
type Approximation struct {
	XCenter    []float64
	LogDetChol float64
	L          *mat.Dense // upper-triangular D×D (full) or m×m (sparse)
	Q          *mat.Dense // D×m, nil when UseFull
	Alpha      []float64
	UseFull    bool
}

// History bundles the inputs the orchestrator assembles from the L-BFGS
// history window before calling Build: Y (gradient differences, D×h), the
// diagonal Dk of SᵀY, and NinvRST = -R⁻¹Sᵀ where R = upper(SᵀY).
type History struct {
	Y        *mat.Dense // D×h
	Dk       []float64  // h
	NinvRST  *mat.Dense // h×D
}

// Build constructs the Taylor approximation at the given point/gradient,
// selecting the full or sparse representation per spec.md §4.3's
// (deliberately non-obvious) rule: full when 2h >= D, sparse otherwise.
func Build(dim int, hist History, alpha, point, grad []float64) (*Approximation, error) {
	h := 0
	if hist.Y != nil {
		_, h = hist.Y.Dims()
	}

	if h == 0 {
		return buildEmptyHistory(alpha, point, grad), nil
	}

	if 2*h >= dim {
		return buildFull(dim, h, hist, alpha, point, grad)
	}
	return buildSparse(dim, h, hist, alpha, point, grad)
}

// buildEmptyHistory handles the degenerate iterate-zero case: with no
// accepted curvature updates yet, H = diag(alpha) exactly, both the full
// and sparse formulas collapse to the same diagonal normal.
func buildEmptyHistory(alpha, point, grad []float64) *Approximation {
	d := len(alpha)
	l := mat.NewDense(d, d, nil)
	logDet := 0.0
	xCenter := make([]float64, d)
	for i := 0; i < d; i++ {
		s := math.Sqrt(alpha[i])
		l.Set(i, i, s)
		logDet += math.Log(s)
		xCenter[i] = point[i] - alpha[i]*grad[i]
	}
	return &Approximation{
		XCenter:    xCenter,
		LogDetChol: logDet,
		L:          l,
		Alpha:      alpha,
		UseFull:    true,
	}
}

// buildFull implements the dense H = MᵀNinvRST + NinvRSTᵀ(M+T·NinvRST) +
// diag(alpha) construction and its Cholesky factor.
func buildFull(d, h int, hist History, alpha, point, grad []float64) (*Approximation, error) {
	y := hist.Y

	// T = (diag(√α)Y)ᵀ(diag(√α)Y) + diag(Dk) = Yᵀ diag(α) Y + diag(Dk)
	ay := mat.NewDense(d, h, nil)
	for i := 0; i < d; i++ {
		for j := 0; j < h; j++ {
			ay.Set(i, j, alpha[i]*y.At(i, j))
		}
	}
	t := mat.NewDense(h, h, nil)
	t.Mul(y.T(), ay)
	for i := 0; i < h; i++ {
		t.Set(i, i, t.At(i, i)+hist.Dk[i])
	}

	// M = Yᵀ diag(alpha), h×D
	m := mat.NewDense(h, d, nil)
	m.Mul(y.T(), diag(alpha))

	// H = MᵀNinvRST + NinvRSTᵀ(M + T·NinvRST) + diag(alpha)
	nrst := hist.NinvRST // h×D

	mtNrst := mat.NewDense(d, d, nil)
	mtNrst.Mul(m.T(), nrst)

	tNrst := mat.NewDense(h, d, nil)
	tNrst.Mul(t, nrst)

	mPlusTNrst := mat.NewDense(h, d, nil)
	mPlusTNrst.Add(m, tNrst)

	nrstTmPlusTNrst := mat.NewDense(d, d, nil)
	nrstTmPlusTNrst.Mul(nrst.T(), mPlusTNrst)

	hMat := mat.NewDense(d, d, nil)
	hMat.Add(mtNrst, nrstTmPlusTNrst)
	for i := 0; i < d; i++ {
		hMat.Set(i, i, hMat.At(i, i)+alpha[i])
	}

	sym := symmetrize(hMat, d)
	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok {
		return nil, errors.New("taylor: full-form H is not positive definite")
	}

	var lTri mat.TriDense
	chol.UTo(&lTri)
	l := mat.NewDense(d, d, nil)
	l.Copy(&lTri)

	logDet := 0.0
	for i := 0; i < d; i++ {
		logDet += math.Log(math.Abs(l.At(i, i)))
	}

	hg := make([]float64, d)
	mat.NewVecDense(d, hg).MulVec(hMat, mat.NewVecDense(d, grad))
	xCenter := make([]float64, d)
	floats.SubTo(xCenter, point, hg)

	return &Approximation{
		XCenter:    xCenter,
		LogDetChol: logDet,
		L:          l,
		Alpha:      alpha,
		UseFull:    true,
	}, nil
}

// buildSparse implements the low-rank-plus-diagonal form: a QR of the
// stacked (√α Y, NinvRSTᵀ/√α) factors, then a small (2h×2h) Cholesky.
func buildSparse(d, h int, hist History, alpha, point, grad []float64) (*Approximation, error) {
	y := hist.Y
	nrst := hist.NinvRST // h×D
	m := 2 * h

	// Wᵀ (m×D): top h rows = (diag(√α)Y)ᵀ, bottom h rows = NinvRST·diag(1/√α)
	wt := mat.NewDense(m, d, nil)
	for i := 0; i < h; i++ {
		for j := 0; j < d; j++ {
			wt.Set(i, j, math.Sqrt(alpha[j])*y.At(j, i))
		}
	}
	for i := 0; i < h; i++ {
		for j := 0; j < d; j++ {
			wt.Set(h+i, j, nrst.At(i, j)/math.Sqrt(alpha[j]))
		}
	}
	w := mat.NewDense(d, m, nil)
	w.Copy(wt.T())

	// T = Yᵀ diag(α) Y + diag(Dk), as in the full form.
	ay := mat.NewDense(d, h, nil)
	for i := 0; i < d; i++ {
		for j := 0; j < h; j++ {
			ay.Set(i, j, alpha[i]*y.At(i, j))
		}
	}
	t := mat.NewDense(h, h, nil)
	t.Mul(y.T(), ay)
	for i := 0; i < h; i++ {
		t.Set(i, i, t.At(i, i)+hist.Dk[i])
	}

	// M_bar (m×m): [[0, I_h], [I_h, T]]
	mBar := mat.NewDense(m, m, nil)
	for i := 0; i < h; i++ {
		mBar.Set(i, h+i, 1)
		mBar.Set(h+i, i, 1)
	}
	for i := 0; i < h; i++ {
		for j := 0; j < h; j++ {
			mBar.Set(h+i, h+j, t.At(i, j))
		}
	}

	var qr mat.QR
	qr.Factorize(w)

	mPrime := m
	if d < mPrime {
		mPrime = d
	}

	var qFull mat.Dense
	qr.QTo(&qFull)
	q := mat.DenseCopyOf(qFull.Slice(0, d, 0, mPrime))

	var rFull mat.Dense
	qr.RTo(&rFull)
	rBar := mat.DenseCopyOf(rFull.Slice(0, mPrime, 0, m))
	upperTriangularize(rBar, mPrime, m)

	// R_bar · M_bar · R_barᵀ + I
	rm := mat.NewDense(mPrime, m, nil)
	rm.Mul(rBar, mBar)
	rmrt := mat.NewDense(mPrime, mPrime, nil)
	rmrt.Mul(rm, rBar.T())
	for i := 0; i < mPrime; i++ {
		rmrt.Set(i, i, rmrt.At(i, i)+1)
	}

	sym := symmetrize(rmrt, mPrime)
	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok {
		return nil, errors.New("taylor: sparse-form inner matrix is not positive definite")
	}
	var lTri mat.TriDense
	chol.UTo(&lTri)
	l := mat.NewDense(mPrime, mPrime, nil)
	l.Copy(&lTri)

	logDet := 0.0
	for i := 0; i < mPrime; i++ {
		logDet += math.Log(math.Abs(l.At(i, i)))
	}
	for i := 0; i < d; i++ {
		logDet += 0.5 * math.Log(alpha[i])
	}

	// v = NinvRST·g, ag = α⊙g
	v := make([]float64, h)
	mat.NewVecDense(h, v).MulVec(nrst, mat.NewVecDense(d, grad))
	ag := make([]float64, d)
	for i := 0; i < d; i++ {
		ag[i] = alpha[i] * grad[i]
	}

	yv := make([]float64, d)
	mat.NewVecDense(d, yv).MulVec(y, mat.NewVecDense(h, v))

	ytAg := make([]float64, h)
	mat.NewVecDense(h, ytAg).MulVec(y.T(), mat.NewVecDense(d, ag))
	tv := make([]float64, h)
	mat.NewVecDense(h, tv).MulVec(t, mat.NewVecDense(h, v))
	inner := make([]float64, h)
	floats.AddTo(inner, ytAg, tv)

	nrstTInner := make([]float64, d)
	mat.NewVecDense(d, nrstTInner).MulVec(nrst.T(), mat.NewVecDense(h, inner))

	sum := make([]float64, d)
	for i := 0; i < d; i++ {
		sum[i] = ag[i] + alpha[i]*yv[i] + nrstTInner[i]
	}
	xCenter := make([]float64, d)
	floats.SubTo(xCenter, point, sum)

	return &Approximation{
		XCenter:    xCenter,
		LogDetChol: logDet,
		L:          l,
		Q:          q,
		Alpha:      alpha,
		UseFull:    false,
	}, nil
}

// upperTriangularize zeros any sub-diagonal numerical noise QR leaves
// below the main diagonal of an r×c factor.
func upperTriangularize(m *mat.Dense, r, c int) {
	for i := 0; i < r; i++ {
		for j := 0; j < i && j < c; j++ {
			m.Set(i, j, 0)
		}
	}
}

func diag(v []float64) *mat.Dense {
	n := len(v)
	d := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		d.Set(i, i, v[i])
	}
	return d
}

// symmetrize guards against floating-point asymmetry accumulated across
// the chained matrix products above before handing the result to Cholesky,
// which requires an exactly symmetric input.
func symmetrize(m *mat.Dense, n int) *mat.SymDense {
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := 0.5 * (m.At(i, j) + m.At(j, i))
			sym.SetSym(i, j, v)
		}
	}
	return sym
}
