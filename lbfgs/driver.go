// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package lbfgs implements the L-BFGS quasi-Newton driver wrapper
// Pathfinder walks to produce its sequence of iterates, gradients, and
// implicit inverse-Hessian history. It generalizes the teacher's
// bound-constrained L-BFGS-B driver (`_examples/curioloop-optimizer/lbfgsb`)
// down to the unconstrained case Pathfinder's unconstrained parameter
// space requires: no Generalized Cauchy Point, no active-set subspace
// minimization, just the classical two-loop recursion direction plus a
// Moré–Thuente step-length search.
package lbfgs

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// StepCode mirrors the teacher's iterTask/errInfo split collapsed into one
// signed code: zero means the driver advanced to a new iterate, positive
// values are normal termination reasons, negative values are failures.
type StepCode int

const (
	StepAdvance StepCode = 0

	StepConvObj      StepCode = 1
	StepConvRelObj   StepCode = 2
	StepConvGrad     StepCode = 3
	StepConvRelGrad  StepCode = 4
	StepConvParam    StepCode = 5
	StepConvMaxIters StepCode = 6

	StepFailedLineSearch StepCode = -1
	StepFailedAscentDir  StepCode = -2
)

// CodeString returns a short human-readable description of a StepCode,
// mirroring the teacher's get_code_string.
func CodeString(code StepCode) string {
	switch code {
	case StepAdvance:
		return "advanced"
	case StepConvObj:
		return "converged: |Δf| <= tol_obj"
	case StepConvRelObj:
		return "converged: |Δf|/|f| <= tol_rel_obj"
	case StepConvGrad:
		return "converged: |∇f| <= tol_grad"
	case StepConvRelGrad:
		return "converged: |∇f|/|f| <= tol_rel_grad"
	case StepConvParam:
		return "converged: |Δx| <= tol_param"
	case StepConvMaxIters:
		return "stopped: reached max_iters"
	case StepFailedLineSearch:
		return "failed: line search exhausted"
	case StepFailedAscentDir:
		return "failed: ascent direction after Hessian reset"
	default:
		return "unknown"
	}
}

// Eval evaluates the (negative log density) objective and its gradient at
// x, writing the gradient into g. An error signals the objective could not
// be evaluated at x (e.g. the model's log_prob diverged).
type Eval func(x []float64, g []float64) (f float64, err error)

// Tolerances are the convergence options spec.md §6 names.
type Tolerances struct {
	ObjChange    float64 // tol_obj
	RelObjChange float64 // tol_rel_obj
	GradNorm     float64 // tol_grad
	RelGradNorm  float64 // tol_rel_grad
	ParamNorm    float64 // tol_param
	MaxIters     int     // num_iterations
}

// Config collects the Driver's tunables.
type Config struct {
	Dim         int
	HistorySize int     // h
	InitStep    float64 // α₀, the line-search initial step
	Tol         Tolerances
}

const (
	lineSearchAlpha  = 1.0e-3
	lineSearchBeta   = 0.9
	lineSearchEps    = 0.1
	lineSearchNoBnd  = 1.0e+10
	lineSearchMaxTry = 20
)

// Driver wraps an unconstrained line-search L-BFGS optimizer, owning the
// (Δx, Δg) history window and the current diagonal inverse-Hessian scaling
// α (spec.md §3 HistoryWindow, DiagonalScaling).
type Driver struct {
	cfg     Config
	eval    Eval
	history *History
	alpha   []float64

	x, g []float64
	f    float64

	iter      int
	gradEvals int
	note      string
	prevStep  float64
}

// NewDriver constructs a Driver already positioned at (x0, f0, g0) — the
// orchestrator (§4.6 INIT) is responsible for the initial evaluation; the
// driver only ever advances from there.
func NewDriver(cfg Config, eval Eval, x0 []float64, f0 float64, g0 []float64) *Driver {
	alpha := make([]float64, cfg.Dim)
	for i := range alpha {
		alpha[i] = 1
	}
	x := make([]float64, cfg.Dim)
	g := make([]float64, cfg.Dim)
	copy(x, x0)
	copy(g, g0)
	return &Driver{
		cfg:     cfg,
		eval:    eval,
		history: NewHistory(cfg.Dim, cfg.HistorySize),
		alpha:   alpha,
		x:       x,
		g:       g,
		f:       f0,
	}
}

func (d *Driver) CurrX() []float64     { return d.x }
func (d *Driver) CurrG() []float64     { return d.g }
func (d *Driver) Logp() float64        { return d.f }
func (d *Driver) IterNum() int         { return d.iter }
func (d *Driver) GradEvals() int       { return d.gradEvals }
func (d *Driver) Note() string         { return d.note }
func (d *Driver) PrevStepSize() float64 { return d.prevStep }
func (d *Driver) Alpha() []float64     { return d.alpha }
func (d *Driver) Alpha0() float64      { return d.cfg.InitStep }
func (d *Driver) History() *History    { return d.history }

// twoLoopDirection computes p = -Hg via the classical L-BFGS two-loop
// recursion with H0 = diag(alpha), using the accumulated history.
func twoLoopDirection(hist *History, alpha, g []float64) []float64 {
	n := len(g)
	q := make([]float64, n)
	copy(q, g)

	m := hist.Len()
	rho := make([]float64, m)
	a := make([]float64, m)

	for i := m - 1; i >= 0; i-- {
		s, y := hist.At(i)
		rho[i] = 1 / floats.Dot(y, s)
		a[i] = rho[i] * floats.Dot(s, q)
		floats.AddScaled(q, -a[i], y)
	}

	r := make([]float64, n)
	for i := range r {
		r[i] = q[i] * alpha[i]
	}

	for i := 0; i < m; i++ {
		s, y := hist.At(i)
		b := rho[i] * floats.Dot(y, r)
		floats.AddScaled(r, a[i]-b, s)
	}

	floats.Scale(-1, r)
	return r
}

// Step advances the driver by one quasi-Newton iteration: compute a
// descent direction from the current history, perform a Moré–Thuente line
// search along it, evaluate the new gradient, run the curvature test, and
// (if accepted) push the new (Δx, Δg) pair into the history.
//
// On StepFailedLineSearch, curr_x/curr_g are left at the previous iterate —
// callers must not treat this as an advancing step.
func (d *Driver) Step() StepCode {
	if d.iter >= d.cfg.Tol.MaxIters {
		return StepConvMaxIters
	}

	dir := twoLoopDirection(d.history, d.alpha, d.g)
	gd0 := floats.Dot(d.g, dir)

	if gd0 >= 0 {
		// Ascent direction: reset the Hessian memory and retry once with
		// steepest descent before giving up.
		d.history = NewHistory(d.cfg.Dim, d.cfg.HistorySize)
		for i := range d.alpha {
			d.alpha[i] = 1
		}
		dir = make([]float64, d.cfg.Dim)
		copy(dir, d.g)
		floats.Scale(-1, dir)
		gd0 = floats.Dot(d.g, dir)
		if gd0 >= 0 {
			d.note = "ascent direction after Hessian reset"
			return StepFailedAscentDir
		}
	}

	xNew, gNew, fNew, stp, ok := d.lineSearch(dir, gd0)
	if !ok {
		d.note = "line search exhausted"
		return StepFailedLineSearch
	}

	dx := make([]float64, d.cfg.Dim)
	dg := make([]float64, d.cfg.Dim)
	floats.SubTo(dx, xNew, d.x)
	floats.SubTo(dg, gNew, d.g)

	fOld := d.f
	xOld := d.x
	d.x, d.g, d.f = xNew, gNew, fNew
	d.iter++
	d.prevStep = stp

	if next, accepted := UpdateAlpha(d.alpha, dx, dg); accepted {
		d.alpha = next
		d.history.Push(dx, dg)
		d.note = ""
	} else {
		d.note = "curvature test rejected; α unchanged"
	}

	return d.checkConvergence(fOld, xOld, dx)
}

func (d *Driver) checkConvergence(fOld float64, xOld, dx []float64) StepCode {
	tol := d.cfg.Tol

	if tol.ObjChange > 0 && math.Abs(d.f-fOld) <= tol.ObjChange {
		return StepConvObj
	}
	if tol.RelObjChange > 0 {
		denom := math.Max(math.Abs(fOld), math.Max(math.Abs(d.f), 1))
		if math.Abs(d.f-fOld)/denom <= tol.RelObjChange {
			return StepConvRelObj
		}
	}
	gradNorm := floats.Norm(d.g, 2)
	if tol.GradNorm > 0 && gradNorm <= tol.GradNorm {
		return StepConvGrad
	}
	if tol.RelGradNorm > 0 {
		denom := math.Max(math.Abs(d.f), 1)
		if gradNorm/denom <= tol.RelGradNorm {
			return StepConvRelGrad
		}
	}
	if tol.ParamNorm > 0 && floats.Norm(dx, 2) <= tol.ParamNorm {
		return StepConvParam
	}
	if d.iter >= tol.MaxIters {
		return StepConvMaxIters
	}
	return StepAdvance
}

// lineSearch runs the Moré–Thuente scalar search along dir starting from
// the driver's current (x, f, g), returning the accepted iterate.
func (d *Driver) lineSearch(dir []float64, gd0 float64) (xNew, gNew []float64, fNew float64, stp float64, ok bool) {
	n := d.cfg.Dim
	dNorm := floats.Norm(dir, 2)

	stp = 1.0
	if d.iter == 0 {
		stp = math.Min(1/dNorm, lineSearchNoBnd)
		if d.cfg.InitStep > 0 {
			stp = math.Min(d.cfg.InitStep/dNorm, lineSearchNoBnd)
		}
	}

	tol := &stepTol{alpha: lineSearchAlpha, beta: lineSearchBeta, eps: lineSearchEps, lower: 0, upper: lineSearchNoBnd}
	state := &stepState{}
	task := stepStart

	x0 := make([]float64, n)
	copy(x0, d.x)
	g := make([]float64, n)
	gCur := make([]float64, n)

	stp, task = scalarSearch(d.f, gd0, stp, task, tol, state)
	if task&stepError > 0 {
		return nil, nil, 0, 0, false
	}

	xNew = make([]float64, n)
	for try := 0; try < lineSearchMaxTry; try++ {
		for i := range xNew {
			xNew[i] = x0[i] + stp*dir[i]
		}
		f, err := d.eval(xNew, gCur)
		d.gradEvals++
		if err != nil {
			// A divergent trial point leaves the interpolation nothing
			// finite to work with, so back off by halving the step and try
			// again, rather than aborting the whole step.
			stp *= 0.5
			continue
		}
		copy(g, gCur)
		gd := floats.Dot(g, dir)

		stp, task = scalarSearch(f, gd, stp, task, tol, state)
		if task&stepConv > 0 {
			return xNew, g, f, stp, true
		}
		if task&(stepError|stepWarn) > 0 {
			return nil, nil, 0, 0, false
		}
	}
	return nil, nil, 0, 0, false
}
