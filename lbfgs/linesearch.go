// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lbfgs

import "math"

const (
	p5         = 0.5
	p66        = 0.66
	xTrapLower = 1.1
	xTrapUpper = 4.0
)

const (
	stageArmijo = 1
	stageWolfe  = 2
)

// stepTask tracks the state of the scalar step-length search below.
type stepTask int

const (
	stepStart stepTask = 0
	stepConv  stepTask = 1 << (4 + iota)
	stepEvalFG
	stepError
	stepWarn
)

const (
	stepErrOverLower = stepError | (1 + iota)
	stepErrOverUpper
	stepErrNegInitG
	stepErrNegAlpha
	stepErrNegBeta
	stepErrNegEps
	stepErrLower
	stepErrUpper
	stepWarnRoundErr = stepWarn | (1 + iota)
	stepWarnReachEps
	stepWarnReachMax
	stepWarnReachMin
)

// stepTol bundles the Wolfe-condition tolerances and step bracket for a
// scalar line search.
type stepTol struct {
	alpha, beta, eps float64
	lower, upper     float64
}

// stepState is the scratch state a scalar line search threads across calls.
type stepState struct {
	bracket    bool
	stage      int
	g0, gx, gy float64
	f0, fx, fy float64
	stx, sty   float64
	width      [2]float64
	bound      [2]float64
}

// scalarSearch finds a step length stp along a fixed direction satisfying
//
//	sufficient decrease: f(stp) <= f(0) + tol.alpha*stp*f'(0)
//	curvature:           |f'(stp)| <= tol.beta*|f'(0)|
//
// This is the Moré–Thuente step-length search: each call refines a bracket
// [stx, sty] known to contain a step meeting both conditions, trying a
// cubic/quadratic/secant step each round. Ported from the teacher's
// unconstrained scalar step search — unlike the bound-constrained subspace
// machinery elsewhere in the teacher, this routine has no notion of box
// constraints and carries over unchanged into Pathfinder's unconstrained
// setting.
func scalarSearch(f, g, stp float64, task stepTask, tol *stepTol, ctx *stepState) (float64, stepTask) {

	if task == stepStart {
		switch {
		case stp < tol.lower:
			task = stepErrOverLower
		case stp > tol.upper:
			task = stepErrOverUpper
		case g >= 0:
			task = stepErrNegInitG
		case tol.alpha < 0:
			task = stepErrNegAlpha
		case tol.beta < 0:
			task = stepErrNegBeta
		case tol.eps < 0:
			task = stepErrNegEps
		case tol.lower < 0:
			task = stepErrLower
		case tol.upper < tol.lower:
			task = stepErrUpper
		}
		if task&stepError > 0 {
			return stp, task
		}

		ctx.bracket = false
		ctx.stage = stageArmijo
		ctx.f0, ctx.g0 = f, g
		ctx.width[0] = tol.upper - tol.lower
		ctx.width[1] = ctx.width[0] / p5

		ctx.stx, ctx.fx, ctx.gx = 0, ctx.f0, ctx.g0
		ctx.sty, ctx.fy, ctx.gy = 0, ctx.f0, ctx.g0
		ctx.bound[0] = 0
		ctx.bound[1] = stp + xTrapUpper*stp
		return stp, stepEvalFG
	}

	gTest := tol.alpha * ctx.g0
	fTest := ctx.f0 + stp*gTest

	stpMin, stpMax := ctx.bound[0], ctx.bound[1]
	switch {
	case ctx.bracket && (stp <= stpMin || stp >= stpMax):
		task = stepWarnRoundErr
	case ctx.bracket && (stpMax-stpMin) <= tol.eps*stpMax:
		task = stepWarnReachEps
	case stp == tol.upper && f <= fTest && g <= gTest:
		task = stepWarnReachMax
	case stp == tol.lower && (f > fTest || g >= gTest):
		task = stepWarnReachMin
	case f <= fTest && math.Abs(g) <= tol.beta*(-ctx.g0):
		task = stepConv
	}
	if task&(stepWarn|stepConv) > 0 {
		return stp, task
	}

	if ctx.stage == stageArmijo && f <= fTest && g >= 0 {
		ctx.stage = stageWolfe
	}

	if ctx.stage == stageArmijo && f <= ctx.fx && f > fTest {
		fm := f - stp*gTest
		fxm := ctx.fx - ctx.stx*gTest
		fym := ctx.fy - ctx.sty*gTest
		gm := g - gTest
		gxm := ctx.gx - gTest
		gym := ctx.gy - gTest
		scalarStep(&ctx.stx, &fxm, &gxm, &ctx.sty, &fym, &gym, &stp, fm, gm, &ctx.bracket, ctx.bound)
		ctx.fx = fxm + ctx.stx*gTest
		ctx.fy = fym + ctx.sty*gTest
		ctx.gx = gxm + gTest
		ctx.gy = gym + gTest
	} else {
		scalarStep(&ctx.stx, &ctx.fx, &ctx.gx, &ctx.sty, &ctx.fy, &ctx.gy, &stp, f, g, &ctx.bracket, ctx.bound)
	}

	if ctx.bracket {
		if math.Abs(ctx.sty-ctx.stx) >= p66*ctx.width[1] {
			stp = ctx.stx + p5*(ctx.sty-ctx.stx)
		}
		ctx.width[1] = ctx.width[0]
		ctx.width[0] = math.Abs(ctx.sty - ctx.stx)
	}

	if ctx.bracket {
		stpMin = math.Min(ctx.stx, ctx.sty)
		stpMax = math.Max(ctx.stx, ctx.sty)
	} else {
		stpMin = stp + xTrapLower*(stp-ctx.stx)
		stpMax = stp + xTrapUpper*(stp-ctx.stx)
	}
	ctx.bound[0], ctx.bound[1] = stpMin, stpMax

	stp = math.Min(math.Max(stp, tol.lower), tol.upper)

	if (ctx.bracket && (stp <= stpMin || stp >= stpMax)) || (ctx.bracket && stpMax-stpMin <= tol.eps*stpMax) {
		stp = ctx.stx
	}

	return stp, stepEvalFG
}

// scalarStep computes a safeguarded trial step and updates the bracket
// [stx, sty] known to contain a step satisfying both line-search
// conditions. See Moré & Thuente (1994), §4.
func scalarStep(
	stx, fx, dx *float64,
	sty, fy, dy *float64,
	stp *float64, fp, dp float64,
	bracket *bool, bound [2]float64) {

	var gamma, p, q, r, s, sgnd, stpc, stpf, stpq, theta float64
	stpmin, stpmax := bound[0], bound[1]
	sgnd = dp * (*dx / math.Abs(*dx))

	switch {
	case fp > *fx:
		theta = 3*(*fx-fp)/(*stp-*stx) + *dx + dp
		s = math.Max(math.Max(math.Abs(theta), math.Abs(*dx)), math.Abs(dp))
		gamma = s * math.Sqrt((theta/s)*(theta/s)-(*dx/s)*(dp/s))
		if *stp < *stx {
			gamma = -gamma
		}
		p = (gamma - *dx) + theta
		q = ((gamma - *dx) + gamma) + dp
		r = p / q
		stpc = *stx + r*(*stp-*stx)
		stpq = *stx + ((*dx/((*fx-fp)/(*stp-*stx)+*dx))/2)*(*stp-*stx)
		if math.Abs(stpc-*stx) < math.Abs(stpq-*stx) {
			stpf = stpc
		} else {
			stpf = stpc + (stpq-stpc)/2
		}
		*bracket = true
	case sgnd < 0:
		theta = 3*(*fx-fp)/(*stp-*stx) + *dx + dp
		s = math.Max(math.Max(math.Abs(theta), math.Abs(*dx)), math.Abs(dp))
		gamma = s * math.Sqrt((theta/s)*(theta/s)-(*dx/s)*(dp/s))
		if *stp > *stx {
			gamma = -gamma
		}
		p = (gamma - dp) + theta
		q = ((gamma - dp) + gamma) + *dx
		r = p / q
		stpc = *stp + r*(*stx-*stp)
		stpq = *stp + (dp/(dp-*dx))*(*stx-*stp)
		if math.Abs(stpc-*stp) > math.Abs(stpq-*stp) {
			stpf = stpc
		} else {
			stpf = stpq
		}
		*bracket = true
	case math.Abs(dp) < math.Abs(*dx):
		theta = 3*(*fx-fp)/(*stp-*stx) + *dx + dp
		s = math.Max(math.Max(math.Abs(theta), math.Abs(*dx)), math.Abs(dp))
		gamma = s * math.Sqrt(math.Max(0, (theta/s)*(theta/s)-(*dx/s)*(dp/s)))
		if *stp > *stx {
			gamma = -gamma
		}
		p = (gamma - dp) + theta
		q = (gamma + (*dx - dp)) + gamma
		r = p / q
		if r < 0 && gamma != 0 {
			stpc = *stp + r*(*stx-*stp)
		} else if *stp > *stx {
			stpc = stpmax
		} else {
			stpc = stpmin
		}
		stpq = *stp + (dp/(dp-*dx))*(*stx-*stp)
		if *bracket {
			if math.Abs(stpc-*stp) < math.Abs(stpq-*stp) {
				stpf = stpc
			} else {
				stpf = stpq
			}
			if *stp > *stx {
				stpf = math.Min(*stp+p66*(*sty-*stp), stpf)
			} else {
				stpf = math.Max(*stp+p66*(*sty-*stp), stpf)
			}
		} else {
			if math.Abs(stpc-*stp) > math.Abs(stpq-*stp) {
				stpf = stpc
			} else {
				stpf = stpq
			}
			stpf = math.Min(stpmax, stpf)
			stpf = math.Max(stpmin, stpf)
		}
	default:
		if *bracket {
			theta = 3*(fp-*fy)/(*sty-*stp) + *dy + dp
			s = math.Max(math.Max(math.Abs(theta), math.Abs(*dy)), math.Abs(dp))
			gamma = s * math.Sqrt((theta/s)*(theta/s)-(*dy/s)*(dp/s))
			if *stp > *sty {
				gamma = -gamma
			}
			p = (gamma - dp) + theta
			q = ((gamma - dp) + gamma) + *dy
			r = p / q
			stpc = *stp + r*(*sty-*stp)
			stpf = stpc
		} else if *stp > *stx {
			stpf = stpmax
		} else {
			stpf = stpmin
		}
	}

	if fp > *fx {
		*sty, *fy, *dy = *stp, fp, dp
	} else {
		if sgnd < 0 {
			*sty, *fy, *dy = *stx, *fx, *dx
		}
		*stx, *fx, *dx = *stp, fp, dp
	}
	*stp = stpf
}
