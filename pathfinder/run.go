// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pathfinder

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/pathfinder-go/pathfinder/elbo"
	"github.com/pathfinder-go/pathfinder/lbfgs"
	"github.com/pathfinder-go/pathfinder/taylor"
)

// Run executes the single-path Pathfinder orchestrator state machine
// (spec.md §4.6): INIT → OPTIMIZE → TOPUP → EMIT, with a terminal FAIL when
// no iterate ever produces a valid approximation.
func Run(cfg Config) (*Result, error) {
	b, err := cfg.build()
	if err != nil {
		return nil, err
	}
	logger := b.logger
	start := time.Now()

	rng := rand.New(rand.NewPCG(cfg.RandomSeed, cfg.PathID))

	fnCalls := 0
	eval := func(x, g []float64) (float64, error) {
		lp, grad, err := cfg.Model.LogDensity(x)
		fnCalls++
		if err != nil {
			return 0, err
		}
		for i := range g {
			g[i] = -grad[i]
		}
		return -lp, nil
	}

	paramNames := cfg.Model.ConstrainedParamNames()
	header := append(append([]string{}, paramNames...), "lp_approx__", "lp__")
	writeHeader(logger, header)

	x0, f0, g0, ok := initParams(b, rng, eval)
	if !ok {
		logger.log("pathfinder: initialization failed after %d attempts\n", initRetryBudget)
		return &Result{ReturnCode: SOFTWARE, FnCalls: fnCalls}, nil
	}

	if cfg.SaveIterations {
		writeDiagnosticRecord(logger, x0, g0)
	}

	if cfg.NumIterations <= 0 {
		logger.log("pathfinder: num_iterations = 0, no iterate produced\n")
		return &Result{ReturnCode: SOFTWARE, FnCalls: fnCalls}, nil
	}

	driver := lbfgs.NewDriver(b.driverCfg, eval, x0, f0, g0)

	logDensity := func(u []float64) (float64, error) {
		lp, _, err := cfg.Model.LogDensity(u)
		return lp, err
	}

	bestElbo := math.Inf(-1)
	bestIter := -1
	var bestApprox *taylor.Approximation
	var bestEstimate *elbo.Estimate

	for {
		if b.cfg.Interrupt != nil {
			if err := b.cfg.Interrupt(); err != nil {
				return nil, err
			}
		}

		code := driver.Step()
		logIterSummary(logger, cfg.Refresh, driver, code)

		if cfg.SaveIterations {
			writeDiagnosticRecord(logger, driver.CurrX(), driver.CurrG())
		}

		if code >= lbfgs.StepAdvance {
			hist, herr := taylorHistory(driver.History())
			if herr == nil {
				approx, aerr := taylor.Build(cfg.Dim, hist, driver.Alpha(), driver.CurrX(), driver.CurrG())
				if aerr == nil {
					est := elbo.Run(logDensity, approx, cfg.NumElboDraws, rng)
					fnCalls += est.FnCalls

					// The first valid approximation is kept even when its
					// ELBO is -Inf (some draws diverged); later ones replace
					// it only with a strictly greater ELBO.
					if est.Elbo > bestElbo || (bestIter == -1 && !math.IsNaN(est.Elbo)) {
						bestElbo = est.Elbo
						bestIter = driver.IterNum()
						bestApprox = approx
						bestEstimate = est
					}
				} else {
					logger.log("pathfinder: iter %d taylor approximation failed: %v\n", driver.IterNum(), aerr)
				}
			} else {
				logger.log("pathfinder: iter %d history assembly failed: %v\n", driver.IterNum(), herr)
			}
		}

		if code != lbfgs.StepAdvance {
			break
		}
	}

	if bestIter == -1 {
		return &Result{ReturnCode: SOFTWARE, FnCalls: fnCalls}, nil
	}

	draws := mat.DenseCopyOf(bestEstimate.RepeatDraws)
	k, _ := bestEstimate.LpMat.Dims()
	logQ := make([]float64, k)
	logP := make([]float64, k)
	for j := 0; j < k; j++ {
		logQ[j] = bestEstimate.LpMat.At(j, 0)
		logP[j] = bestEstimate.LpMat.At(j, 1)
	}

	remaining := cfg.NumDraws - cfg.NumElboDraws
	if remaining > 0 {
		topDraws, topLogQ, topLogP, calls, terr := topUp(bestApprox, cfg.Model, rng, remaining)
		fnCalls += calls
		if terr != nil {
			logger.log("pathfinder: top-up failed, falling back to ELBO draws: %v\n", terr)
		} else {
			draws = hstack(draws, topDraws)
			logQ = append(logQ, topLogQ...)
			logP = append(logP, topLogP...)
		}
	}

	total := len(logQ)
	constrainedRows := len(paramNames) + 2
	matrix := make([][]float64, constrainedRows)
	for i := range matrix {
		matrix[i] = make([]float64, total)
	}

	d, _ := draws.Dims()
	col := make([]float64, d)
	for j := 0; j < total; j++ {
		for i := 0; i < d; i++ {
			col[i] = draws.At(i, j)
		}
		constrained, werr := cfg.Model.WriteArray(rng, col)
		if werr != nil {
			return nil, fmt.Errorf("pathfinder: write_array failed on draw %d: %w", j, werr)
		}
		for i, v := range constrained {
			matrix[i][j] = v
		}
		matrix[len(paramNames)][j] = logQ[j]
		matrix[len(paramNames)+1][j] = logP[j]

		writeRecord(logger, constrained, logQ[j], logP[j])
	}
	writeFooter(logger, time.Since(start))

	lpRatio := make([]float64, total)
	for j := range lpRatio {
		lpRatio[j] = logP[j] - logQ[j]
	}

	res := &Result{ReturnCode: OK, FnCalls: fnCalls}
	if cfg.ReturnLpSamples {
		res.LpRatio = lpRatio
		res.ParamNames = paramNames
		res.ConstrainedDraws = matrix
	}
	return res, nil
}

func logIterSummary(logger *Logger, refresh int, d *lbfgs.Driver, code lbfgs.StepCode) {
	if refresh <= 0 || !logger.enable(LogIter) {
		return
	}
	shouldLog := code != lbfgs.StepAdvance || d.Note() != "" || d.IterNum() == 0 || (d.IterNum()+1)%refresh == 0
	if !shouldLog {
		return
	}
	logger.log("iter %6d: logp = %-12.6f  |grad| = %-10.6g  %s\n",
		d.IterNum(), d.Logp(), floats.Norm(d.CurrG(), 2), lbfgs.CodeString(code))
}

func hstack(a, b *mat.Dense) *mat.Dense {
	r, ca := a.Dims()
	_, cb := b.Dims()
	out := mat.NewDense(r, ca+cb, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < ca; j++ {
			out.Set(i, j, a.At(i, j))
		}
		for j := 0; j < cb; j++ {
			out.Set(i, ca+j, b.At(i, j))
		}
	}
	return out
}
