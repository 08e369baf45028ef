// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pathfinder

import (
	"errors"

	"github.com/pathfinder-go/pathfinder/lbfgs"
)

// Config collects a single path's tunables (spec.md §6's external-interface
// table), mirroring the teacher's plain-struct-of-knobs `Problem`
// (`lbfgsb/optimize.go`).
type Config struct {
	Model Model

	// Init holds user-supplied unconstrained starting values, one entry per
	// dimension; use math.NaN() for a component that should instead be
	// drawn Uniform(-InitRadius, InitRadius).
	Init []float64
	Dim  int

	RandomSeed uint64
	PathID     uint64
	InitRadius float64

	HistorySize int
	InitAlpha   float64

	TolObj     float64
	TolRelObj  float64
	TolGrad    float64
	TolRelGrad float64
	TolParam   float64

	NumIterations int
	SaveIterations bool
	Refresh        int

	NumElboDraws int
	NumDraws     int

	ReturnLpSamples bool

	// Interrupt is the cooperative-cancellation checkpoint (spec.md §5):
	// called once per OPTIMIZE iteration, an error aborts the path.
	Interrupt func() error

	Logger *Logger
}

// built is the validated, defaulted form of Config the orchestrator
// actually runs against — the teacher's `Problem.New` returning an
// `*Optimizer` split, collapsed to a plain validation step since Pathfinder
// has no persistent optimizer object to hand back.
type built struct {
	cfg    Config
	logger *Logger
	driverCfg lbfgs.Config
}

func (c Config) build() (*built, error) {
	switch {
	case c.Model == nil:
		return nil, errors.New("pathfinder: Model is required")
	case c.Dim <= 0:
		return nil, errors.New("pathfinder: Dim must be positive")
	case c.Init != nil && len(c.Init) != c.Dim:
		return nil, errors.New("pathfinder: len(Init) must equal Dim")
	case c.InitRadius < 0:
		return nil, errors.New("pathfinder: InitRadius must be >= 0")
	case c.HistorySize < 1:
		return nil, errors.New("pathfinder: HistorySize must be >= 1")
	case c.InitAlpha <= 0:
		return nil, errors.New("pathfinder: InitAlpha must be > 0")
	case c.NumElboDraws < 1:
		return nil, errors.New("pathfinder: NumElboDraws must be >= 1")
	case c.NumDraws < 0:
		return nil, errors.New("pathfinder: NumDraws must be >= 0")
	case c.NumIterations < 0:
		return nil, errors.New("pathfinder: NumIterations must be >= 0")
	}

	driverCfg := lbfgs.Config{
		Dim:         c.Dim,
		HistorySize: c.HistorySize,
		InitStep:    c.InitAlpha,
		Tol: lbfgs.Tolerances{
			ObjChange:    c.TolObj,
			RelObjChange: c.TolRelObj,
			GradNorm:     c.TolGrad,
			RelGradNorm:  c.TolRelGrad,
			ParamNorm:    c.TolParam,
			MaxIters:     c.NumIterations,
		},
	}

	return &built{cfg: c, logger: defaultLogger(c.Logger), driverCfg: driverCfg}, nil
}

// ReturnCode is spec.md §6's return-code enum.
type ReturnCode int

const (
	OK       ReturnCode = 0
	SOFTWARE ReturnCode = 1
)

// Result is the public PathResult (spec.md §3).
type Result struct {
	ReturnCode       ReturnCode
	LpRatio          []float64
	ParamNames       []string
	ConstrainedDraws [][]float64 // rows = paramNames + lp_approx__ + lp__, cols = draws
	FnCalls          int
}
