// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pathfinder implements the single-path orchestrator: it sequences
// the lbfgs driver, the taylor approximation builder, and the elbo
// estimator, tracks the best-ELBO iterate, tops up draws, and emits the
// constrained draw matrix. Grounded on the teacher's
// `lbfgsb/optimize.go` `Problem.New`/`Optimizer.Fit`/`Logger` shape
// (`_examples/curioloop-optimizer`).
package pathfinder

import "math/rand/v2"

// Model is the external collaborator spec.md §1 keeps out of scope: it
// supplies the log density and the unconstraining transform, nothing else.
type Model interface {
	// LogDensity evaluates log p and its gradient at an unconstrained u.
	// An error models the model's log_prob throwing.
	LogDensity(u []float64) (lp float64, grad []float64, err error)
	// WriteArray maps an unconstrained draw to constrained space, possibly
	// using rng for any constrained-only randomness the transform needs.
	WriteArray(rng *rand.Rand, uncon []float64) (constrained []float64, err error)
	// ConstrainedParamNames lists the constrained parameter names, in the
	// order WriteArray returns them.
	ConstrainedParamNames() []string
}
