// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pathfinder

import "time"

// writeHeader emits the diagnostic column header (spec.md §4.6 INIT: "write
// diagnostic header (param names + lp_approx__ + lp__)").
func writeHeader(logger *Logger, paramNames []string) {
	if !logger.enable(LogSummary) {
		return
	}
	for i, name := range paramNames {
		if i > 0 {
			logger.out(",")
		}
		logger.out("%s", name)
	}
	logger.out(",lp_approx__,lp__\n")
}

// writeRecord emits one draw's constrained parameters plus its
// lp_approx__/lp__ pair.
func writeRecord(logger *Logger, constrained []float64, lpApprox, lp float64) {
	if !logger.enable(LogSummary) {
		return
	}
	for i, v := range constrained {
		if i > 0 {
			logger.out(",")
		}
		logger.out("%g", v)
	}
	logger.out(",%g,%g\n", lpApprox, lp)
}

// writeDiagnosticRecord emits one raw (unconstrained point, gradient) pair
// to the diagnostic sink — what `save_iterations` actually reports per
// `original_source/src/stan/services/pathfinder/single.hpp`'s
// `diagnostic_writer(std::make_tuple(lbfgs.curr_x(), lbfgs.curr_g()))`,
// never passed through the constrained transform or a Taylor draw.
func writeDiagnosticRecord(logger *Logger, x, g []float64) {
	if !logger.enable(LogSummary) {
		return
	}
	for i, v := range x {
		if i > 0 {
			logger.diag(",")
		}
		logger.diag("%g", v)
	}
	logger.diag(";")
	for i, v := range g {
		if i > 0 {
			logger.diag(",")
		}
		logger.diag("%g", v)
	}
	logger.diag("\n")
}

// writeFooter emits the trailing elapsed-time line spec.md §6 describes:
// a blank record, an "Elapsed Time" line, then a blank record.
func writeFooter(logger *Logger, elapsed time.Duration) {
	if !logger.enable(LogSummary) {
		return
	}
	logger.out("\n")
	logger.out("# Elapsed Time: %v seconds (Pathfinder)\n", elapsed.Seconds())
	logger.out("\n")
}
