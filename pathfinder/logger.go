// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pathfinder

import (
	"fmt"
	"io"
	"os"
)

// LogLevel controls the frequency and type of logger output, mirroring the
// teacher's `lbfgsb.LogLevel` gating (`enable(level)` against `refresh`,
// spec.md §6's `refresh` knob).
type LogLevel int

const (
	LogNoop    LogLevel = -1
	LogSummary LogLevel = 0
	LogIter    LogLevel = 1
	LogTrace   LogLevel = 99
)

// Logger handles logging output for one path, generalizing the teacher's
// `lbfgsb.Logger` (level + two `io.Writer` sinks) into one with a third
// sink mirroring the original's separate `diagnostic_writer` callback: the
// raw unconstrained iterate and gradient `save_iterations` emits, kept
// apart from Out's constrained-draw table since the two have unrelated
// column shapes.
type Logger struct {
	Level LogLevel
	Msg   io.Writer // human-readable iteration summaries
	Out   io.Writer // diagnostic draw records (constrained params + lp_approx__ + lp__)
	Diag  io.Writer // raw per-iterate (curr_x, curr_g) records, save_iterations only
}

func (l *Logger) enable(level LogLevel) bool {
	return l != nil && l.Level >= level
}

func (l *Logger) log(format string, a ...any) {
	if l == nil || l.Msg == nil {
		return
	}
	if len(a) > 0 {
		_, _ = fmt.Fprintf(l.Msg, format, a...)
	} else {
		_, _ = fmt.Fprint(l.Msg, format)
	}
}

func (l *Logger) out(format string, a ...any) {
	if l == nil || l.Out == nil {
		return
	}
	if len(a) > 0 {
		_, _ = fmt.Fprintf(l.Out, format, a...)
	} else {
		_, _ = fmt.Fprint(l.Out, format)
	}
}

func (l *Logger) diag(format string, a ...any) {
	if l == nil || l.Diag == nil {
		return
	}
	if len(a) > 0 {
		_, _ = fmt.Fprintf(l.Diag, format, a...)
	} else {
		_, _ = fmt.Fprint(l.Diag, format)
	}
}

func defaultLogger(l *Logger) *Logger {
	if l == nil {
		l = &Logger{Level: LogNoop}
	} else {
		cp := *l
		l = &cp
	}
	if l.Msg == nil {
		l.Msg = os.Stdout
	}
	if l.Out == nil {
		l.Out = os.Stdout
	}
	if l.Diag == nil {
		l.Diag = os.Stdout
	}
	return l
}
