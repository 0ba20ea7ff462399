// Package trace implements the dispatch layer's diagnostic sinks: the call
// trace log, the replayable bench log, and the aggregated profile log. A
// handle enables each independently through its layer-mode bitmask.
//
// Sinks are line-atomic, not call-atomic: records from concurrent calls may
// interleave, but never inside a single line.
package trace

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// LayerMode selects which diagnostic logs a handle emits.
type LayerMode uint32

const (
	LayerNone       LayerMode = 0
	LayerLogTrace   LayerMode = 1 << 0
	LayerLogBench   LayerMode = 1 << 1
	LayerLogProfile LayerMode = 1 << 2
)

// Any reports whether any of the given bits are enabled.
func (m LayerMode) Any(bits LayerMode) bool {
	return m&bits != 0
}

// BenchTool is the harness invocation every bench-log line starts with.
// External replay tooling consumes this exact prefix; do not change it.
const BenchTool = "./rocblas-bench"

// Sink serializes whole lines to a writer.
type Sink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewSink wraps w; a nil writer yields a sink that drops everything.
func NewSink(w io.Writer) *Sink {
	return &Sink{w: w}
}

// Line writes one record and a newline.
func (s *Sink) Line(line string) {
	if s == nil || s.w == nil {
		return
	}
	s.mu.Lock()
	fmt.Fprintln(s.w, line)
	s.mu.Unlock()
}

// CallLogger emits one comma-separated trace record per call: the routine
// name followed by every argument in call order.
type CallLogger struct {
	sink *Sink
}

func NewCallLogger(w io.Writer) *CallLogger {
	return &CallLogger{sink: NewSink(w)}
}

// Call records one invocation.
func (l *CallLogger) Call(name string, args ...any) {
	if l == nil {
		return
	}
	var sb strings.Builder
	sb.WriteString(name)
	for _, a := range args {
		sb.WriteByte(',')
		fmt.Fprintf(&sb, "%v", a)
	}
	l.sink.Line(sb.String())
}

// BenchLogger emits one shell-invocable harness command line per call.
type BenchLogger struct {
	sink *Sink
}

func NewBenchLogger(w io.Writer) *BenchLogger {
	return &BenchLogger{sink: NewSink(w)}
}

// Command joins the pre-rendered fields with single spaces. The caller owns
// field order; it is part of the replay format.
func (l *BenchLogger) Command(fields ...string) {
	if l == nil {
		return
	}
	l.sink.Line(strings.Join(fields, " "))
}
