package trace

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/goccy/go-json"
)

// ProfileLogger aggregates calls by signature (routine name plus its
// dimensional arguments) and writes one JSON record per distinct signature
// when flushed, typically at handle close.
type ProfileLogger struct {
	mu       sync.Mutex
	w        io.Writer
	handleID string
	counts   map[string]int
	order    []string
}

type profileRecord struct {
	Handle string `json:"handle"`
	Call   string `json:"call"`
	Count  int    `json:"count"`
}

// NewProfileLogger wraps w; handleID correlates records across handles.
func NewProfileLogger(w io.Writer, handleID string) *ProfileLogger {
	return &ProfileLogger{
		w:        w,
		handleID: handleID,
		counts:   make(map[string]int),
	}
}

// Observe records one call. kv alternates key, value; the rendered signature
// keeps the given order.
func (p *ProfileLogger) Observe(name string, kv ...any) {
	if p == nil || p.w == nil {
		return
	}
	var sb strings.Builder
	sb.WriteString(name)
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(&sb, ",%v:%v", kv[i], kv[i+1])
	}
	sig := sb.String()

	p.mu.Lock()
	if _, seen := p.counts[sig]; !seen {
		p.order = append(p.order, sig)
	}
	p.counts[sig]++
	p.mu.Unlock()
}

// Count returns the aggregated count for an exact signature, for tests and
// the profile viewer.
func (p *ProfileLogger) Count(sig string) int {
	if p == nil {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.counts[sig]
}

// Flush writes the aggregation in first-seen order and resets it.
func (p *ProfileLogger) Flush() error {
	if p == nil || p.w == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, sig := range p.order {
		rec := profileRecord{Handle: p.handleID, Call: sig, Count: p.counts[sig]}
		line, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(p.w, "%s\n", line); err != nil {
			return err
		}
	}
	p.order = p.order[:0]
	p.counts = make(map[string]int)
	return nil
}
