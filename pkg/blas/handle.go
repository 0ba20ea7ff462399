package blas

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/samcharles93/batchblas/internal/config"
	"github.com/samcharles93/batchblas/internal/device"
	"github.com/samcharles93/batchblas/internal/logger"
	"github.com/samcharles93/batchblas/internal/numerics"
	"github.com/samcharles93/batchblas/internal/trace"
)

// LayerMode selects which diagnostic logs a handle emits.
type LayerMode uint32

const (
	LogNone    LayerMode = 0
	LogTrace   LayerMode = 1 << 0
	LogBench   LayerMode = 1 << 1
	LogProfile LayerMode = 1 << 2
)

// CheckMode is the numerics-checking bitmask: whether operand scans run and
// what they do with their findings.
type CheckMode uint8

const (
	CheckNone     CheckMode = 0
	CheckInfo     CheckMode = 1 << 0
	CheckWarn     CheckMode = 1 << 1
	CheckFail     CheckMode = 1 << 2
	CheckDenormal CheckMode = 1 << 3
)

// Handle is the per-session context all routines dispatch through: logging
// configuration, numerics checking, the execution stream, and the workspace
// arena. A handle may be shared across goroutines for dispatch, but its
// configuration setters are not synchronized with in-flight calls; configure
// first, dispatch after. Close releases the stream and flushes the profile
// log.
type Handle struct {
	id          string
	pointerMode PointerMode
	layerMode   trace.LayerMode
	checkMode   numerics.Mode

	log        logger.Logger
	traceLog   *trace.CallLogger
	benchLog   *trace.BenchLogger
	profileLog *trace.ProfileLogger

	stream *device.Stream
	arena  *device.Arena

	mu          sync.Mutex
	queryActive bool
	querySize   int64

	arenaLimit               int64
	traceW, benchW, profileW io.Writer
	files                    []io.Closer
}

// Option configures a handle at creation.
type Option func(*Handle)

// WithLayerMode enables diagnostic logs regardless of config/environment.
func WithLayerMode(m LayerMode) Option {
	return func(h *Handle) { h.layerMode = trace.LayerMode(m) }
}

// WithCheckNumerics enables operand scanning.
func WithCheckNumerics(m CheckMode) Option {
	return func(h *Handle) { h.checkMode = numerics.Mode(m) }
}

// WithPointerMode sets the initial scalar pointer mode.
func WithPointerMode(m PointerMode) Option {
	return func(h *Handle) { h.pointerMode = m }
}

// WithTraceWriter, WithBenchWriter and WithProfileWriter direct the
// diagnostic sinks somewhere other than the configured log files.
func WithTraceWriter(w io.Writer) Option {
	return func(h *Handle) { h.traceW = w }
}

func WithBenchWriter(w io.Writer) Option {
	return func(h *Handle) { h.benchW = w }
}

func WithProfileWriter(w io.Writer) Option {
	return func(h *Handle) { h.profileW = w }
}

// WithLogHandler routes library diagnostics (numerics reports, arena
// warnings) to the given slog handler.
func WithLogHandler(sh slog.Handler) Option {
	return func(h *Handle) { h.log = logger.New(sh) }
}

// WithArenaLimit bounds the workspace arena; acquisitions beyond it fail
// with StatusMemoryError. Zero means unbounded.
func WithArenaLimit(limit int64) Option {
	return func(h *Handle) { h.arenaLimit = limit }
}

// New creates a handle. Defaults come from the config file and BATCHBLAS_*
// environment (layer mode, log paths, numerics mode, arena limit); options
// override them.
func New(opts ...Option) (*Handle, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("blas: load config: %w", err)
	}

	h := &Handle{id: uuid.NewString()}
	if cfg.LayerMode != nil {
		h.layerMode = trace.LayerMode(*cfg.LayerMode)
	}
	if cfg.CheckNumerics != nil {
		h.checkMode = numerics.Mode(*cfg.CheckNumerics)
	}
	if cfg.ArenaLimit != nil {
		h.arenaLimit = *cfg.ArenaLimit
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.log == nil {
		h.log = logger.Default()
	}

	// Config-file log paths back any sink the options left unset.
	if h.traceW == nil && h.layerMode.Any(trace.LayerLogTrace) {
		if h.traceW, err = h.openLog(cfg.LogTracePath); err != nil {
			return nil, err
		}
	}
	if h.benchW == nil && h.layerMode.Any(trace.LayerLogBench) {
		if h.benchW, err = h.openLog(cfg.LogBenchPath); err != nil {
			return nil, err
		}
	}
	if h.profileW == nil && h.layerMode.Any(trace.LayerLogProfile) {
		if h.profileW, err = h.openLog(cfg.LogProfilePath); err != nil {
			return nil, err
		}
	}

	h.traceLog = trace.NewCallLogger(h.traceW)
	h.benchLog = trace.NewBenchLogger(h.benchW)
	h.profileLog = trace.NewProfileLogger(h.profileW, h.id)
	h.stream = device.NewStream()
	h.arena = device.NewArena(h.arenaLimit)
	return h, nil
}

// openLog appends to path; an empty path falls back to stderr, matching the
// behavior of enabling a log layer without configuring a destination.
func (h *Handle) openLog(path string) (io.Writer, error) {
	if path == "" {
		return os.Stderr, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("blas: open log %s: %w", path, err)
	}
	h.files = append(h.files, f)
	return f, nil
}

// ID returns the handle's correlation ID used in profile records.
func (h *Handle) ID() string {
	return h.id
}

// SetPointerMode switches how scalar arguments are interpreted for logging
// and validation.
func (h *Handle) SetPointerMode(m PointerMode) {
	h.pointerMode = m
}

// PointerMode returns the current scalar pointer mode.
func (h *Handle) PointerMode() PointerMode {
	return h.pointerMode
}

// SetLayerMode switches diagnostic logging. Sinks configured at creation
// keep their destinations.
func (h *Handle) SetLayerMode(m LayerMode) {
	h.layerMode = trace.LayerMode(m)
}

// SetCheckNumerics switches operand scanning.
func (h *Handle) SetCheckNumerics(m CheckMode) {
	h.checkMode = numerics.Mode(m)
}

// BeginSizeQuery puts the handle in workspace-sizing mode: subsequent
// routine calls record their scratch requirement and return immediately
// without validating, logging, or dispatching.
func (h *Handle) BeginSizeQuery() {
	h.mu.Lock()
	h.queryActive = true
	h.querySize = 0
	h.mu.Unlock()
}

// EndSizeQuery leaves sizing mode and returns the largest workspace any
// queried call would need.
func (h *Handle) EndSizeQuery() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.queryActive = false
	return h.querySize
}

// sizeQueryRecord records a call's workspace need while a query is active.
func (h *Handle) sizeQueryRecord(size int64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.queryActive {
		return false
	}
	if size > h.querySize {
		h.querySize = size
	}
	return true
}

// Synchronize blocks until all dispatched device work completed and returns
// the first deferred execution error, if any.
func (h *Handle) Synchronize() error {
	return h.stream.Synchronize()
}

// ArenaStats exposes workspace arena counters.
func (h *Handle) ArenaStats() device.ArenaStats {
	return h.arena.Stats()
}

// Close drains the stream, flushes the profile aggregation and closes any
// log files the handle opened.
func (h *Handle) Close() error {
	err := h.stream.Close()
	if e := h.profileLog.Flush(); e != nil && err == nil {
		err = e
	}
	for _, f := range h.files {
		if e := f.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}
