package main

import (
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/batchblas/pkg/blas"
)

// handleConfig carries the handle-level flags shared by run and replay.
type handleConfig struct {
	layerMode     int64
	checkNumerics int64
	arenaLimit    int64
	traceLog      string
	benchLog      string
	devicePtrMode bool
}

func (c *handleConfig) flags() []cli.Flag {
	return []cli.Flag{
		&cli.Int64Flag{
			Name:        "layer",
			Usage:       "layer-mode bitmask (1 trace, 2 bench, 4 profile)",
			Destination: &c.layerMode,
		},
		&cli.Int64Flag{
			Name:        "check-numerics",
			Aliases:     []string{"check_numerics"},
			Usage:       "numerics-check bitmask (1 info, 2 warn, 4 fail, 8 denormal)",
			Destination: &c.checkNumerics,
		},
		&cli.Int64Flag{
			Name:        "arena-limit",
			Aliases:     []string{"arena_limit"},
			Usage:       "workspace arena limit in bytes (0 = unbounded)",
			Destination: &c.arenaLimit,
		},
		&cli.StringFlag{
			Name:        "trace-log",
			Usage:       "trace log destination ('-' for stdout)",
			Destination: &c.traceLog,
		},
		&cli.StringFlag{
			Name:        "bench-log",
			Usage:       "bench log destination ('-' for stdout)",
			Destination: &c.benchLog,
		},
		&cli.BoolFlag{
			Name:        "device-pointer-mode",
			Usage:       "treat scalars as device pointers in logs",
			Destination: &c.devicePtrMode,
		},
	}
}

// newHandle builds a handle from the shared flags. Stdout sinks are wired as
// writers so they interleave sanely with command output.
func (c *handleConfig) newHandle(extra ...blas.Option) (*blas.Handle, error) {
	opts := []blas.Option{
		blas.WithLayerMode(blas.LayerMode(c.layerMode)),
		blas.WithCheckNumerics(blas.CheckMode(c.checkNumerics)),
		blas.WithArenaLimit(c.arenaLimit),
	}
	if c.devicePtrMode {
		opts = append(opts, blas.WithPointerMode(blas.PointerModeDevice))
	}
	if c.traceLog == "-" {
		opts = append(opts, blas.WithTraceWriter(os.Stdout))
	} else if c.traceLog != "" {
		f, err := os.OpenFile(c.traceLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		opts = append(opts, blas.WithTraceWriter(f))
	}
	if c.benchLog == "-" {
		opts = append(opts, blas.WithBenchWriter(os.Stdout))
	} else if c.benchLog != "" {
		f, err := os.OpenFile(c.benchLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		opts = append(opts, blas.WithBenchWriter(f))
	}
	return blas.New(append(opts, extra...)...)
}
