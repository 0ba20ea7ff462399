package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/batchblas/internal/trace"
)

func runCmd() *cli.Command {
	var (
		cfg       handleConfig
		function  string
		precision string
		uplo      string
		transA    string
		transB    string
		n         int64
		k         int64
		lda       int64
		ldb       int64
		ldc       int64
		incx      int64
		strideX   int64
		batch     int64
		alpha     float64
		beta      float64
		iters     int64
		seed      int64
	)

	flags := append([]cli.Flag{}, cfg.flags()...)
	flags = append(flags,
		&cli.StringFlag{
			Name:        "function",
			Aliases:     []string{"f"},
			Usage:       "routine to run (gemmt_batched, gemmt_strided_batched, iamax_batched, ...)",
			Value:       "gemmt_batched",
			Destination: &function,
		},
		&cli.StringFlag{
			Name:        "precision",
			Aliases:     []string{"r"},
			Usage:       "f32_r, f64_r, f32_c or f64_c",
			Value:       "f32_r",
			Destination: &precision,
		},
		&cli.StringFlag{
			Name:        "uplo",
			Usage:       "which C triangle to update (U or L)",
			Value:       "U",
			Destination: &uplo,
		},
		&cli.StringFlag{
			Name:        "transposeA",
			Aliases:     []string{"transpose_a"},
			Usage:       "op(A): N, T or C",
			Value:       "N",
			Destination: &transA,
		},
		&cli.StringFlag{
			Name:        "transposeB",
			Aliases:     []string{"transpose_b"},
			Usage:       "op(B): N, T or C",
			Value:       "N",
			Destination: &transB,
		},
		&cli.Int64Flag{
			Name:        "n",
			Usage:       "problem order / vector length",
			Value:       128,
			Destination: &n,
		},
		&cli.Int64Flag{
			Name:        "k",
			Usage:       "inner dimension for gemmt",
			Value:       128,
			Destination: &k,
		},
		&cli.Int64Flag{
			Name:        "lda",
			Usage:       "leading dimension of A (0 = minimal)",
			Destination: &lda,
		},
		&cli.Int64Flag{
			Name:        "ldb",
			Usage:       "leading dimension of B (0 = minimal)",
			Destination: &ldb,
		},
		&cli.Int64Flag{
			Name:        "ldc",
			Usage:       "leading dimension of C (0 = minimal)",
			Destination: &ldc,
		},
		&cli.Int64Flag{
			Name:        "incx",
			Usage:       "vector increment for reductions",
			Value:       1,
			Destination: &incx,
		},
		&cli.Int64Flag{
			Name:        "stride-x",
			Aliases:     []string{"stride_x"},
			Usage:       "batch stride for strided reductions (0 = minimal)",
			Destination: &strideX,
		},
		&cli.Int64Flag{
			Name:        "batch-count",
			Aliases:     []string{"batch_count"},
			Usage:       "number of problems in the batch",
			Value:       1,
			Destination: &batch,
		},
		&cli.Float64Flag{
			Name:        "alpha",
			Usage:       "alpha scalar (real part)",
			Value:       1,
			Destination: &alpha,
		},
		&cli.Float64Flag{
			Name:        "beta",
			Usage:       "beta scalar (real part)",
			Value:       0,
			Destination: &beta,
		},
		&cli.Int64Flag{
			Name:        "iters",
			Aliases:     []string{"i"},
			Usage:       "timed iterations",
			Value:       1,
			Destination: &iters,
		},
		&cli.Int64Flag{
			Name:        "seed",
			Usage:       "operand RNG seed (-1 = time-based)",
			Value:       -1,
			Destination: &seed,
		},
	)

	return &cli.Command{
		Name:  "run",
		Usage: "Execute one routine with randomized operands",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			h, err := cfg.newHandle()
			if err != nil {
				return err
			}
			defer h.Close()

			call := trace.BenchCall{
				Function:  function,
				Precision: precision,
				Flags: map[string]string{
					"uplo":        uplo,
					"transposeA":  transA,
					"transposeB":  transB,
					"n":           fmt.Sprint(n),
					"k":           fmt.Sprint(k),
					"incx":        fmt.Sprint(incx),
					"batch_count": fmt.Sprint(batch),
					"alpha":       fmt.Sprint(alpha),
					"beta":        fmt.Sprint(beta),
				},
			}
			if lda > 0 {
				call.Flags["lda"] = fmt.Sprint(lda)
			}
			if ldb > 0 {
				call.Flags["ldb"] = fmt.Sprint(ldb)
			}
			if ldc > 0 {
				call.Flags["ldc"] = fmt.Sprint(ldc)
			}
			if strideX > 0 {
				call.Flags["stride_x"] = fmt.Sprint(strideX)
			}

			if seed < 0 {
				seed = time.Now().UnixNano()
			}
			rng := rand.New(rand.NewSource(seed))

			for i := int64(0); i < iters; i++ {
				start := time.Now()
				if err := executeCall(h, call, rng); err != nil {
					return err
				}
				fmt.Printf("%s %s iter %d: %v\n", function, precision, i+1, time.Since(start))
			}
			return nil
		},
	}
}
