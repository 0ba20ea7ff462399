package main

import (
	"bytes"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/samcharles93/batchblas/internal/trace"
	"github.com/samcharles93/batchblas/pkg/blas"
)

// Replaying a recorded bench line through a handle that itself logs bench
// lines must reproduce the input verbatim.
func TestReplayRoundTrip(t *testing.T) {
	t.Setenv("BATCHBLAS_CONFIG", filepath.Join(t.TempDir(), "config.yaml"))

	lines := []string{
		"./rocblas-bench -f gemmt_batched -r f64_r --uplo L --transposeA N --transposeB N -n 4 -k 3 --alpha 1.5 --lda 4 --ldb 3 --beta 0.5 --ldc 4 --batch_count 2",
		"./rocblas-bench -f iamin_strided_batched -r f32_c -n 100 --incx 2 --stride_x 200 --batch_count 3",
		"./rocblas-bench -f iamax_batched -r f32_r -n 64 --incx 1 --batch_count 2",
	}

	for _, line := range lines {
		var buf bytes.Buffer
		h, err := blas.New(blas.WithLayerMode(blas.LogBench), blas.WithBenchWriter(&buf))
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		call, err := trace.ParseBenchLine(line)
		if err != nil {
			t.Fatalf("parse %q: %v", line, err)
		}
		rng := rand.New(rand.NewSource(1))
		if err := executeCall(h, call, rng); err != nil {
			t.Fatalf("execute %q: %v", line, err)
		}
		if err := h.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
		if got := buf.String(); got != line+"\n" {
			t.Fatalf("round trip:\n got %q\nwant %q", got, line+"\n")
		}
	}
}

func TestExecuteCallRejectsUnknown(t *testing.T) {
	t.Setenv("BATCHBLAS_CONFIG", filepath.Join(t.TempDir(), "config.yaml"))
	h, err := blas.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer h.Close()

	rng := rand.New(rand.NewSource(1))
	if err := executeCall(h, trace.BenchCall{Function: "gemm_batched", Precision: "f32_r"}, rng); err == nil {
		t.Fatal("unknown function should fail")
	}
	if err := executeCall(h, trace.BenchCall{Function: "iamax_batched", Precision: "f16_r"}, rng); err == nil {
		t.Fatal("unknown precision should fail")
	}
}
