package numerics

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/samcharles93/batchblas/internal/kernel"
	"github.com/samcharles93/batchblas/internal/logger"
)

func discard() logger.Logger {
	return logger.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCheckMatrixBatchedNaN(t *testing.T) {
	m := [][]float32{
		{1, 2, 3, 4},
		{1, float32(math.NaN()), 3, 4},
	}
	err := CheckMatrixBatched[float32]("sgemmt_batched", "A", discard(), Fail, 2, 2, m, 2, 2, true)
	if !errors.Is(err, ErrCheckFailed) {
		t.Fatalf("err = %v, want ErrCheckFailed", err)
	}

	// Same data without Fail set only reports.
	if err := CheckMatrixBatched[float32]("sgemmt_batched", "A", discard(), Warn, 2, 2, m, 2, 2, true); err != nil {
		t.Fatalf("warn mode: %v", err)
	}
}

func TestCheckMatrixOutsideLeadingDimensionIgnored(t *testing.T) {
	// NaN sits in the ld padding row, outside the 2x2 region being checked.
	m := []float64{1, 2, math.NaN(), 3, 4, math.NaN()}
	err := CheckMatrixStridedBatched[float64]("dgemmt_strided_batched", "B", discard(), Fail, 2, 2, m, 3, 0, 1, false)
	if err != nil {
		t.Fatalf("padding NaN should be ignored: %v", err)
	}
}

func TestCheckVectorDenormal(t *testing.T) {
	x := [][]float32{{1, 0x1p-130, 2}}
	vec := kernel.BatchVectors(x)

	if err := CheckVector[float32]("isamax_batched", "x", discard(), Fail, 3, vec, 1, 1, true); err != nil {
		t.Fatalf("denormals pass without the denormal bit: %v", err)
	}
	err := CheckVector[float32]("isamax_batched", "x", discard(), Fail|Denormal, 3, vec, 1, 1, true)
	if !errors.Is(err, ErrCheckFailed) {
		t.Fatalf("err = %v, want ErrCheckFailed", err)
	}
}

func TestCheckVectorComplexInf(t *testing.T) {
	x := []complex128{complex(1, 2), complex(3, math.Inf(1))}
	vec := kernel.StridedVectors(x, 2)
	err := CheckVector[complex128]("izamin_strided_batched", "x", discard(), Fail, 2, vec, 1, 1, true)
	if !errors.Is(err, ErrCheckFailed) {
		t.Fatalf("err = %v, want ErrCheckFailed", err)
	}
}

func TestCheckVectorNegativeIncrement(t *testing.T) {
	x := [][]float32{{float32(math.NaN()), 1, 2, 3, 4}}
	err := CheckVector[float32]("isamax_batched", "x", discard(), Fail, 5, kernel.BatchVectors(x), -1, 1, true)
	if !errors.Is(err, ErrCheckFailed) {
		t.Fatalf("backward traversal must still see the NaN: %v", err)
	}
}
