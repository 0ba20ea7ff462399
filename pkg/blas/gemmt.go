package blas

import (
	"errors"
	"fmt"

	"github.com/samcharles93/batchblas/internal/kernel"
	"github.com/samcharles93/batchblas/internal/numerics"
	"github.com/samcharles93/batchblas/internal/trace"
)

// storedDims returns the stored (rows, cols) of a matrix whose op() shape is
// rows x cols.
func storedDims(t Operation, rows, cols int) (int, int) {
	if t == NoTrans {
		return rows, cols
	}
	return cols, rows
}

// matElems is the backing length a stored rows x cols matrix with leading
// dimension ld requires.
func matElems(rows, cols, ld int) int {
	if rows == 0 || cols == 0 {
		return 0
	}
	return ld*(cols-1) + rows
}

// gemmtDimCheck validates the arguments shared by the batched and
// strided-batched forms. It returns statusContinue when the kernel should
// run, StatusSuccess for trivially satisfied calls, or a failure.
func gemmtDimCheck(uplo Fill, transA, transB Operation, n, k, lda, ldb, ldc, batchCount int) Status {
	if !uplo.valid() {
		return StatusInvalidValue
	}
	if !transA.valid() || !transB.valid() {
		return StatusInvalidValue
	}
	if n < 0 || k < 0 || batchCount < 0 {
		return StatusInvalidSize
	}
	rowsA, _ := storedDims(transA, n, k)
	rowsB, _ := storedDims(transB, k, n)
	if lda < max(1, rowsA) || ldb < max(1, rowsB) || ldc < max(1, n) {
		return StatusInvalidSize
	}
	if n == 0 || batchCount == 0 {
		return StatusSuccess
	}
	return statusContinue
}

func checkBatchedOperand[T kernel.Scalar](m [][]T, rows, cols, ld, batchCount int) Status {
	if m == nil {
		return StatusInvalidPointer
	}
	if len(m) < batchCount {
		return StatusInvalidSize
	}
	need := matElems(rows, cols, ld)
	for i := 0; i < batchCount; i++ {
		if m[i] == nil {
			return StatusInvalidPointer
		}
		if len(m[i]) < need {
			return StatusInvalidSize
		}
	}
	return statusContinue
}

func checkStridedOperand[T kernel.Scalar](m []T, rows, cols, ld int, stride int64, batchCount int) Status {
	if m == nil {
		return StatusInvalidPointer
	}
	if stride < 0 {
		return StatusInvalidSize
	}
	need := int64(batchCount-1)*stride + int64(matElems(rows, cols, ld))
	if int64(len(m)) < need {
		return StatusInvalidSize
	}
	return statusContinue
}

func gemmtBatchedImpl[T kernel.Scalar](h *Handle, uplo Fill, transA, transB Operation, n, k int,
	alpha *T, a [][]T, lda int, b [][]T, ldb int, beta *T, c [][]T, ldc int, batchCount int) Status {
	if h == nil {
		return StatusInvalidHandle
	}
	// gemmt needs no device scratch.
	if h.sizeQueryRecord(0) {
		return StatusSuccess
	}

	name := routineName[T]("gemmt_batched")
	if h.layerMode.Any(trace.LayerLogTrace | trace.LayerLogBench | trace.LayerLogProfile) {
		if h.layerMode.Any(trace.LayerLogTrace) {
			h.traceLog.Call(name, uplo.letter(), transA.letter(), transB.letter(), n, k,
				traceScalar(h, alpha), ptr(a), lda, ptr(b), ldb, traceScalar(h, beta), ptr(c), ldc, batchCount)
		}
		if h.layerMode.Any(trace.LayerLogBench) {
			fields := []string{trace.BenchTool, "-f", "gemmt_batched", "-r", kernel.PrecisionString[T](),
				"--uplo", uplo.letter(), "--transposeA", transA.letter(), "--transposeB", transB.letter(),
				"-n", itoa(n), "-k", itoa(k)}
			fields = benchScalar(fields, h, "alpha", alpha)
			fields = append(fields, "--lda", itoa(lda), "--ldb", itoa(ldb))
			fields = benchScalar(fields, h, "beta", beta)
			fields = append(fields, "--ldc", itoa(ldc), "--batch_count", itoa(batchCount))
			h.benchLog.Command(fields...)
		}
		if h.layerMode.Any(trace.LayerLogProfile) {
			h.profileLog.Observe(name, "uplo", uplo.letter(), "transA", transA.letter(),
				"transB", transB.letter(), "N", n, "K", k,
				"lda", lda, "ldb", ldb, "ldc", ldc, "batch_count", batchCount)
		}
	}

	st := gemmtDimCheck(uplo, transA, transB, n, k, lda, ldb, ldc, batchCount)
	if st != statusContinue {
		return st
	}
	rowsA, colsA := storedDims(transA, n, k)
	rowsB, colsB := storedDims(transB, k, n)
	if beta == nil {
		return StatusInvalidPointer
	}
	if st := checkBatchedOperand(c, n, n, ldc, batchCount); st != statusContinue {
		return st
	}
	checkAB := k > 0
	if checkAB {
		if alpha == nil {
			return StatusInvalidPointer
		}
		// A zero host-mode alpha makes A and B unreferenced.
		if h.pointerMode == PointerModeHost && scalarIsZero(alpha) {
			checkAB = false
		}
	}
	if checkAB {
		if st := checkBatchedOperand(a, rowsA, colsA, lda, batchCount); st != statusContinue {
			return st
		}
		if st := checkBatchedOperand(b, rowsB, colsB, ldb, batchCount); st != statusContinue {
			return st
		}
	}

	if h.checkMode != numerics.NoCheck {
		if st := gemmtNumericsBatched(h, name, checkAB, rowsA, colsA, rowsB, colsB, n, a, lda, b, ldb, c, ldc, batchCount, true); st != StatusSuccess {
			return st
		}
	}

	if err := kernel.GemmtBatched(h.stream, uplo == Upper, transA.kernelOp(), transB.kernelOp(),
		n, k, alpha, a, lda, b, ldb, beta, c, ldc, batchCount); err != nil {
		return StatusExecutionFailed
	}

	if h.checkMode != numerics.NoCheck {
		if err := h.stream.Synchronize(); err != nil {
			return StatusExecutionFailed
		}
		if st := gemmtNumericsBatched(h, name, false, rowsA, colsA, rowsB, colsB, n, a, lda, b, ldb, c, ldc, batchCount, false); st != StatusSuccess {
			return st
		}
	}
	return StatusSuccess
}

// gemmtNumericsBatched scans the operands the call references: A, B and C
// before dispatch, C alone after.
func gemmtNumericsBatched[T kernel.Scalar](h *Handle, name string, checkAB bool,
	rowsA, colsA, rowsB, colsB, n int, a [][]T, lda int, b [][]T, ldb int,
	c [][]T, ldc int, batchCount int, isInput bool) Status {
	if checkAB && isInput {
		if st := numericsStatus(numerics.CheckMatrixBatched(name, "A", h.log, h.checkMode,
			rowsA, colsA, a, lda, batchCount, isInput)); st != StatusSuccess {
			return st
		}
		if st := numericsStatus(numerics.CheckMatrixBatched(name, "B", h.log, h.checkMode,
			rowsB, colsB, b, ldb, batchCount, isInput)); st != StatusSuccess {
			return st
		}
	}
	return numericsStatus(numerics.CheckMatrixBatched(name, "C", h.log, h.checkMode,
		n, n, c, ldc, batchCount, isInput))
}

func numericsStatus(err error) Status {
	if err == nil {
		return StatusSuccess
	}
	if errors.Is(err, numerics.ErrCheckFailed) {
		return StatusCheckNumericsFail
	}
	return StatusInternalError
}

// ptr renders an operand argument for the trace log without dumping data.
func ptr(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%p", v)
}

// SgemmtBatched updates the uplo triangle of each C_i with
// alpha*op(A_i)*op(B_i) + beta*C_i across batchCount independent
// single-precision problems. Matrices are column-major.
func SgemmtBatched(h *Handle, uplo Fill, transA, transB Operation, n, k int,
	alpha *float32, a [][]float32, lda int, b [][]float32, ldb int,
	beta *float32, c [][]float32, ldc int, batchCount int) Status {
	return guard(func() Status {
		return gemmtBatchedImpl(h, uplo, transA, transB, n, k, alpha, a, lda, b, ldb, beta, c, ldc, batchCount)
	})
}

// DgemmtBatched is the float64 instantiation of SgemmtBatched.
func DgemmtBatched(h *Handle, uplo Fill, transA, transB Operation, n, k int,
	alpha *float64, a [][]float64, lda int, b [][]float64, ldb int,
	beta *float64, c [][]float64, ldc int, batchCount int) Status {
	return guard(func() Status {
		return gemmtBatchedImpl(h, uplo, transA, transB, n, k, alpha, a, lda, b, ldb, beta, c, ldc, batchCount)
	})
}

// CgemmtBatched is the complex64 instantiation of SgemmtBatched.
func CgemmtBatched(h *Handle, uplo Fill, transA, transB Operation, n, k int,
	alpha *complex64, a [][]complex64, lda int, b [][]complex64, ldb int,
	beta *complex64, c [][]complex64, ldc int, batchCount int) Status {
	return guard(func() Status {
		return gemmtBatchedImpl(h, uplo, transA, transB, n, k, alpha, a, lda, b, ldb, beta, c, ldc, batchCount)
	})
}

// ZgemmtBatched is the complex128 instantiation of SgemmtBatched.
func ZgemmtBatched(h *Handle, uplo Fill, transA, transB Operation, n, k int,
	alpha *complex128, a [][]complex128, lda int, b [][]complex128, ldb int,
	beta *complex128, c [][]complex128, ldc int, batchCount int) Status {
	return guard(func() Status {
		return gemmtBatchedImpl(h, uplo, transA, transB, n, k, alpha, a, lda, b, ldb, beta, c, ldc, batchCount)
	})
}
