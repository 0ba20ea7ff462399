package blas

import (
	"github.com/samcharles93/batchblas/internal/kernel"
	"github.com/samcharles93/batchblas/internal/numerics"
	"github.com/samcharles93/batchblas/internal/trace"
)

func gemmtStridedBatchedImpl[T kernel.Scalar](h *Handle, uplo Fill, transA, transB Operation, n, k int,
	alpha *T, a []T, lda int, strideA int64, b []T, ldb int, strideB int64,
	beta *T, c []T, ldc int, strideC int64, batchCount int) Status {
	if h == nil {
		return StatusInvalidHandle
	}
	if h.sizeQueryRecord(0) {
		return StatusSuccess
	}

	name := routineName[T]("gemmt_strided_batched")
	if h.layerMode.Any(trace.LayerLogTrace | trace.LayerLogBench | trace.LayerLogProfile) {
		if h.layerMode.Any(trace.LayerLogTrace) {
			h.traceLog.Call(name, uplo.letter(), transA.letter(), transB.letter(), n, k,
				traceScalar(h, alpha), ptr(a), lda, strideA, ptr(b), ldb, strideB,
				traceScalar(h, beta), ptr(c), ldc, strideC, batchCount)
		}
		if h.layerMode.Any(trace.LayerLogBench) {
			fields := []string{trace.BenchTool, "-f", "gemmt_strided_batched", "-r", kernel.PrecisionString[T](),
				"--uplo", uplo.letter(), "--transposeA", transA.letter(), "--transposeB", transB.letter(),
				"-n", itoa(n), "-k", itoa(k)}
			fields = benchScalar(fields, h, "alpha", alpha)
			fields = append(fields, "--lda", itoa(lda), "--stride_a", i64toa(strideA),
				"--ldb", itoa(ldb), "--stride_b", i64toa(strideB))
			fields = benchScalar(fields, h, "beta", beta)
			fields = append(fields, "--ldc", itoa(ldc), "--stride_c", i64toa(strideC),
				"--batch_count", itoa(batchCount))
			h.benchLog.Command(fields...)
		}
		if h.layerMode.Any(trace.LayerLogProfile) {
			h.profileLog.Observe(name, "uplo", uplo.letter(), "transA", transA.letter(),
				"transB", transB.letter(), "N", n, "K", k,
				"lda", lda, "stride_a", strideA, "ldb", ldb, "stride_b", strideB,
				"ldc", ldc, "stride_c", strideC, "batch_count", batchCount)
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
	if st := checkStridedOperand(c, n, n, ldc, strideC, batchCount); st != statusContinue {
		return st
	}
	checkAB := k > 0
	if checkAB {
		if alpha == nil {
			return StatusInvalidPointer
		}
		if h.pointerMode == PointerModeHost && scalarIsZero(alpha) {
			checkAB = false
		}
	}
	if checkAB {
		if st := checkStridedOperand(a, rowsA, colsA, lda, strideA, batchCount); st != statusContinue {
			return st
		}
		if st := checkStridedOperand(b, rowsB, colsB, ldb, strideB, batchCount); st != statusContinue {
			return st
		}
	}

	if h.checkMode != numerics.NoCheck && checkAB {
		if st := numericsStatus(numerics.CheckMatrixStridedBatched(name, "A", h.log, h.checkMode,
			rowsA, colsA, a, lda, strideA, batchCount, true)); st != StatusSuccess {
			return st
		}
		if st := numericsStatus(numerics.CheckMatrixStridedBatched(name, "B", h.log, h.checkMode,
			rowsB, colsB, b, ldb, strideB, batchCount, true)); st != StatusSuccess {
			return st
		}
	}
	if h.checkMode != numerics.NoCheck {
		if st := numericsStatus(numerics.CheckMatrixStridedBatched(name, "C", h.log, h.checkMode,
			n, n, c, ldc, strideC, batchCount, true)); st != StatusSuccess {
			return st
		}
	}

	if err := kernel.GemmtStridedBatched(h.stream, uplo == Upper, transA.kernelOp(), transB.kernelOp(),
		n, k, alpha, a, lda, strideA, b, ldb, strideB, beta, c, ldc, strideC, batchCount); err != nil {
		return StatusExecutionFailed
	}

	if h.checkMode != numerics.NoCheck {
		if err := h.stream.Synchronize(); err != nil {
			return StatusExecutionFailed
		}
		if st := numericsStatus(numerics.CheckMatrixStridedBatched(name, "C", h.log, h.checkMode,
			n, n, c, ldc, strideC, batchCount, false)); st != StatusSuccess {
			return st
		}
	}
	return StatusSuccess
}

// SgemmtStridedBatched is the strided-batched form of SgemmtBatched: batch i
// of each operand starts i*stride into its shared backing slice.
func SgemmtStridedBatched(h *Handle, uplo Fill, transA, transB Operation, n, k int,
	alpha *float32, a []float32, lda int, strideA int64, b []float32, ldb int, strideB int64,
	beta *float32, c []float32, ldc int, strideC int64, batchCount int) Status {
	return guard(func() Status {
		return gemmtStridedBatchedImpl(h, uplo, transA, transB, n, k,
			alpha, a, lda, strideA, b, ldb, strideB, beta, c, ldc, strideC, batchCount)
	})
}

// DgemmtStridedBatched is the float64 instantiation of SgemmtStridedBatched.
func DgemmtStridedBatched(h *Handle, uplo Fill, transA, transB Operation, n, k int,
	alpha *float64, a []float64, lda int, strideA int64, b []float64, ldb int, strideB int64,
	beta *float64, c []float64, ldc int, strideC int64, batchCount int) Status {
	return guard(func() Status {
		return gemmtStridedBatchedImpl(h, uplo, transA, transB, n, k,
			alpha, a, lda, strideA, b, ldb, strideB, beta, c, ldc, strideC, batchCount)
	})
}

// CgemmtStridedBatched is the complex64 instantiation of SgemmtStridedBatched.
func CgemmtStridedBatched(h *Handle, uplo Fill, transA, transB Operation, n, k int,
	alpha *complex64, a []complex64, lda int, strideA int64, b []complex64, ldb int, strideB int64,
	beta *complex64, c []complex64, ldc int, strideC int64, batchCount int) Status {
	return guard(func() Status {
		return gemmtStridedBatchedImpl(h, uplo, transA, transB, n, k,
			alpha, a, lda, strideA, b, ldb, strideB, beta, c, ldc, strideC, batchCount)
	})
}

// ZgemmtStridedBatched is the complex128 instantiation of SgemmtStridedBatched.
func ZgemmtStridedBatched(h *Handle, uplo Fill, transA, transB Operation, n, k int,
	alpha *complex128, a []complex128, lda int, strideA int64, b []complex128, ldb int, strideB int64,
	beta *complex128, c []complex128, ldc int, strideC int64, batchCount int) Status {
	return guard(func() Status {
		return gemmtStridedBatchedImpl(h, uplo, transA, transB, n, k,
			alpha, a, lda, strideA, b, ldb, strideB, beta, c, ldc, strideC, batchCount)
	})
}
