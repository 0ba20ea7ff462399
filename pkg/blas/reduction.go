package blas

import (
	"github.com/samcharles93/batchblas/internal/kernel"
	"github.com/samcharles93/batchblas/internal/numerics"
	"github.com/samcharles93/batchblas/internal/trace"
)

// vectorSpan is the backing-slice length an n-element vector at increment
// incx occupies. The traversal touches the same span whichever way it runs.
func vectorSpan(n, incx int) int {
	step := incx
	if step < 0 {
		step = -step
	}
	return (n-1)*step + 1
}

func checkBatchedVector[T kernel.Scalar](x [][]T, n, incx, batchCount int) Status {
	if x == nil || len(x) < batchCount {
		return StatusInvalidPointer
	}
	span := vectorSpan(n, incx)
	for i := 0; i < batchCount; i++ {
		if x[i] == nil || len(x[i]) < span {
			return StatusInvalidPointer
		}
	}
	return statusContinue
}

func checkStridedVector[T kernel.Scalar](x []T, n, incx int, stride int64, batchCount int) Status {
	if x == nil {
		return StatusInvalidPointer
	}
	span := int64(vectorSpan(n, incx))
	if stride < span {
		return StatusInvalidSize
	}
	if int64(len(x)) < int64(batchCount-1)*stride+span {
		return StatusInvalidPointer
	}
	return statusContinue
}

// reductionSetup runs the pipeline stages every amax/amin variant shares:
// handle check, size-query short-circuit, layer logging and the argument
// checks up to the quick return. A statusContinue result means the caller
// should scan numerics and dispatch.
func reductionSetup[T kernel.Scalar, S kernel.Real](h *Handle, stem string, n, incx int,
	xp any, stridex *int64, result []int32, batchCount int) Status {
	if h == nil {
		return StatusInvalidHandle
	}
	ws := kernel.ReductionWorkspaceBytes[S](n, batchCount)
	if ws < 0 {
		ws = 0
	}
	if h.sizeQueryRecord(ws) {
		return StatusSuccess
	}

	name := reductionName[T](stem)
	if h.layerMode.Any(trace.LayerLogTrace | trace.LayerLogBench | trace.LayerLogProfile) {
		if h.layerMode.Any(trace.LayerLogTrace) {
			if stridex != nil {
				h.traceLog.Call(name, n, ptr(xp), incx, *stridex, batchCount)
			} else {
				h.traceLog.Call(name, n, ptr(xp), incx, batchCount)
			}
		}
		if h.layerMode.Any(trace.LayerLogBench) {
			fields := []string{trace.BenchTool, "-f", "i" + stem, "-r", kernel.PrecisionString[T](),
				"-n", itoa(n), "--incx", itoa(incx)}
			if stridex != nil {
				fields = append(fields, "--stride_x", i64toa(*stridex))
			}
			fields = append(fields, "--batch_count", itoa(batchCount))
			h.benchLog.Command(fields...)
		}
		if h.layerMode.Any(trace.LayerLogProfile) {
			if stridex != nil {
				h.profileLog.Observe(name, "N", n, "incx", incx, "stride_x", *stridex, "batch_count", batchCount)
			} else {
				h.profileLog.Observe(name, "N", n, "incx", incx, "batch_count", batchCount)
			}
		}
	}

	if batchCount < 0 {
		return StatusInvalidSize
	}
	if batchCount == 0 {
		return StatusSuccess
	}
	if result == nil || len(result) < batchCount {
		return StatusInvalidPointer
	}
	// A degenerate vector still defines the result: index zero everywhere.
	if n <= 0 || incx == 0 {
		for i := 0; i < batchCount; i++ {
			result[i] = 0
		}
		return StatusSuccess
	}
	return statusContinue
}

func reductionDispatch[T kernel.Scalar, S kernel.Real](h *Handle, name string, minimize bool,
	n int, vec func(int) []T, incx, batchCount int, result []int32) Status {
	if h.checkMode != numerics.NoCheck {
		if st := numericsStatus(numerics.CheckVector(name, "x", h.log, h.checkMode,
			n, vec, incx, batchCount, true)); st != StatusSuccess {
			return st
		}
	}
	ws, err := h.arena.Acquire(kernel.ReductionWorkspaceBytes[S](n, batchCount))
	if err != nil {
		return StatusMemoryError
	}
	if minimize {
		err = kernel.Amin[T, S](h.stream, n, vec, incx, batchCount, result, ws)
	} else {
		err = kernel.Amax[T, S](h.stream, n, vec, incx, batchCount, result, ws)
	}
	if err != nil {
		// The kernel never ran, so the buffer is still ours to return.
		ws.Release()
		return StatusExecutionFailed
	}
	return StatusSuccess
}

func amaxAminBatchedImpl[T kernel.Scalar, S kernel.Real](h *Handle, stem string, minimize bool,
	n int, x [][]T, incx int, batchCount int, result []int32) Status {
	if st := reductionSetup[T, S](h, stem, n, incx, x, nil, result, batchCount); st != statusContinue {
		return st
	}
	if st := checkBatchedVector(x, n, incx, batchCount); st != statusContinue {
		return st
	}
	return reductionDispatch[T, S](h, reductionName[T](stem), minimize,
		n, kernel.BatchVectors(x), incx, batchCount, result)
}

func amaxAminStridedImpl[T kernel.Scalar, S kernel.Real](h *Handle, stem string, minimize bool,
	n int, x []T, incx int, stridex int64, batchCount int, result []int32) Status {
	if st := reductionSetup[T, S](h, stem, n, incx, x, &stridex, result, batchCount); st != statusContinue {
		return st
	}
	if st := checkStridedVector(x, n, incx, stridex, batchCount); st != statusContinue {
		return st
	}
	return reductionDispatch[T, S](h, reductionName[T](stem), minimize,
		n, kernel.StridedVectors(x, stridex), incx, batchCount, result)
}

// IsamaxBatched writes, for each of batchCount vectors, the 1-based index of
// the first element with the largest absolute value into result. A
// non-positive n or a zero increment yields index 0. Results are valid after
// the handle's stream synchronizes.
func IsamaxBatched(h *Handle, n int, x [][]float32, incx int, batchCount int, result []int32) Status {
	return guard(func() Status {
		return amaxAminBatchedImpl[float32, float32](h, "amax_batched", false, n, x, incx, batchCount, result)
	})
}

// IdamaxBatched is the float64 instantiation of IsamaxBatched.
func IdamaxBatched(h *Handle, n int, x [][]float64, incx int, batchCount int, result []int32) Status {
	return guard(func() Status {
		return amaxAminBatchedImpl[float64, float64](h, "amax_batched", false, n, x, incx, batchCount, result)
	})
}

// IcamaxBatched ranks complex64 elements by |re|+|im|.
func IcamaxBatched(h *Handle, n int, x [][]complex64, incx int, batchCount int, result []int32) Status {
	return guard(func() Status {
		return amaxAminBatchedImpl[complex64, float32](h, "amax_batched", false, n, x, incx, batchCount, result)
	})
}

// IzamaxBatched ranks complex128 elements by |re|+|im|.
func IzamaxBatched(h *Handle, n int, x [][]complex128, incx int, batchCount int, result []int32) Status {
	return guard(func() Status {
		return amaxAminBatchedImpl[complex128, float64](h, "amax_batched", false, n, x, incx, batchCount, result)
	})
}

// IsaminBatched is the index-of-minimum-magnitude counterpart of
// IsamaxBatched; ties still resolve to the first occurrence.
func IsaminBatched(h *Handle, n int, x [][]float32, incx int, batchCount int, result []int32) Status {
	return guard(func() Status {
		return amaxAminBatchedImpl[float32, float32](h, "amin_batched", true, n, x, incx, batchCount, result)
	})
}

// IdaminBatched is the float64 instantiation of IsaminBatched.
func IdaminBatched(h *Handle, n int, x [][]float64, incx int, batchCount int, result []int32) Status {
	return guard(func() Status {
		return amaxAminBatchedImpl[float64, float64](h, "amin_batched", true, n, x, incx, batchCount, result)
	})
}

// IcaminBatched ranks complex64 elements by |re|+|im|.
func IcaminBatched(h *Handle, n int, x [][]complex64, incx int, batchCount int, result []int32) Status {
	return guard(func() Status {
		return amaxAminBatchedImpl[complex64, float32](h, "amin_batched", true, n, x, incx, batchCount, result)
	})
}

// IzaminBatched ranks complex128 elements by |re|+|im|.
func IzaminBatched(h *Handle, n int, x [][]complex128, incx int, batchCount int, result []int32) Status {
	return guard(func() Status {
		return amaxAminBatchedImpl[complex128, float64](h, "amin_batched", true, n, x, incx, batchCount, result)
	})
}

// IsamaxStridedBatched is the strided form of IsamaxBatched: batch i starts
// i*stridex into x.
func IsamaxStridedBatched(h *Handle, n int, x []float32, incx int, stridex int64, batchCount int, result []int32) Status {
	return guard(func() Status {
		return amaxAminStridedImpl[float32, float32](h, "amax_strided_batched", false, n, x, incx, stridex, batchCount, result)
	})
}

// IdamaxStridedBatched is the float64 instantiation of IsamaxStridedBatched.
func IdamaxStridedBatched(h *Handle, n int, x []float64, incx int, stridex int64, batchCount int, result []int32) Status {
	return guard(func() Status {
		return amaxAminStridedImpl[float64, float64](h, "amax_strided_batched", false, n, x, incx, stridex, batchCount, result)
	})
}

// IcamaxStridedBatched ranks complex64 elements by |re|+|im|.
func IcamaxStridedBatched(h *Handle, n int, x []complex64, incx int, stridex int64, batchCount int, result []int32) Status {
	return guard(func() Status {
		return amaxAminStridedImpl[complex64, float32](h, "amax_strided_batched", false, n, x, incx, stridex, batchCount, result)
	})
}

// IzamaxStridedBatched ranks complex128 elements by |re|+|im|.
func IzamaxStridedBatched(h *Handle, n int, x []complex128, incx int, stridex int64, batchCount int, result []int32) Status {
	return guard(func() Status {
		return amaxAminStridedImpl[complex128, float64](h, "amax_strided_batched", false, n, x, incx, stridex, batchCount, result)
	})
}

// IsaminStridedBatched is the strided form of IsaminBatched.
func IsaminStridedBatched(h *Handle, n int, x []float32, incx int, stridex int64, batchCount int, result []int32) Status {
	return guard(func() Status {
		return amaxAminStridedImpl[float32, float32](h, "amin_strided_batched", true, n, x, incx, stridex, batchCount, result)
	})
}

// IdaminStridedBatched is the float64 instantiation of IsaminStridedBatched.
func IdaminStridedBatched(h *Handle, n int, x []float64, incx int, stridex int64, batchCount int, result []int32) Status {
	return guard(func() Status {
		return amaxAminStridedImpl[float64, float64](h, "amin_strided_batched", true, n, x, incx, stridex, batchCount, result)
	})
}

// IcaminStridedBatched ranks complex64 elements by |re|+|im|.
func IcaminStridedBatched(h *Handle, n int, x []complex64, incx int, stridex int64, batchCount int, result []int32) Status {
	return guard(func() Status {
		return amaxAminStridedImpl[complex64, float32](h, "amin_strided_batched", true, n, x, incx, stridex, batchCount, result)
	})
}

// IzaminStridedBatched ranks complex128 elements by |re|+|im|.
func IzaminStridedBatched(h *Handle, n int, x []complex128, incx int, stridex int64, batchCount int, result []int32) Status {
	return guard(func() Status {
		return amaxAminStridedImpl[complex128, float64](h, "amin_strided_batched", true, n, x, incx, stridex, batchCount, result)
	})
}
