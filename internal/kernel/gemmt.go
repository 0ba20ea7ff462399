package kernel

import "github.com/samcharles93/batchblas/internal/device"

// GemmtBatched enqueues C_i(tri) = alpha*op(A_i)*op(B_i) + beta*C_i(tri) for
// each of the batchCount independent problems, updating only the upper or
// lower triangle of each n x n output. Matrices are column-major; element
// (r,c) of a matrix with leading dimension ld lives at r + c*ld.
//
// alpha and beta are read when the kernel runs, not when it is enqueued, so
// device-resident scalar semantics hold. alpha may be nil only when k == 0.
func GemmtBatched[T Scalar](s *device.Stream, upper bool, transA, transB Op, n, k int,
	alpha *T, a [][]T, lda int, b [][]T, ldb int,
	beta *T, c [][]T, ldc int, batchCount int) error {
	return s.Enqueue(func() error {
		al, be := loadScalars(alpha, beta)
		for i := 0; i < batchCount; i++ {
			var ai, bi []T
			if i < len(a) {
				ai = a[i]
			}
			if i < len(b) {
				bi = b[i]
			}
			gemmtOne(upper, transA, transB, n, k, al, ai, lda, bi, ldb, be, c[i], ldc)
		}
		return nil
	})
}

// GemmtStridedBatched is the strided-batched form: batch i of each operand
// starts at i*stride into the shared backing slice.
func GemmtStridedBatched[T Scalar](s *device.Stream, upper bool, transA, transB Op, n, k int,
	alpha *T, a []T, lda int, strideA int64, b []T, ldb int, strideB int64,
	beta *T, c []T, ldc int, strideC int64, batchCount int) error {
	return s.Enqueue(func() error {
		al, be := loadScalars(alpha, beta)
		for i := 0; i < batchCount; i++ {
			var ai, bi []T
			if len(a) > 0 {
				ai = a[int(int64(i)*strideA):]
			}
			if len(b) > 0 {
				bi = b[int(int64(i)*strideB):]
			}
			ci := c[int(int64(i)*strideC):]
			gemmtOne(upper, transA, transB, n, k, al, ai, lda, bi, ldb, be, ci, ldc)
		}
		return nil
	})
}

func loadScalars[T Scalar](alpha, beta *T) (al, be T) {
	if alpha != nil {
		al = *alpha
	}
	if beta != nil {
		be = *beta
	}
	return al, be
}

func gemmtOne[T Scalar](upper bool, transA, transB Op, n, k int,
	alpha T, a []T, lda int, b []T, ldb int, beta T, c []T, ldc int) {
	// op(A)^T rows and op(B) columns are both contiguous in this layout, so
	// the inner product walks two flat slices.
	fastDot := transA == OpTranspose && transB == OpNone

	// A zero alpha means A and B are never referenced; the dispatch layer
	// relies on that and may hand us nil operands.
	var zero T
	scaleOnly := k == 0 || alpha == zero

	for j := 0; j < n; j++ {
		lo, hi := 0, j+1
		if !upper {
			lo, hi = j, n
		}
		for i := lo; i < hi; i++ {
			var sum T
			switch {
			case scaleOnly:
			case fastDot:
				sum = dotK(a[i*lda:i*lda+k], b[j*ldb:j*ldb+k])
			default:
				for p := 0; p < k; p++ {
					sum += matElem(a, lda, transA, i, p) * matElem(b, ldb, transB, p, j)
				}
			}
			c[i+j*ldc] = alpha*sum + beta*c[i+j*ldc]
		}
	}
}

func matElem[T Scalar](m []T, ld int, t Op, r, c int) T {
	switch t {
	case OpNone:
		return m[r+c*ld]
	case OpTranspose:
		return m[c+r*ld]
	default:
		return conjugate(m[c+r*ld])
	}
}

// dotK is the contiguous inner product. The wide form keeps four independent
// accumulators so the additions do not serialize on one dependency chain.
func dotK[T Scalar](a, b []T) T {
	k := len(a)
	if !wideLoops || k < 16 {
		var sum T
		for p := 0; p < k; p++ {
			sum += a[p] * b[p]
		}
		return sum
	}

	var s0, s1, s2, s3 T
	p := 0
	for ; p+4 <= k; p += 4 {
		s0 += a[p] * b[p]
		s1 += a[p+1] * b[p+1]
		s2 += a[p+2] * b[p+2]
		s3 += a[p+3] * b[p+3]
	}
	for ; p < k; p++ {
		s0 += a[p] * b[p]
	}
	return s0 + s1 + s2 + s3
}
