package kernel

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/blas"
	gblas "gonum.org/v1/gonum/blas/gonum"

	"github.com/samcharles93/batchblas/internal/device"
)

func randFloats(n int, seed int64) []float32 {
	r := rand.New(rand.NewSource(seed))
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(r.NormFloat64())
	}
	return out
}

func randComplex(n int, seed int64) []complex64 {
	r := rand.New(rand.NewSource(seed))
	out := make([]complex64, n)
	for i := range out {
		out[i] = complex(float32(r.NormFloat64()), float32(r.NormFloat64()))
	}
	return out
}

func maxAbsDiff(a, b []float32) float64 {
	var maxAbs float64
	for i := range a {
		d := math.Abs(float64(a[i] - b[i]))
		if d > maxAbs {
			maxAbs = d
		}
	}
	return maxAbs
}

// gemmOracle computes the full C = alpha*op(A)*op(B) + beta*C with gonum and
// returns it column-major. gonum is row-major, so the call is phrased on the
// transposed problem with the operands swapped.
func gemmOracle(transA, transB blas.Transpose, n, k int, alpha float32,
	a []float32, lda int, b []float32, ldb int, beta float32, c []float32, ldc int) []float32 {
	out := append([]float32(nil), c...)
	impl := gblas.Implementation{}
	impl.Sgemm(transB, transA, n, n, k, alpha, b, ldb, a, lda, beta, out, ldc)
	return out
}

func gonumTrans(t Op) blas.Transpose {
	if t == OpNone {
		return blas.NoTrans
	}
	return blas.Trans
}

func TestGemmtBatchedMatchesGemmOracle(t *testing.T) {
	const n, k, lda, ldb, ldc, batch = 17, 9, 19, 23, 18, 3

	cases := []struct {
		name           string
		upper          bool
		transA, transB Op
	}{
		{"upper_nn", true, OpNone, OpNone},
		{"upper_tn", true, OpTranspose, OpNone},
		{"lower_nt", false, OpNone, OpTranspose},
		{"lower_tt", false, OpTranspose, OpTranspose},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rowsA, rowsB := n, k
			if tc.transA != OpNone {
				rowsA = k
			}
			if tc.transB != OpNone {
				rowsB = n
			}
			colsA := n + k - rowsA
			colsB := n + k - rowsB

			a := make([][]float32, batch)
			b := make([][]float32, batch)
			c := make([][]float32, batch)
			want := make([][]float32, batch)
			for i := range a {
				a[i] = randFloats(lda*colsA, int64(10*i+1))
				b[i] = randFloats(ldb*colsB, int64(10*i+2))
				c[i] = randFloats(ldc*n, int64(10*i+3))
				want[i] = append([]float32(nil), c[i]...)
			}

			alpha, beta := float32(1.25), float32(-0.5)
			s := device.NewStream()
			defer s.Close()
			if err := GemmtBatched(s, tc.upper, tc.transA, tc.transB, n, k,
				&alpha, a, lda, b, ldb, &beta, c, ldc, batch); err != nil {
				t.Fatalf("enqueue: %v", err)
			}
			if err := s.Synchronize(); err != nil {
				t.Fatalf("synchronize: %v", err)
			}

			for i := range c {
				full := gemmOracle(gonumTrans(tc.transA), gonumTrans(tc.transB),
					n, k, alpha, a[i], lda, b[i], ldb, beta, want[i], ldc)
				// Only the selected triangle is updated; the rest of C must
				// carry its original values.
				for col := 0; col < n; col++ {
					for row := 0; row < n; row++ {
						inTri := row <= col
						if !tc.upper {
							inTri = row >= col
						}
						if inTri {
							want[i][row+col*ldc] = full[row+col*ldc]
						}
					}
				}
				if d := maxAbsDiff(c[i], want[i]); d > 1e-4 {
					t.Fatalf("batch %d: max abs diff %g", i, d)
				}
			}
		})
	}
}

func cgemmtNaive(upper bool, transA, transB Op, n, k int, alpha complex64,
	a []complex64, lda int, b []complex64, ldb int, beta complex64, c []complex64, ldc int) {
	for j := 0; j < n; j++ {
		lo, hi := 0, j+1
		if !upper {
			lo, hi = j, n
		}
		for i := lo; i < hi; i++ {
			var sum complex64
			for p := 0; p < k; p++ {
				sum += matElem(a, lda, transA, i, p) * matElem(b, ldb, transB, p, j)
			}
			c[i+j*ldc] = alpha*sum + beta*c[i+j*ldc]
		}
	}
}

func TestGemmtStridedBatchedComplexConjugate(t *testing.T) {
	const n, k, ld, batch = 8, 5, 9, 2
	strideA := int64(ld * n)
	strideB := int64(ld * n)
	strideC := int64(ld * n)

	a := randComplex(int(strideA)*batch, 7)
	b := randComplex(int(strideB)*batch, 8)
	c := randComplex(int(strideC)*batch, 9)
	want := append([]complex64(nil), c...)

	alpha := complex64(complex(0.5, -1))
	beta := complex64(complex(1, 0.25))

	s := device.NewStream()
	defer s.Close()
	if err := GemmtStridedBatched(s, true, OpConjTranspose, OpNone, n, k,
		&alpha, a, ld, strideA, b, ld, strideB, &beta, c, ld, strideC, batch); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := s.Synchronize(); err != nil {
		t.Fatalf("synchronize: %v", err)
	}

	for i := 0; i < batch; i++ {
		off := i * int(strideC)
		cgemmtNaive(true, OpConjTranspose, OpNone, n, k, alpha,
			a[i*int(strideA):], ld, b[i*int(strideB):], ld, beta, want[off:], ld)
	}
	for i := range c {
		if d := complex128(c[i] - want[i]); math.Hypot(real(d), imag(d)) > 1e-4 {
			t.Fatalf("element %d: got %v want %v", i, c[i], want[i])
		}
	}
}

// refScan is the sequential reference the two-phase reduction must agree
// with: first occurrence of the extremum in traversal order, 1-based.
func refScan[T Scalar, S Real](n int, x []T, incx int, minimize bool) int32 {
	if n < 1 {
		return 0
	}
	start := 0
	if incx < 0 {
		start = (n - 1) * -incx
	}
	best := Abs1[T, S](x[start])
	bestIdx := int32(1)
	for j := 1; j < n; j++ {
		m := Abs1[T, S](x[start+j*incx])
		if (minimize && m < best) || (!minimize && m > best) {
			best, bestIdx = m, int32(j+1)
		}
	}
	return bestIdx
}

func runAmax[T Scalar, S Real](t *testing.T, n int, vec func(int) []T, incx, batch int, minimize bool) []int32 {
	t.Helper()
	s := device.NewStream()
	defer s.Close()
	arena := device.NewArena(0)
	ws, err := arena.Acquire(ReductionWorkspaceBytes[S](n, batch))
	if err != nil {
		t.Fatalf("workspace: %v", err)
	}
	result := make([]int32, batch)
	if minimize {
		err = Amin[T, S](s, n, vec, incx, batch, result, ws)
	} else {
		err = Amax[T, S](s, n, vec, incx, batch, result, ws)
	}
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := s.Synchronize(); err != nil {
		t.Fatalf("synchronize: %v", err)
	}
	return result
}

func TestAmaxMatchesReferenceScan(t *testing.T) {
	// Spans multiple reduction blocks so the cross-block phase is exercised.
	const n, batch = 3000, 4
	for _, incx := range []int{1, 3, -1, -2} {
		span := (n-1)*abs(incx) + 1
		x := make([][]float32, batch)
		for i := range x {
			x[i] = randFloats(span, int64(100+i))
		}
		got := runAmax[float32, float32](t, n, BatchVectors(x), incx, batch, false)
		for i := range x {
			if want := refScan[float32, float32](n, x[i], incx, false); got[i] != want {
				t.Fatalf("incx %d batch %d: got %d want %d", incx, i, got[i], want)
			}
		}
	}
}

func TestAminStridedMatchesBatched(t *testing.T) {
	const n, batch = 1500, 3
	stride := int64(n + 17)
	flat := randComplex(int(stride)*batch, 42)

	views := make([][]complex64, batch)
	for i := range views {
		views[i] = flat[i*int(stride):]
	}

	batched := runAmax[complex64, float32](t, n, BatchVectors(views), 1, batch, true)
	strided := runAmax[complex64, float32](t, n, StridedVectors(flat, stride), 1, batch, true)
	for i := range batched {
		if batched[i] != strided[i] {
			t.Fatalf("batch %d: batched %d != strided %d", i, batched[i], strided[i])
		}
		if want := refScan[complex64, float32](n, views[i], 1, true); batched[i] != want {
			t.Fatalf("batch %d: got %d want %d", i, batched[i], want)
		}
	}
}

func TestAmaxTieResolvesToFirst(t *testing.T) {
	x := [][]float64{{1, -5, 2, 5, -5}}
	got := runAmax[float64, float64](t, 5, BatchVectors(x), 1, 1, false)
	if got[0] != 2 {
		t.Fatalf("tie: got %d want 2", got[0])
	}
	// Backward traversal sees the last 5 first.
	got = runAmax[float64, float64](t, 5, BatchVectors(x), -1, 1, false)
	if got[0] != 1 {
		t.Fatalf("tie reversed: got %d want 1", got[0])
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
