package main

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/samcharles93/batchblas/internal/kernel"
	"github.com/samcharles93/batchblas/internal/trace"
	"github.com/samcharles93/batchblas/pkg/blas"
)

// gemmtFunc is the shape the four batched gemmt entry points share.
type gemmtFunc[T kernel.Scalar] func(h *blas.Handle, uplo blas.Fill, transA, transB blas.Operation,
	n, k int, alpha *T, a [][]T, lda int, b [][]T, ldb int, beta *T, c [][]T, ldc int, batchCount int) blas.Status

type gemmtStridedFunc[T kernel.Scalar] func(h *blas.Handle, uplo blas.Fill, transA, transB blas.Operation,
	n, k int, alpha *T, a []T, lda int, strideA int64, b []T, ldb int, strideB int64,
	beta *T, c []T, ldc int, strideC int64, batchCount int) blas.Status

type reductionFunc[T kernel.Scalar] func(h *blas.Handle, n int, x [][]T, incx, batchCount int, result []int32) blas.Status

type reductionStridedFunc[T kernel.Scalar] func(h *blas.Handle, n int, x []T, incx int, stridex int64, batchCount int, result []int32) blas.Status

func randScalar[T kernel.Scalar](rng *rand.Rand) T {
	var v T
	switch p := any(&v).(type) {
	case *float32:
		*p = rng.Float32()*2 - 1
	case *float64:
		*p = rng.Float64()*2 - 1
	case *complex64:
		*p = complex(rng.Float32()*2-1, rng.Float32()*2-1)
	case *complex128:
		*p = complex(rng.Float64()*2-1, rng.Float64()*2-1)
	}
	return v
}

func randSlice[T kernel.Scalar](rng *rand.Rand, n int) []T {
	s := make([]T, n)
	for i := range s {
		s[i] = randScalar[T](rng)
	}
	return s
}

func flagInt(call trace.BenchCall, name string, def int) (int, error) {
	raw := call.Flag(name, "")
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("flag %s: %w", name, err)
	}
	return v, nil
}

func flagScalar[T kernel.Scalar](call trace.BenchCall, name string, def float64) (T, error) {
	var v T
	re, err := strconv.ParseFloat(call.Flag(name, strconv.FormatFloat(def, 'g', -1, 64)), 64)
	if err != nil {
		return v, fmt.Errorf("flag %s: %w", name, err)
	}
	var im float64
	if raw := call.Flag(name+"i", ""); raw != "" {
		if im, err = strconv.ParseFloat(raw, 64); err != nil {
			return v, fmt.Errorf("flag %si: %w", name, err)
		}
	}
	switch p := any(&v).(type) {
	case *float32:
		*p = float32(re)
	case *float64:
		*p = re
	case *complex64:
		*p = complex(float32(re), float32(im))
	case *complex128:
		*p = complex(re, im)
	}
	return v, nil
}

func parseFill(s string) (blas.Fill, error) {
	switch strings.ToUpper(s) {
	case "U":
		return blas.Upper, nil
	case "L":
		return blas.Lower, nil
	}
	return 0, fmt.Errorf("bad uplo %q", s)
}

func parseOperation(s string) (blas.Operation, error) {
	switch strings.ToUpper(s) {
	case "N":
		return blas.NoTrans, nil
	case "T":
		return blas.Trans, nil
	case "C":
		return blas.ConjTrans, nil
	}
	return 0, fmt.Errorf("bad transpose %q", s)
}

// executeCall runs one parsed bench call against the handle with randomized
// operands, so replayed logs exercise the same dispatch path that recorded
// them.
func executeCall(h *blas.Handle, call trace.BenchCall, rng *rand.Rand) error {
	strided := strings.Contains(call.Function, "strided")
	switch {
	case strings.HasSuffix(call.Function, "gemmt_batched") && !strided:
		switch call.Precision {
		case "f32_r":
			return executeGemmt[float32](h, call, rng, blas.SgemmtBatched)
		case "f64_r":
			return executeGemmt[float64](h, call, rng, blas.DgemmtBatched)
		case "f32_c":
			return executeGemmt[complex64](h, call, rng, blas.CgemmtBatched)
		case "f64_c":
			return executeGemmt[complex128](h, call, rng, blas.ZgemmtBatched)
		}
	case strings.HasSuffix(call.Function, "gemmt_strided_batched"):
		switch call.Precision {
		case "f32_r":
			return executeGemmtStrided[float32](h, call, rng, blas.SgemmtStridedBatched)
		case "f64_r":
			return executeGemmtStrided[float64](h, call, rng, blas.DgemmtStridedBatched)
		case "f32_c":
			return executeGemmtStrided[complex64](h, call, rng, blas.CgemmtStridedBatched)
		case "f64_c":
			return executeGemmtStrided[complex128](h, call, rng, blas.ZgemmtStridedBatched)
		}
	case strings.HasPrefix(call.Function, "iamax") && !strided:
		switch call.Precision {
		case "f32_r":
			return executeReduction[float32](h, call, rng, blas.IsamaxBatched)
		case "f64_r":
			return executeReduction[float64](h, call, rng, blas.IdamaxBatched)
		case "f32_c":
			return executeReduction[complex64](h, call, rng, blas.IcamaxBatched)
		case "f64_c":
			return executeReduction[complex128](h, call, rng, blas.IzamaxBatched)
		}
	case strings.HasPrefix(call.Function, "iamax"):
		switch call.Precision {
		case "f32_r":
			return executeReductionStrided[float32](h, call, rng, blas.IsamaxStridedBatched)
		case "f64_r":
			return executeReductionStrided[float64](h, call, rng, blas.IdamaxStridedBatched)
		case "f32_c":
			return executeReductionStrided[complex64](h, call, rng, blas.IcamaxStridedBatched)
		case "f64_c":
			return executeReductionStrided[complex128](h, call, rng, blas.IzamaxStridedBatched)
		}
	case strings.HasPrefix(call.Function, "iamin") && !strided:
		switch call.Precision {
		case "f32_r":
			return executeReduction[float32](h, call, rng, blas.IsaminBatched)
		case "f64_r":
			return executeReduction[float64](h, call, rng, blas.IdaminBatched)
		case "f32_c":
			return executeReduction[complex64](h, call, rng, blas.IcaminBatched)
		case "f64_c":
			return executeReduction[complex128](h, call, rng, blas.IzaminBatched)
		}
	case strings.HasPrefix(call.Function, "iamin"):
		switch call.Precision {
		case "f32_r":
			return executeReductionStrided[float32](h, call, rng, blas.IsaminStridedBatched)
		case "f64_r":
			return executeReductionStrided[float64](h, call, rng, blas.IdaminStridedBatched)
		case "f32_c":
			return executeReductionStrided[complex64](h, call, rng, blas.IcaminStridedBatched)
		case "f64_c":
			return executeReductionStrided[complex128](h, call, rng, blas.IzaminStridedBatched)
		}
	default:
		return fmt.Errorf("unknown function %q", call.Function)
	}
	return fmt.Errorf("unknown precision %q for %s", call.Precision, call.Function)
}

type gemmtShape struct {
	uplo           blas.Fill
	transA, transB blas.Operation
	n, k           int
	lda, ldb, ldc  int
	batchCount     int
	rowsA, colsA   int
	rowsB, colsB   int
}

func gemmtShapeFromCall(call trace.BenchCall) (gemmtShape, error) {
	var (
		sh  gemmtShape
		err error
	)
	if sh.uplo, err = parseFill(call.Flag("uplo", "U")); err != nil {
		return sh, err
	}
	if sh.transA, err = parseOperation(call.Flag("transposeA", "N")); err != nil {
		return sh, err
	}
	if sh.transB, err = parseOperation(call.Flag("transposeB", "N")); err != nil {
		return sh, err
	}
	if sh.n, err = flagInt(call, "n", 128); err != nil {
		return sh, err
	}
	if sh.k, err = flagInt(call, "k", 128); err != nil {
		return sh, err
	}
	if sh.batchCount, err = flagInt(call, "batch_count", 1); err != nil {
		return sh, err
	}
	sh.rowsA, sh.colsA = sh.n, sh.k
	if sh.transA != blas.NoTrans {
		sh.rowsA, sh.colsA = sh.k, sh.n
	}
	sh.rowsB, sh.colsB = sh.k, sh.n
	if sh.transB != blas.NoTrans {
		sh.rowsB, sh.colsB = sh.n, sh.k
	}
	if sh.lda, err = flagInt(call, "lda", sh.rowsA); err != nil {
		return sh, err
	}
	if sh.ldb, err = flagInt(call, "ldb", sh.rowsB); err != nil {
		return sh, err
	}
	if sh.ldc, err = flagInt(call, "ldc", sh.n); err != nil {
		return sh, err
	}
	return sh, nil
}

func statusError(name string, st blas.Status) error {
	if st == blas.StatusSuccess {
		return nil
	}
	return fmt.Errorf("%s: %v", name, st)
}

func executeGemmt[T kernel.Scalar](h *blas.Handle, call trace.BenchCall, rng *rand.Rand, f gemmtFunc[T]) error {
	sh, err := gemmtShapeFromCall(call)
	if err != nil {
		return err
	}
	alpha, err := flagScalar[T](call, "alpha", 1)
	if err != nil {
		return err
	}
	beta, err := flagScalar[T](call, "beta", 0)
	if err != nil {
		return err
	}
	a := make([][]T, sh.batchCount)
	b := make([][]T, sh.batchCount)
	c := make([][]T, sh.batchCount)
	for i := range a {
		a[i] = randSlice[T](rng, sh.lda*sh.colsA)
		b[i] = randSlice[T](rng, sh.ldb*sh.colsB)
		c[i] = randSlice[T](rng, sh.ldc*sh.n)
	}
	st := f(h, sh.uplo, sh.transA, sh.transB, sh.n, sh.k, &alpha, a, sh.lda, b, sh.ldb, &beta, c, sh.ldc, sh.batchCount)
	if err := statusError(call.Function, st); err != nil {
		return err
	}
	return h.Synchronize()
}

func executeGemmtStrided[T kernel.Scalar](h *blas.Handle, call trace.BenchCall, rng *rand.Rand, f gemmtStridedFunc[T]) error {
	sh, err := gemmtShapeFromCall(call)
	if err != nil {
		return err
	}
	alpha, err := flagScalar[T](call, "alpha", 1)
	if err != nil {
		return err
	}
	beta, err := flagScalar[T](call, "beta", 0)
	if err != nil {
		return err
	}
	strideA, err := flagInt(call, "stride_a", sh.lda*sh.colsA)
	if err != nil {
		return err
	}
	strideB, err := flagInt(call, "stride_b", sh.ldb*sh.colsB)
	if err != nil {
		return err
	}
	strideC, err := flagInt(call, "stride_c", sh.ldc*sh.n)
	if err != nil {
		return err
	}
	a := randSlice[T](rng, strideA*sh.batchCount)
	b := randSlice[T](rng, strideB*sh.batchCount)
	c := randSlice[T](rng, strideC*sh.batchCount)
	st := f(h, sh.uplo, sh.transA, sh.transB, sh.n, sh.k, &alpha,
		a, sh.lda, int64(strideA), b, sh.ldb, int64(strideB), &beta, c, sh.ldc, int64(strideC), sh.batchCount)
	if err := statusError(call.Function, st); err != nil {
		return err
	}
	return h.Synchronize()
}

func reductionShape(call trace.BenchCall) (n, incx, batchCount int, err error) {
	if n, err = flagInt(call, "n", 1024); err != nil {
		return
	}
	if incx, err = flagInt(call, "incx", 1); err != nil {
		return
	}
	batchCount, err = flagInt(call, "batch_count", 1)
	return
}

func vectorSpan(n, incx int) int {
	if incx < 0 {
		incx = -incx
	}
	return (n-1)*incx + 1
}

func executeReduction[T kernel.Scalar](h *blas.Handle, call trace.BenchCall, rng *rand.Rand, f reductionFunc[T]) error {
	n, incx, batchCount, err := reductionShape(call)
	if err != nil {
		return err
	}
	x := make([][]T, batchCount)
	for i := range x {
		x[i] = randSlice[T](rng, vectorSpan(n, incx))
	}
	result := make([]int32, batchCount)
	if err := statusError(call.Function, f(h, n, x, incx, batchCount, result)); err != nil {
		return err
	}
	return h.Synchronize()
}

func executeReductionStrided[T kernel.Scalar](h *blas.Handle, call trace.BenchCall, rng *rand.Rand, f reductionStridedFunc[T]) error {
	n, incx, batchCount, err := reductionShape(call)
	if err != nil {
		return err
	}
	stride, err := flagInt(call, "stride_x", vectorSpan(n, incx))
	if err != nil {
		return err
	}
	x := randSlice[T](rng, stride*batchCount)
	result := make([]int32, batchCount)
	if err := statusError(call.Function, f(h, n, x, incx, int64(stride), batchCount, result)); err != nil {
		return err
	}
	return h.Synchronize()
}
