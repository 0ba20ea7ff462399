package blas

import (
	"fmt"
	"strconv"

	"github.com/samcharles93/batchblas/internal/kernel"
)

// routineName builds the exported routine name for T: library prefix, type
// letter, routine stem.
func routineName[T kernel.Scalar](stem string) string {
	return "batchblas_" + string(rune(kernel.Prefix[T]())) + stem
}

// reductionName builds the iamax/iamin family name, where the type letter
// sits after the leading i.
func reductionName[T kernel.Scalar](stem string) string {
	return "batchblas_i" + string(rune(kernel.Prefix[T]())) + stem
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func itoa(v int) string {
	return strconv.Itoa(v)
}

func i64toa(v int64) string {
	return strconv.FormatInt(v, 10)
}

// traceScalar renders alpha/beta for the trace log: the dereferenced value
// in host pointer mode, the pointer itself otherwise.
func traceScalar[T kernel.Scalar](h *Handle, p *T) string {
	if p == nil {
		return "nil"
	}
	if h.pointerMode != PointerModeHost {
		return fmt.Sprintf("%p", p)
	}
	re, im := kernel.Components(*p)
	if kernel.IsComplex[T]() {
		return "(" + fmtFloat(re) + "," + fmtFloat(im) + ")"
	}
	return fmtFloat(re)
}

// benchScalar appends the --name (and --namei for complex) flags when the
// value is resolvable, i.e. host pointer mode and non-nil. Device-mode
// scalars are omitted; replay falls back to the harness defaults.
func benchScalar[T kernel.Scalar](fields []string, h *Handle, name string, p *T) []string {
	if h.pointerMode != PointerModeHost || p == nil {
		return fields
	}
	re, im := kernel.Components(*p)
	fields = append(fields, "--"+name, fmtFloat(re))
	if kernel.IsComplex[T]() {
		fields = append(fields, "--"+name+"i", fmtFloat(im))
	}
	return fields
}

func scalarIsZero[T kernel.Scalar](p *T) bool {
	if p == nil {
		return false
	}
	re, im := kernel.Components(*p)
	return re == 0 && im == 0
}
