// Package numerics scans operand buffers for floating-point states the
// caller asked to be told about: NaN, infinity, and optionally denormals.
// The dispatch layer runs it over inputs before a kernel launch and over
// outputs after, when the handle enables checking.
package numerics

import (
	"errors"
	"math"

	"github.com/samcharles93/batchblas/internal/kernel"
	"github.com/samcharles93/batchblas/internal/logger"
)

// Mode is the handle's numerics-checking bitmask.
type Mode uint8

const (
	NoCheck  Mode = 0
	Info     Mode = 1 << 0 // log every report
	Warn     Mode = 1 << 1 // log reports that found anything
	Fail     Mode = 1 << 2 // fail the call on NaN/Inf
	Denormal Mode = 1 << 3 // treat denormals as failures too
)

// ErrCheckFailed marks a scan that found a disallowed value under Fail mode.
var ErrCheckFailed = errors.New("numerics: invalid floating-point value detected")

// Report tallies what a scan saw.
type Report struct {
	Zero   int
	NaN    int
	Inf    int
	Denorm int
}

func (r *Report) found() bool {
	return r.NaN > 0 || r.Inf > 0 || r.Denorm > 0
}

// smallest normal magnitudes; anything non-zero below these is subnormal in
// the operand's own precision.
const (
	minNormal32 = 0x1p-126
	minNormal64 = 0x1p-1022
)

func (r *Report) classify(v float64, single bool) {
	minNormal := minNormal64
	if single {
		minNormal = minNormal32
	}
	a := math.Abs(v)
	switch {
	case math.IsNaN(v):
		r.NaN++
	case math.IsInf(v, 0):
		r.Inf++
	case a == 0:
		r.Zero++
	case a < minNormal:
		r.Denorm++
	}
}

// CheckMatrixBatched scans the rows x cols region of each batch matrix.
func CheckMatrixBatched[T kernel.Scalar](routine, operand string, log logger.Logger, mode Mode,
	rows, cols int, m [][]T, ld int, batchCount int, isInput bool) error {
	var rep Report
	single := kernel.IsSinglePrecision[T]()
	for b := 0; b < batchCount; b++ {
		scanMatrix(&rep, rows, cols, m[b], ld, single)
	}
	return resolve(routine, operand, log, mode, &rep, isInput)
}

// CheckMatrixStridedBatched scans the strided-batched form.
func CheckMatrixStridedBatched[T kernel.Scalar](routine, operand string, log logger.Logger, mode Mode,
	rows, cols int, m []T, ld int, stride int64, batchCount int, isInput bool) error {
	var rep Report
	single := kernel.IsSinglePrecision[T]()
	for b := 0; b < batchCount; b++ {
		scanMatrix(&rep, rows, cols, m[int(int64(b)*stride):], ld, single)
	}
	return resolve(routine, operand, log, mode, &rep, isInput)
}

// CheckVector scans n elements of each batch vector at the given increment.
// The accessor abstracts the batched/strided layouts the way the kernels do.
func CheckVector[T kernel.Scalar](routine, operand string, log logger.Logger, mode Mode,
	n int, vec func(int) []T, incx int, batchCount int, isInput bool) error {
	var rep Report
	single := kernel.IsSinglePrecision[T]()
	cplx := kernel.IsComplex[T]()
	for b := 0; b < batchCount; b++ {
		x := vec(b)
		start := 0
		if incx < 0 {
			start = (n - 1) * -incx
		}
		for j := 0; j < n; j++ {
			re, im := kernel.Components(x[start+j*incx])
			rep.classify(re, single)
			if cplx {
				rep.classify(im, single)
			}
		}
	}
	return resolve(routine, operand, log, mode, &rep, isInput)
}

func scanMatrix[T kernel.Scalar](rep *Report, rows, cols int, m []T, ld int, single bool) {
	cplx := kernel.IsComplex[T]()
	for c := 0; c < cols; c++ {
		col := m[c*ld : c*ld+rows]
		for _, v := range col {
			re, im := kernel.Components(v)
			rep.classify(re, single)
			if cplx {
				rep.classify(im, single)
			}
		}
	}
}

func resolve(routine, operand string, log logger.Logger, mode Mode, rep *Report, isInput bool) error {
	phase := "output"
	if isInput {
		phase = "input"
	}
	if mode&Info != 0 || (mode&Warn != 0 && rep.found()) {
		log.Warn("numerics check",
			"routine", routine, "operand", operand, "phase", phase,
			"zero", rep.Zero, "nan", rep.NaN, "inf", rep.Inf, "denorm", rep.Denorm)
	}
	if mode&Fail == 0 {
		return nil
	}
	if rep.NaN > 0 || rep.Inf > 0 || (mode&Denormal != 0 && rep.Denorm > 0) {
		return ErrCheckFailed
	}
	return nil
}
