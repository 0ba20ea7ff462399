package blas

import "github.com/samcharles93/batchblas/internal/kernel"

// Fill selects which triangle of the output matrix a routine updates.
type Fill uint8

const (
	Upper Fill = iota
	Lower
)

func (f Fill) valid() bool {
	return f == Upper || f == Lower
}

func (f Fill) letter() string {
	if f == Lower {
		return "L"
	}
	return "U"
}

// Operation selects how a matrix operand is read.
type Operation uint8

const (
	NoTrans Operation = iota
	Trans
	ConjTrans
)

func (o Operation) valid() bool {
	return o <= ConjTrans
}

func (o Operation) letter() string {
	switch o {
	case Trans:
		return "T"
	case ConjTrans:
		return "C"
	default:
		return "N"
	}
}

func (o Operation) kernelOp() kernel.Op {
	switch o {
	case Trans:
		return kernel.OpTranspose
	case ConjTrans:
		return kernel.OpConjTranspose
	default:
		return kernel.OpNone
	}
}

// PointerMode states where scalar arguments (alpha, beta) notionally reside.
// In host mode their values may be read at dispatch time, which lets the
// trace and bench logs resolve them; in device mode the values are only read
// when the kernel runs and the logs omit them.
type PointerMode uint8

const (
	PointerModeHost PointerMode = iota
	PointerModeDevice
)
