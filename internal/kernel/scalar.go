// Package kernel holds the computational templates the dispatch layer
// forwards to: the batched triangular-update matrix product and the batched
// index-of-extremum reductions. Every template is generic over the four
// supported numeric kinds and enqueues its work on a device stream.
package kernel

import "math"

// Scalar enumerates the numeric kinds routines are instantiated for.
type Scalar interface {
	~float32 | ~float64 | ~complex64 | ~complex128
}

// Real constrains the magnitude precision paired with a Scalar: float32 for
// the s/c instantiations, float64 for d/z.
type Real interface {
	~float32 | ~float64
}

// Op selects how a matrix operand is read.
type Op uint8

const (
	OpNone Op = iota
	OpTranspose
	OpConjTranspose
)

// Prefix returns the BLAS type letter for T.
func Prefix[T Scalar]() byte {
	var zero T
	switch any(zero).(type) {
	case float32:
		return 's'
	case float64:
		return 'd'
	case complex64:
		return 'c'
	default:
		return 'z'
	}
}

// PrecisionString returns the precision tag used by the bench log and the
// benchmark harness for T.
func PrecisionString[T Scalar]() string {
	var zero T
	switch any(zero).(type) {
	case float32:
		return "f32_r"
	case float64:
		return "f64_r"
	case complex64:
		return "f32_c"
	default:
		return "f64_c"
	}
}

// IsSinglePrecision reports whether T carries float32 components.
func IsSinglePrecision[T Scalar]() bool {
	var zero T
	switch any(zero).(type) {
	case float32, complex64:
		return true
	}
	return false
}

// IsComplex reports whether T is one of the complex kinds.
func IsComplex[T Scalar]() bool {
	var zero T
	switch any(zero).(type) {
	case complex64, complex128:
		return true
	}
	return false
}

// Components splits v into real and imaginary parts as float64, for logging
// and scalar classification. Real kinds have a zero imaginary part.
func Components[T Scalar](v T) (re, im float64) {
	switch x := any(v).(type) {
	case float32:
		return float64(x), 0
	case float64:
		return x, 0
	case complex64:
		return float64(real(x)), float64(imag(x))
	case complex128:
		return real(x), imag(x)
	}
	return 0, 0
}

// Abs1 returns the reduction magnitude of v in precision S: |v| for real
// kinds, |re| + |im| for complex kinds, per the BLAS amax/amin convention.
func Abs1[T Scalar, S Real](v T) S {
	switch x := any(v).(type) {
	case float32:
		return S(math.Abs(float64(x)))
	case float64:
		return S(math.Abs(x))
	case complex64:
		return S(math.Abs(float64(real(x))) + math.Abs(float64(imag(x))))
	case complex128:
		return S(math.Abs(real(x)) + math.Abs(imag(x)))
	}
	return 0
}

// conjugate returns the complex conjugate of v; real kinds are unchanged.
func conjugate[T Scalar](v T) T {
	switch x := any(v).(type) {
	case complex64:
		return any(complex(real(x), -imag(x))).(T)
	case complex128:
		return any(complex(real(x), -imag(x))).(T)
	}
	return v
}
