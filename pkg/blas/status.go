package blas

// Status is the result code every exported routine returns. Routines never
// panic across the public boundary; unexpected faults surface as
// StatusInternalError.
type Status int

const (
	StatusSuccess Status = iota
	StatusInvalidHandle
	StatusInvalidPointer
	StatusInvalidSize
	StatusInvalidValue
	StatusMemoryError
	StatusCheckNumericsFail
	StatusExecutionFailed
	StatusInternalError

	// statusContinue is the internal "validation passed, run the kernel"
	// sentinel. It never escapes the package.
	statusContinue
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusInvalidHandle:
		return "invalid_handle"
	case StatusInvalidPointer:
		return "invalid_pointer"
	case StatusInvalidSize:
		return "invalid_size"
	case StatusInvalidValue:
		return "invalid_value"
	case StatusMemoryError:
		return "memory_error"
	case StatusCheckNumericsFail:
		return "check_numerics_fail"
	case StatusExecutionFailed:
		return "execution_failed"
	case StatusInternalError:
		return "internal_error"
	case statusContinue:
		return "continue"
	default:
		return "unknown_status"
	}
}
