package blas

// guard is the boundary adapter every exported routine runs under: a panic
// anywhere in the dispatch chain is recovered exactly once here and
// converted to StatusInternalError.
func guard(f func() Status) (st Status) {
	defer func() {
		if r := recover(); r != nil {
			st = StatusInternalError
		}
	}()
	return f()
}
