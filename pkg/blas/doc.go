// Package blas is the public dispatch surface of batchblas: batched
// triangular-update matrix multiply (gemmt) and batched index-of-extremum
// reductions (iamax/iamin), each exported once per numeric kind (S/D/C/Z).
//
// Every routine runs the same pipeline: nil-handle check, workspace
// size-query short-circuit, diagnostic logging, argument validation,
// optional input numerics scan, kernel dispatch onto the handle's stream,
// and an optional output numerics scan. Routines return Status codes and
// never panic; results become valid once Handle.Synchronize returns.
package blas
