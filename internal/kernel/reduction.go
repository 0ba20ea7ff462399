package kernel

import (
	"unsafe"

	"github.com/samcharles93/batchblas/internal/device"
)

// ReductionBlock is the element count one partial-reduction block covers.
const ReductionBlock = 1024

// IndexValue is one partial-reduction slot: the best magnitude seen inside a
// block and the 1-based traversal index where it occurred.
type IndexValue[S Real] struct {
	Index int32
	Value S
}

// ReductionBlocks returns how many partial blocks an n-element vector needs.
func ReductionBlocks(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + ReductionBlock - 1) / ReductionBlock
}

// ReductionWorkspaceBytes is the scratch size one amax/amin call needs: one
// index+value pair per block per batch item.
func ReductionWorkspaceBytes[S Real](n, batchCount int) int64 {
	var pair IndexValue[S]
	return int64(ReductionBlocks(n)) * int64(batchCount) * int64(unsafe.Sizeof(pair))
}

// BatchVectors adapts an array-of-slices operand to the common per-batch
// accessor the reduction templates consume.
func BatchVectors[T Scalar](x [][]T) func(int) []T {
	return func(i int) []T { return x[i] }
}

// StridedVectors adapts a strided operand: batch i starts i*stride into the
// shared backing slice.
func StridedVectors[T Scalar](x []T, stride int64) func(int) []T {
	return func(i int) []T { return x[int(int64(i)*stride):] }
}

// Amax enqueues the per-batch index-of-maximum-magnitude reduction. The
// workspace must hold ReductionWorkspaceBytes and is released when the
// kernel completes; the caller must not touch it afterwards.
func Amax[T Scalar, S Real](s *device.Stream, n int, vec func(int) []T, incx int,
	batchCount int, result []int32, ws *device.Buffer) error {
	return reduceExtremum[T, S](s, n, vec, incx, batchCount, result, ws, false)
}

// Amin is the index-of-minimum-magnitude counterpart of Amax.
func Amin[T Scalar, S Real](s *device.Stream, n int, vec func(int) []T, incx int,
	batchCount int, result []int32, ws *device.Buffer) error {
	return reduceExtremum[T, S](s, n, vec, incx, batchCount, result, ws, true)
}

func reduceExtremum[T Scalar, S Real](s *device.Stream, n int, vec func(int) []T, incx int,
	batchCount int, result []int32, ws *device.Buffer, minimize bool) error {
	blocks := ReductionBlocks(n)
	return s.Enqueue(func() error {
		defer ws.Release()
		pairs, err := device.ViewAs[IndexValue[S]](ws, blocks*batchCount)
		if err != nil {
			return err
		}
		for b := 0; b < batchCount; b++ {
			part := pairs[b*blocks : (b+1)*blocks]
			partialReduce[T, S](n, vec(b), incx, part, minimize)
			result[b] = finalReduce(part, minimize)
		}
		return nil
	})
}

// partialReduce is phase one: each block scans its span in traversal order
// and records the first occurrence of its extremum. A negative increment
// starts at the last element and walks backward; indices stay relative to
// the traversal start.
func partialReduce[T Scalar, S Real](n int, x []T, incx int, part []IndexValue[S], minimize bool) {
	start := 0
	if incx < 0 {
		start = (n - 1) * -incx
	}
	for blk := range part {
		lo := blk * ReductionBlock
		hi := min(lo+ReductionBlock, n)
		best := IndexValue[S]{Index: int32(lo + 1), Value: Abs1[T, S](x[start+lo*incx])}
		for j := lo + 1; j < hi; j++ {
			m := Abs1[T, S](x[start+j*incx])
			if betterThan(m, best.Value, minimize) {
				best = IndexValue[S]{Index: int32(j + 1), Value: m}
			}
		}
		part[blk] = best
	}
}

// finalReduce is phase two: combine the block results. Only a strictly
// better magnitude replaces the incumbent, so ties resolve to the lowest
// traversal index.
func finalReduce[S Real](part []IndexValue[S], minimize bool) int32 {
	best := part[0]
	for _, p := range part[1:] {
		if betterThan(p.Value, best.Value, minimize) {
			best = p
		}
	}
	return best.Index
}

func betterThan[S Real](candidate, incumbent S, minimize bool) bool {
	if minimize {
		return candidate < incumbent
	}
	return candidate > incumbent
}
