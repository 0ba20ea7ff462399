package device

import (
	"fmt"
	"unsafe"
)

// ViewAs reinterprets a buffer's bytes as count values of type P. The byte
// slice comes from the Go allocator, which aligns small allocations to at
// least 8 bytes, but the alignment is still checked rather than assumed.
func ViewAs[P any](b *Buffer, count int) ([]P, error) {
	if count == 0 {
		return nil, nil
	}
	var zero P
	size := int(unsafe.Sizeof(zero))
	data := b.Bytes()
	if need := count * size; need > len(data) {
		return nil, fmt.Errorf("device: workspace too small: need %d bytes, have %d", need, len(data))
	}
	p := unsafe.Pointer(&data[0])
	if uintptr(p)%uintptr(unsafe.Alignof(zero)) != 0 {
		return nil, fmt.Errorf("device: workspace misaligned for %d-byte elements", size)
	}
	return unsafe.Slice((*P)(p), count), nil
}
