package tensorio

import (
	"fmt"
	"math"
	"unsafe"
)

// element is the constraint for fixed-width numeric buffer elements.
type element interface {
	~float32 | ~uint8 | ~uint16 | ~uint32 | ~int8 | ~int16 | ~int32
}

// allocateBuffer allocates a zero-initialized typed buffer for elementCount
// elements. Fails on a non-positive or overflowing size computation.
func allocateBuffer[T element](elementCount int) ([]T, error) {
	if elementCount <= 0 {
		return nil, fmt.Errorf("invalid element count %d", elementCount)
	}
	var zero T
	elemSize := int(unsafe.Sizeof(zero))
	if elementCount > math.MaxInt/elemSize {
		return nil, fmt.Errorf("buffer size overflow: %d elements of %d bytes", elementCount, elemSize)
	}
	return make([]T, elementCount), nil
}

// numElements multiplies extents with overflow checking.
func numElements(dims []int) (int, error) {
	n := 1
	for i, d := range dims {
		if d <= 0 {
			return 0, fmt.Errorf("%w: non-positive extent at dimension %d", ErrShapeMismatch, i)
		}
		if n > math.MaxInt/d {
			return 0, fmt.Errorf("element count overflow for dims %v", dims)
		}
		n *= d
	}
	return n, nil
}

// ManagedBuffer is an owned heap region backing exactly one tensor. The
// region is exclusively owned until Release; it is never aliased across
// tensors. Release must be called exactly once, during teardown.
type ManagedBuffer struct {
	data []byte
}

// newManagedBuffer allocates a zero-initialized buffer sized from the extents
// and element type. Fails if the byte size computation overflows.
func newManagedBuffer(dims []int, dt DataType) (*ManagedBuffer, error) {
	n, err := numElements(dims)
	if err != nil {
		return nil, err
	}
	elemSize := dt.Size()
	if n > math.MaxInt/elemSize {
		return nil, fmt.Errorf("buffer size overflow: %d elements of %s", n, dt)
	}
	return &ManagedBuffer{data: make([]byte, n*elemSize)}, nil
}

// Bytes returns the raw backing bytes, or nil after Release.
func (b *ManagedBuffer) Bytes() []byte {
	return b.data
}

// Released reports whether the buffer has been torn down.
func (b *ManagedBuffer) Released() bool {
	return b.data == nil
}

// Release drops the backing memory. Any later populate or write against the
// owning tensor fails with ErrBufferReleased.
func (b *ManagedBuffer) Release() {
	b.data = nil
}
