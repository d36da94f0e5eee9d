package tensorio

import (
	"fmt"
	"unsafe"
)

// Tensor is a native tensor handle: a descriptor snapshot plus the
// ManagedBuffer the execution engine reads from and writes into. Tensors are
// created by SetupInputAndOutputTensors and destroyed exactly once by
// TearDownInputAndOutputTensors.
type Tensor struct {
	name  string
	dims  []int
	dtype DataType
	quant *QuantParams
	buf   *ManagedBuffer
}

// newTensor allocates a tensor and its backing buffer from a descriptor.
func newTensor(d *Descriptor) (*Tensor, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	dims, err := FillDims(d.Rank, d.Dims)
	if err != nil {
		return nil, err
	}
	buf, err := newManagedBuffer(dims, d.Type)
	if err != nil {
		return nil, fmt.Errorf("tensor %s: %w", d.Name, err)
	}
	var quant *QuantParams
	if d.Quant != nil {
		q := *d.Quant
		quant = &q
	}
	return &Tensor{
		name:  d.Name,
		dims:  dims,
		dtype: d.Type,
		quant: quant,
		buf:   buf,
	}, nil
}

// Name returns the tensor's graph-level name.
func (t *Tensor) Name() string { return t.name }

// Dims returns the ordered dimension extents.
func (t *Tensor) Dims() []int { return t.dims }

// DataType returns the native element type.
func (t *Tensor) DataType() DataType { return t.dtype }

// Quant returns the quantization parameters, or nil for non-quantized types.
func (t *Tensor) Quant() *QuantParams { return t.quant }

// NumElements returns the total element count.
func (t *Tensor) NumElements() int {
	n := 1
	for _, d := range t.dims {
		n *= d
	}
	return n
}

// ByteSize returns the backing buffer length in bytes.
func (t *Tensor) ByteSize() int {
	return t.NumElements() * t.dtype.Size()
}

// BatchSize returns the leading-dimension extent: the number of samples
// packed into the physical buffer.
func (t *Tensor) BatchSize() int {
	if len(t.dims) == 0 {
		return 1
	}
	return t.dims[0]
}

// Data returns the raw backing bytes. Returns nil after teardown.
func (t *Tensor) Data() []byte {
	return t.buf.Bytes()
}

// checkLive rejects use of a tensor whose buffer was torn down.
func (t *Tensor) checkLive() error {
	if t.buf.Released() {
		return fmt.Errorf("tensor %s: %w", t.name, ErrBufferReleased)
	}
	return nil
}

// release frees the backing buffer. Called once, from teardown.
func (t *Tensor) release() {
	t.buf.Release()
}

// Float32s interprets the data as []float32.
// Panics if the tensor's type is not Float32.
func (t *Tensor) Float32s() []float32 {
	if t.dtype != Float32 {
		panic(fmt.Sprintf("tensor type is %s, not float32", t.dtype))
	}
	data := t.buf.Bytes()
	return unsafe.Slice((*float32)(unsafe.Pointer(&data[0])), t.NumElements())
}

// Uint8s interprets the data as []uint8.
// Panics unless the tensor's type is a 1-byte unsigned encoding.
func (t *Tensor) Uint8s() []uint8 {
	if t.dtype != UFixed8 && t.dtype != Uint8 {
		panic(fmt.Sprintf("tensor type is %s, not a uint8 encoding", t.dtype))
	}
	return t.buf.Bytes()
}

// Uint16s interprets the data as []uint16.
func (t *Tensor) Uint16s() []uint16 {
	if t.dtype != UFixed16 {
		panic(fmt.Sprintf("tensor type is %s, not ufixed16", t.dtype))
	}
	data := t.buf.Bytes()
	return unsafe.Slice((*uint16)(unsafe.Pointer(&data[0])), t.NumElements())
}

// Uint32s interprets the data as []uint32.
func (t *Tensor) Uint32s() []uint32 {
	if t.dtype != UFixed32 {
		panic(fmt.Sprintf("tensor type is %s, not ufixed32", t.dtype))
	}
	data := t.buf.Bytes()
	return unsafe.Slice((*uint32)(unsafe.Pointer(&data[0])), t.NumElements())
}

// Int8s interprets the data as []int8.
func (t *Tensor) Int8s() []int8 {
	if t.dtype != SFixed8 {
		panic(fmt.Sprintf("tensor type is %s, not sfixed8", t.dtype))
	}
	data := t.buf.Bytes()
	return unsafe.Slice((*int8)(unsafe.Pointer(&data[0])), t.NumElements())
}

// Int16s interprets the data as []int16.
func (t *Tensor) Int16s() []int16 {
	if t.dtype != SFixed16 {
		panic(fmt.Sprintf("tensor type is %s, not sfixed16", t.dtype))
	}
	data := t.buf.Bytes()
	return unsafe.Slice((*int16)(unsafe.Pointer(&data[0])), t.NumElements())
}

// Int32s interprets the data as []int32.
// Panics unless the tensor's type is a 4-byte signed encoding.
func (t *Tensor) Int32s() []int32 {
	if t.dtype != SFixed32 && t.dtype != Int32 {
		panic(fmt.Sprintf("tensor type is %s, not an int32 encoding", t.dtype))
	}
	data := t.buf.Bytes()
	return unsafe.Slice((*int32)(unsafe.Pointer(&data[0])), t.NumElements())
}
