// Package tensorio implements the tensor I/O marshalling layer that sits
// between an inference graph's native tensor representation and the outside
// world (files, raw memory buffers).
package tensorio

import "math"

// DataType represents the element encoding a graph expects in tensor memory.
// Fixed-point types carry their values in an affine quantized form and
// require QuantParams on the owning tensor.
type DataType int

// Supported element types.
const (
	Float32 DataType = iota
	UFixed8
	UFixed16
	UFixed32
	SFixed8
	SFixed16
	SFixed32
	Uint8
	Int32
)

// Size returns the byte size of one element.
func (dt DataType) Size() int {
	switch dt {
	case Float32, UFixed32, SFixed32, Int32:
		return 4
	case UFixed16, SFixed16:
		return 2
	case UFixed8, SFixed8, Uint8:
		return 1
	default:
		panic("unknown data type")
	}
}

// Quantized reports whether the type is an affine fixed-point encoding.
// Quantized tensors must carry scale/offset parameters.
func (dt DataType) Quantized() bool {
	switch dt {
	case UFixed8, UFixed16, UFixed32, SFixed8, SFixed16, SFixed32:
		return true
	default:
		return false
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case UFixed8:
		return "ufixed8"
	case UFixed16:
		return "ufixed16"
	case UFixed32:
		return "ufixed32"
	case SFixed8:
		return "sfixed8"
	case SFixed16:
		return "sfixed16"
	case SFixed32:
		return "sfixed32"
	case Uint8:
		return "uint8"
	case Int32:
		return "int32"
	default:
		return "unknown"
	}
}

// rangeOf returns the representable value range of an integer-backed type.
// Out-of-range floats quantize by clamping to these bounds.
func (dt DataType) rangeOf() (lo, hi float64) {
	switch dt {
	case UFixed8, Uint8:
		return 0, math.MaxUint8
	case UFixed16:
		return 0, math.MaxUint16
	case UFixed32:
		return 0, math.MaxUint32
	case SFixed8:
		return math.MinInt8, math.MaxInt8
	case SFixed16:
		return math.MinInt16, math.MaxInt16
	case SFixed32, Int32:
		return math.MinInt32, math.MaxInt32
	default:
		panic("no integer range for " + dt.String())
	}
}

// QuantParams holds the affine quantization parameters of a fixed-point
// tensor: float = (native - Offset) * Scale.
type QuantParams struct {
	Scale  float32
	Offset int32
}
