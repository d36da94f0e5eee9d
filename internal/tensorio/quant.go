package tensorio

import (
	"fmt"
	"math"

	"github.com/tensorio-ml/tensorio/internal/parallel"
)

// convCfg splits element-wise conversions across CPUs for large tensors.
var convCfg = parallel.DefaultConfig()

// ConvertToFloat dequantizes a tensor into a freshly allocated float32
// buffer. Fixed-point elements map through (native - offset) * scale; plain
// integer types cast directly; Float32 degrades to a byte-identical copy.
func ConvertToFloat(t *Tensor) ([]float32, error) {
	if err := t.checkLive(); err != nil {
		return nil, err
	}
	if t.dtype.Quantized() && t.quant == nil {
		return nil, fmt.Errorf("tensor %s (%s): %w", t.name, t.dtype, ErrMissingQuantParams)
	}

	out, err := allocateBuffer[float32](t.NumElements())
	if err != nil {
		return nil, fmt.Errorf("tensor %s: %w", t.name, err)
	}

	switch t.dtype {
	case Float32:
		copy(out, t.Float32s())
	case UFixed8:
		dequantize(out, t.Uint8s(), t.quant)
	case UFixed16:
		dequantize(out, t.Uint16s(), t.quant)
	case UFixed32:
		dequantize(out, t.Uint32s(), t.quant)
	case SFixed8:
		dequantize(out, t.Int8s(), t.quant)
	case SFixed16:
		dequantize(out, t.Int16s(), t.quant)
	case SFixed32:
		dequantize(out, t.Int32s(), t.quant)
	case Uint8:
		for i, v := range t.Uint8s() {
			out[i] = float32(v)
		}
	case Int32:
		for i, v := range t.Int32s() {
			out[i] = float32(v)
		}
	default:
		return nil, fmt.Errorf("tensor %s: %w: %s", t.name, ErrUnsupportedType, t.dtype)
	}
	return out, nil
}

// CopyFromFloatToNative quantizes a float buffer into the tensor's native
// encoding, covering the whole tensor. The source length must equal the
// tensor's element count.
func CopyFromFloatToNative(src []float32, t *Tensor) error {
	if len(src) != t.NumElements() {
		return fmt.Errorf("tensor %s: %w: %d source elements for %d tensor elements",
			t.name, ErrShapeMismatch, len(src), t.NumElements())
	}
	return quantizeInto(t, 0, src)
}

// quantizeInto writes src into elements [elemOffset, elemOffset+len(src)) of
// the tensor's native buffer, quantizing with round-to-nearest and clamping
// to the native range. Out-of-range inputs clamp, never wrap.
func quantizeInto(t *Tensor, elemOffset int, src []float32) error {
	if err := t.checkLive(); err != nil {
		return err
	}
	if elemOffset < 0 || elemOffset+len(src) > t.NumElements() {
		return fmt.Errorf("tensor %s: %w: writing %d elements at offset %d into %d",
			t.name, ErrShapeMismatch, len(src), elemOffset, t.NumElements())
	}
	if t.dtype.Quantized() && t.quant == nil {
		return fmt.Errorf("tensor %s (%s): %w", t.name, t.dtype, ErrMissingQuantParams)
	}

	switch t.dtype {
	case Float32:
		copy(t.Float32s()[elemOffset:], src)
	case UFixed8:
		quantize(t.Uint8s()[elemOffset:], src, t.dtype, t.quant)
	case UFixed16:
		quantize(t.Uint16s()[elemOffset:], src, t.dtype, t.quant)
	case UFixed32:
		quantize(t.Uint32s()[elemOffset:], src, t.dtype, t.quant)
	case SFixed8:
		quantize(t.Int8s()[elemOffset:], src, t.dtype, t.quant)
	case SFixed16:
		quantize(t.Int16s()[elemOffset:], src, t.dtype, t.quant)
	case SFixed32:
		quantize(t.Int32s()[elemOffset:], src, t.dtype, t.quant)
	case Uint8:
		castClamp(t.Uint8s()[elemOffset:], src, t.dtype)
	case Int32:
		castClamp(t.Int32s()[elemOffset:], src, t.dtype)
	default:
		return fmt.Errorf("tensor %s: %w: %s", t.name, ErrUnsupportedType, t.dtype)
	}
	return nil
}

// dequantize applies float = (native - offset) * scale element-wise.
func dequantize[T int8 | int16 | int32 | uint8 | uint16 | uint32](dst []float32, src []T, q *QuantParams) {
	offset := float64(q.Offset)
	scale := float64(q.Scale)
	parallel.Chunks(len(src), convCfg, func(start, end int) {
		for i := start; i < end; i++ {
			dst[i] = float32((float64(src[i]) - offset) * scale)
		}
	})
}

// quantize applies native = clamp(round(float / scale) + offset).
// Arithmetic runs in float64 so 32-bit targets don't lose precision.
func quantize[T int8 | int16 | int32 | uint8 | uint16 | uint32](dst []T, src []float32, dt DataType, q *QuantParams) {
	lo, hi := dt.rangeOf()
	scale := float64(q.Scale)
	offset := float64(q.Offset)
	parallel.Chunks(len(src), convCfg, func(start, end int) {
		for i := start; i < end; i++ {
			dst[i] = T(clamp(math.Round(float64(src[i])/scale)+offset, lo, hi))
		}
	})
}

// castClamp converts plain integer types without quantization parameters.
func castClamp[T uint8 | int32](dst []T, src []float32, dt DataType) {
	lo, hi := dt.rangeOf()
	parallel.Chunks(len(src), convCfg, func(start, end int) {
		for i := start; i < end; i++ {
			dst[i] = T(clamp(math.Round(float64(src[i])), lo, hi))
		}
	})
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
