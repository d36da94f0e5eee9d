package tensorio

import (
	"math"
	"testing"
)

// makeTensor builds a tensor directly from a descriptor for conversion tests.
func makeTensor(t *testing.T, d Descriptor) *Tensor {
	t.Helper()
	tensor, err := newTensor(&d)
	if err != nil {
		t.Fatalf("newTensor failed: %v", err)
	}
	return tensor
}

// TestQuantizeRoundTrip checks that dequantize(quantize(v)) is within one
// quantization step of v for every fixed-point type.
func TestQuantizeRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		dtype DataType
		quant QuantParams
		// values inside the type's dequantized range
		values []float32
	}{
		{"ufixed8", UFixed8, QuantParams{Scale: 0.1, Offset: 128}, []float32{-12.8, -3.3, 0, 0.04, 7.77, 12.7}},
		{"ufixed16", UFixed16, QuantParams{Scale: 0.002, Offset: 32768}, []float32{-65.5, -1.001, 0, 2.5, 65.5}},
		{"ufixed32", UFixed32, QuantParams{Scale: 0.25, Offset: 0}, []float32{0, 1.1, 100.6, 12345.4}},
		{"sfixed8", SFixed8, QuantParams{Scale: 0.5, Offset: 0}, []float32{-64, -0.3, 0, 0.26, 63.5}},
		{"sfixed16", SFixed16, QuantParams{Scale: 0.01, Offset: -5}, []float32{-327.0, -1.004, 0, 5.55, 327.0}},
		{"sfixed32", SFixed32, QuantParams{Scale: 0.001, Offset: 7}, []float32{-1000.5, 0, 0.0004, 999.99}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := tt.quant
			tensor := makeTensor(t, Descriptor{
				Name: "x", Rank: 1, Dims: []uint32{uint32(len(tt.values))},
				Type: tt.dtype, Quant: &q,
			})

			if err := CopyFromFloatToNative(tt.values, tensor); err != nil {
				t.Fatalf("CopyFromFloatToNative failed: %v", err)
			}
			got, err := ConvertToFloat(tensor)
			if err != nil {
				t.Fatalf("ConvertToFloat failed: %v", err)
			}

			step := float64(tt.quant.Scale)
			for i, want := range tt.values {
				if diff := math.Abs(float64(got[i] - want)); diff > step {
					t.Errorf("value %d: round-trip %v -> %v, off by %v (> one step %v)",
						i, want, got[i], diff, step)
				}
			}
		})
	}
}

// TestQuantizeClamps checks that out-of-range inputs clamp to the
// representable range rather than wrapping.
func TestQuantizeClamps(t *testing.T) {
	q := QuantParams{Scale: 0.1, Offset: 128}
	tensor := makeTensor(t, Descriptor{
		Name: "x", Rank: 1, Dims: []uint32{4}, Type: UFixed8, Quant: &q,
	})

	// Representable range is [-12.8, 12.7].
	src := []float32{-1000, -12.8, 12.7, 1000}
	if err := CopyFromFloatToNative(src, tensor); err != nil {
		t.Fatalf("CopyFromFloatToNative failed: %v", err)
	}

	got := tensor.Uint8s()
	want := []uint8{0, 0, 255, 255}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("native[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

// TestQuantizeEndToEnd checks the documented formula
// native[i] = clamp(round(f/scale) + offset, 0, 255) for scale=0.1 offset=128.
func TestQuantizeEndToEnd(t *testing.T) {
	q := QuantParams{Scale: 0.1, Offset: 128}
	tensor := makeTensor(t, Descriptor{
		Name: "x", Rank: 1, Dims: []uint32{5}, Type: UFixed8, Quant: &q,
	})

	src := []float32{-12.8, -0.55, 0, 1.23, 12.7}
	if err := CopyFromFloatToNative(src, tensor); err != nil {
		t.Fatalf("CopyFromFloatToNative failed: %v", err)
	}

	got := tensor.Uint8s()
	for i, v := range src {
		want := math.Round(float64(v)/0.1) + 128
		if want < 0 {
			want = 0
		}
		if want > 255 {
			want = 255
		}
		if float64(got[i]) != want {
			t.Errorf("native[%d] = %d, want %v", i, got[i], want)
		}
	}
}

// TestFloatPassthrough checks that float tensors copy byte-identically in
// both directions.
func TestFloatPassthrough(t *testing.T) {
	tensor := makeTensor(t, Descriptor{
		Name: "x", Rank: 2, Dims: []uint32{2, 3}, Type: Float32,
	})

	src := []float32{1, -2.5, float32(math.Inf(1)), 0, 3.25, -0}
	if err := CopyFromFloatToNative(src, tensor); err != nil {
		t.Fatalf("CopyFromFloatToNative failed: %v", err)
	}
	got, err := ConvertToFloat(tensor)
	if err != nil {
		t.Fatalf("ConvertToFloat failed: %v", err)
	}
	for i := range src {
		if math.Float32bits(got[i]) != math.Float32bits(src[i]) {
			t.Errorf("value %d: got bits %08x, want %08x", i, math.Float32bits(got[i]), math.Float32bits(src[i]))
		}
	}
}

// TestPlainIntegerCasts checks the non-affine integer encodings.
func TestPlainIntegerCasts(t *testing.T) {
	tensor := makeTensor(t, Descriptor{
		Name: "ids", Rank: 1, Dims: []uint32{4}, Type: Int32,
	})

	src := []float32{-3.6, 0, 7.2, 2.5}
	if err := CopyFromFloatToNative(src, tensor); err != nil {
		t.Fatalf("CopyFromFloatToNative failed: %v", err)
	}
	got := tensor.Int32s()
	want := []int32{-4, 0, 7, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("native[%d] = %d, want %d", i, got[i], want[i])
		}
	}

	floats, err := ConvertToFloat(tensor)
	if err != nil {
		t.Fatalf("ConvertToFloat failed: %v", err)
	}
	for i := range want {
		if floats[i] != float32(want[i]) {
			t.Errorf("float[%d] = %v, want %v", i, floats[i], float32(want[i]))
		}
	}
}

// TestMissingQuantParams checks that fixed-point tensors without parameters
// are rejected at setup.
func TestMissingQuantParams(t *testing.T) {
	_, err := newTensor(&Descriptor{
		Name: "x", Rank: 1, Dims: []uint32{4}, Type: UFixed8,
	})
	if err == nil {
		t.Fatal("expected error for quantized descriptor without params, got nil")
	}
}

// TestCopyFromFloatLengthMismatch checks the whole-tensor length contract.
func TestCopyFromFloatLengthMismatch(t *testing.T) {
	tensor := makeTensor(t, Descriptor{
		Name: "x", Rank: 1, Dims: []uint32{4}, Type: Float32,
	})
	if err := CopyFromFloatToNative([]float32{1, 2}, tensor); err == nil {
		t.Fatal("expected shape mismatch error, got nil")
	}
}
