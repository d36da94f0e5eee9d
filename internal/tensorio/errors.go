package tensorio

import "errors"

// Sentinel errors for the marshalling failure taxonomy. Callers match with
// errors.Is; most returned errors wrap one of these with call-site context.
var (
	// ErrUnsupportedType reports an element-type tag outside the supported
	// enumeration, or an operation that cannot serve the given type.
	ErrUnsupportedType = errors.New("unsupported data type")

	// ErrMissingQuantParams reports a fixed-point tensor without scale/offset.
	ErrMissingQuantParams = errors.New("missing quantization parameters")

	// ErrShapeMismatch reports rank/extent/byte-length disagreement between a
	// descriptor and the data supplied for it.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrBufferReleased reports use of a tensor buffer after teardown.
	ErrBufferReleased = errors.New("buffer already released")

	// ErrInvalidMode reports an INVALID input or output data type mode.
	ErrInvalidMode = errors.New("invalid data type mode")
)
