package tensorio

import "strings"

// InputDataType selects how input source bytes are interpreted.
type InputDataType int

// Input marshalling modes.
const (
	// InputFloat: source bytes are float32 and are quantized into the
	// native buffer when the tensor's type differs.
	InputFloat InputDataType = iota
	// InputNative: source bytes are copied verbatim and must exactly match
	// the native buffer's byte length.
	InputNative
	// InputInvalid: unrecognized configuration token; fatal precondition
	// for every consuming operation.
	InputInvalid
)

// String returns the configuration token for the mode.
func (m InputDataType) String() string {
	switch m {
	case InputFloat:
		return "float"
	case InputNative:
		return "native"
	default:
		return "invalid"
	}
}

// OutputDataType selects which representations of output tensors are written.
type OutputDataType int

// Output marshalling modes.
const (
	OutputFloatOnly OutputDataType = iota
	OutputNativeOnly
	OutputFloatAndNative
	OutputInvalid
)

// String returns the configuration token for the mode.
func (m OutputDataType) String() string {
	switch m {
	case OutputFloatOnly:
		return "float_only"
	case OutputNativeOnly:
		return "native_only"
	case OutputFloatAndNative:
		return "float_and_native"
	default:
		return "invalid"
	}
}

// Float reports whether the mode writes dequantized float files.
func (m OutputDataType) Float() bool {
	return m == OutputFloatOnly || m == OutputFloatAndNative
}

// Native reports whether the mode writes raw native files.
func (m OutputDataType) Native() bool {
	return m == OutputNativeOnly || m == OutputFloatAndNative
}

// ParseInputDataType maps a configuration token to an input mode.
// Unrecognized tokens map to InputInvalid.
func ParseInputDataType(s string) InputDataType {
	switch strings.ToLower(s) {
	case "float":
		return InputFloat
	case "native":
		return InputNative
	default:
		return InputInvalid
	}
}

// ParseOutputDataType maps a configuration token to an output mode.
// Unrecognized tokens map to OutputInvalid.
func ParseOutputDataType(s string) OutputDataType {
	switch strings.ToLower(s) {
	case "float_only":
		return OutputFloatOnly
	case "native_only":
		return OutputNativeOnly
	case "float_and_native":
		return OutputFloatAndNative
	default:
		return OutputInvalid
	}
}
