package tensorio

import "fmt"

// Descriptor describes one graph tensor as supplied by the execution engine
// at setup time. Descriptors are read-only for the marshalling layer.
type Descriptor struct {
	Name  string
	Rank  uint32
	Dims  []uint32
	Type  DataType
	Quant *QuantParams
}

// Validate checks internal consistency of the descriptor: the dims slice must
// match the declared rank and quantized types must carry parameters.
func (d *Descriptor) Validate() error {
	if _, err := FillDims(d.Rank, d.Dims); err != nil {
		return fmt.Errorf("tensor %s: %w", d.Name, err)
	}
	if d.Type.Quantized() && d.Quant == nil {
		return fmt.Errorf("tensor %s (%s): %w", d.Name, d.Type, ErrMissingQuantParams)
	}
	if d.Quant != nil && d.Quant.Scale == 0 {
		return fmt.Errorf("tensor %s: %w: zero scale", d.Name, ErrMissingQuantParams)
	}
	return nil
}

// GraphInfo is the external descriptor contract for one graph: its name and
// the ordered input and output tensor descriptors.
type GraphInfo struct {
	Name    string
	Inputs  []Descriptor
	Outputs []Descriptor
}

// FillDims reduces a rank and a native dimension array to an ordered slice of
// extents. The output always has length rank, in input order.
func FillDims(rank uint32, dims []uint32) ([]int, error) {
	if rank == 0 {
		return nil, fmt.Errorf("%w: rank is zero", ErrShapeMismatch)
	}
	if dims == nil {
		return nil, fmt.Errorf("%w: nil dimensions", ErrShapeMismatch)
	}
	if uint32(len(dims)) < rank {
		return nil, fmt.Errorf("%w: rank %d exceeds %d supplied dimensions", ErrShapeMismatch, rank, len(dims))
	}
	out := make([]int, rank)
	for i := uint32(0); i < rank; i++ {
		if dims[i] == 0 {
			return nil, fmt.Errorf("%w: zero extent at dimension %d", ErrShapeMismatch, i)
		}
		out[i] = int(dims[i])
	}
	return out, nil
}
