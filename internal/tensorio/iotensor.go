package tensorio

import "fmt"

// IOTensor manages the native tensor buffers for one graph: allocation at
// setup, population per inference iteration, output conversion, and one-time
// teardown.
//
// An IOTensor instance assumes exclusive, sequential access. Hosts that
// parallelize across graphs must give each graph its own instance; managed
// buffers are never shared between instances.
type IOTensor struct {
	batchSize         int
	numFilesPopulated int
}

// New returns an IOTensor with its batch counters reset.
func New() *IOTensor {
	return &IOTensor{}
}

// BatchSize returns the leading-dimension extent of the graph's first input,
// recorded at setup. Zero before setup.
func (io *IOTensor) BatchSize() int {
	return io.batchSize
}

// NumFilesPopulated returns the cumulative count of source files consumed by
// populate calls since construction.
func (io *IOTensor) NumFilesPopulated() int {
	return io.numFilesPopulated
}

// SetupInputAndOutputTensors allocates one native tensor per descriptor in
// the graph, each backed by a fresh ManagedBuffer. Allocation is
// all-or-nothing: if any tensor fails, every buffer allocated so far in the
// same call is released before the error is returned.
//
// Teardown of the returned tensors is the caller's responsibility, via
// TearDownInputAndOutputTensors, exactly once.
func (io *IOTensor) SetupInputAndOutputTensors(graph GraphInfo) (inputs, outputs []*Tensor, err error) {
	inputs, err = setupTensors(graph.Inputs)
	if err != nil {
		return nil, nil, fmt.Errorf("graph %s: setting up input tensors: %w", graph.Name, err)
	}
	outputs, err = setupTensors(graph.Outputs)
	if err != nil {
		tearDownTensors(inputs)
		return nil, nil, fmt.Errorf("graph %s: setting up output tensors: %w", graph.Name, err)
	}

	io.batchSize = 1
	if len(inputs) > 0 {
		io.batchSize = inputs[0].BatchSize()
	}
	return inputs, outputs, nil
}

// setupTensors allocates a tensor per descriptor, unwinding on failure.
func setupTensors(descs []Descriptor) ([]*Tensor, error) {
	tensors := make([]*Tensor, 0, len(descs))
	for i := range descs {
		t, err := newTensor(&descs[i])
		if err != nil {
			tearDownTensors(tensors)
			return nil, err
		}
		tensors = append(tensors, t)
	}
	return tensors, nil
}

// TearDownInputAndOutputTensors releases every buffer exactly once.
//
// Precondition: called at most once per setup. Calling populate or write
// against a torn-down tensor fails with ErrBufferReleased.
func (io *IOTensor) TearDownInputAndOutputTensors(inputs, outputs []*Tensor) {
	tearDownTensors(inputs)
	tearDownTensors(outputs)
}

func tearDownTensors(tensors []*Tensor) {
	for _, t := range tensors {
		if t != nil {
			t.release()
		}
	}
}

// TensorSizes reports the byte size of each tensor's backing buffer, in
// tensor order.
func TensorSizes(tensors []*Tensor) []int {
	sizes := make([]int, len(tensors))
	for i, t := range tensors {
		sizes[i] = t.ByteSize()
	}
	return sizes
}
