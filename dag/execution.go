package dag

import (
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Execution is the mutable state of a single run: the values accumulated
// for each node and the output each node produced. A fresh Execution is
// created for every Process call.
type Execution struct {
	runID string

	mu      sync.Mutex
	inputs  map[string][]any
	outputs map[string]any
}

func newExecution() *Execution {
	return &Execution{
		runID:   uuid.NewString(),
		inputs:  make(map[string][]any),
		outputs: make(map[string]any),
	}
}

// RunID identifies the run.
func (x *Execution) RunID() string { return x.runID }

// Inputs returns a copy of the values accumulated for id so far.
func (x *Execution) Inputs(id string) []any {
	x.mu.Lock()
	defer x.mu.Unlock()
	return slices.Clone(x.inputs[id])
}

// Output returns the value produced by id, if it has run.
func (x *Execution) Output(id string) (any, bool) {
	x.mu.Lock()
	defer x.mu.Unlock()
	v, ok := x.outputs[id]
	return v, ok
}

// Outputs returns a copy of every recorded output.
func (x *Execution) Outputs() map[string]any {
	x.mu.Lock()
	defer x.mu.Unlock()
	return maps.Clone(x.outputs)
}

// append adds v to the accumulated inputs of id.
func (x *Execution) append(id string, v any) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.inputs[id] = append(x.inputs[id], v)
}

// record stores the output of id and appends it to each successor's inputs
// in one critical section.
func (x *Execution) record(id string, output any, successors []string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.outputs[id] = output
	for _, s := range successors {
		x.inputs[s] = append(x.inputs[s], output)
	}
}
