package testutil

import (
	"context"
	"reflect"
	"slices"
	"sync"
	"testing"

	"github.com/kbukum/capdag/dag"
)

// MockNode is a configurable test node. It records every call with the
// inputs it received and returns a preset output or error.
type MockNode struct {
	id         string
	successors []string
	in, out    reflect.Type
	output     any
	err        error
	fn         func(ctx context.Context, inputs []any) (any, error)

	mu     sync.Mutex
	calls  int
	inputs [][]any
}

var _ dag.Node = (*MockNode)(nil)

// NewMockNode creates a mock node that returns output, or fails with err
// when it is non-nil.
func NewMockNode(id string, output any, err error, successors ...string) *MockNode {
	return &MockNode{
		id:         id,
		successors: successors,
		in:         dag.TypeOf[any](),
		out:        dag.TypeOf[any](),
		output:     output,
		err:        err,
	}
}

// NewMockNodeFunc creates a mock node backed by a custom function.
func NewMockNodeFunc(id string, fn func(ctx context.Context, inputs []any) (any, error), successors ...string) *MockNode {
	n := NewMockNode(id, nil, nil, successors...)
	n.fn = fn
	return n
}

// WithTypes sets the declared input and output types.
func (n *MockNode) WithTypes(in, out reflect.Type) *MockNode {
	n.in, n.out = in, out
	return n
}

func (n *MockNode) ID() string               { return n.id }
func (n *MockNode) Successors() []string     { return slices.Clone(n.successors) }
func (n *MockNode) InputType() reflect.Type  { return n.in }
func (n *MockNode) OutputType() reflect.Type { return n.out }

func (n *MockNode) Process(ctx context.Context, inputs []any) (any, error) {
	n.mu.Lock()
	n.calls++
	n.inputs = append(n.inputs, slices.Clone(inputs))
	n.mu.Unlock()

	if n.fn != nil {
		return n.fn(ctx, inputs)
	}
	return n.output, n.err
}

// Calls returns how many times Process was invoked.
func (n *MockNode) Calls() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls
}

// Inputs returns the inputs received by each call, in call order.
func (n *MockNode) Inputs() [][]any {
	n.mu.Lock()
	defer n.mu.Unlock()
	return slices.Clone(n.inputs)
}

// Reset clears the recorded calls.
func (n *MockNode) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = 0
	n.inputs = nil
}

// GraphBuilder provides a fluent API for constructing test graphs.
type GraphBuilder struct {
	nodes []dag.Node
}

// NewGraphBuilder creates a new GraphBuilder.
func NewGraphBuilder() *GraphBuilder {
	return &GraphBuilder{}
}

// Add queues a node for registration.
func (b *GraphBuilder) Add(node dag.Node) *GraphBuilder {
	b.nodes = append(b.nodes, node)
	return b
}

// Build registers the queued nodes in order.
func (b *GraphBuilder) Build() (*dag.Graph, error) {
	g := dag.NewGraph()
	for _, n := range b.nodes {
		if err := g.AddNode(n); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// MustBuild is Build that fails the test on error.
func (b *GraphBuilder) MustBuild(t testing.TB) *dag.Graph {
	t.Helper()
	g, err := b.Build()
	if err != nil {
		t.Fatalf("building graph: %v", err)
	}
	return g
}
