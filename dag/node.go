package dag

import (
	"context"
	"fmt"
	"reflect"
	"slices"

	"github.com/kbukum/capdag/errors"
)

// Node is a capability: a named unit of work that declares its immediate
// successors and turns the collection of values it accumulated during a run
// into exactly one output.
type Node interface {
	ID() string
	Successors() []string
	// InputType is the expected type of each element of the input collection.
	InputType() reflect.Type
	// OutputType is the type of the produced value.
	OutputType() reflect.Type
	Process(ctx context.Context, inputs []any) (any, error)
}

// TypeOf returns the runtime type descriptor for T, including interface types.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// NewNode builds a typed node. Untyped inputs are converted to []I before fn
// is called; an element that is not an I fails the call with an
// invalid-argument error naming the node.
func NewNode[I, O any](id string, fn func(ctx context.Context, inputs []I) (O, error), successors ...string) Node {
	return &typedNode[I, O]{
		id:         id,
		successors: slices.Clone(successors),
		fn:         fn,
		in:         TypeOf[I](),
		out:        TypeOf[O](),
	}
}

// NodeFunc builds an untyped node accepting and producing any value.
func NodeFunc(id string, fn func(ctx context.Context, inputs []any) (any, error), successors ...string) Node {
	return NewNode[any, any](id, fn, successors...)
}

type typedNode[I, O any] struct {
	id         string
	successors []string
	fn         func(ctx context.Context, inputs []I) (O, error)
	in, out    reflect.Type
}

func (n *typedNode[I, O]) ID() string               { return n.id }
func (n *typedNode[I, O]) Successors() []string     { return slices.Clone(n.successors) }
func (n *typedNode[I, O]) InputType() reflect.Type  { return n.in }
func (n *typedNode[I, O]) OutputType() reflect.Type { return n.out }

func (n *typedNode[I, O]) Process(ctx context.Context, inputs []any) (any, error) {
	typed := make([]I, len(inputs))
	for i, v := range inputs {
		converted, err := convert[I](v, n.in)
		if err != nil {
			return nil, errors.InvalidArgument(n.id, fmt.Sprintf("input %d: %v", i, err))
		}
		typed[i] = converted
	}
	return n.fn(ctx, typed)
}

// convert turns v into a T, accepting any value whose type is assignable to T.
func convert[T any](v any, t reflect.Type) (T, error) {
	var out T
	if v == nil {
		if acceptsNil(t) {
			return out, nil
		}
		return out, fmt.Errorf("nil is not a %s", t)
	}
	if typed, ok := v.(T); ok {
		return typed, nil
	}
	rv := reflect.ValueOf(v)
	if !rv.Type().AssignableTo(t) {
		return out, fmt.Errorf("%s is not assignable to %s", rv.Type(), t)
	}
	reflect.ValueOf(&out).Elem().Set(rv)
	return out, nil
}

// assignable reports whether v may be delivered to a node expecting t.
// A nil value is only accepted by interface types.
func assignable(v any, t reflect.Type) bool {
	if v == nil {
		return acceptsNil(t)
	}
	return reflect.TypeOf(v).AssignableTo(t)
}

func acceptsNil(t reflect.Type) bool {
	return t.Kind() == reflect.Interface
}
