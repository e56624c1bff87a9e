package capability

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/kbukum/capdag/dag"
	"github.com/kbukum/capdag/errors"
)

// Number is any integer or floating point type.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Echo outputs its single input unchanged. Any other number of inputs is an
// invalid-argument error.
func Echo[T any](id string, successors ...string) dag.Node {
	return dag.NewNode(id, func(_ context.Context, inputs []T) (T, error) {
		var zero T
		if len(inputs) != 1 {
			return zero, errors.InvalidArgument(id, fmt.Sprintf("echo expects exactly one input, got %d", len(inputs)))
		}
		return inputs[0], nil
	}, successors...)
}

// Sum adds up the accumulated inputs.
func Sum[N Number](id string, successors ...string) dag.Node {
	return dag.NewNode(id, func(_ context.Context, inputs []N) (N, error) {
		var total N
		for _, v := range inputs {
			total += v
		}
		return total, nil
	}, successors...)
}

// Join concatenates string inputs in arrival order, separated by sep.
func Join(id, sep string, successors ...string) dag.Node {
	return dag.NewNode(id, func(_ context.Context, inputs []string) (string, error) {
		return strings.Join(inputs, sep), nil
	}, successors...)
}

// Constant ignores its inputs and emits value.
func Constant[T any](id string, value T, successors ...string) dag.Node {
	return dag.NewNode(id, func(_ context.Context, _ []any) (T, error) {
		return value, nil
	}, successors...)
}

// TemplateData is the value a Template node renders.
type TemplateData struct {
	// Inputs is the accumulated collection in arrival order.
	Inputs []any
	// Input is the first element, or nil when there is none.
	Input any
}

// Template renders a text/template over the accumulated inputs, producing
// a prompt string. The template is parsed once, at construction.
func Template(id, text string, successors ...string) (dag.Node, error) {
	tmpl, err := template.New(id).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, errors.InvalidArgument(id, "parsing template").WithCause(err)
	}

	return dag.NewNode(id, func(_ context.Context, inputs []any) (string, error) {
		data := TemplateData{Inputs: inputs}
		if len(inputs) > 0 {
			data.Input = inputs[0]
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return "", errors.InvalidArgument(id, "rendering template").WithCause(err)
		}
		return buf.String(), nil
	}, successors...), nil
}
