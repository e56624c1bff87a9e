package dag

import (
	"context"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/kbukum/capdag/errors"
)

type celsius float64

type labels []string

func TestNewNode_TypeTags(t *testing.T) {
	n := NewNode("a", func(_ context.Context, in []int) (string, error) { return "", nil })

	if n.InputType() != reflect.TypeOf(0) {
		t.Fatalf("expected int input type, got %v", n.InputType())
	}
	if n.OutputType() != reflect.TypeOf("") {
		t.Fatalf("expected string output type, got %v", n.OutputType())
	}
	if TypeOf[io.Reader]().Kind() != reflect.Interface {
		t.Fatal("TypeOf must preserve interface types")
	}
}

func TestNewNode_ConvertsInputs(t *testing.T) {
	n := NewNode("join", func(_ context.Context, in []string) (string, error) {
		return strings.Join(in, "+"), nil
	})

	out, err := n.Process(context.Background(), []any{"a", "b"})
	if err != nil {
		t.Fatal(err)
	}
	if out != "a+b" {
		t.Fatalf("expected a+b, got %v", out)
	}
}

func TestNewNode_RejectsWrongElement(t *testing.T) {
	called := false
	n := NewNode("sum", func(_ context.Context, in []int) (int, error) {
		called = true
		return 0, nil
	})

	_, err := n.Process(context.Background(), []any{1, "two"})
	if !errors.IsCode(err, errors.ErrCodeInvalidArgument) {
		t.Fatalf("expected INVALID_ARGUMENT, got %v", err)
	}
	if called {
		t.Fatal("fn must not run when an input cannot be converted")
	}
}

func TestNewNode_AssignableValues(t *testing.T) {
	readers := NewNode("r", func(_ context.Context, in []io.Reader) (int, error) { return len(in), nil })
	if _, err := readers.Process(context.Background(), []any{strings.NewReader("x"), nil}); err != nil {
		t.Fatalf("interface inputs accept implementations and nil: %v", err)
	}

	named := NewNode("l", func(_ context.Context, in []labels) (int, error) { return len(in[0]), nil })
	out, err := named.Process(context.Background(), []any{[]string{"a", "b"}})
	if err != nil {
		t.Fatalf("unnamed slice is assignable to named slice type: %v", err)
	}
	if out != 2 {
		t.Fatalf("expected 2, got %v", out)
	}

	temps := NewNode("t", func(_ context.Context, in []celsius) (celsius, error) { return in[0], nil })
	if _, err := temps.Process(context.Background(), []any{1.5}); err == nil {
		t.Fatal("float64 is not assignable to a distinct named type")
	}
}

func TestAssignable(t *testing.T) {
	tests := []struct {
		name string
		v    any
		t    reflect.Type
		want bool
	}{
		{"same type", 1, TypeOf[int](), true},
		{"different type", "x", TypeOf[int](), false},
		{"nil into interface", nil, TypeOf[any](), true},
		{"nil into concrete", nil, TypeOf[int](), false},
		{"nil into pointer", nil, TypeOf[*int](), false},
		{"implementation into interface", strings.NewReader(""), TypeOf[io.Reader](), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := assignable(tt.v, tt.t); got != tt.want {
				t.Fatalf("assignable(%v, %v) = %v, want %v", tt.v, tt.t, got, tt.want)
			}
		})
	}
}
