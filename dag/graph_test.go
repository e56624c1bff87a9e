package dag

import (
	"context"
	"reflect"
	"testing"

	"github.com/kbukum/capdag/errors"
)

func anyNode(id string, successors ...string) Node {
	return NodeFunc(id, func(_ context.Context, in []any) (any, error) {
		return len(in), nil
	}, successors...)
}

func mustAdd(t *testing.T, g *Graph, nodes ...Node) {
	t.Helper()
	for _, n := range nodes {
		if err := g.AddNode(n); err != nil {
			t.Fatalf("AddNode(%s): %v", n.ID(), err)
		}
	}
}

func TestAddNode_TracksPredecessorsAndInDegree(t *testing.T) {
	g := NewGraph()
	// D is referenced before it is registered.
	mustAdd(t, g, anyNode("A", "D"), anyNode("B", "D"), anyNode("D"))

	if got := g.InDegree("D"); got != 2 {
		t.Fatalf("expected in-degree 2, got %d", got)
	}
	if got := g.Predecessors("D"); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Fatalf("expected predecessors [A B], got %v", got)
	}
	if got := g.InDegree("A"); got != 0 {
		t.Fatalf("expected in-degree 0, got %d", got)
	}
	if g.Len() != 3 {
		t.Fatalf("expected 3 nodes, got %d", g.Len())
	}
	if got := g.IDs(); !reflect.DeepEqual(got, []string{"A", "B", "D"}) {
		t.Fatalf("expected registration order, got %v", got)
	}
}

func TestAddNode_RejectsDuplicateID(t *testing.T) {
	g := NewGraph()
	mustAdd(t, g, anyNode("A", "B"))

	err := g.AddNode(anyNode("A"))
	if !errors.IsCode(err, errors.ErrCodeAlreadyExists) {
		t.Fatalf("expected ALREADY_EXISTS, got %v", err)
	}
	if got := g.Successors("A"); !reflect.DeepEqual(got, []string{"B"}) {
		t.Fatalf("first registration must be kept, got %v", got)
	}
	if g.InDegree("B") != 1 {
		t.Fatalf("rejected registration must not change in-degrees")
	}
}

func TestAddNode_RejectsInvalidNodes(t *testing.T) {
	g := NewGraph()

	if err := g.AddNode(nil); !errors.IsCode(err, errors.ErrCodeInvalidArgument) {
		t.Fatalf("expected INVALID_ARGUMENT for nil node, got %v", err)
	}
	if err := g.AddNode(anyNode("")); !errors.IsCode(err, errors.ErrCodeInvalidArgument) {
		t.Fatalf("expected INVALID_ARGUMENT for empty id, got %v", err)
	}
	if err := g.AddNodeWithType(anyNode("A"), nil); !errors.IsCode(err, errors.ErrCodeInvalidArgument) {
		t.Fatalf("expected INVALID_ARGUMENT for nil type, got %v", err)
	}
}

func TestAddNodeWithType_OverridesExpectedType(t *testing.T) {
	g := NewGraph()
	if err := g.AddNodeWithType(anyNode("A"), TypeOf[int]()); err != nil {
		t.Fatal(err)
	}
	typ, ok := g.ExpectedType("A")
	if !ok || typ != reflect.TypeOf(0) {
		t.Fatalf("expected int, got %v", typ)
	}
}

func TestGraph_SuccessorsAreCopied(t *testing.T) {
	succ := []string{"B"}
	n := NewNode("A", func(_ context.Context, in []int) (int, error) { return 0, nil }, succ...)
	succ[0] = "X"

	g := NewGraph()
	mustAdd(t, g, n, anyNode("B"))

	got := g.Successors("A")
	got[0] = "Y"
	if g.Successors("A")[0] != "B" {
		t.Fatalf("graph successor list must not be shared with callers")
	}
}

func TestEndNodeIDs(t *testing.T) {
	g := NewGraph()
	mustAdd(t, g, anyNode("A", "B"), anyNode("B"), anyNode("C"))

	if got := g.EndNodeIDs(); !reflect.DeepEqual(got, []string{"B", "C"}) {
		t.Fatalf("expected [B C], got %v", got)
	}
}

func TestTopologicalOrder_FIFOInRegistrationOrder(t *testing.T) {
	g := NewGraph()
	mustAdd(t, g,
		anyNode("A", "C"),
		anyNode("B", "C", "D"),
		anyNode("C", "E"),
		anyNode("D", "E"),
		anyNode("E"),
	)

	order, err := g.TopologicalOrder()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"A", "B", "C", "D", "E"}
	if !reflect.DeepEqual(order, want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
}

func TestTopologicalOrder_CycleDetails(t *testing.T) {
	g := NewGraph()
	mustAdd(t, g, anyNode("root", "B"), anyNode("B", "C"), anyNode("C", "B"), anyNode("solo"))

	_, err := g.TopologicalOrder()
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeInvalidGraph {
		t.Fatalf("expected INVALID_GRAPH, got %v", err)
	}
	if appErr.Details["processed"] != 2 || appErr.Details["total"] != 4 {
		t.Fatalf("unexpected details %v", appErr.Details)
	}
	if got := appErr.Details["unresolved"]; !reflect.DeepEqual(got, []string{"B", "C"}) {
		t.Fatalf("expected unresolved [B C], got %v", got)
	}
}

func TestTopologicalOrder_SelfLoop(t *testing.T) {
	g := NewGraph()
	mustAdd(t, g, anyNode("A", "A"))

	if _, err := g.TopologicalOrder(); !errors.IsCode(err, errors.ErrCodeInvalidGraph) {
		t.Fatalf("expected INVALID_GRAPH, got %v", err)
	}
}

func TestLevels(t *testing.T) {
	g := NewGraph()
	mustAdd(t, g,
		anyNode("A", "B", "D"),
		anyNode("B", "C"),
		anyNode("C", "D"),
		anyNode("D"),
		anyNode("X"),
	)

	levels, err := g.Levels()
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{{"A", "X"}, {"B"}, {"C"}, {"D"}}
	if !reflect.DeepEqual(levels, want) {
		t.Fatalf("expected %v, got %v", want, levels)
	}
}

func TestValidate(t *testing.T) {
	intNode := func(id string, successors ...string) Node {
		return NewNode(id, func(_ context.Context, in []int) (int, error) { return 0, nil }, successors...)
	}
	strNode := func(id string, successors ...string) Node {
		return NewNode(id, func(_ context.Context, in []string) (string, error) { return "", nil }, successors...)
	}

	tests := []struct {
		name    string
		nodes   []Node
		wantErr bool
	}{
		{"valid chain", []Node{intNode("A", "B"), intNode("B")}, false},
		{"dangling successor", []Node{intNode("A", "missing")}, true},
		{"edge type mismatch", []Node{strNode("A", "B"), intNode("B")}, true},
		{"interface producer deferred to run time", []Node{anyNode("A", "B"), intNode("B")}, false},
		{"concrete producer into interface consumer", []Node{intNode("A", "B"), anyNode("B")}, false},
		{"cycle", []Node{intNode("A", "B"), intNode("B", "A")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGraph()
			mustAdd(t, g, tt.nodes...)
			err := g.Validate()
			if tt.wantErr && !errors.IsCode(err, errors.ErrCodeInvalidGraph) {
				t.Fatalf("expected INVALID_GRAPH, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	g := NewGraph()
	mustAdd(t, g, anyNode("A", "C"), anyNode("B", "C"), anyNode("C"))

	plan, err := Describe(g)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(plan.Order, []string{"A", "B", "C"}) {
		t.Fatalf("unexpected order %v", plan.Order)
	}
	if !reflect.DeepEqual(plan.Levels, [][]string{{"A", "B"}, {"C"}}) {
		t.Fatalf("unexpected levels %v", plan.Levels)
	}
	if !reflect.DeepEqual(plan.Terminals, []string{"C"}) {
		t.Fatalf("unexpected terminals %v", plan.Terminals)
	}
}
