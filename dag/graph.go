package dag

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/kbukum/capdag/errors"
)

// Graph owns registered nodes and the pending in-degree of every node id,
// maintained incrementally as nodes are added. Successors may be declared
// before they are registered. A Graph is safe for concurrent readers.
type Graph struct {
	mu           sync.RWMutex
	entries      map[string]*entry
	order        []string
	predecessors map[string][]string
	inDegree     map[string]int
}

type entry struct {
	node       Node
	expected   reflect.Type
	successors []string
}

// NewGraph creates an empty Graph.
func NewGraph() *Graph {
	return &Graph{
		entries:      make(map[string]*entry),
		predecessors: make(map[string][]string),
		inDegree:     make(map[string]int),
	}
}

// AddNode registers node with its own InputType as the expected input type.
func (g *Graph) AddNode(node Node) error {
	if node == nil {
		return errors.New(errors.ErrCodeInvalidArgument, "node must not be nil")
	}
	return g.AddNodeWithType(node, node.InputType())
}

// AddNodeWithType registers node with an explicit expected input type,
// overriding the node's own tag. Registering an id twice fails with
// ALREADY_EXISTS.
func (g *Graph) AddNodeWithType(node Node, expected reflect.Type) error {
	if node == nil {
		return errors.New(errors.ErrCodeInvalidArgument, "node must not be nil")
	}
	id := node.ID()
	if id == "" {
		return errors.New(errors.ErrCodeInvalidArgument, "node id must not be empty")
	}
	if expected == nil {
		return errors.InvalidArgument(id, "expected input type must not be nil")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.entries[id]; exists {
		return errors.AlreadyExists("node", id)
	}

	successors := node.Successors()
	g.entries[id] = &entry{
		node:       node,
		expected:   expected,
		successors: slices.Clone(successors),
	}
	g.order = append(g.order, id)
	if _, ok := g.inDegree[id]; !ok {
		g.inDegree[id] = 0
	}
	for _, s := range successors {
		g.predecessors[s] = append(g.predecessors[s], id)
		g.inDegree[s]++
	}
	return nil
}

// Node returns the node registered under id.
func (g *Graph) Node(id string) (Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	e, ok := g.entries[id]
	if !ok {
		return nil, false
	}
	return e.node, true
}

// ExpectedType returns the expected input type registered for id.
func (g *Graph) ExpectedType(id string) (reflect.Type, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	e, ok := g.entries[id]
	if !ok {
		return nil, false
	}
	return e.expected, true
}

// Nodes returns the registered nodes in registration order.
func (g *Graph) Nodes() []Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	nodes := make([]Node, 0, len(g.order))
	for _, id := range g.order {
		nodes = append(nodes, g.entries[id].node)
	}
	return nodes
}

// IDs returns the registered node ids in registration order.
func (g *Graph) IDs() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Clone(g.order)
}

// Successors returns the successor ids recorded for id at registration.
func (g *Graph) Successors(id string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if e, ok := g.entries[id]; ok {
		return slices.Clone(e.successors)
	}
	return nil
}

// Predecessors returns the ids of registered nodes that declare id as a
// successor, in registration order.
func (g *Graph) Predecessors(id string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Clone(g.predecessors[id])
}

// InDegree returns the number of registered edges pointing at id.
func (g *Graph) InDegree(id string) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.inDegree[id]
}

// Len returns the number of registered nodes.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.order)
}

// EndNodeIDs returns the ids of terminal nodes (no successors) in
// registration order.
func (g *Graph) EndNodeIDs() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var ids []string
	for _, id := range g.order {
		if len(g.entries[id].successors) == 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

// String renders the graph as "id -> succ, succ" lines in registration order.
func (g *Graph) String() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var b strings.Builder
	for _, id := range g.order {
		fmt.Fprintf(&b, "%s -> %v\n", id, g.entries[id].successors)
	}
	return b.String()
}
