package dag

import (
	"context"
	"fmt"

	"github.com/kbukum/capdag/errors"
	"github.com/kbukum/capdag/provider"
)

// ProviderNodeConfig configures a provider-backed node.
type ProviderNodeConfig[I, P, O any] struct {
	// ID is the unique node identifier in the graph.
	ID         string
	Successors []string
	// Service is the provider to execute once per run.
	Service provider.RequestResponse[P, O]
	// Combine folds the accumulated inputs into the single request. When nil,
	// a lone input that is a P is used as is, and otherwise the whole
	// collection is used if it is a P.
	Combine func(inputs []I) (P, error)
}

// FromProvider bridges a provider.RequestResponse into a Node.
func FromProvider[I, P, O any](cfg ProviderNodeConfig[I, P, O]) Node {
	combine := cfg.Combine
	if combine == nil {
		combine = defaultCombine[I, P](cfg.ID)
	}
	return NewNode(cfg.ID, func(ctx context.Context, inputs []I) (O, error) {
		var zero O
		req, err := combine(inputs)
		if err != nil {
			return zero, err
		}
		return cfg.Service.Execute(ctx, req)
	}, cfg.Successors...)
}

func defaultCombine[I, P any](id string) func([]I) (P, error) {
	return func(inputs []I) (P, error) {
		if len(inputs) == 1 {
			if p, ok := any(inputs[0]).(P); ok {
				return p, nil
			}
		}
		if p, ok := any(inputs).(P); ok {
			return p, nil
		}
		var zero P
		return zero, errors.InvalidArgument(id, fmt.Sprintf("cannot build %s request from %d inputs", TypeOf[P](), len(inputs)))
	}
}

// ProviderConfig configures how a graph run maps to a provider interface.
type ProviderConfig struct {
	// Name is the provider name.
	Name string
	// Entry is the node that receives the provider input as its initial input.
	Entry string
	// Exit is the node whose output is returned. When empty the graph must
	// have exactly one terminal node.
	Exit string
}

// AsProvider wraps a graph run as a provider.RequestResponse so a whole
// graph can serve as the collaborator of a node in another graph.
func AsProvider[I, O any](engine *Engine, graph *Graph, cfg ProviderConfig) provider.RequestResponse[I, O] {
	return &graphProvider[I, O]{engine: engine, graph: graph, cfg: cfg}
}

type graphProvider[I, O any] struct {
	engine *Engine
	graph  *Graph
	cfg    ProviderConfig
}

func (p *graphProvider[I, O]) Name() string { return p.cfg.Name }

// IsAvailable reports whether the graph is structurally valid.
func (p *graphProvider[I, O]) IsAvailable(_ context.Context) bool {
	return p.graph.Validate() == nil
}

func (p *graphProvider[I, O]) Execute(ctx context.Context, input I) (O, error) {
	var zero O

	res, err := p.engine.Process(ctx, p.graph, map[string]any{p.cfg.Entry: input})
	if err != nil {
		return zero, err
	}

	exit := p.cfg.Exit
	if exit == "" {
		terminals := p.graph.EndNodeIDs()
		if len(terminals) != 1 {
			return zero, errors.InvalidGraph(fmt.Sprintf("provider %q needs an exit node: graph has %d terminals", p.cfg.Name, len(terminals)))
		}
		exit = terminals[0]
	}

	raw, ok := res.Output(exit)
	if !ok {
		return zero, errors.NotFound("output of node", exit)
	}
	out, err := convert[O](raw, TypeOf[O]())
	if err != nil {
		return zero, errors.InvalidArgument(exit, err.Error())
	}
	return out, nil
}
