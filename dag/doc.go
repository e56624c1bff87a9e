// Package dag runs capability graphs: named processing units wired by their
// declared successors and executed in dependency order.
//
// A Graph is built once and may be run many times. Each run gets its own
// Execution holding the inputs accumulated for every node and the output it
// produced, so a Graph can be shared between concurrent Process calls.
//
//	g := dag.NewGraph()
//	_ = g.AddNode(dag.NewNode("a", echo, "c"))
//	_ = g.AddNode(dag.NewNode("b", echo, "c"))
//	_ = g.AddNode(dag.NewNode("c", sum))
//
//	res, err := (&dag.Engine{}).Process(ctx, g, map[string]any{"a": 1, "b": 2})
//	// res.Outputs == map[string]any{"c": 3}
//
// A node with N predecessors runs once, after all of them, and receives N
// values (N+1 when it also has an initial input). Nodes without successors are
// terminal; their outputs form Result.Outputs.
//
// Two execution modes share the same graph:
//   - ModeSequential: one node at a time in topological order (default)
//   - ModeParallel: ready nodes run on a fixed worker pool, failing fast
//
// Graphs can also be declared in YAML pipelines and resolved against a
// Registry of capability factories; see Pipeline and ResolvePipeline.
package dag
