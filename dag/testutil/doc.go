// Package testutil provides test helpers for the dag package: a recording
// mock node and a fluent graph builder.
//
//	graph := testutil.NewGraphBuilder().
//	    Add(testutil.NewMockNode("extract", "raw", nil, "transform")).
//	    Add(testutil.NewMockNode("transform", "done", nil)).
//	    MustBuild(t)
//
//	res, err := (&dag.Engine{}).Process(ctx, graph, nil)
package testutil
