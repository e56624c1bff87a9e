package capability_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/capdag/capability"
	"github.com/kbukum/capdag/dag"
	"github.com/kbukum/capdag/errors"
)

func run(t *testing.T, g *dag.Graph, initial map[string]any) *dag.Result {
	t.Helper()
	res, err := (&dag.Engine{}).Process(context.Background(), g, initial)
	require.NoError(t, err)
	return res
}

func TestEcho(t *testing.T) {
	g := dag.NewGraph()
	require.NoError(t, g.AddNode(capability.Echo[string]("a")))

	res := run(t, g, map[string]any{"a": "hello"})
	assert.Equal(t, map[string]any{"a": "hello"}, res.Outputs)
}

func TestEcho_RejectsFanIn(t *testing.T) {
	g := dag.NewGraph()
	require.NoError(t, g.AddNode(capability.Echo[int]("a", "c")))
	require.NoError(t, g.AddNode(capability.Echo[int]("b", "c")))
	require.NoError(t, g.AddNode(capability.Echo[int]("c")))

	_, err := (&dag.Engine{}).Process(context.Background(), g, map[string]any{"a": 1, "b": 2})
	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeCapabilityFailed, appErr.Code)
	assert.True(t, errors.IsCode(appErr.Cause, errors.ErrCodeInvalidArgument))
}

func TestSum_Chain(t *testing.T) {
	g := dag.NewGraph()
	require.NoError(t, g.AddNode(capability.Echo[int]("a", "c")))
	require.NoError(t, g.AddNode(capability.Echo[int]("b", "c")))
	require.NoError(t, g.AddNode(capability.Sum[int]("c")))

	res := run(t, g, map[string]any{"a": 2, "b": 3})
	assert.Equal(t, 5, res.Outputs["c"])
}

func TestSum_Empty(t *testing.T) {
	g := dag.NewGraph()
	require.NoError(t, g.AddNode(capability.Sum[float64]("s")))

	res := run(t, g, nil)
	assert.Equal(t, 0.0, res.Outputs["s"])
}

func TestJoin(t *testing.T) {
	g := dag.NewGraph()
	require.NoError(t, g.AddNode(capability.Join("j", "-")))

	res := run(t, g, map[string]any{"j": "x"})
	assert.Equal(t, "x", res.Outputs["j"])

	g = dag.NewGraph()
	require.NoError(t, g.AddNode(capability.Constant("first", "a", "j")))
	require.NoError(t, g.AddNode(capability.Join("j", "-")))

	res = run(t, g, map[string]any{"j": "x"})
	assert.Equal(t, "x-a", res.Outputs["j"])
}

func TestConstant_IgnoresInputs(t *testing.T) {
	g := dag.NewGraph()
	require.NoError(t, g.AddNode(capability.Constant("k", 42)))

	res := run(t, g, map[string]any{"k": "ignored"})
	assert.Equal(t, 42, res.Outputs["k"])
}

func TestTemplate(t *testing.T) {
	node, err := capability.Template("p", "Summarize: {{.Input}} ({{len .Inputs}})")
	require.NoError(t, err)

	g := dag.NewGraph()
	require.NoError(t, g.AddNode(node))

	res := run(t, g, map[string]any{"p": "the text"})
	assert.Equal(t, "Summarize: the text (1)", res.Outputs["p"])
}

func TestTemplate_ParseError(t *testing.T) {
	_, err := capability.Template("p", "{{.Input")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidArgument))
}

func TestTemplate_RenderError(t *testing.T) {
	node, err := capability.Template("p", "{{.Missing}}")
	require.NoError(t, err)

	_, err = node.Process(context.Background(), []any{"x"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidArgument))
}
