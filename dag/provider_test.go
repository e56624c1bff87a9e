package dag_test

import (
	"bytes"
	"context"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric/noop"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/capdag/dag"
	"github.com/kbukum/capdag/dag/testutil"
	"github.com/kbukum/capdag/errors"
	"github.com/kbukum/capdag/logger"
	"github.com/kbukum/capdag/observability"
	"github.com/kbukum/capdag/provider"
)

func upper() provider.RequestResponse[string, string] {
	return provider.Func("upper", func(_ context.Context, in string) (string, error) {
		return strings.ToUpper(in), nil
	})
}

func TestFromProvider_DefaultCombine(t *testing.T) {
	node := dag.FromProvider(dag.ProviderNodeConfig[string, string, string]{
		ID:      "llm",
		Service: upper(),
	})
	g := testutil.NewGraphBuilder().Add(node).MustBuild(t)

	res, err := newEngine(dag.ModeSequential).Process(context.Background(), g, map[string]any{"llm": "hi"})
	require.NoError(t, err)
	assert.Equal(t, "HI", res.Outputs["llm"])
}

func TestFromProvider_DefaultCombineNeedsSingleInput(t *testing.T) {
	node := dag.FromProvider(dag.ProviderNodeConfig[string, string, string]{
		ID:      "llm",
		Service: upper(),
	})

	_, err := node.Process(context.Background(), []any{"a", "b"})
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidArgument), "got %v", err)
}

func TestFromProvider_CombineFansIn(t *testing.T) {
	node := dag.FromProvider(dag.ProviderNodeConfig[string, string, string]{
		ID:      "llm",
		Service: upper(),
		Combine: func(in []string) (string, error) { return strings.Join(in, " "), nil },
	})
	g := testutil.NewGraphBuilder().
		Add(echo[string]("a", "llm")).
		Add(echo[string]("b", "llm")).
		Add(node).
		MustBuild(t)

	res, err := newEngine(dag.ModeParallel).Process(context.Background(), g, map[string]any{"a": "x", "b": "y"})
	require.NoError(t, err)
	assert.Contains(t, []any{"X Y", "Y X"}, res.Outputs["llm"])
}

func TestFromProvider_ProviderErrorIsCapabilityFailure(t *testing.T) {
	down := provider.Func("down", func(context.Context, string) (string, error) {
		return "", errors.ServiceUnavailable("down")
	})
	g := testutil.NewGraphBuilder().
		Add(dag.FromProvider(dag.ProviderNodeConfig[string, string, string]{ID: "llm", Service: down})).
		MustBuild(t)

	_, err := newEngine(dag.ModeSequential).Process(context.Background(), g, map[string]any{"llm": "x"})
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeCapabilityFailed, appErr.Code)
	assert.True(t, appErr.Retryable, "retryable cause keeps the failure retryable")
}

func TestAsProvider_ComposesGraphs(t *testing.T) {
	inner := testutil.NewGraphBuilder().
		Add(dag.FromProvider(dag.ProviderNodeConfig[string, string, string]{ID: "up", Service: upper(), Successors: []string{"out"}})).
		Add(echo[string]("out")).
		MustBuild(t)

	sub := dag.AsProvider[string, string](newEngine(dag.ModeSequential), inner, dag.ProviderConfig{Name: "shout", Entry: "up"})
	assert.Equal(t, "shout", sub.Name())
	assert.True(t, sub.IsAvailable(context.Background()))

	outer := testutil.NewGraphBuilder().
		Add(dag.FromProvider(dag.ProviderNodeConfig[string, string, string]{ID: "nested", Service: sub})).
		MustBuild(t)

	res, err := newEngine(dag.ModeParallel).Process(context.Background(), outer, map[string]any{"nested": "quiet"})
	require.NoError(t, err)
	assert.Equal(t, "QUIET", res.Outputs["nested"])
}

func TestAsProvider_NeedsExitWithManyTerminals(t *testing.T) {
	g := testutil.NewGraphBuilder().
		Add(echo[string]("a", "b", "c")).
		Add(echo[string]("b")).
		Add(echo[string]("c")).
		MustBuild(t)

	p := dag.AsProvider[string, string](newEngine(dag.ModeSequential), g, dag.ProviderConfig{Name: "p", Entry: "a"})
	_, err := p.Execute(context.Background(), "x")
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidGraph), "got %v", err)

	p = dag.AsProvider[string, string](newEngine(dag.ModeSequential), g, dag.ProviderConfig{Name: "p", Entry: "a", Exit: "c"})
	out, err := p.Execute(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "x", out)
}

func TestWithTracing_RecordsSpan(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})

	node := dag.WithTracing(echo[int]("A"), "capdag")
	assert.Equal(t, "A", node.ID())
	assert.Equal(t, dag.TypeOf[int](), node.InputType())

	g := testutil.NewGraphBuilder().Add(node).MustBuild(t)
	_, err := newEngine(dag.ModeSequential).Process(context.Background(), g, map[string]any{"A": 1})
	require.NoError(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "capdag.A", spans[0].Name)
}

func TestWithLogging_LogsFailure(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "debug", Format: "json"}, "test", &buf)

	node := dag.WithLogging(testutil.NewMockNode("A", nil, stderrors.New("boom")), log)
	_, err := node.Process(context.Background(), nil)
	require.Error(t, err)

	assert.Contains(t, buf.String(), `"node":"A"`)
	assert.Contains(t, buf.String(), "dag node failed")
	assert.Contains(t, buf.String(), "boom")
}

func TestWithMetrics_Delegates(t *testing.T) {
	metrics, err := observability.NewMetrics(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)

	node := dag.WithMetrics(echo[int]("A", "B"), metrics)
	assert.Equal(t, []string{"B"}, node.Successors())

	out, err := node.Process(context.Background(), []any{5})
	require.NoError(t, err)
	assert.Equal(t, 5, out)

	_, err = node.Process(context.Background(), nil)
	assert.Error(t, err)
}

func TestEngine_RecordsRunMetrics(t *testing.T) {
	metrics, err := observability.NewMetrics(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)

	engine := newEngine(dag.ModeSequential)
	engine.Metrics = metrics

	g := testutil.NewGraphBuilder().Add(testutil.NewMockNode("A", nil, stderrors.New("x"))).MustBuild(t)
	_, err = engine.Process(context.Background(), g, nil)
	assert.Error(t, err)

	g = testutil.NewGraphBuilder().Add(testutil.NewMockNode("A", 1, nil)).MustBuild(t)
	_, err = engine.Process(context.Background(), g, nil)
	assert.NoError(t, err)
}
