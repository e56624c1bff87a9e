package dag

import (
	"context"
	"time"

	"github.com/kbukum/capdag/errors"
	"github.com/kbukum/capdag/logger"
	"github.com/kbukum/capdag/observability"
)

// WithTracing wraps a Node with OpenTelemetry span creation.
// Each execution creates a span named "{prefix}.{nodeID}".
func WithTracing(node Node, prefix string) Node {
	return &tracingNode{Node: node, prefix: prefix}
}

type tracingNode struct {
	Node
	prefix string
}

func (n *tracingNode) Process(ctx context.Context, inputs []any) (any, error) {
	ctx, span := observability.StartSpan(ctx, n.prefix+"."+n.ID())
	defer span.End()

	observability.SetSpanAttribute(ctx, observability.AttrNodeID, n.ID())
	observability.SetSpanAttribute(ctx, observability.AttrInputCount, len(inputs))
	if runID, ok := logger.RunIDFromContext(ctx); ok {
		observability.SetSpanAttribute(ctx, observability.AttrRunID, runID)
	}

	result, err := n.Node.Process(ctx, inputs)
	if err != nil {
		observability.SetSpanError(ctx, err)
	}

	return result, err
}

// WithMetrics wraps a Node with metric recording: run count and duration
// by status, plus errors by code.
func WithMetrics(node Node, metrics *observability.Metrics) Node {
	return &metricsNode{Node: node, metrics: metrics}
}

type metricsNode struct {
	Node
	metrics *observability.Metrics
}

func (n *metricsNode) Process(ctx context.Context, inputs []any) (any, error) {
	start := time.Now()
	result, err := n.Node.Process(ctx, inputs)
	duration := time.Since(start)

	status := "ok"
	if err != nil {
		status = "error"
		n.metrics.RecordError(ctx, string(errors.Wrap(err).Code), n.ID())
	}
	n.metrics.RecordNode(ctx, n.ID(), status, duration)

	return result, err
}

// WithLogging wraps a Node with execution logging.
func WithLogging(node Node, log *logger.Logger) Node {
	return &loggingNode{Node: node, log: log}
}

type loggingNode struct {
	Node
	log *logger.Logger
}

func (n *loggingNode) Process(ctx context.Context, inputs []any) (any, error) {
	start := time.Now()
	result, err := n.Node.Process(ctx, inputs)

	fields := logger.DurationFields(n.ID(), time.Since(start))
	fields["inputs"] = len(inputs)

	log := n.log.WithContext(ctx)
	if err != nil {
		fields[logger.FieldError] = err.Error()
		log.Error("dag node failed", fields)
	} else {
		log.Debug("dag node completed", fields)
	}

	return result, err
}
