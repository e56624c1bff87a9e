// Package observability wires OpenTelemetry tracing and metrics for capdag.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("capdag"))
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, "capdag.node.summarize")
//	defer span.End()
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("capdag"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("capdag"))
//	metrics.RecordNode(ctx, "summarize", "ok", duration)
//
// Without Init* calls the global no-op providers are used, so spans and
// instruments are always safe to create.
package observability
