// Package provider defines the contract for external collaborators that
// capability nodes call: language models, embedding services, image
// generators or anything else that turns one request into one response.
//
//	summarizer := provider.Func("summarizer", func(ctx context.Context, text string) (string, error) {
//	    return client.Summarize(ctx, text)
//	})
//
// # Middleware
//
// Middleware[I, O] wraps a RequestResponse provider. Chain composes them,
// outermost first:
//
//	wrapped := provider.Chain(
//	    provider.WithLogging[string, string](log),
//	    provider.WithMetrics[string, string](metrics),
//	    provider.WithTracing[string, string]("capdag"),
//	)(summarizer)
//
// WithResilience adds retry with exponential backoff and a circuit breaker
// from the resilience package. Retrying belongs to collaborators; the DAG
// engine never retries a failed node.
//
// Adapt bridges a backend with types [BI, BO] to a capability with types [I, O].
package provider
