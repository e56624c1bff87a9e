// Package resilience provides retry and circuit breaking for calls made by
// capability nodes to external collaborators.
//
//	cb := resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("summarizer"))
//
//	out, err := resilience.Retry(ctx, resilience.DefaultRetryConfig(), func() (string, error) {
//	    var out string
//	    err := cb.Execute(func() error {
//	        var callErr error
//	        out, callErr = client.Summarize(ctx, text)
//	        return callErr
//	    })
//	    return out, err
//	})
//
// Errors from the capdag errors package drive the default retry decision:
// an AppError is retried only when it is marked Retryable.
package resilience
