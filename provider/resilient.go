package provider

import (
	"context"
	stderrors "errors"

	"github.com/kbukum/capdag/errors"
	"github.com/kbukum/capdag/resilience"
)

// ResilienceConfig bundles optional resilience policies for a provider.
// Nil fields are skipped.
type ResilienceConfig struct {
	// CircuitBreaker stops calls after repeated collaborator failures.
	CircuitBreaker *resilience.CircuitBreakerConfig
	// Retry retries failed calls with exponential backoff.
	Retry *resilience.RetryConfig
}

// IsEmpty returns true if no resilience policies are configured.
func (c ResilienceConfig) IsEmpty() bool {
	return c.CircuitBreaker == nil && c.Retry == nil
}

// WithResilience wraps a RequestResponse provider with the configured policies.
// Execution chain: CircuitBreaker → Retry → Execute. An empty config returns
// the provider unchanged.
func WithResilience[I, O any](p RequestResponse[I, O], cfg ResilienceConfig) RequestResponse[I, O] {
	if cfg.IsEmpty() {
		return p
	}
	r := &resilientRR[I, O]{inner: p, retryCfg: cfg.Retry}
	if cfg.CircuitBreaker != nil {
		cbCfg := *cfg.CircuitBreaker
		if cbCfg.Name == "" {
			cbCfg.Name = p.Name()
		}
		r.cb = resilience.NewCircuitBreaker(cbCfg)
	}
	return r
}

type resilientRR[I, O any] struct {
	inner    RequestResponse[I, O]
	cb       *resilience.CircuitBreaker
	retryCfg *resilience.RetryConfig
}

func (r *resilientRR[I, O]) Name() string { return r.inner.Name() }

// IsAvailable reports false while the circuit is open.
func (r *resilientRR[I, O]) IsAvailable(ctx context.Context) bool {
	if r.cb != nil && r.cb.State() == resilience.StateOpen {
		return false
	}
	return r.inner.IsAvailable(ctx)
}

func (r *resilientRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	call := func() (O, error) {
		return r.inner.Execute(ctx, input)
	}

	if r.retryCfg != nil {
		retryCfg := *r.retryCfg
		attempt := call
		call = func() (O, error) {
			return resilience.Retry(ctx, retryCfg, attempt)
		}
	}

	if r.cb != nil {
		guarded := call
		call = func() (O, error) {
			var result O
			var resultErr error
			cbErr := r.cb.Execute(func() error {
				result, resultErr = guarded()
				return resultErr
			})
			if cbErr != nil && resultErr == nil {
				return result, r.wrapError(cbErr)
			}
			return result, resultErr
		}
	}

	result, err := call()
	if err != nil {
		return result, r.wrapError(err)
	}
	return result, nil
}

// wrapError converts resilience sentinels and context errors to AppErrors.
func (r *resilientRR[I, O]) wrapError(err error) error {
	if _, ok := errors.AsAppError(err); ok {
		return err
	}

	switch {
	case stderrors.Is(err, resilience.ErrCircuitOpen):
		return errors.ServiceUnavailable(r.inner.Name()).
			WithCause(err).
			WithDetail("reason", "circuit open")
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return errors.Cancelled("provider "+r.inner.Name(), err)
	default:
		return err
	}
}
