package provider

import (
	"context"
	"fmt"

	"github.com/kbukum/capdag/errors"
)

// Mapping converts between a capability's types and a backend's types.
type Mapping[I, O, BI, BO any] struct {
	In  func(ctx context.Context, input I) (BI, error)
	Out func(output BO) (O, error)
}

// Adapt exposes a backend with types [BI, BO] as a capability provider with
// types [I, O]. Mapping failures are INVALID_ARGUMENT errors naming the
// adapted provider; backend errors pass through unchanged.
func Adapt[I, O, BI, BO any](
	backend RequestResponse[BI, BO],
	name string,
	mapIn func(ctx context.Context, input I) (BI, error),
	mapOut func(output BO) (O, error),
) RequestResponse[I, O] {
	return &adapted[I, O, BI, BO]{
		backend: backend,
		name:    name,
		mapping: Mapping[I, O, BI, BO]{In: mapIn, Out: mapOut},
	}
}

type adapted[I, O, BI, BO any] struct {
	backend RequestResponse[BI, BO]
	name    string
	mapping Mapping[I, O, BI, BO]
}

func (a *adapted[I, O, BI, BO]) Name() string { return a.name }

func (a *adapted[I, O, BI, BO]) IsAvailable(ctx context.Context) bool {
	return a.backend.IsAvailable(ctx)
}

func (a *adapted[I, O, BI, BO]) Execute(ctx context.Context, input I) (O, error) {
	var zero O

	in, err := a.mapping.In(ctx, input)
	if err != nil {
		return zero, a.mappingError("mapping input for "+a.backend.Name(), err)
	}

	out, err := a.backend.Execute(ctx, in)
	if err != nil {
		return zero, err
	}

	result, err := a.mapping.Out(out)
	if err != nil {
		return zero, a.mappingError(fmt.Sprintf("mapping %T output", out), err)
	}
	return result, nil
}

func (a *adapted[I, O, BI, BO]) mappingError(reason string, cause error) error {
	if errors.IsAppError(cause) {
		return cause
	}
	return errors.InvalidArgument(a.name, reason).WithCause(cause)
}
