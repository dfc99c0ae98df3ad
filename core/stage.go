package core

import "context"

// Stage is one unit of work in a pipeline. Run receives a read-only view of
// the accumulated state and returns the fields to merge. Implementations may
// call external services but must keep no state between runs.
type Stage interface {
	Name() string
	Run(ctx context.Context, state State) (Patch, error)
}

// StageFunc adapts a plain function into a named Stage.
func StageFunc(name string, fn func(ctx context.Context, state State) (Patch, error)) Stage {
	return &funcStage{name: name, fn: fn}
}

type funcStage struct {
	name string
	fn   func(context.Context, State) (Patch, error)
}

func (f *funcStage) Name() string { return f.name }

func (f *funcStage) Run(ctx context.Context, state State) (Patch, error) {
	return f.fn(ctx, state)
}

// Require returns the value of every key in order or a *FieldError naming the
// first absent one.
func Require(stage string, state State, keys ...string) ([]string, error) {
	vals := make([]string, len(keys))
	for i, k := range keys {
		v, ok := state.Get(k)
		if !ok {
			return nil, &FieldError{Stage: stage, Field: k}
		}
		vals[i] = v
	}
	return vals, nil
}
