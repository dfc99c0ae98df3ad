package pipeline

import (
	"context"
	"fmt"

	"github.com/hupe1980/s3agent/core"
)

// CallbackType defines the lifecycle points where callbacks run.
//
// Callbacks run synchronously on the invoking goroutine. A BeforeStage or
// AfterStage callback that returns an error aborts the run exactly like a
// failing stage. OnError callbacks observe the failure; their own errors are
// ignored.
type CallbackType string

const (
	// CallbackBeforeStage runs before a stage starts.
	CallbackBeforeStage CallbackType = "before_stage"

	// CallbackAfterStage runs after a stage succeeded, before its patch is merged.
	CallbackAfterStage CallbackType = "after_stage"

	// CallbackOnError runs once when a run aborts.
	CallbackOnError CallbackType = "on_error"
)

// CallbackContext describes the point of execution a callback observes.
type CallbackContext struct {
	Pipeline     string
	Stage        string
	CallbackType CallbackType

	// State is a copy of the accumulated state; mutating it has no effect.
	State core.State

	// Patch is set for AfterStage.
	Patch *core.Patch

	// Err is set for OnError.
	Err error
}

// Callback is an execution lifecycle hook.
type Callback interface {
	Type() CallbackType
	Execute(ctx context.Context, callbackCtx *CallbackContext) error
}

// FunctionCallback wraps a function as a callback implementation.
type FunctionCallback struct {
	callbackType CallbackType
	fn           func(ctx context.Context, callbackCtx *CallbackContext) error
}

// NewFunctionCallback creates a new function-based callback.
func NewFunctionCallback(
	callbackType CallbackType,
	fn func(ctx context.Context, callbackCtx *CallbackContext) error,
) *FunctionCallback {
	return &FunctionCallback{
		callbackType: callbackType,
		fn:           fn,
	}
}

// Type returns the callback type this function handles.
func (c *FunctionCallback) Type() CallbackType {
	return c.callbackType
}

// Execute calls the wrapped function with the provided context.
func (c *FunctionCallback) Execute(ctx context.Context, callbackCtx *CallbackContext) error {
	return c.fn(ctx, callbackCtx)
}

// CallbackManager is a registry of callbacks keyed by type.
//
// Registration is not synchronized: register everything before the pipeline
// is compiled. Execution is safe for concurrent use afterwards.
type CallbackManager struct {
	callbacks map[CallbackType][]Callback
}

// NewCallbackManager creates an empty manager.
func NewCallbackManager() *CallbackManager {
	return &CallbackManager{
		callbacks: make(map[CallbackType][]Callback),
	}
}

// RegisterCallback adds a callback. Callbacks of one type run in
// registration order.
func (cm *CallbackManager) RegisterCallback(callback Callback) *CallbackManager {
	cm.callbacks[callback.Type()] = append(cm.callbacks[callback.Type()], callback)
	return cm
}

// ExecuteCallbacks runs every callback registered for callbackType and stops
// at the first error.
func (cm *CallbackManager) ExecuteCallbacks(
	ctx context.Context,
	callbackType CallbackType,
	callbackCtx *CallbackContext,
) error {
	if cm == nil {
		return nil
	}

	callbackCtx.CallbackType = callbackType
	for i, cb := range cm.callbacks[callbackType] {
		if err := cb.Execute(ctx, callbackCtx); err != nil {
			return fmt.Errorf("%s callback %d: %w", callbackType, i, err)
		}
	}

	return nil
}
