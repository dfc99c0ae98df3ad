package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/s3agent/core"
)

func TestCallbacks_Order(t *testing.T) {
	var events []string
	record := func(ctx context.Context, cb *CallbackContext) error {
		events = append(events, string(cb.CallbackType)+":"+cb.Stage)
		return nil
	}

	cm := NewCallbackManager().
		RegisterCallback(NewFunctionCallback(CallbackBeforeStage, record)).
		RegisterCallback(NewFunctionCallback(CallbackAfterStage, func(ctx context.Context, cb *CallbackContext) error {
			require.NotNil(t, cb.Patch)
			return record(ctx, cb)
		}))

	rec := &recorder{}
	p, err := New("cb", []core.Stage{read(rec, "hello"), transform(rec)}, func(o *Options) {
		o.Callbacks = cm
	})
	require.NoError(t, err)

	_, err = p.Invoke(context.Background(), initial())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"before_stage:read", "after_stage:read",
		"before_stage:transform", "after_stage:transform",
	}, events)
}

func TestCallbacks_BeforeStageAborts(t *testing.T) {
	veto := errors.New("veto")
	var failed *CallbackContext

	cm := NewCallbackManager().
		RegisterCallback(NewFunctionCallback(CallbackBeforeStage, func(_ context.Context, cb *CallbackContext) error {
			if cb.Stage == "transform" {
				return veto
			}
			return nil
		})).
		RegisterCallback(NewFunctionCallback(CallbackOnError, func(_ context.Context, cb *CallbackContext) error {
			failed = cb
			return errors.New("ignored")
		}))

	rec := &recorder{}
	p, err := New("cb", []core.Stage{read(rec, "hello"), transform(rec), write(rec)}, func(o *Options) {
		o.Callbacks = cm
	})
	require.NoError(t, err)

	out, err := p.Invoke(context.Background(), initial())
	assert.ErrorIs(t, err, veto)
	assert.Equal(t, core.State{}, out)
	assert.Equal(t, []string{"read"}, rec.get())

	require.NotNil(t, failed)
	assert.Equal(t, "transform", failed.Stage)
	assert.ErrorIs(t, failed.Err, veto)
	require.NotNil(t, failed.State.Text)
	assert.Equal(t, "hello", *failed.State.Text)
}

func TestCallbacks_StateIsACopy(t *testing.T) {
	cm := NewCallbackManager().
		RegisterCallback(NewFunctionCallback(CallbackBeforeStage, func(_ context.Context, cb *CallbackContext) error {
			cb.State.Bucket = "mutated"
			return nil
		}))

	rec := &recorder{}
	p, err := New("cb", []core.Stage{read(rec, "hello")}, func(o *Options) { o.Callbacks = cm })
	require.NoError(t, err)

	out, err := p.Invoke(context.Background(), initial())
	require.NoError(t, err)
	assert.Equal(t, "b", out.Bucket)
}

func TestCallbacks_PatchIsACopy(t *testing.T) {
	cm := NewCallbackManager().
		RegisterCallback(NewFunctionCallback(CallbackAfterStage, func(_ context.Context, cb *CallbackContext) error {
			require.NotNil(t, cb.Patch.Text)
			*cb.Patch.Text = "changed"
			cb.Patch.Status = core.StatusPtr(core.StatusSuccess)
			return nil
		}))

	rec := &recorder{}
	p, err := New("cb", []core.Stage{read(rec, "hello")}, func(o *Options) { o.Callbacks = cm })
	require.NoError(t, err)

	out, err := p.Invoke(context.Background(), initial())
	require.NoError(t, err)
	require.NotNil(t, out.Text)
	assert.Equal(t, "hello", *out.Text)
	assert.Nil(t, out.Status)
}

func TestCallbackManager_NilIsNoop(t *testing.T) {
	var cm *CallbackManager
	assert.NoError(t, cm.ExecuteCallbacks(context.Background(), CallbackBeforeStage, &CallbackContext{}))
}
