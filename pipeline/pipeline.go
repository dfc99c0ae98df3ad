package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/s3agent/core"
	"github.com/hupe1980/s3agent/logging"
)

// Options configures a Pipeline.
type Options struct {
	// Logger receives per stage and per run records. Defaults to NoOpLogger.
	Logger logging.Logger
	// Callbacks are run around every stage. Optional.
	Callbacks *CallbackManager
}

// Node is a compiled stage together with its successor list. A chain has at
// most one successor per node; the terminal node has none.
type Node struct {
	Name string
	Next []string
}

// Pipeline executes an immutable, ordered chain of stages. It is safe for
// concurrent use: every Invoke works on its own copy of the state.
type Pipeline struct {
	name      string
	stages    []core.Stage
	nodes     []Node
	logger    logging.Logger
	callbacks *CallbackManager
}

// StageError reports the stage that aborted a run. It unwraps to the
// original error.
type StageError struct {
	Pipeline string
	Stage    string
	Err      error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline %s failed at stage %s: %v", e.Pipeline, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// New compiles stages into a pipeline that runs them in the given order.
func New(name string, stages []core.Stage, optFns ...func(o *Options)) (*Pipeline, error) {
	b := NewBuilder(name)
	for i, s := range stages {
		b.AddStage(s)
		if i > 0 {
			b.AddEdge(stages[i-1].Name(), s.Name())
		}
	}
	return b.Compile(optFns...)
}

func newPipeline(name string, stages []core.Stage, nodes []Node, optFns ...func(o *Options)) *Pipeline {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Pipeline{name: name, stages: stages, nodes: nodes, logger: opts.Logger, callbacks: opts.Callbacks}
}

// Name returns the pipeline name.
func (p *Pipeline) Name() string { return p.name }

// Entry returns the name of the first stage.
func (p *Pipeline) Entry() string { return p.stages[0].Name() }

// Finish returns the name of the terminal stage.
func (p *Pipeline) Finish() string { return p.stages[len(p.stages)-1].Name() }

// Nodes returns a copy of the compiled nodes in execution order.
func (p *Pipeline) Nodes() []Node {
	out := make([]Node, len(p.nodes))
	for i, n := range p.nodes {
		out[i] = Node{Name: n.Name, Next: append([]string(nil), n.Next...)}
	}
	return out
}

// Invoke runs every stage in order, merging each patch into a copy of
// initial before the next stage starts. The first error aborts the run and
// is returned wrapped in a *StageError; no later stage executes and no
// partial state is returned.
func (p *Pipeline) Invoke(ctx context.Context, initial core.State) (core.State, error) {
	state := initial.Clone()
	start := time.Now()
	log := logging.FromContext(ctx, p.logger)

	for _, st := range p.stages {
		if err := ctx.Err(); err != nil {
			return core.State{}, p.fail(ctx, log, st.Name(), state, err, start)
		}

		if err := p.callbacks.ExecuteCallbacks(ctx, CallbackBeforeStage, p.callbackCtx(st.Name(), state)); err != nil {
			return core.State{}, p.fail(ctx, log, st.Name(), state, err, start)
		}

		stageStart := time.Now()
		patch, err := st.Run(ctx, state)
		p.logStage(log, st.Name(), time.Since(stageStart), err)
		if err != nil {
			return core.State{}, p.fail(ctx, log, st.Name(), state, err, start)
		}

		cbCtx := p.callbackCtx(st.Name(), state)
		observed := patch.Clone()
		cbCtx.Patch = &observed
		if err := p.callbacks.ExecuteCallbacks(ctx, CallbackAfterStage, cbCtx); err != nil {
			return core.State{}, p.fail(ctx, log, st.Name(), state, err, start)
		}

		state.Merge(patch)
	}

	p.logRun(log, time.Since(start), nil)
	return state, nil
}

// InvokeMap is the loosely typed entry point used by transports. The mapping
// must carry bucket, input_key and output_key.
func (p *Pipeline) InvokeMap(ctx context.Context, fields map[string]any) (map[string]any, error) {
	initial, err := core.StateFromMap(fields)
	if err != nil {
		return nil, err
	}
	if _, err := core.Require(p.name, initial, core.KeyBucket, core.KeyInputKey, core.KeyOutputKey); err != nil {
		return nil, err
	}
	final, err := p.Invoke(ctx, initial)
	if err != nil {
		return nil, err
	}
	return final.ToMap(), nil
}

func (p *Pipeline) fail(ctx context.Context, log logging.Logger, stage string, state core.State, err error, start time.Time) error {
	stageErr := &StageError{Pipeline: p.name, Stage: stage, Err: err}
	p.logRun(log, time.Since(start), stageErr)

	cbCtx := p.callbackCtx(stage, state)
	cbCtx.Err = stageErr
	if cbErr := p.callbacks.ExecuteCallbacks(context.WithoutCancel(ctx), CallbackOnError, cbCtx); cbErr != nil {
		log.Warn("Error callback failed", "pipeline", p.name, "stage", stage, "error", cbErr)
	}

	return stageErr
}

func (p *Pipeline) callbackCtx(stage string, state core.State) *CallbackContext {
	return &CallbackContext{Pipeline: p.name, Stage: stage, State: state.Clone()}
}

func (p *Pipeline) logStage(log logging.Logger, stage string, dur time.Duration, err error) {
	if rec, ok := log.(logging.RunRecorder); ok {
		rec.LogStage(stage, dur, err)
		return
	}
	if err != nil {
		log.Error("Stage failed", "pipeline", p.name, "stage", stage, "duration", dur, "error", err)
		return
	}
	log.Debug("Stage completed", "pipeline", p.name, "stage", stage, "duration", dur)
}

func (p *Pipeline) logRun(log logging.Logger, dur time.Duration, err error) {
	if rec, ok := log.(logging.RunRecorder); ok {
		rec.LogPipelineRun(p.name, len(p.stages), dur, err)
		return
	}
	if err != nil {
		log.Error("Pipeline run failed", "pipeline", p.name, "duration", dur, "error", err)
		return
	}
	log.Info("Pipeline run completed", "pipeline", p.name, "stage_count", len(p.stages), "duration", dur)
}
