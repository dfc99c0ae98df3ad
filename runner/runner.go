package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/hupe1980/s3agent/core"
	"github.com/hupe1980/s3agent/logging"
)

// ErrRunNotFound is returned by Cancel for unknown or finished invocations.
var ErrRunNotFound = errors.New("run not found")

// Invoker is the part of a pipeline the runner drives.
type Invoker interface {
	Name() string
	Invoke(ctx context.Context, initial core.State) (core.State, error)
}

// Options holds configuration overrides passed to New().
type Options struct {
	// MaxConcurrentInvocations limits concurrent pipeline invocations across
	// every caller of the runner. Zero or less means unlimited.
	MaxConcurrentInvocations int
	// InvocationTimeout bounds a single invocation. Zero means no timeout.
	InvocationTimeout time.Duration
	// Logging services.
	Logger logging.Logger
}

// Result describes one finished invocation. State is the zero value when
// Err is set.
type Result struct {
	InvocationID string
	State        core.State
	Err          error
	Duration     time.Duration
}

// Runner coordinates pipeline invocations: assigns invocation IDs, applies
// the concurrency limit, tracks active runs for cancellation and logs every
// outcome. Public methods are safe for concurrent use.
type Runner struct {
	pipeline Invoker

	maxConcurrentInvocations int
	invocationTimeout        time.Duration
	sem                      *semaphore.Weighted
	logger                   logging.Logger

	activeRuns map[string]context.CancelFunc
	mu         sync.RWMutex
}

// New constructs a Runner with optional overrides.
func New(pipeline Invoker, optFns ...func(o *Options)) *Runner {
	opts := Options{
		MaxConcurrentInvocations: 10,
		Logger:                   logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	r := &Runner{
		pipeline:                 pipeline,
		maxConcurrentInvocations: opts.MaxConcurrentInvocations,
		invocationTimeout:        opts.InvocationTimeout,
		logger:                   opts.Logger,
		activeRuns:               make(map[string]context.CancelFunc),
	}
	if opts.MaxConcurrentInvocations > 0 {
		r.sem = semaphore.NewWeighted(int64(opts.MaxConcurrentInvocations))
	}
	return r
}

// Invoke runs the pipeline once and blocks until it finishes. It waits for
// a free slot when the concurrency limit is reached. The returned error is
// the pipeline error, also recorded in Result.Err.
func (r *Runner) Invoke(ctx context.Context, initial core.State) (Result, error) {
	res := r.invoke(ctx, uuid.NewString(), initial)
	return res, res.Err
}

// InvokeBatch runs every job and returns one Result per job, in input order.
// Jobs are independent: a failure never stops or cancels the others.
func (r *Runner) InvokeBatch(ctx context.Context, jobs []core.State) []Result {
	results := make([]Result, len(jobs))

	var g errgroup.Group
	if r.maxConcurrentInvocations > 0 {
		g.SetLimit(r.maxConcurrentInvocations)
	}

	for i, job := range jobs {
		g.Go(func() error {
			results[i] = r.invoke(ctx, uuid.NewString(), job)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	r.logger.Info("Batch completed", "pipeline", r.pipeline.Name(), "jobs", len(jobs), "failed", failed)

	return results
}

// Cancel cancels an active invocation by ID.
func (r *Runner) Cancel(invocationID string) error {
	r.mu.RLock()
	cancel, exists := r.activeRuns[invocationID]
	r.mu.RUnlock()

	if !exists {
		return fmt.Errorf("%w: %s", ErrRunNotFound, invocationID)
	}

	cancel()

	return nil
}

// Active returns the number of invocations currently running.
func (r *Runner) Active() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.activeRuns)
}

func (r *Runner) invoke(ctx context.Context, id string, initial core.State) Result {
	res := Result{InvocationID: id}
	ctx = logging.ContextWithInvocation(ctx, id)
	log := logging.FromContext(ctx, r.logger)

	if r.sem != nil {
		if err := r.sem.Acquire(ctx, 1); err != nil {
			res.Err = fmt.Errorf("waiting for invocation slot: %w", err)
			log.Warn("Invocation not started", "error", err)
			return res
		}
		defer r.sem.Release(1)
	}

	var cancel context.CancelFunc
	if r.invocationTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, r.invocationTimeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	r.mu.Lock()
	r.activeRuns[id] = cancel
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		delete(r.activeRuns, id)
		r.mu.Unlock()
	}()

	log.Debug("Invocation started", "pipeline", r.pipeline.Name(),
		"bucket", initial.Bucket, "input_key", initial.InputKey, "output_key", initial.OutputKey)

	start := time.Now()
	res.State, res.Err = r.pipeline.Invoke(ctx, initial)
	res.Duration = time.Since(start)

	if res.Err != nil {
		log.Error("Invocation failed", "pipeline", r.pipeline.Name(), "duration", res.Duration, "error", res.Err)
	} else {
		log.Info("Invocation completed", "pipeline", r.pipeline.Name(), "duration", res.Duration)
	}

	return res
}
