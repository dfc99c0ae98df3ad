package stage

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/hupe1980/s3agent/core"
	"github.com/hupe1980/s3agent/internal/util"
	"github.com/hupe1980/s3agent/logging"
	"github.com/hupe1980/s3agent/model"
)

// TransformStageName is the node name of the transformer.
const TransformStageName = "call_llm"

const (
	// DefaultModel is the OpenRouter model identifier sent with every request.
	DefaultModel = "tngtech/deepseek-r1t2-chimera:free"

	// DefaultMaxOutputTokens bounds the completion length.
	DefaultMaxOutputTokens = 300

	// DefaultPrompt embeds the input text verbatim under a summarize
	// instruction. The text is available as {{.text}}.
	DefaultPrompt = "\nYou are a professional system.\nProcess the following text and summarize it clearly.\n\nTEXT:\n{{.text}}\n"
)

// DefaultHeaders identify the caller to OpenRouter.
func DefaultHeaders() map[string]string {
	return map[string]string{
		"HTTP-Referer": "https://github.com/langgraph-agent",
		"X-Title":      "LangGraph S3 Processor",
	}
}

// TransformerOptions configures a Transformer.
type TransformerOptions struct {
	Model           string
	MaxOutputTokens int64
	Headers         map[string]string
	// Prompt is a text/template; the input is bound to .text and the object
	// location to .bucket and .input_key.
	Prompt string
	Logger logging.Logger
}

var _ core.Stage = (*Transformer)(nil)

// Transformer sends text to a completion model and merges the first choice
// as processed_text.
type Transformer struct {
	model  model.Model
	prompt *util.Template
	opts   TransformerOptions
}

// NewTransformer returns a transformer driving m. It fails only when the
// prompt template does not parse.
func NewTransformer(m model.Model, optFns ...func(o *TransformerOptions)) (*Transformer, error) {
	opts := TransformerOptions{
		Model:           DefaultModel,
		MaxOutputTokens: DefaultMaxOutputTokens,
		Headers:         DefaultHeaders(),
		Prompt:          DefaultPrompt,
		Logger:          logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	opts.Headers = maps.Clone(opts.Headers)

	tmpl, err := util.ParseTemplate(TransformStageName, opts.Prompt)
	if err != nil {
		return nil, fmt.Errorf("parse prompt template: %w", err)
	}

	return &Transformer{model: m, prompt: tmpl, opts: opts}, nil
}

// Name implements core.Stage.
func (t *Transformer) Name() string { return TransformStageName }

// Run implements core.Stage. Model errors are returned unchanged.
func (t *Transformer) Run(ctx context.Context, state core.State) (core.Patch, error) {
	vals, err := core.Require(TransformStageName, state, core.KeyText)
	if err != nil {
		return core.Patch{}, err
	}

	prompt, err := t.prompt.Render(map[string]any{
		core.KeyText:     vals[0],
		core.KeyBucket:   state.Bucket,
		core.KeyInputKey: state.InputKey,
	})
	if err != nil {
		return core.Patch{}, fmt.Errorf("render prompt: %w", err)
	}

	start := time.Now()
	resp, err := t.model.Complete(ctx, model.Request{
		Prompt:          prompt,
		Model:           t.opts.Model,
		MaxOutputTokens: t.opts.MaxOutputTokens,
		Headers:         t.opts.Headers,
	})
	tokens := 0
	if resp != nil && resp.Usage != nil {
		tokens = resp.Usage.TotalTokens
	}
	t.logCall(logging.FromContext(ctx, t.opts.Logger), tokens, time.Since(start), err)
	if err != nil {
		return core.Patch{}, err
	}
	if resp == nil {
		return core.Patch{}, model.ErrNoChoices
	}

	return core.Patch{ProcessedText: core.String(resp.Text)}, nil
}

func (t *Transformer) logCall(log logging.Logger, tokens int, dur time.Duration, err error) {
	if rec, ok := log.(logging.LLMCallRecorder); ok {
		rec.LogLLMCall(t.opts.Model, tokens, dur, err)
		return
	}
	if err != nil {
		log.Error("Completion failed", "model", t.opts.Model, "duration", dur, "error", err)
		return
	}
	log.Debug("Completion received", "model", t.opts.Model, "tokens", tokens, "duration", dur)
}
