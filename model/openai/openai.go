// Package openai provides an implementation of model.Model using the OpenAI
// Chat Completions API. Any OpenAI compatible endpoint works, OpenRouter
// included, by pointing BaseURL at it.
package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/hupe1980/s3agent/model"
)

// OpenRouterBaseURL is the OpenAI compatible endpoint of OpenRouter.
const OpenRouterBaseURL = "https://openrouter.ai/api/v1"

// Options configure the OpenAI model adapter.
// Fields mirror a subset of Chat Completion parameters intentionally kept
// minimal; extend via functional options without breaking callers.
type Options struct {
	Model           string
	MaxOutputTokens int64
	Temperature     *float64
	// Headers are sent with every request, in addition to per request headers.
	Headers map[string]string
}

// Model wraps the OpenAI Chat Completions API behind the generic model.Model interface.
type Model struct {
	client *openai.Client
	opts   Options
}

// ClientOptions configure the underlying SDK client built by NewModel.
type ClientOptions struct {
	APIKey     string
	BaseURL    string
	MaxRetries int
}

// NewModel creates a new model with a freshly built client. An empty APIKey
// falls back to the OPENAI_API_KEY environment variable read by the SDK.
func NewModel(co ClientOptions, optFns ...func(o *Options)) *Model {
	var reqOpts []option.RequestOption
	if co.APIKey != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(co.APIKey))
	}
	if co.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(co.BaseURL))
	}
	reqOpts = append(reqOpts, option.WithMaxRetries(co.MaxRetries))

	client := openai.NewClient(reqOpts...)
	return NewModelFromClient(&client, optFns...)
}

// NewModelFromClient creates a new OpenAI model from an existing client
func NewModelFromClient(client *openai.Client, optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:           openai.ChatModelGPT4oMini,
		MaxOutputTokens: 300,
		Headers:         map[string]string{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

// Complete sends the prompt as a single user message and returns the first choice.
func (m *Model) Complete(ctx context.Context, req model.Request) (*model.Response, error) {
	params := m.buildParams(req)

	var reqOpts []option.RequestOption
	for k, v := range m.opts.Headers {
		reqOpts = append(reqOpts, option.WithHeader(k, v))
	}
	for k, v := range req.Headers {
		reqOpts = append(reqOpts, option.WithHeader(k, v))
	}

	resp, err := m.client.Chat.Completions.New(ctx, params, reqOpts...)
	if err != nil {
		return nil, fmt.Errorf("openai api error: %w", classify(err))
	}
	if len(resp.Choices) == 0 {
		return nil, model.ErrNoChoices
	}

	ch0 := resp.Choices[0]
	return &model.Response{
		ID:           resp.ID,
		Text:         ch0.Message.Content,
		FinishReason: ch0.FinishReason,
		Usage: &model.TokenUsage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}, nil
}

// buildParams assembles the OpenAI request parameters.
func (m *Model) buildParams(req model.Request) openai.ChatCompletionNewParams {
	name := m.opts.Model
	if req.Model != "" {
		name = req.Model
	}
	maxTokens := m.opts.MaxOutputTokens
	if req.MaxOutputTokens > 0 {
		maxTokens = req.MaxOutputTokens
	}

	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.Prompt),
		},
		Model: name,
	}
	if maxTokens > 0 {
		params.MaxTokens = openai.Int(maxTokens)
	}
	if m.opts.Temperature != nil {
		params.Temperature = openai.Float(*m.opts.Temperature)
	}
	return params
}

// classify maps SDK API errors onto the model error classes.
func classify(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return model.ClassifyStatus(apiErr.StatusCode, err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return errors.Join(model.ErrTransport, err)
}

// Info returns metadata describing this OpenAI model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:     m.opts.Model,
		Provider: "openai",
	}
}

var _ model.Model = (*Model)(nil)
