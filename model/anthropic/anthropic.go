// Package anthropic provides a model wrapper for the Anthropic Messages API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/hupe1980/s3agent/model"
)

// Options configures the Anthropic model adapter (model id, max tokens,
// temperature, default headers). Extend via functional options to preserve stability.
type Options struct {
	Model           anthropic.Model
	MaxOutputTokens int64
	Temperature     *float64
	Headers         map[string]string
}

// ClientOptions configure the underlying SDK client built by NewModel.
type ClientOptions struct {
	APIKey     string
	BaseURL    string
	MaxRetries int
}

// Model wraps the Anthropic Messages API behind the generic model.Model interface.
type Model struct {
	client *anthropic.Client
	opts   Options
}

// NewModel creates a new Anthropic model using the official client. An empty
// APIKey falls back to the ANTHROPIC_API_KEY environment variable.
func NewModel(co ClientOptions, optFns ...func(o *Options)) *Model {
	var clientOpts []option.RequestOption
	if co.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(co.APIKey))
	}
	if co.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(co.BaseURL))
	}
	clientOpts = append(clientOpts, option.WithMaxRetries(co.MaxRetries))

	client := anthropic.NewClient(clientOpts...)

	return NewModelFromClient(&client, optFns...)
}

// NewModelFromClient creates a new Anthropic model from an existing client
func NewModelFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:           anthropic.ModelClaude3_5Sonnet20241022,
		MaxOutputTokens: 300,
		Headers:         map[string]string{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Model{
		client: client,
		opts:   opts,
	}
}

// Complete sends the prompt as a single user message and returns the text of
// the first text block.
func (m *Model) Complete(ctx context.Context, req model.Request) (*model.Response, error) {
	name := m.opts.Model
	if req.Model != "" {
		name = anthropic.Model(req.Model)
	}
	maxTokens := m.opts.MaxOutputTokens
	if req.MaxOutputTokens > 0 {
		maxTokens = req.MaxOutputTokens
	}

	params := anthropic.MessageNewParams{
		Model:     name,
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if m.opts.Temperature != nil {
		params.Temperature = anthropic.Float(*m.opts.Temperature)
	}

	var reqOpts []option.RequestOption
	for k, v := range m.opts.Headers {
		reqOpts = append(reqOpts, option.WithHeader(k, v))
	}
	for k, v := range req.Headers {
		reqOpts = append(reqOpts, option.WithHeader(k, v))
	}

	resp, err := m.client.Messages.New(ctx, params, reqOpts...)
	if err != nil {
		return nil, fmt.Errorf("anthropic api error: %w", classify(err))
	}

	var text strings.Builder
	found := false
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.AsText().Text)
			found = true
			break
		}
	}
	if !found {
		return nil, model.ErrNoChoices
	}

	finishReason := "stop"
	if resp.StopReason != "" {
		finishReason = string(resp.StopReason)
	}

	in, out := int(resp.Usage.InputTokens), int(resp.Usage.OutputTokens)
	return &model.Response{
		ID:           resp.ID,
		Text:         text.String(),
		FinishReason: finishReason,
		Usage:        &model.TokenUsage{PromptTokens: in, CompletionTokens: out, TotalTokens: in + out},
	}, nil
}

func classify(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return model.ClassifyStatus(apiErr.StatusCode, err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return errors.Join(model.ErrTransport, err)
}

// Info returns metadata describing this Anthropic model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:     string(m.opts.Model),
		Provider: "anthropic",
	}
}

var _ model.Model = (*Model)(nil)
