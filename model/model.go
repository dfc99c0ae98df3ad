package model

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrAuth is joined with provider errors caused by missing or rejected credentials.
	ErrAuth = errors.New("model: authentication failed")
	// ErrRateLimited is joined with provider errors caused by quota or rate limits.
	ErrRateLimited = errors.New("model: rate limited")
	// ErrTransport is joined with every other provider or network failure.
	ErrTransport = errors.New("model: transport failure")
	// ErrNoChoices is returned when the provider answered without any completion.
	ErrNoChoices = errors.New("model: no choices returned")
)

// Request captures a single prompt completion call.
type Request struct {
	Prompt          string            `json:"prompt"`
	Model           string            `json:"model,omitempty"` // overrides the adapter default when set
	MaxOutputTokens int64             `json:"max_output_tokens,omitempty"`
	Headers         map[string]string `json:"headers,omitempty"` // extra request identification headers
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the first completion choice returned by a provider.
type Response struct {
	ID           string      `json:"id"`
	Text         string      `json:"text"`
	FinishReason string      `json:"finish_reason"` // "stop", "length", etc.
	Usage        *TokenUsage `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock", etc.
}

// Model is the minimal interface stages need to drive generation.
// Implementations must be safe for concurrent use.
type Model interface {
	Complete(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// ClassifyStatus joins the matching sentinel with err based on an HTTP status
// code reported by a provider SDK.
func ClassifyStatus(status int, err error) error {
	switch {
	case status == 401 || status == 403:
		return errors.Join(ErrAuth, err)
	case status == 429:
		return errors.Join(ErrRateLimited, err)
	default:
		return errors.Join(ErrTransport, err)
	}
}

// MockModel is a lightweight in‑memory Model useful for tests & examples.
// It records every request it receives.
type MockModel struct {
	info      Info
	responses map[string]string
	err       error

	mu    sync.Mutex
	calls []Request
}

// NewMockModel constructs a MockModel.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info:      Info{Name: name, Provider: provider},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for a prompt.
func (m *MockModel) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// SetError makes every subsequent Complete call fail with err.
func (m *MockModel) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Complete implements Model. Unknown prompts are echoed back.
func (m *MockModel) Complete(ctx context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	failWith := m.err
	text, ok := m.responses[req.Prompt]
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if failWith != nil {
		return nil, failWith
	}
	if req.Prompt == "" {
		return nil, fmt.Errorf("no prompt provided")
	}
	if !ok {
		text = fmt.Sprintf("Mock response to: %s", req.Prompt)
	}
	return &Response{Text: text, FinishReason: "stop"}, nil
}

// Calls returns a snapshot of the requests received so far.
func (m *MockModel) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.calls))
	copy(out, m.calls)
	return out
}

// Info implements Model interface.
func (m *MockModel) Info() Info { return m.info }
