package anthropic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/s3agent/model"
)

const messageBody = `{
  "id": "msg_1",
  "type": "message",
  "role": "assistant",
  "model": "claude-3-5-sonnet-20241022",
  "content": [{"type": "text", "text": "HELLO SUMMARY"}],
  "stop_reason": "end_turn",
  "stop_sequence": null,
  "usage": {"input_tokens": 10, "output_tokens": 4}
}`

func TestModel_Complete(t *testing.T) {
	var body map[string]any
	var header http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/messages"), r.URL.Path)
		header = r.Header.Clone()
		raw, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(raw, &body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(messageBody))
	}))
	defer srv.Close()

	m := NewModel(ClientOptions{APIKey: "test-key", BaseURL: srv.URL})
	resp, err := m.Complete(context.Background(), model.Request{
		Prompt:          "summarize: hello",
		MaxOutputTokens: 128,
		Headers:         map[string]string{"X-Title": "LangGraph S3 Processor"},
	})
	require.NoError(t, err)

	assert.Equal(t, "HELLO SUMMARY", resp.Text)
	assert.Equal(t, "end_turn", resp.FinishReason)
	assert.Equal(t, 14, resp.Usage.TotalTokens)

	assert.Equal(t, "test-key", header.Get("X-Api-Key"))
	assert.Equal(t, "LangGraph S3 Processor", header.Get("X-Title"))
	assert.EqualValues(t, 128, body["max_tokens"])
	assert.Equal(t, "claude-3-5-sonnet-20241022", body["model"])
}

func TestModel_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	}))
	defer srv.Close()

	m := NewModel(ClientOptions{APIKey: "bad", BaseURL: srv.URL})
	_, err := m.Complete(context.Background(), model.Request{Prompt: "p"})
	assert.ErrorIs(t, err, model.ErrAuth)
}

func TestModel_Info(t *testing.T) {
	m := NewModel(ClientOptions{APIKey: "k"})
	assert.Equal(t, "anthropic", m.Info().Provider)
}
