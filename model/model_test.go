package model

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Model = (*MockModel)(nil)

func TestMockModel_Complete(t *testing.T) {
	m := NewMockModel("mock", "mock")
	m.AddResponse("hello", "HELLO SUMMARY")

	resp, err := m.Complete(context.Background(), Request{Prompt: "hello", MaxOutputTokens: 10})
	require.NoError(t, err)
	assert.Equal(t, "HELLO SUMMARY", resp.Text)

	resp, err = m.Complete(context.Background(), Request{Prompt: "other"})
	require.NoError(t, err)
	assert.Equal(t, "Mock response to: other", resp.Text)

	calls := m.Calls()
	require.Len(t, calls, 2)
	assert.EqualValues(t, 10, calls[0].MaxOutputTokens)
}

func TestMockModel_Errors(t *testing.T) {
	m := NewMockModel("mock", "mock")

	_, err := m.Complete(context.Background(), Request{})
	assert.Error(t, err)

	m.SetError(ErrRateLimited)
	_, err = m.Complete(context.Background(), Request{Prompt: "x"})
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestClassifyStatus(t *testing.T) {
	cause := errors.New("cause")
	assert.ErrorIs(t, ClassifyStatus(401, cause), ErrAuth)
	assert.ErrorIs(t, ClassifyStatus(403, cause), ErrAuth)
	assert.ErrorIs(t, ClassifyStatus(429, cause), ErrRateLimited)
	assert.ErrorIs(t, ClassifyStatus(500, cause), ErrTransport)
	assert.ErrorIs(t, ClassifyStatus(500, cause), cause)
}
