package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_Get(t *testing.T) {
	s := State{Bucket: "b1", InputKey: "in.txt"}

	v, ok := s.Get(KeyBucket)
	assert.True(t, ok)
	assert.Equal(t, "b1", v)

	_, ok = s.Get(KeyOutputKey)
	assert.False(t, ok)

	_, ok = s.Get(KeyText)
	assert.False(t, ok)

	_, ok = s.Get("unknown")
	assert.False(t, ok)

	s.Text = String("")
	v, ok = s.Get(KeyText)
	assert.True(t, ok, "empty text produced by a stage is still present")
	assert.Equal(t, "", v)
}

func TestState_MergeIsAppendOnly(t *testing.T) {
	s := State{Bucket: "b1", InputKey: "in.txt", OutputKey: "out.txt"}

	s.Merge(Patch{Text: String("hello")})

	assert.Equal(t, "b1", s.Bucket)
	assert.Equal(t, "in.txt", s.InputKey)
	assert.Equal(t, "out.txt", s.OutputKey)
	require.NotNil(t, s.Text)
	assert.Equal(t, "hello", *s.Text)

	// an empty patch and an empty location never clear anything
	s.Merge(Patch{})
	s.Merge(Patch{Bucket: String("")})
	assert.Equal(t, "b1", s.Bucket)
	assert.Equal(t, "hello", *s.Text)

	s.Merge(Patch{Text: String("again")})
	assert.Equal(t, "again", *s.Text)
}

func TestState_MergeDoesNotAliasPatch(t *testing.T) {
	txt := "hello"
	var s State
	s.Merge(Patch{Text: &txt})
	txt = "mutated"
	assert.Equal(t, "hello", *s.Text)
}

func TestPatch_Clone(t *testing.T) {
	p := Patch{Bucket: String("b1"), Text: String("x"), Status: StatusPtr(StatusSuccess)}
	c := p.Clone()
	*c.Text = "y"
	*c.Bucket = "b2"
	*c.Status = Status("FAILED")

	assert.Equal(t, "x", *p.Text)
	assert.Equal(t, "b1", *p.Bucket)
	assert.Equal(t, StatusSuccess, *p.Status)
	assert.Nil(t, c.ProcessedText)
	assert.Nil(t, c.InputKey)
}

func TestState_Clone(t *testing.T) {
	s := State{Bucket: "b1", Text: String("x"), Status: StatusPtr(StatusSuccess)}
	c := s.Clone()
	*c.Text = "y"
	assert.Equal(t, "x", *s.Text)
	assert.Equal(t, StatusSuccess, *c.Status)
}

func TestState_MapRoundTrip(t *testing.T) {
	s, err := StateFromMap(map[string]any{
		"bucket":     "b1",
		"input_key":  "in.txt",
		"output_key": "out.txt",
		"extra":      42,
	})
	require.NoError(t, err)
	assert.Equal(t, State{Bucket: "b1", InputKey: "in.txt", OutputKey: "out.txt"}, s)

	s.Merge(Patch{Text: String("hello"), ProcessedText: String("HELLO SUMMARY"), Status: StatusPtr(StatusSuccess)})
	assert.Equal(t, map[string]any{
		"bucket":         "b1",
		"input_key":      "in.txt",
		"output_key":     "out.txt",
		"text":           "hello",
		"processed_text": "HELLO SUMMARY",
		"status":         "SUCCESS",
	}, s.ToMap())
}

func TestStateFromMap_RejectsNonString(t *testing.T) {
	_, err := StateFromMap(map[string]any{"bucket": 1})
	assert.Error(t, err)
}

func TestRequire(t *testing.T) {
	s := State{Bucket: "b1"}

	_, err := Require("read_from_s3", s, KeyBucket, KeyInputKey)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingField)

	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "read_from_s3", fe.Stage)
	assert.Equal(t, KeyInputKey, fe.Field)

	s.InputKey = "in.txt"
	vals, err := Require("read_from_s3", s, KeyBucket, KeyInputKey)
	require.NoError(t, err)
	assert.Equal(t, []string{"b1", "in.txt"}, vals)
}

func TestStageFunc(t *testing.T) {
	st := StageFunc("noop", func(_ context.Context, s State) (Patch, error) {
		return Patch{Text: String(s.Bucket)}, nil
	})
	assert.Equal(t, "noop", st.Name())

	p, err := st.Run(context.Background(), State{Bucket: "b"})
	require.NoError(t, err)
	assert.Equal(t, "b", *p.Text)
}
