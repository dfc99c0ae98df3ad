package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTemplate(t *testing.T) {
	out, err := RenderTemplate("TEXT: {{.text}}", map[string]any{"text": "a < b & c"})
	require.NoError(t, err)
	assert.Equal(t, "TEXT: a < b & c", out)
}

func TestRenderTemplate_NoMarkers(t *testing.T) {
	out, err := RenderTemplate("plain", nil)
	require.NoError(t, err)
	assert.Equal(t, "plain", out)
}

func TestRenderTemplate_Funcs(t *testing.T) {
	out, err := RenderTemplate(`{{upper .a}}-{{default "none" .empty}}-{{trim .b}}`, map[string]any{
		"a":     "x",
		"b":     "  y  ",
		"empty": "",
	})
	require.NoError(t, err)
	assert.Equal(t, "X-none-y", out)
}

func TestParseTemplate_Invalid(t *testing.T) {
	_, err := ParseTemplate("p", "{{.text")
	assert.Error(t, err)
}
