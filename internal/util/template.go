package util

import (
	"bytes"
	"strings"
	"text/template"
)

var funcs = template.FuncMap{
	"default": func(defaultVal any, val any) any {
		if val == nil || val == "" {
			return defaultVal
		}
		return val
	},
	"upper": strings.ToUpper,
	"lower": strings.ToLower,
	"trim":  strings.TrimSpace,
}

// Template is a parsed prompt template.
type Template struct {
	raw  string
	tmpl *template.Template
}

// ParseTemplate parses text once so that malformed templates fail at
// construction rather than on every call. Text without template markers is
// returned verbatim by Render.
func ParseTemplate(name, text string) (*Template, error) {
	t := &Template{raw: text}
	if !strings.Contains(text, "{{") { // fast path: no template markers
		return t, nil
	}

	tmpl, err := template.New(name).Funcs(funcs).Option("missingkey=zero").Parse(text)
	if err != nil {
		return nil, err
	}
	t.tmpl = tmpl
	return t, nil
}

// Render executes the template against data. Values are inserted verbatim;
// no HTML escaping takes place.
func (t *Template) Render(data map[string]any) (string, error) {
	if t.tmpl == nil {
		return t.raw, nil
	}

	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderTemplate parses and renders text in one step.
func RenderTemplate(text string, data map[string]any) (string, error) {
	t, err := ParseTemplate("prompt", text)
	if err != nil {
		return "", err
	}
	return t.Render(data)
}
