package core

import "fmt"

// Status marks the outcome recorded by the terminal stage.
type Status string

// StatusSuccess is the only status a pipeline ever writes.
const StatusSuccess Status = "SUCCESS"

// Well-known state keys. They double as the JSON field names used at the
// invocation boundary.
const (
	KeyBucket        = "bucket"
	KeyInputKey      = "input_key"
	KeyOutputKey     = "output_key"
	KeyText          = "text"
	KeyProcessedText = "processed_text"
	KeyStatus        = "status"
)

// State is the record threaded through a pipeline run. Caller supplied
// locations are plain strings; fields produced by stages are pointers so an
// unset field can be told apart from an empty one.
//
// Contract:
//   - Merge only adds or overwrites fields, it never clears one
//   - A State belongs to a single invocation and is not safe for concurrent mutation
type State struct {
	Bucket        string  `json:"bucket,omitempty"`
	InputKey      string  `json:"input_key,omitempty"`
	OutputKey     string  `json:"output_key,omitempty"`
	Text          *string `json:"text,omitempty"`
	ProcessedText *string `json:"processed_text,omitempty"`
	Status        *Status `json:"status,omitempty"`
}

// Patch is the partial result returned by a stage. Nil fields are left
// untouched when merged.
type Patch struct {
	Bucket        *string
	InputKey      *string
	OutputKey     *string
	Text          *string
	ProcessedText *string
	Status        *Status
}

// String returns a pointer to s. Handy for building patches.
func String(s string) *string { return &s }

// StatusPtr returns a pointer to st.
func StatusPtr(st Status) *Status { return &st }

// Get returns the value stored under key and whether it is present. Empty
// strings count as absent for the caller supplied location fields.
func (s State) Get(key string) (string, bool) {
	switch key {
	case KeyBucket:
		return s.Bucket, s.Bucket != ""
	case KeyInputKey:
		return s.InputKey, s.InputKey != ""
	case KeyOutputKey:
		return s.OutputKey, s.OutputKey != ""
	case KeyText:
		return deref(s.Text)
	case KeyProcessedText:
		return deref(s.ProcessedText)
	case KeyStatus:
		if s.Status == nil {
			return "", false
		}
		return string(*s.Status), true
	default:
		return "", false
	}
}

// Merge applies every set field of p onto the state. An empty location never
// replaces a present one, so a merge cannot make a field absent.
func (s *State) Merge(p Patch) {
	if p.Bucket != nil && *p.Bucket != "" {
		s.Bucket = *p.Bucket
	}
	if p.InputKey != nil && *p.InputKey != "" {
		s.InputKey = *p.InputKey
	}
	if p.OutputKey != nil && *p.OutputKey != "" {
		s.OutputKey = *p.OutputKey
	}
	if p.Text != nil {
		s.Text = String(*p.Text)
	}
	if p.ProcessedText != nil {
		s.ProcessedText = String(*p.ProcessedText)
	}
	if p.Status != nil {
		s.Status = StatusPtr(*p.Status)
	}
}

// Clone returns a deep copy so the caller's state is never aliased by a run.
func (s State) Clone() State {
	out := State{Bucket: s.Bucket, InputKey: s.InputKey, OutputKey: s.OutputKey}
	if s.Text != nil {
		out.Text = String(*s.Text)
	}
	if s.ProcessedText != nil {
		out.ProcessedText = String(*s.ProcessedText)
	}
	if s.Status != nil {
		out.Status = StatusPtr(*s.Status)
	}
	return out
}

// Clone returns a deep copy of the patch.
func (p Patch) Clone() Patch {
	var out Patch
	for _, f := range []struct{ dst, src **string }{
		{&out.Bucket, &p.Bucket},
		{&out.InputKey, &p.InputKey},
		{&out.OutputKey, &p.OutputKey},
		{&out.Text, &p.Text},
		{&out.ProcessedText, &p.ProcessedText},
	} {
		if *f.src != nil {
			*f.dst = String(**f.src)
		}
	}
	if p.Status != nil {
		out.Status = StatusPtr(*p.Status)
	}
	return out
}

// ToMap flattens the state into the open mapping used at the invocation
// boundary. Absent fields are omitted.
func (s State) ToMap() map[string]any {
	m := make(map[string]any, 6)
	for _, k := range []string{KeyBucket, KeyInputKey, KeyOutputKey, KeyText, KeyProcessedText, KeyStatus} {
		if v, ok := s.Get(k); ok {
			m[k] = v
		}
	}
	return m
}

// StateFromMap builds a State from a loosely typed mapping. Unknown keys are
// ignored; known keys must hold strings.
func StateFromMap(m map[string]any) (State, error) {
	var s State
	str := func(key string) (*string, error) {
		raw, ok := m[key]
		if !ok || raw == nil {
			return nil, nil
		}
		v, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("field %q: expected string, got %T", key, raw)
		}
		return &v, nil
	}

	var p Patch
	var err error
	if p.Bucket, err = str(KeyBucket); err != nil {
		return State{}, err
	}
	if p.InputKey, err = str(KeyInputKey); err != nil {
		return State{}, err
	}
	if p.OutputKey, err = str(KeyOutputKey); err != nil {
		return State{}, err
	}
	if p.Text, err = str(KeyText); err != nil {
		return State{}, err
	}
	if p.ProcessedText, err = str(KeyProcessedText); err != nil {
		return State{}, err
	}
	st, err := str(KeyStatus)
	if err != nil {
		return State{}, err
	}
	if st != nil {
		p.Status = StatusPtr(Status(*st))
	}
	s.Merge(p)
	return s, nil
}

func deref(p *string) (string, bool) {
	if p == nil {
		return "", false
	}
	return *p, true
}
