package stage

import (
	"context"

	"github.com/hupe1980/s3agent/core"
	"github.com/hupe1980/s3agent/objectstore"
)

// WriteStageName is the node name of the sink writer.
const WriteStageName = "write_to_s3"

var _ core.Stage = (*SinkWriter)(nil)

// SinkWriter stores processed_text at (bucket, output_key).
type SinkWriter struct {
	store objectstore.Store
}

// NewSinkWriter returns a writer backed by store.
func NewSinkWriter(store objectstore.Store) *SinkWriter {
	return &SinkWriter{store: store}
}

// Name implements core.Stage.
func (w *SinkWriter) Name() string { return WriteStageName }

// Run implements core.Stage. The SUCCESS status is only returned after the
// store accepted the object.
func (w *SinkWriter) Run(ctx context.Context, state core.State) (core.Patch, error) {
	vals, err := core.Require(WriteStageName, state, core.KeyBucket, core.KeyOutputKey, core.KeyProcessedText)
	if err != nil {
		return core.Patch{}, err
	}

	if err := w.store.Put(ctx, vals[0], vals[1], []byte(vals[2])); err != nil {
		return core.Patch{}, err
	}

	return core.Patch{Status: core.StatusPtr(core.StatusSuccess)}, nil
}
