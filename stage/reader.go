package stage

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/hupe1980/s3agent/core"
	"github.com/hupe1980/s3agent/objectstore"
)

// ReadStageName is the node name of the source reader.
const ReadStageName = "read_from_s3"

var _ core.Stage = (*SourceReader)(nil)

// SourceReader fetches the object at (bucket, input_key) and merges it as text.
type SourceReader struct {
	store objectstore.Store
}

// NewSourceReader returns a reader backed by store.
func NewSourceReader(store objectstore.Store) *SourceReader {
	return &SourceReader{store: store}
}

// Name implements core.Stage.
func (r *SourceReader) Name() string { return ReadStageName }

// Run implements core.Stage. Store errors are returned unchanged.
func (r *SourceReader) Run(ctx context.Context, state core.State) (core.Patch, error) {
	vals, err := core.Require(ReadStageName, state, core.KeyBucket, core.KeyInputKey)
	if err != nil {
		return core.Patch{}, err
	}

	data, err := r.store.Fetch(ctx, vals[0], vals[1])
	if err != nil {
		return core.Patch{}, err
	}
	if !utf8.Valid(data) {
		return core.Patch{}, fmt.Errorf("%w: s3://%s/%s", core.ErrDecode, vals[0], vals[1])
	}

	return core.Patch{Text: core.String(string(data))}, nil
}
