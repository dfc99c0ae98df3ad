// Package s3agent wires the read → summarize → write pipeline: an object is
// fetched from a bucket, summarized by a completion model and the summary is
// written back under a second key.
//
// Most applications interact with this package by:
//  1. Constructing an objectstore.Store and a model.Model
//  2. Building the pipeline with NewGraph
//  3. Invoking it directly, or through a runner.Runner / server.Server
//
// Adapters are created once by the caller and injected; the package keeps
// no globals.
package s3agent

import (
	"github.com/hupe1980/s3agent/logging"
	"github.com/hupe1980/s3agent/model"
	"github.com/hupe1980/s3agent/objectstore"
	"github.com/hupe1980/s3agent/pipeline"
	"github.com/hupe1980/s3agent/stage"
)

// DefaultGraphName names the pipeline returned by NewGraph.
const DefaultGraphName = "s3_processor"

// Options configures the default graph.
type Options struct {
	// Name of the compiled pipeline.
	Name string

	// Completion settings forwarded to the call_llm stage. Zero values keep
	// the stage defaults.
	Model           string
	MaxOutputTokens int64
	Headers         map[string]string
	Prompt          string

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger

	// Callbacks observe every stage. Optional.
	Callbacks *pipeline.CallbackManager
}

// NewGraph builds the three stage pipeline read_from_s3 → call_llm →
// write_to_s3 on top of store and m.
func NewGraph(store objectstore.Store, m model.Model, optFns ...func(o *Options)) (*pipeline.Pipeline, error) {
	opts := Options{
		Name:   DefaultGraphName,
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	transformer, err := stage.NewTransformer(m, func(o *stage.TransformerOptions) {
		if opts.Model != "" {
			o.Model = opts.Model
		}
		if opts.MaxOutputTokens > 0 {
			o.MaxOutputTokens = opts.MaxOutputTokens
		}
		if opts.Headers != nil {
			o.Headers = opts.Headers
		}
		if opts.Prompt != "" {
			o.Prompt = opts.Prompt
		}
		o.Logger = opts.Logger
	})
	if err != nil {
		return nil, err
	}

	reader := stage.NewSourceReader(store)
	writer := stage.NewSinkWriter(store)

	return pipeline.NewBuilder(opts.Name).
		AddStage(reader).
		AddStage(transformer).
		AddStage(writer).
		AddEdge(reader.Name(), transformer.Name()).
		AddEdge(transformer.Name(), writer.Name()).
		SetEntry(reader.Name()).
		SetFinish(writer.Name()).
		Compile(func(o *pipeline.Options) {
			o.Logger = opts.Logger
			o.Callbacks = opts.Callbacks
		})
}
