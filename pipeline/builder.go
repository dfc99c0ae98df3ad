package pipeline

import (
	"errors"
	"fmt"

	"github.com/dominikbraun/graph"

	"github.com/hupe1980/s3agent/core"
)

var (
	// ErrEmptyPipeline is returned by Compile when no stage was added.
	ErrEmptyPipeline = errors.New("pipeline has no stages")
	// ErrDuplicateStage is returned when two stages share a name.
	ErrDuplicateStage = errors.New("duplicate stage name")
	// ErrUnknownStage is returned when an edge or endpoint names a stage that
	// was never added, or a stage has no name.
	ErrUnknownStage = errors.New("unknown stage")
	// ErrCycle is returned when an edge would close a cycle.
	ErrCycle = errors.New("edge would create a cycle")
	// ErrBranching is returned when a stage has more than one successor or
	// predecessor.
	ErrBranching = errors.New("stage has more than one successor or predecessor")
	// ErrUnreachable is returned when a stage is not on the chain from the entry.
	ErrUnreachable = errors.New("stage is not reachable from the entry")
	// ErrEntry is returned when the entry cannot be resolved or has a predecessor.
	ErrEntry = errors.New("invalid entry stage")
	// ErrFinish is returned when the finish cannot be resolved, has a
	// successor or is not where the chain ends.
	ErrFinish = errors.New("invalid finish stage")
)

// Builder declares stages as graph nodes with explicit edges, in the style of
// add-node / add-edge graph builders, and compiles them into a Pipeline.
// Only single chains compile today; the node/edge model leaves room for
// conditional successors later.
//
// Builder methods record the first error and become no-ops afterwards;
// Compile reports it.
type Builder struct {
	name   string
	g      graph.Graph[string, string]
	stages map[string]core.Stage
	entry  string
	finish string
	err    error
}

// NewBuilder returns an empty builder for a pipeline called name.
func NewBuilder(name string) *Builder {
	return &Builder{
		name:   name,
		g:      graph.New(graph.StringHash, graph.Directed(), graph.PreventCycles()),
		stages: make(map[string]core.Stage),
	}
}

// AddStage registers a stage as a node. Names must be unique.
func (b *Builder) AddStage(s core.Stage) *Builder {
	if b.err != nil {
		return b
	}
	if s == nil || s.Name() == "" {
		b.err = fmt.Errorf("%w: stage must have a name", ErrUnknownStage)
		return b
	}
	if err := b.g.AddVertex(s.Name()); err != nil {
		if errors.Is(err, graph.ErrVertexAlreadyExists) {
			err = ErrDuplicateStage
		}
		b.err = fmt.Errorf("%w: %s", err, s.Name())
		return b
	}
	b.stages[s.Name()] = s
	return b
}

// AddEdge declares that to runs after from.
func (b *Builder) AddEdge(from, to string) *Builder {
	if b.err != nil {
		return b
	}
	if err := b.g.AddEdge(from, to); err != nil {
		switch {
		case errors.Is(err, graph.ErrVertexNotFound):
			err = ErrUnknownStage
		case errors.Is(err, graph.ErrEdgeCreatesCycle):
			err = ErrCycle
		case errors.Is(err, graph.ErrEdgeAlreadyExists):
			return b
		}
		b.err = fmt.Errorf("%w: %s -> %s", err, from, to)
	}
	return b
}

// SetEntry marks the first stage. Optional when exactly one stage has no
// predecessor.
func (b *Builder) SetEntry(name string) *Builder {
	b.entry = name
	return b
}

// SetFinish marks the terminal stage. Optional when exactly one stage has no
// successor.
func (b *Builder) SetFinish(name string) *Builder {
	b.finish = name
	return b
}

// Compile validates the graph is a single chain from entry to finish that
// covers every stage, and returns the immutable Pipeline.
func (b *Builder) Compile(optFns ...func(o *Options)) (*Pipeline, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.stages) == 0 {
		return nil, ErrEmptyPipeline
	}

	adj, err := b.g.AdjacencyMap()
	if err != nil {
		return nil, err
	}
	pred, err := b.g.PredecessorMap()
	if err != nil {
		return nil, err
	}

	var roots, leaves []string
	for name := range b.stages {
		if len(adj[name]) > 1 || len(pred[name]) > 1 {
			return nil, fmt.Errorf("%w: %s", ErrBranching, name)
		}
		if len(pred[name]) == 0 {
			roots = append(roots, name)
		}
		if len(adj[name]) == 0 {
			leaves = append(leaves, name)
		}
	}

	entry, err := pick(b.entry, roots, pred, ErrEntry)
	if err != nil {
		return nil, err
	}
	finish, err := pick(b.finish, leaves, adj, ErrFinish)
	if err != nil {
		return nil, err
	}

	order := make([]core.Stage, 0, len(b.stages))
	nodes := make([]Node, 0, len(b.stages))
	for cur := entry; ; {
		order = append(order, b.stages[cur])
		var next []string
		for to := range adj[cur] {
			next = append(next, to)
		}
		nodes = append(nodes, Node{Name: cur, Next: next})
		if len(next) == 0 {
			break
		}
		cur = next[0]
	}

	if last := order[len(order)-1].Name(); last != finish {
		return nil, fmt.Errorf("%w: chain from %s ends at %s, not %s", ErrFinish, entry, last, finish)
	}
	if len(order) != len(b.stages) {
		for name := range b.stages {
			if !contains(nodes, name) {
				return nil, fmt.Errorf("%w: %s", ErrUnreachable, name)
			}
		}
	}

	return newPipeline(b.name, order, nodes, optFns...), nil
}

// pick resolves an explicit or implied endpoint. edges is the predecessor map
// for the entry and the adjacency map for the finish; an explicit endpoint
// must have no edges in that direction.
func pick(explicit string, candidates []string, edges map[string]map[string]graph.Edge[string], sentinel error) (string, error) {
	if explicit != "" {
		e, ok := edges[explicit]
		if !ok {
			return "", fmt.Errorf("%w: %w: %s", sentinel, ErrUnknownStage, explicit)
		}
		if len(e) != 0 {
			return "", fmt.Errorf("%w: %s", sentinel, explicit)
		}
		return explicit, nil
	}
	if len(candidates) != 1 {
		return "", fmt.Errorf("%w: %d candidates, set one explicitly", sentinel, len(candidates))
	}
	return candidates[0], nil
}

func contains(nodes []Node, name string) bool {
	for _, n := range nodes {
		if n.Name == name {
			return true
		}
	}
	return false
}
