package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/s3agent/core"
)

func noop(name string) core.Stage {
	return core.StageFunc(name, func(context.Context, core.State) (core.Patch, error) {
		return core.Patch{}, nil
	})
}

func TestBuilder_Compile(t *testing.T) {
	p, err := NewBuilder("g").
		AddStage(noop("c")).
		AddStage(noop("a")).
		AddStage(noop("b")).
		AddEdge("a", "b").
		AddEdge("b", "c").
		SetEntry("a").
		SetFinish("c").
		Compile()
	require.NoError(t, err)

	var names []string
	for _, n := range p.Nodes() {
		names = append(names, n.Name)
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)
}

func TestBuilder_ImpliedEndpoints(t *testing.T) {
	p, err := NewBuilder("g").
		AddStage(noop("a")).
		AddStage(noop("b")).
		AddEdge("a", "b").
		Compile()
	require.NoError(t, err)
	assert.Equal(t, "a", p.Entry())
	assert.Equal(t, "b", p.Finish())
}

func TestBuilder_SingleStage(t *testing.T) {
	p, err := NewBuilder("g").AddStage(noop("only")).Compile()
	require.NoError(t, err)
	assert.Equal(t, "only", p.Entry())
	assert.Equal(t, "only", p.Finish())
}

func TestBuilder_Errors(t *testing.T) {
	tests := []struct {
		name  string
		build func() *Builder
		want  error
	}{
		{
			name:  "empty",
			build: func() *Builder { return NewBuilder("g") },
			want:  ErrEmptyPipeline,
		},
		{
			name: "duplicate",
			build: func() *Builder {
				return NewBuilder("g").AddStage(noop("a")).AddStage(noop("a"))
			},
			want: ErrDuplicateStage,
		},
		{
			name: "unknown edge target",
			build: func() *Builder {
				return NewBuilder("g").AddStage(noop("a")).AddEdge("a", "missing")
			},
			want: ErrUnknownStage,
		},
		{
			name: "cycle",
			build: func() *Builder {
				return NewBuilder("g").
					AddStage(noop("a")).AddStage(noop("b")).
					AddEdge("a", "b").AddEdge("b", "a")
			},
			want: ErrCycle,
		},
		{
			name: "branching",
			build: func() *Builder {
				return NewBuilder("g").
					AddStage(noop("a")).AddStage(noop("b")).AddStage(noop("c")).
					AddEdge("a", "b").AddEdge("a", "c")
			},
			want: ErrBranching,
		},
		{
			name: "disconnected",
			build: func() *Builder {
				return NewBuilder("g").
					AddStage(noop("a")).AddStage(noop("b")).AddStage(noop("c")).
					AddEdge("a", "b").
					SetEntry("a").SetFinish("b")
			},
			want: ErrUnreachable,
		},
		{
			name: "entry with predecessor",
			build: func() *Builder {
				return NewBuilder("g").
					AddStage(noop("a")).AddStage(noop("b")).
					AddEdge("a", "b").
					SetEntry("b")
			},
			want: ErrEntry,
		},
		{
			name: "unknown finish",
			build: func() *Builder {
				return NewBuilder("g").AddStage(noop("a")).SetFinish("z")
			},
			want: ErrFinish,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := tt.build().Compile()
			assert.Nil(t, p)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNew_RejectsDuplicates(t *testing.T) {
	_, err := New("g", []core.Stage{noop("a"), noop("a")})
	assert.ErrorIs(t, err, ErrDuplicateStage)
}
