package objectstore

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Interface compliance (compile-time assertions)
var _ Store = (*InMemoryStore)(nil)

func TestInMemoryStore_PutFetchIsolation(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	data := []byte("hello")
	require.NoError(t, s.Put(ctx, "b1", "in.txt", data))

	// mutate original slice
	data[0] = 'H'
	out, err := s.Fetch(ctx, "b1", "in.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(out))

	// mutate returned slice
	out[0] = 'x'
	out2, err := s.Fetch(ctx, "b1", "in.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(out2))
}

func TestInMemoryStore_NotFound(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	_, err := s.Fetch(ctx, "missing", "k")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, "b1", "a", []byte("1")))
	_, err = s.Fetch(ctx, "b1", "b")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInMemoryStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewInMemoryStore()
	assert.ErrorIs(t, s.Put(ctx, "b", "k", nil), context.Canceled)
	_, err := s.Fetch(ctx, "b", "k")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInMemoryStore_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	require.NoError(t, s.Put(ctx, "b1", "a2", []byte("2")))
	require.NoError(t, s.Put(ctx, "b1", "a1", []byte("1")))

	assert.Equal(t, []string{"a1", "a2"}, s.List("b1"))

	require.NoError(t, s.Delete("b1", "a1"))
	_, err := s.Fetch(ctx, "b1", "a1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, []string{"a2"}, s.List("b1"))
	assert.ErrorIs(t, s.Delete("b1", "a1"), ErrNotFound)
	assert.ErrorIs(t, s.Delete("nope", "a1"), ErrNotFound)
}

func TestInMemoryStore_Concurrency(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%10)
			if err := s.Put(ctx, "b1", key, []byte("data")); err != nil {
				t.Errorf("put err: %v", err)
			}
			_, _ = s.Fetch(ctx, "b1", key)
			_ = s.List("b1")
		}()
	}
	wg.Wait()
	assert.Len(t, s.List("b1"), 10)
}
