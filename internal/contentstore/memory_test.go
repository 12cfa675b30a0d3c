package contentstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, _, err := s.Load(ctx, "config.js")
	assert.ErrorIs(t, err, ErrNotFound)

	first, err := s.Save(ctx, "config.js", "v1", "")
	require.NoError(t, err)

	text, token, err := s.Load(ctx, "config.js")
	require.NoError(t, err)
	assert.Equal(t, "v1", text)
	assert.Equal(t, first, token)

	second, err := s.Save(ctx, "config.js", "v2", first)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	_, err = s.Save(ctx, "config.js", "v3", first)
	assert.ErrorIs(t, err, ErrConflict)
	_, err = s.Save(ctx, "config.js", "v3", "")
	assert.ErrorIs(t, err, ErrConflict)
	_, err = s.Save(ctx, "other.js", "v1", second)
	assert.ErrorIs(t, err, ErrConflict)

	text, _, err = s.Load(ctx, "config.js")
	require.NoError(t, err)
	assert.Equal(t, "v2", text)
}

func TestMemoryStore_Put(t *testing.T) {
	s := NewMemoryStore()
	token := s.Put("config.js", "seed")

	next, err := s.Save(context.Background(), "config.js", "edited", token)
	require.NoError(t, err)
	assert.NotEmpty(t, next)
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewMemoryStore().Load(ctx, "config.js")
	assert.ErrorIs(t, err, context.Canceled)
}
