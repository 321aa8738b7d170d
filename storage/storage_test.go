package storage_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/romshark/todosim/storage"

	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	m := storage.NewMemory(nil)

	_, err := m.Load(t.Context())
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, m.Save(t.Context(), []byte(`[1,2]`)))
	data, err := m.Load(t.Context())
	require.NoError(t, err)
	require.Equal(t, []byte(`[1,2]`), data)

	// Returned data is a copy.
	data[0] = 'x'
	data, err = m.Load(t.Context())
	require.NoError(t, err)
	require.Equal(t, []byte(`[1,2]`), data)
}

func TestMemorySeeded(t *testing.T) {
	m := storage.NewMemory([]byte(`[]`))
	data, err := m.Load(t.Context())
	require.NoError(t, err)
	require.Equal(t, []byte(`[]`), data)
}

func TestBolt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todosim.db")

	b, err := storage.OpenBolt(path)
	require.NoError(t, err)

	_, err = b.Load(t.Context())
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, b.Save(t.Context(), []byte(`[{"name":"work","items":[]}]`)))
	data, err := b.Load(t.Context())
	require.NoError(t, err)
	require.Equal(t, []byte(`[{"name":"work","items":[]}]`), data)

	require.NoError(t, b.Close())

	// Data survives reopening.
	b, err = storage.OpenBolt(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, b.Close()) }()

	data, err = b.Load(t.Context())
	require.NoError(t, err)
	require.Equal(t, []byte(`[{"name":"work","items":[]}]`), data)
}

func TestBoltContextCanceled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todosim.db")

	b, err := storage.OpenBolt(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, b.Close()) }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = b.Load(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, b.Save(ctx, []byte(`[]`)), context.Canceled)
}
