package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelagency/internal/config"
)

func TestMemoryPutDelete(t *testing.T) {
	m := NewMemory("http://cdn.local/")
	info, err := m.Put(context.Background(), "uploads/2026/03/a.png", strings.NewReader("png"), PutOptions{ContentType: "image/png"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), info.Size)
	assert.Equal(t, "http://cdn.local/uploads/2026/03/a.png", info.URL)

	data, ct, ok := m.Object("uploads/2026/03/a.png")
	require.True(t, ok)
	assert.Equal(t, "png", string(data))
	assert.Equal(t, "image/png", ct)

	require.NoError(t, m.Delete(context.Background(), "uploads/2026/03/a.png"))
	assert.ErrorIs(t, m.Delete(context.Background(), "uploads/2026/03/a.png"), ErrNotFound)
}

func TestNewMinIOValidatesConfig(t *testing.T) {
	_, err := NewMinIO(context.Background(), config.StorageConfig{})
	assert.Error(t, err)

	_, err = NewMinIO(context.Background(), config.StorageConfig{Endpoint: "localhost:9000", Bucket: "b"})
	assert.ErrorContains(t, err, "credentials")
}
