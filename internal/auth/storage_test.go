package auth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/brizzai/image-feed/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileTokenStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.yaml")

	storage, err := NewFileTokenStorage(path)
	require.NoError(t, err)
	_, ok := storage.Token()
	assert.False(t, ok)

	require.NoError(t, storage.SetToken("secret-token"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "access_token: secret-token\n", string(data))

	reloaded, err := NewFileTokenStorage(path)
	require.NoError(t, err)
	token, ok := reloaded.Token()
	assert.True(t, ok)
	assert.Equal(t, "secret-token", token)

	require.NoError(t, reloaded.Clear())
	_, ok = reloaded.Token()
	assert.False(t, ok)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// clearing twice is fine
	assert.NoError(t, reloaded.Clear())
}

func TestFileTokenStorage_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- not\n- a map\n"), 0o600))

	_, err := NewFileTokenStorage(path)
	assert.Error(t, err)
}

func TestMemoryTokenStorage(t *testing.T) {
	storage := NewMemoryTokenStorage("")
	_, ok := storage.Token()
	assert.False(t, ok)

	require.NoError(t, storage.SetToken("t"))
	token, ok := storage.Token()
	assert.True(t, ok)
	assert.Equal(t, "t", token)

	require.NoError(t, storage.Clear())
	_, ok = storage.Token()
	assert.False(t, ok)
}

func TestNewTokenStorage(t *testing.T) {
	storage, err := NewTokenStorage(&config.StorageConfig{Ephemeral: true, TokenFile: "ignored"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryTokenStorage{}, storage)

	storage, err = NewTokenStorage(&config.StorageConfig{TokenFile: filepath.Join(t.TempDir(), "token.yaml")})
	require.NoError(t, err)
	assert.IsType(t, &FileTokenStorage{}, storage)
}
