package storage

import (
	"io"
	"strings"
	"testing"

	"github.com/smartlogix/cargopro/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupStore(t *testing.T) Store {
	t.Helper()
	store, err := NewLocal(Params{
		Config: config.Config{MediaRoot: t.TempDir()},
		Log:    zap.NewNop(),
	})
	require.NoError(t, err)
	return store
}

func TestSaveAndOpen(t *testing.T) {
	store := setupStore(t)

	relPath, err := store.Save("documents", "manifest.pdf", strings.NewReader("pdf-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(relPath, "documents/"))
	assert.True(t, strings.HasSuffix(relPath, ".pdf"))

	reader, err := store.Open(relPath)
	require.NoError(t, err)
	defer reader.Close()

	content, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "pdf-bytes", string(content))
}

func TestSaveGeneratesUniqueNames(t *testing.T) {
	store := setupStore(t)

	a, err := store.Save("documents", "same.pdf", strings.NewReader("a"))
	require.NoError(t, err)
	b, err := store.Save("documents", "same.pdf", strings.NewReader("b"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestSaveRejectsEmptyContent(t *testing.T) {
	store := setupStore(t)

	_, err := store.Save("documents", "empty.pdf", strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = store.Save("documents", "nil.pdf", nil)
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestOpenRejectsEscapingPaths(t *testing.T) {
	store := setupStore(t)

	_, err := store.Open("../etc/passwd")
	assert.ErrorIs(t, err, ErrInvalidPath)

	_, err = store.Open("/etc/passwd")
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestRemoveMissingFileIsNoError(t *testing.T) {
	store := setupStore(t)
	assert.NoError(t, store.Remove("documents/gone.pdf"))
}
