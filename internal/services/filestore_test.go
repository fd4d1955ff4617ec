package services

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/documentrouter/internal/models"
)

func TestLocalFileStoreSaveAndPath(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	s := &LocalFileStore{Dir: dir}
	ctx := context.Background()

	path, err := s.Save(ctx, "report.pdf", strings.NewReader("first"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "report.pdf"), path)

	// Same id overwrites.
	_, err = s.Save(ctx, "report.pdf", strings.NewReader("second"))
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	got, err := s.Path(ctx, "report.pdf")
	require.NoError(t, err)
	assert.Equal(t, path, got)
}

func TestLocalFileStoreMissing(t *testing.T) {
	s := &LocalFileStore{Dir: t.TempDir()}
	_, err := s.Path(context.Background(), "missing.pdf")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLocalFileStoreKeepsIDsInsideDir(t *testing.T) {
	dir := t.TempDir()
	s := &LocalFileStore{Dir: dir}

	path, err := s.Save(context.Background(), "../../etc/passwd.pdf", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "passwd.pdf"), path)

	for _, id := range []string{"", "..", "/"} {
		_, err := s.Save(context.Background(), id, strings.NewReader("x"))
		assert.ErrorIs(t, err, models.ErrInvalidRequest, "id %q", id)
	}
}
