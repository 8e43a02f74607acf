package util

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFileSaver_Save(t *testing.T) {
	dir := t.TempDir()
	saver, err := NewLocalFileSaver(dir, "/uploads/")
	require.NoError(t, err)

	path, err := saver.Save(context.Background(), "Cihaz.JPG", strings.NewReader("image-bytes"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(path, "/uploads/"))
	assert.True(t, strings.HasSuffix(path, ".jpg"))

	content, err := os.ReadFile(filepath.Join(dir, filepath.Base(path)))
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(content))
}

func TestLocalFileSaver_UniqueNames(t *testing.T) {
	saver, err := NewLocalFileSaver(t.TempDir(), "uploads")
	require.NoError(t, err)

	first, err := saver.Save(context.Background(), "a.png", strings.NewReader("1"))
	require.NoError(t, err)
	second, err := saver.Save(context.Background(), "a.png", strings.NewReader("2"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestLocalFileSaver_CanceledContext(t *testing.T) {
	dir := t.TempDir()
	saver, err := NewLocalFileSaver(dir, "/uploads")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = saver.Save(ctx, "a.png", strings.NewReader("1"))
	assert.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
