package filestore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateName(t *testing.T) {
	name := GenerateName("My Photo.JPG")

	assert.True(t, strings.HasSuffix(name, ".jpg"), "extension is lowercased")
	assert.NotContains(t, name, " ")

	// Имена уникальны
	assert.NotEqual(t, name, GenerateName("My Photo.JPG"))

	// Без расширения
	assert.NotEmpty(t, GenerateName("noext"))
}

func TestThumbnailName(t *testing.T) {
	assert.Equal(t, "thumb-abc.jpg", ThumbnailName("abc.jpg"))
}

func TestLocal_SaveAndURL(t *testing.T) {
	dir := t.TempDir()

	store, err := NewLocal(filepath.Join(dir, "uploads"))
	require.NoError(t, err)

	err = store.Save(context.Background(), "abc.jpg", "image/jpeg", []byte("image-bytes"))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "uploads", "abc.jpg"))
	require.NoError(t, err)
	assert.Equal(t, []byte("image-bytes"), data)

	assert.Equal(t, "/uploads/abc.jpg", store.URL("abc.jpg"))
}

func TestLocal_SaveStripsPathComponents(t *testing.T) {
	dir := t.TempDir()

	store, err := NewLocal(dir)
	require.NoError(t, err)

	err = store.Save(context.Background(), "../escape.jpg", "image/jpeg", []byte("x"))
	require.NoError(t, err)

	// Файл записан внутри директории, не рядом с ней
	_, err = os.Stat(filepath.Join(dir, "escape.jpg"))
	assert.NoError(t, err)
}
