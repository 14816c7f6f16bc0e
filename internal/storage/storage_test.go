package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndRead(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	path, err := s.Save("book-001", "txt", []byte("chapter one"))
	require.NoError(t, err)
	assert.NotEmpty(t, path)

	data, err := s.Read("book-001", "txt")
	require.NoError(t, err)
	assert.Equal(t, "chapter one", string(data))
}

func TestSave_EmptyContent(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = s.Save("book-001", "txt", nil)
	assert.Error(t, err)
}

func TestExistsAndDelete(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	assert.False(t, s.Exists("book-001", "txt"))

	_, err = s.Save("book-001", "txt", []byte("content"))
	require.NoError(t, err)
	assert.True(t, s.Exists("book-001", "txt"))

	require.NoError(t, s.Delete("book-001", "txt"))
	assert.False(t, s.Exists("book-001", "txt"))

	// Deleting again is a no-op
	require.NoError(t, s.Delete("book-001", "txt"))
}

func TestPath_NormalizesExtension(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, s.Path("book-001", "txt"), s.Path("book-001", ".txt"))
}
