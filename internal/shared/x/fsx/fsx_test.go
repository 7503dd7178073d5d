package fsx

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirExistsAndNotEmpty(t *testing.T) {
	t.Run("missing dir", func(t *testing.T) {
		ok, err := DirExistsAndNotEmpty(filepath.Join(t.TempDir(), "nope"))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("empty dir", func(t *testing.T) {
		ok, err := DirExistsAndNotEmpty(t.TempDir())
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("dir with entries", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "f"), []byte("x"), 0o640))
		ok, err := DirExistsAndNotEmpty(dir)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("path is a file", func(t *testing.T) {
		f := filepath.Join(t.TempDir(), "f")
		require.NoError(t, os.WriteFile(f, []byte("x"), 0o640))
		_, err := DirExistsAndNotEmpty(f)
		assert.Error(t, err)
	})
}

func TestFileExists(t *testing.T) {
	f := filepath.Join(t.TempDir(), "f")
	assert.False(t, FileExists(f))
	require.NoError(t, os.WriteFile(f, []byte("x"), 0o640))
	assert.True(t, FileExists(f))
}
