package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTempDirCreatedOnDemand(t *testing.T) {
	root := filepath.Join(t.TempDir(), "Dropshelf")
	td := NewTempDir(root, nil)

	_, err := os.Stat(root)
	require.True(t, os.IsNotExist(err), "root must not exist before first use")

	path, err := td.Write("../escape.txt", []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "escape.txt"), path)
}

func TestTempDirUsageAndRemove(t *testing.T) {
	td := NewTempDir(filepath.Join(t.TempDir(), "Dropshelf"), nil)

	files, size, err := td.Usage()
	require.NoError(t, err)
	assert.Zero(t, files)
	assert.Zero(t, size)

	_, err = td.Write("a.bin", make([]byte, 100))
	require.NoError(t, err)
	_, err = td.Write("b.bin", make([]byte, 28))
	require.NoError(t, err)

	files, size, err = td.Usage()
	require.NoError(t, err)
	assert.Equal(t, 2, files)
	assert.Equal(t, int64(128), size)

	require.NoError(t, td.Remove())
	_, err = os.Stat(td.Path())
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, td.Remove(), "removing a missing dir is fine")
}

func TestDefaultTempRoot(t *testing.T) {
	assert.Equal(t, filepath.Join(os.TempDir(), DefaultTempName), DefaultTempRoot(""))
	assert.Equal(t, filepath.Join(os.TempDir(), "x"), DefaultTempRoot("x"))
}
