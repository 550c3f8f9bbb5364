package scratch

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDir(t *testing.T) *Dir {
	t.Helper()
	d, err := New(filepath.Join(t.TempDir(), "scratch"))
	require.NoError(t, err)
	return d
}

func TestNewCreatesDirectory(t *testing.T) {
	d := newTestDir(t)
	info, err := os.Stat(d.Root())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestWriteFileRoundTrip(t *testing.T) {
	d := newTestDir(t)
	path, err := d.WriteFile("model.gz", []byte("payload"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)
}

func TestWithFileRemovesOnSuccess(t *testing.T) {
	d := newTestDir(t)
	var seen string
	err := d.WithFile("temp.bin", []byte("x"), func(path string) error {
		seen = path
		_, statErr := os.Stat(path)
		return statErr
	})
	require.NoError(t, err)
	_, err = os.Stat(seen)
	assert.True(t, os.IsNotExist(err))
}

func TestWithFileRemovesOnError(t *testing.T) {
	d := newTestDir(t)
	sentinel := errors.New("upload failed")
	var seen string
	err := d.WithFile("temp.bin", []byte("x"), func(path string) error {
		seen = path
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)
	_, statErr := os.Stat(seen)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRemoveMissingFileIsSilent(t *testing.T) {
	d := newTestDir(t)
	d.Remove(d.Path("never-existed"))
}

func TestClear(t *testing.T) {
	d := newTestDir(t)
	_, err := d.WriteFile("a.tmp", []byte("a"))
	require.NoError(t, err)
	_, err = d.WriteFile("b.tmp", []byte("b"))
	require.NoError(t, err)

	require.NoError(t, d.Clear())

	entries, err := os.ReadDir(d.Root())
	require.NoError(t, err)
	assert.Empty(t, entries)
}
