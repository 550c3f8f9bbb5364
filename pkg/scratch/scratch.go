// Package scratch manages the local scratch directory used for temporary
// artifacts (compressed uploads, normalized images, downloads). Files created
// here are working copies only; callers that need guaranteed cleanup should
// use WithFile.
package scratch

import (
	"os"
	"path/filepath"

	"salvagedb/pkg/log"
)

const dirPerm = 0o750

// Dir is a scratch directory rooted at a single path.
type Dir struct {
	root string
}

// New creates the scratch directory if needed and returns a handle to it.
func New(root string) (*Dir, error) {
	if err := os.MkdirAll(root, dirPerm); err != nil {
		return nil, err
	}
	return &Dir{root: root}, nil
}

// Root returns the scratch directory path.
func (d *Dir) Root() string {
	return d.root
}

// Path returns the scratch path for the given file name.
func (d *Dir) Path(name string) string {
	return filepath.Join(d.root, name)
}

// WriteFile writes data to a named scratch file. The caller owns removal.
func (d *Dir) WriteFile(name string, data []byte) (string, error) {
	path := d.Path(name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}

// CreateTemp creates an anonymous scratch file with the given name pattern.
func (d *Dir) CreateTemp(pattern string) (*os.File, error) {
	return os.CreateTemp(d.root, pattern)
}

// Remove deletes a scratch file. A missing file is not an error.
func (d *Dir) Remove(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Error().Err(err).Str("path", path).Msg("Failed to remove scratch file")
	}
}

// WithFile writes data to a named scratch file, invokes fn with its path and
// removes the file afterwards on every exit path.
func (d *Dir) WithFile(name string, data []byte, fn func(path string) error) error {
	path, err := d.WriteFile(name, data)
	if err != nil {
		return err
	}
	defer d.Remove(path)
	return fn(path)
}

// Clear removes every file currently in the scratch directory. Used on
// shutdown of a long-lived process to avoid scratch buildup.
func (d *Dir) Clear() error {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		d.Remove(filepath.Join(d.root, entry.Name()))
	}
	return nil
}
