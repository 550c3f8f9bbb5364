// Package compress wraps byte buffers as compressed scratch files for upload.
// Algorithm choice is a caller-visible tradeoff: gzip is faster but larger,
// xz is slower but smaller. There is no automatic selection.
package compress

import (
	"bytes"
	"compress/gzip"
	"fmt"

	"github.com/ulikunitz/xz"
)

// Algorithm selects the compression codec.
type Algorithm string

const (
	// None disables compression.
	None Algorithm = ""
	// Gzip selects gzip compression (stored with a .gz suffix).
	Gzip Algorithm = "gzip"
	// XZ selects xz compression (stored with a .xz suffix).
	XZ Algorithm = "xz"
)

// Suffix returns the filename suffix for the algorithm, empty for None.
func Suffix(algo Algorithm) string {
	switch algo {
	case Gzip:
		return ".gz"
	case XZ:
		return ".xz"
	default:
		return ""
	}
}

// Valid reports whether the algorithm is a known codec (None included).
func Valid(algo Algorithm) bool {
	return algo == None || algo == Gzip || algo == XZ
}

// Bytes compresses data with the given algorithm and returns the result.
func Bytes(data []byte, algo Algorithm) ([]byte, error) {
	var buf bytes.Buffer

	switch algo {
	case Gzip:
		writer := gzip.NewWriter(&buf)
		if _, err := writer.Write(data); err != nil {
			return nil, fmt.Errorf("%w: gzip: %w", ErrCompressionFailed, err)
		}
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("%w: gzip: %w", ErrCompressionFailed, err)
		}
	case XZ:
		writer, err := xz.NewWriter(&buf)
		if err != nil {
			return nil, fmt.Errorf("%w: xz: %w", ErrCompressionFailed, err)
		}
		if _, err := writer.Write(data); err != nil {
			return nil, fmt.Errorf("%w: xz: %w", ErrCompressionFailed, err)
		}
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("%w: xz: %w", ErrCompressionFailed, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, algo)
	}

	return buf.Bytes(), nil
}

// FileWriter is the scratch surface File writes through. scratch.Dir
// satisfies it.
type FileWriter interface {
	WriteFile(name string, data []byte) (string, error)
}

// File compresses data into a scratch file named name+suffix and returns the
// file path. The caller owns deletion of the returned file and should remove
// it on every exit path.
func File(dir FileWriter, data []byte, name string, algo Algorithm) (string, error) {
	compressed, err := Bytes(data, algo)
	if err != nil {
		return "", err
	}
	return dir.WriteFile(name+Suffix(algo), compressed)
}
