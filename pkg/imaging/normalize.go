// Package imaging re-encodes uploaded photographs into a smaller canonical
// format before they reach the blob store. Only transcoding happens here;
// no resizing or cropping.
package imaging

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/h2non/bimg"

	"salvagedb/pkg/log"
	"salvagedb/pkg/scratch"
)

// Format is the target encoding for normalized images.
type Format string

const (
	// WebP is the default lossy web-friendly target format.
	WebP Format = "webp"
	// JPEG is an alternative lossy target format.
	JPEG Format = "jpeg"
)

// DefaultQuality is used when the caller passes a quality of 0.
const DefaultQuality = 90

// Normalizer re-encodes images into scratch files.
type Normalizer struct {
	dir *scratch.Dir
}

// New returns a Normalizer writing into the given scratch directory.
func New(dir *scratch.Dir) *Normalizer {
	return &Normalizer{dir: dir}
}

func imageType(format Format) (bimg.ImageType, error) {
	switch format {
	case WebP:
		return bimg.WEBP, nil
	case JPEG:
		return bimg.JPEG, nil
	default:
		return bimg.UNKNOWN, fmt.Errorf("%w: target format %q", ErrUnsupportedImageFormat, format)
	}
}

// Extension returns the file extension for the format, dot included.
func Extension(format Format) string {
	if format == JPEG {
		return ".jpg"
	}
	return "." + string(format)
}

// Stem returns the filename stem of an uploaded image name, i.e. the name
// with any directory part and extension stripped.
func Stem(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Normalize decodes raw image bytes and re-encodes them at the given quality
// and format, writing the result to a deterministic scratch file derived from
// originalName. It returns the scratch file path; the caller owns deletion.
// Returns ErrUnsupportedImageFormat when the bytes cannot be decoded.
func (n *Normalizer) Normalize(raw []byte, originalName string, quality int, format Format) (string, error) {
	target, err := imageType(format)
	if err != nil {
		return "", err
	}
	if quality <= 0 {
		quality = DefaultQuality
	}

	encoded, err := bimg.NewImage(raw).Process(bimg.Options{
		Type:    target,
		Quality: quality,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnsupportedImageFormat, err)
	}

	name := Stem(originalName) + Extension(format)
	path, err := n.dir.WriteFile(name, encoded)
	if err != nil {
		return "", err
	}

	log.Debug().
		Str("original", originalName).
		Str("path", path).
		Int("raw_size", len(raw)).
		Int("encoded_size", len(encoded)).
		Msg("Image normalized")
	return path, nil
}
