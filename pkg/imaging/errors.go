package imaging

import "errors"

// ErrUnsupportedImageFormat is returned when uploaded bytes cannot be decoded
// as an image, or when the target format is not a known encoding.
var ErrUnsupportedImageFormat = errors.New("unsupported image format")
