package compress

import "errors"

var (
	// ErrUnsupportedAlgorithm is returned for any algorithm other than gzip or xz.
	// Hitting it indicates a caller defect, not a runtime condition.
	ErrUnsupportedAlgorithm = errors.New("unsupported compression algorithm")

	// ErrCompressionFailed is returned when the codec itself fails.
	ErrCompressionFailed = errors.New("compression failed")
)
