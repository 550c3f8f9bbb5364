package blob

import "errors"

var (
	// ErrUploadFailed wraps transport errors from the store's upload path.
	// Not retried here; the caller decides on retry policy.
	ErrUploadFailed = errors.New("upload failed")

	// ErrDownloadFailed wraps transport errors while fetching a blob.
	ErrDownloadFailed = errors.New("download failed")

	// ErrResolveFailed wraps transport errors while listing or probing blobs.
	// A nonexistent name is not an error; it resolves to an empty list.
	ErrResolveFailed = errors.New("resolve failed")

	// ErrDeleteFailed wraps transport errors while deleting blobs. Missing
	// blobs are ignored silently.
	ErrDeleteFailed = errors.New("delete failed")

	// ErrUnsupportedInfoKind is returned for an info kind outside
	// url/hash/size/originalHash. Caller defect, not a runtime condition.
	ErrUnsupportedInfoKind = errors.New("unsupported info kind")
)
