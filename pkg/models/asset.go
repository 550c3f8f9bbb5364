package models

// Asset categories recorded in blob metadata.
const (
	CategoryImage = "image"
	CategoryModel = "3d_model"
)

// Asset describes one stored blob. Upload returns a fully populated Asset so
// record assembly never has to re-query the store by name pattern.
type Asset struct {
	// Key is the raw blob key ({root}/{uid}/{filename}). Stored alongside the
	// URL in the item record so deletion never depends on URL parsing.
	Key string `json:"key"`
	// Filename is the last segment of Key, unique within {root}/{uid}.
	Filename string `json:"filename"`
	URL      string `json:"url"`
	// Hash is the content hash of the stored bytes, post-compression when
	// compression applied.
	Hash string `json:"hash"`
	Size int64  `json:"size"`
	// OriginalHash is the hash of the bytes as originally uploaded,
	// pre-compression. Empty when the store has no such metadata.
	OriginalHash string `json:"original_hash,omitempty"`
	Owner        string `json:"owner,omitempty"`
	Category     string `json:"category,omitempty"`
	Compression  string `json:"compression,omitempty"`
	UploadedAt   string `json:"uploaded_at,omitempty"`
}

// UploadFile is a raw uploaded buffer plus its client-side name.
type UploadFile struct {
	Name string
	Data []byte
}
