// Package meta provides content hashing and timestamp helpers shared by the
// upload pipeline and the record assembler.
package meta

import (
	"crypto/md5" //nolint:gosec // content fingerprint, not an auth credential
	"encoding/hex"
	"time"
)

// TimeFormat is the timestamp layout stamped into records and blob metadata.
const TimeFormat = "2006-01-02 15:04:05"

const bytesPerMegabyte = 1024 * 1024.0

// Hash returns the hex-encoded MD5 digest of the given bytes. The digest is
// deterministic and matches the content hash the object store computes for
// plain uploads, so stored and locally computed values stay comparable.
func Hash(data []byte) string {
	sum := md5.Sum(data) //nolint:gosec // content fingerprint, not an auth credential
	return hex.EncodeToString(sum[:])
}

// Size returns the byte count of the given buffer.
func Size(data []byte) int64 {
	return int64(len(data))
}

// SizeMB returns the size of the buffer in megabytes.
func SizeMB(data []byte) float64 {
	return float64(len(data)) / bytesPerMegabyte
}

// Now returns the current local time formatted with TimeFormat.
func Now() string {
	return time.Now().Format(TimeFormat)
}
