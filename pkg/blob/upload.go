package blob

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"salvagedb/pkg/compress"
	"salvagedb/pkg/log"
	"salvagedb/pkg/meta"
	"salvagedb/pkg/models"
)

// UploadParams describes one blob upload.
type UploadParams struct {
	Root string
	UID  string
	// Data is the content to store, already normalized/encoded by the caller.
	Data []byte
	// DestName is the canonical filename stem, e.g. "W01-F-frame-s1234567-00".
	DestName string
	// OriginalName is the client-side filename; it supplies the extension.
	OriginalName string
	Owner        string
	Category     string
	// Metadata is merged over the stamped fields; caller keys win on conflict.
	Metadata map[string]string
	// Compression optionally compresses the stored bytes. The stored filename
	// gains the matching suffix (.gz/.xz) and original-hash/original-size
	// metadata keep describing the pre-compression bytes.
	Compression compress.Algorithm
}

// Upload stores one blob under {root}/{uid}/{destName}{ext}[.gz|.xz] and
// returns its full descriptor, so record assembly can proceed without
// re-querying the store. Uploading an existing filename overwrites the prior
// blob; there is no versioning.
func (a *Adapter) Upload(ctx context.Context, p UploadParams) (*models.Asset, error) {
	filename := p.DestName + path.Ext(p.OriginalName)

	originalHash := meta.Hash(p.Data)
	originalSize := meta.Size(p.Data)

	stored := p.Data
	if p.Compression != compress.None {
		// The compressed scratch file is a working copy only; it is removed
		// whether or not the upload succeeds.
		scratchPath, err := compress.File(a.scratch, p.Data, filename, p.Compression)
		if err != nil {
			return nil, err
		}
		defer a.scratch.Remove(scratchPath)

		stored, err = os.ReadFile(scratchPath)
		if err != nil {
			return nil, fmt.Errorf("%w: reading compressed scratch file: %w", ErrUploadFailed, err)
		}
		filename += compress.Suffix(p.Compression)
	}

	storedHash := meta.Hash(stored)
	now := meta.Now()

	metadata := map[string]string{
		MetaHash:         storedHash,
		MetaSize:         strconv.FormatInt(meta.Size(stored), 10),
		MetaOwner:        p.Owner,
		MetaTime:         now,
		MetaOriginalHash: originalHash,
		MetaOriginalSize: strconv.FormatInt(originalSize, 10),
		MetaOriginalName: p.OriginalName,
		MetaCategory:     p.Category,
		MetaCompression:  string(p.Compression),
	}
	for k, v := range p.Metadata {
		metadata[k] = v
	}

	key := Key(p.Root, p.UID, filename)

	callCtx, cancel := a.callCtx(ctx)
	defer cancel()

	_, err := a.api.PutObject(callCtx, &s3.PutObjectInput{
		Bucket:   aws.String(a.bucket),
		Key:      aws.String(key),
		Body:     bytes.NewReader(stored),
		Metadata: metadata,
	})
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Blob upload failed")
		return nil, fmt.Errorf("%w: %s: %w", ErrUploadFailed, key, err)
	}

	log.Info().
		Str("key", key).
		Str("owner", p.Owner).
		Int64("size", meta.Size(stored)).
		Str("compression", string(p.Compression)).
		Msg("Blob uploaded")

	return &models.Asset{
		Key:          key,
		Filename:     filename,
		URL:          a.PublicURL(key),
		Hash:         storedHash,
		Size:         meta.Size(stored),
		OriginalHash: originalHash,
		Owner:        p.Owner,
		Category:     p.Category,
		Compression:  string(p.Compression),
		UploadedAt:   now,
	}, nil
}
