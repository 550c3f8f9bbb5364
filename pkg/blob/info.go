package blob

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"salvagedb/pkg/models"
)

// InfoKind selects which attribute ExtractInfo pulls from resolved blobs.
type InfoKind string

const (
	// InfoURL yields public URLs.
	InfoURL InfoKind = "url"
	// InfoHash yields the store-computed content hash of the stored bytes.
	InfoHash InfoKind = "hash"
	// InfoSize yields byte lengths.
	InfoSize InfoKind = "size"
	// InfoOriginalHash yields the pre-compression hash recorded at upload
	// time, nil when the blob carries no such metadata.
	InfoOriginalHash InfoKind = "originalHash"
)

// ExtractInfo pulls one attribute from each blob, in input order. Values are
// record-ready JSON scalars: strings for url/hash/originalHash (nil when the
// original hash is absent) and int64 for size. Returns ErrUnsupportedInfoKind
// for any other kind.
func (a *Adapter) ExtractInfo(ctx context.Context, assets []models.Asset, kind InfoKind) ([]any, error) {
	values := make([]any, 0, len(assets))

	for _, asset := range assets {
		switch kind {
		case InfoURL:
			values = append(values, asset.URL)
		case InfoHash:
			values = append(values, asset.Hash)
		case InfoSize:
			values = append(values, asset.Size)
		case InfoOriginalHash:
			hash, err := a.originalHash(ctx, asset)
			if err != nil {
				return nil, err
			}
			if hash == "" {
				values = append(values, nil)
			} else {
				values = append(values, hash)
			}
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedInfoKind, kind)
		}
	}

	return values, nil
}

// originalHash returns the pre-compression hash, reading blob metadata when
// the resolved descriptor does not already carry it (wildcard listings omit
// per-object metadata).
func (a *Adapter) originalHash(ctx context.Context, asset models.Asset) (string, error) {
	if asset.OriginalHash != "" || asset.Key == "" {
		return asset.OriginalHash, nil
	}

	callCtx, cancel := a.callCtx(ctx)
	defer cancel()

	out, err := a.api.HeadObject(callCtx, &s3.HeadObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(asset.Key),
	})
	if err != nil {
		if isNotFound(err) {
			return "", nil
		}
		return "", fmt.Errorf("%w: reading metadata of %s: %w", ErrResolveFailed, asset.Key, err)
	}
	if out.Metadata == nil {
		return "", nil
	}
	return out.Metadata[MetaOriginalHash], nil
}
