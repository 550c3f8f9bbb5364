package blob

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"salvagedb/pkg/log"
	"salvagedb/pkg/models"
)

// Resolve finds blobs under {root}/{uid} by name pattern.
//
// A pattern containing '*' is split into prefix + rest: all blobs under
// {root}/{uid}/{prefix} are listed and kept when the name ends in one of the
// allowed extensions and the key matches the full glob {root}/{uid}/{pattern}.
// Order follows the store's listing order, which is not guaranteed sorted;
// callers needing stable order sort explicitly.
//
// Without a wildcard the exact key {root}/{uid}/{pattern}{ext} is probed for
// each extension in order, yielding at most one match per extension. A
// nonexistent name resolves to an empty list, not an error.
func (a *Adapter) Resolve(ctx context.Context, root, uid, namePattern string, extensions []string) ([]models.Asset, error) {
	if strings.Contains(namePattern, "*") {
		return a.resolveWildcard(ctx, root, uid, namePattern, extensions)
	}
	return a.resolveExact(ctx, root, uid, namePattern, extensions)
}

func (a *Adapter) resolveWildcard(ctx context.Context, root, uid, namePattern string, extensions []string) ([]models.Asset, error) {
	prefix, _, _ := strings.Cut(namePattern, "*")
	listPrefix := Key(root, uid, prefix)
	fullPattern := Key(root, uid, namePattern)

	var (
		assets  []models.Asset
		contTok *string
	)
	for {
		callCtx, cancel := a.callCtx(ctx)
		out, err := a.api.ListObjectsV2(callCtx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(a.bucket),
			Prefix:            aws.String(listPrefix),
			ContinuationToken: contTok,
		})
		cancel()
		if err != nil {
			return nil, fmt.Errorf("%w: listing %s: %w", ErrResolveFailed, listPrefix, err)
		}

		for _, obj := range out.Contents {
			key := aws.ToString(obj.Key)
			for _, ext := range extensions {
				if !strings.HasSuffix(key, ext) {
					continue
				}
				matched, matchErr := path.Match(fullPattern, key)
				if matchErr != nil {
					return nil, fmt.Errorf("%w: bad pattern %q: %w", ErrResolveFailed, namePattern, matchErr)
				}
				if matched {
					assets = append(assets, models.Asset{
						Key:      key,
						Filename: path.Base(key),
						URL:      a.PublicURL(key),
						Hash:     trimETag(obj.ETag),
						Size:     aws.ToInt64(obj.Size),
					})
					// One extension match is enough for this blob.
					break
				}
			}
		}

		if !aws.ToBool(out.IsTruncated) {
			break
		}
		contTok = out.NextContinuationToken
	}

	log.Debug().
		Str("pattern", fullPattern).
		Int("matches", len(assets)).
		Msg("Resolved blobs by wildcard")
	return assets, nil
}

func (a *Adapter) resolveExact(ctx context.Context, root, uid, name string, extensions []string) ([]models.Asset, error) {
	var assets []models.Asset
	for _, ext := range extensions {
		key := Key(root, uid, name+ext)

		callCtx, cancel := a.callCtx(ctx)
		out, err := a.api.HeadObject(callCtx, &s3.HeadObjectInput{
			Bucket: aws.String(a.bucket),
			Key:    aws.String(key),
		})
		cancel()
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("%w: probing %s: %w", ErrResolveFailed, key, err)
		}

		assets = append(assets, assetFromHead(a, key, out))
	}
	return assets, nil
}

func assetFromHead(a *Adapter, key string, out *s3.HeadObjectOutput) models.Asset {
	asset := models.Asset{
		Key:      key,
		Filename: path.Base(key),
		URL:      a.PublicURL(key),
		Hash:     trimETag(out.ETag),
		Size:     aws.ToInt64(out.ContentLength),
	}
	if out.Metadata != nil {
		asset.OriginalHash = out.Metadata[MetaOriginalHash]
		asset.Owner = out.Metadata[MetaOwner]
		asset.Category = out.Metadata[MetaCategory]
		asset.Compression = out.Metadata[MetaCompression]
		asset.UploadedAt = out.Metadata[MetaTime]
	}
	return asset
}
