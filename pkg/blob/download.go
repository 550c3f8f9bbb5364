package blob

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"salvagedb/pkg/log"
)

// Download fetches a blob to scratch storage and returns the local path.
// The caller owns deletion of the returned file.
func (a *Adapter) Download(ctx context.Context, root, uid, filename string) (string, error) {
	key := Key(root, uid, filename)

	callCtx, cancel := a.callCtx(ctx)
	defer cancel()

	out, err := a.api.GetObject(callCtx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrDownloadFailed, key, err)
	}
	defer func() {
		if closeErr := out.Body.Close(); closeErr != nil {
			log.Error().Err(closeErr).Str("key", key).Msg("Failed to close download body")
		}
	}()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrDownloadFailed, key, err)
	}

	path, err := a.scratch.WriteFile(filename, data)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrDownloadFailed, key, err)
	}

	log.Info().Str("key", key).Str("path", path).Msg("Blob downloaded")
	return path, nil
}
