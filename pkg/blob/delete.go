package blob

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"salvagedb/pkg/log"
)

// Delete removes the named blobs under {root}/{uid}. Missing blobs are
// silently ignored, so the operation is idempotent. The first transport
// error aborts the walk.
func (a *Adapter) Delete(ctx context.Context, root, uid string, filenames []string) error {
	for _, filename := range filenames {
		key := Key(root, uid, filename)

		callCtx, cancel := a.callCtx(ctx)
		_, err := a.api.DeleteObject(callCtx, &s3.DeleteObjectInput{
			Bucket: aws.String(a.bucket),
			Key:    aws.String(key),
		})
		cancel()
		if err != nil && !isNotFound(err) {
			return fmt.Errorf("%w: %s: %w", ErrDeleteFailed, key, err)
		}

		log.Info().Str("key", key).Msg("Blob deleted")
	}
	return nil
}
