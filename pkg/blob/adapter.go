// Package blob adapts the object store for the asset pipeline. Assets live
// under keys of the form {root}/{uid}/{filename}; the uid directory is shared
// across owners (flat asset root).
package blob

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// Metadata keys attached to uploaded blobs. The object store lower-cases
// user metadata keys, so these are lower-case from the start.
const (
	MetaHash         = "hash"
	MetaSize         = "size"
	MetaOwner        = "owner"
	MetaTime         = "time"
	MetaOriginalHash = "original-hash"
	MetaOriginalSize = "original-size"
	MetaOriginalName = "original-name"
	MetaCategory     = "category"
	MetaCompression  = "compression"
)

// ObjectAPI is the subset of the S3 client the adapter needs. *s3.Client
// satisfies it; tests supply an in-memory double.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Scratch is the scratch-directory surface the adapter uses for compressed
// uploads and downloads.
type Scratch interface {
	WriteFile(name string, data []byte) (string, error)
	Remove(path string)
}

// Adapter talks to one bucket of the object store.
type Adapter struct {
	api       ObjectAPI
	bucket    string
	urlFormat string
	scratch   Scratch
	timeout   time.Duration
}

// New returns an Adapter for the given bucket. urlFormat renders a blob key
// into its public URL and must contain exactly one %s verb. timeout bounds
// each store call; zero disables the bound.
func New(api ObjectAPI, bucket, urlFormat string, dir Scratch, timeout time.Duration) *Adapter {
	return &Adapter{
		api:       api,
		bucket:    bucket,
		urlFormat: urlFormat,
		scratch:   dir,
		timeout:   timeout,
	}
}

// Key builds the blob key for a filename under {root}/{uid}.
func Key(root, uid, filename string) string {
	return path.Join(root, uid, filename)
}

// PublicURL renders the public URL for a blob key.
func (a *Adapter) PublicURL(key string) string {
	// Spaces in component names would produce unfetchable URLs.
	escaped := strings.ReplaceAll(key, " ", "%20")
	return fmt.Sprintf(a.urlFormat, escaped)
}

func (a *Adapter) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, a.timeout)
}

// isNotFound reports whether the store answered "no such object".
func isNotFound(err error) bool {
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NotFound" || code == "NoSuchKey"
	}
	return false
}

func trimETag(etag *string) string {
	if etag == nil {
		return ""
	}
	return strings.Trim(*etag, `"`)
}
