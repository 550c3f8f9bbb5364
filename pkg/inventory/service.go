// Package inventory implements the item-record operations over the document
// and blob stores: the submission pipeline, reviewer edits, cascaded
// deletion and the flattened review table.
package inventory

import (
	"context"

	"salvagedb/pkg/blob"
	"salvagedb/pkg/docstore"
	"salvagedb/pkg/imaging"
	"salvagedb/pkg/models"
	"salvagedb/pkg/record"
)

// BlobStore is the blob-adapter surface the service needs.
type BlobStore interface {
	Upload(ctx context.Context, p blob.UploadParams) (*models.Asset, error)
	Resolve(ctx context.Context, root, uid, namePattern string, extensions []string) ([]models.Asset, error)
	ExtractInfo(ctx context.Context, assets []models.Asset, kind blob.InfoKind) ([]any, error)
	Delete(ctx context.Context, root, uid string, filenames []string) error
}

// DocStore is the document-store surface the service needs.
type DocStore interface {
	SetItem(ctx context.Context, ownerID, uid string, doc map[string]any) error
	GetItem(ctx context.Context, ownerID, uid string) (map[string]any, error)
	UpdateItem(ctx context.Context, ownerID, uid string, partial map[string]any) error
	DeleteItem(ctx context.Context, ownerID, uid string) error
	StreamItems(ctx context.Context) ([]docstore.ItemRow, error)
}

// Normalizer re-encodes uploaded photographs into the canonical format.
type Normalizer interface {
	Normalize(raw []byte, originalName string, quality int, format imaging.Format) (string, error)
}

// Service is the inventory bookkeeping layer the HTTP surface calls into.
type Service struct {
	blobs     BlobStore
	docs      DocStore
	images    Normalizer
	assembler *record.Assembler
	// root is the global asset root directory; assets live under
	// {root}/{uid} regardless of which owner's record references them.
	root string
}

// New wires a Service.
func New(blobs BlobStore, docs DocStore, images Normalizer, root string) *Service {
	return &Service{
		blobs:     blobs,
		docs:      docs,
		images:    images,
		assembler: record.New(blobs),
		root:      root,
	}
}

// AssetRoot returns the configured global asset root.
func (s *Service) AssetRoot() string {
	return s.root
}
