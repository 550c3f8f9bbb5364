// Package record assembles persisted item documents from scalar form fields
// and asset descriptors, and enforces the submission invariants.
package record

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"salvagedb/pkg/blob"
	"salvagedb/pkg/meta"
	"salvagedb/pkg/models"
)

// MaxImages is the upper bound on photographs per submission.
const MaxImages = 10

// ImageExtensions are the blob extensions considered photographs.
var ImageExtensions = []string{".jpg", ".jpeg", ".png", ".webp"}

// ModelExtensions are the blob extensions considered 3D models, including
// the compressed forms they are stored as.
var ModelExtensions = []string{".obj", ".3dm", ".gz", ".xz"}

// Fixed document keys written by the assembler.
const (
	KeyImages       = "images"
	KeyModel        = "3d_model"
	KeyImageKeys    = "image_keys"
	KeyModelKeys    = "model_keys"
	KeyOriginalHash = "original_hash"
	KeyContentHash  = "content_hash"
	KeyTime         = "time"
)

// Validate checks the submission invariants. It must run before any upload
// so a rejected submission never leaves partial state. assetsLocked skips the
// model requirement: the caller is editing scalars while keeping stored
// assets.
func Validate(amount float64, imageCount int, hasModel, assetsLocked bool) error {
	if amount < 0 {
		return ErrNegativeAmount
	}
	if amount == 0 {
		return ErrZeroAmount
	}
	if imageCount > MaxImages {
		return ErrTooManyImages
	}
	if !assetsLocked && !hasModel {
		return ErrMissingModel
	}
	return nil
}

// Stem builds the canonical filename stem for a submission. Every asset of
// the submission derives its stored name from it.
func Stem(specID, name, owner string) string {
	return fmt.Sprintf("%s-%s-%s", strings.ToUpper(specID), name, owner)
}

// Resolver is the blob-store surface BuildFromStore needs.
type Resolver interface {
	Resolve(ctx context.Context, root, uid, namePattern string, extensions []string) ([]models.Asset, error)
	ExtractInfo(ctx context.Context, assets []models.Asset, kind blob.InfoKind) ([]any, error)
}

// Assembler builds persisted documents.
type Assembler struct {
	blobs Resolver
}

// New returns an Assembler backed by the given blob resolver.
func New(blobs Resolver) *Assembler {
	return &Assembler{blobs: blobs}
}

// BuildFromAssets merges freshly uploaded asset descriptors into the scalar
// fields and stamps the submission time. Assets are partitioned by category
// and ordered by filename, so image URLs keep their sequence numbering.
// Scalar fields are not validated here; only the fixed asset keys are set.
func (a *Assembler) BuildFromAssets(scalars map[string]any, assets []models.Asset) map[string]any {
	doc := make(map[string]any, len(scalars)+8)
	for k, v := range scalars {
		doc[k] = v
	}

	var images, modelFiles []models.Asset
	for _, asset := range assets {
		if asset.Category == models.CategoryModel {
			modelFiles = append(modelFiles, asset)
		} else {
			images = append(images, asset)
		}
	}
	sort.Slice(images, func(i, j int) bool { return images[i].Filename < images[j].Filename })
	sort.Slice(modelFiles, func(i, j int) bool { return modelFiles[i].Filename < modelFiles[j].Filename })

	doc[KeyImages] = urls(images)
	doc[KeyImageKeys] = keys(images)
	doc[KeyModel] = urls(modelFiles)
	doc[KeyModelKeys] = keys(modelFiles)
	doc[KeyOriginalHash] = originalHashes(modelFiles)
	doc[KeyContentHash] = hashes(modelFiles)
	doc[KeyTime] = meta.Now()
	return doc
}

// BuildFromStore assembles a document by re-querying the blob store for every
// asset matching {stem}* under {root}/{uid}. Used when assets are locked
// (scalar-only edit) and the descriptors of the stored blobs are not at hand.
// Callers must ensure all uploads of the submission have completed first:
// the name-pattern re-query cannot tell this submission's blobs from a
// concurrent one's.
func (a *Assembler) BuildFromStore(ctx context.Context, scalars map[string]any, root, uid, stem string) (map[string]any, error) {
	pattern := stem + "*"

	images, err := a.blobs.Resolve(ctx, root, uid, pattern, ImageExtensions)
	if err != nil {
		return nil, err
	}
	modelFiles, err := a.blobs.Resolve(ctx, root, uid, pattern, ModelExtensions)
	if err != nil {
		return nil, err
	}

	// Listing order is store-defined; sort for stable image numbering.
	sort.Slice(images, func(i, j int) bool { return images[i].Filename < images[j].Filename })
	sort.Slice(modelFiles, func(i, j int) bool { return modelFiles[i].Filename < modelFiles[j].Filename })

	doc := make(map[string]any, len(scalars)+8)
	for k, v := range scalars {
		doc[k] = v
	}

	if doc[KeyImages], err = a.blobs.ExtractInfo(ctx, images, blob.InfoURL); err != nil {
		return nil, err
	}
	if doc[KeyModel], err = a.blobs.ExtractInfo(ctx, modelFiles, blob.InfoURL); err != nil {
		return nil, err
	}
	if doc[KeyOriginalHash], err = a.blobs.ExtractInfo(ctx, modelFiles, blob.InfoOriginalHash); err != nil {
		return nil, err
	}
	if doc[KeyContentHash], err = a.blobs.ExtractInfo(ctx, modelFiles, blob.InfoHash); err != nil {
		return nil, err
	}
	doc[KeyImageKeys] = keys(images)
	doc[KeyModelKeys] = keys(modelFiles)
	doc[KeyTime] = meta.Now()
	return doc, nil
}

func urls(assets []models.Asset) []any {
	out := make([]any, 0, len(assets))
	for _, a := range assets {
		out = append(out, a.URL)
	}
	return out
}

func keys(assets []models.Asset) []any {
	out := make([]any, 0, len(assets))
	for _, a := range assets {
		out = append(out, a.Key)
	}
	return out
}

func hashes(assets []models.Asset) []any {
	out := make([]any, 0, len(assets))
	for _, a := range assets {
		out = append(out, a.Hash)
	}
	return out
}

func originalHashes(assets []models.Asset) []any {
	out := make([]any, 0, len(assets))
	for _, a := range assets {
		if a.OriginalHash == "" {
			out = append(out, nil)
		} else {
			out = append(out, a.OriginalHash)
		}
	}
	return out
}
