package inventory

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"

	"salvagedb/pkg/auth"
	"salvagedb/pkg/blob"
	"salvagedb/pkg/compress"
	"salvagedb/pkg/imaging"
	"salvagedb/pkg/log"
	"salvagedb/pkg/meta"
	"salvagedb/pkg/models"
	"salvagedb/pkg/record"
)

// Submission is one data-entry form submission.
type Submission struct {
	Owner auth.Identity
	// UID identifies the item; empty generates a fresh one. Reusing a uid
	// overwrites that item entirely (last write wins, including owner).
	UID  string
	Item models.Item
	// Images are raw uploaded photographs, at most record.MaxImages.
	Images []models.UploadFile
	// Model is the raw uploaded 3D model file.
	Model *models.UploadFile
	// ModelCompression defaults to gzip.
	ModelCompression compress.Algorithm
	// ImageQuality is the re-encode quality, 0 for the default.
	ImageQuality int
	// LockAssets keeps the stored blobs and only rewrites scalar fields.
	LockAssets bool
	// LockUID keeps the same uid for the next submission instead of
	// generating a new one.
	LockUID bool
}

// SubmitResult reports what a submission produced.
type SubmitResult struct {
	UID string `json:"uid"`
	// NextUID is the identifier the form should present for the next
	// submission; equals UID when the uid is locked.
	NextUID string         `json:"next_uid"`
	Assets  []models.Asset `json:"assets"`
}

// Submit runs the full pipeline: validate, normalize and upload each image,
// compress and upload the model, assemble the record, persist it.
//
// Validation happens before any upload, so a rejected submission never
// mutates either store. A submission failing midway through the uploads can
// leave orphaned blobs with no record; that is a known gap, reported to the
// caller rather than rolled back. Two concurrent submissions with the same
// uid race and the later write wins entirely.
func (s *Service) Submit(ctx context.Context, sub Submission) (*SubmitResult, error) {
	if err := record.Validate(sub.Item.Amount, len(sub.Images), sub.Model != nil, sub.LockAssets); err != nil {
		return nil, err
	}

	uid := sub.UID
	if uid == "" {
		uid = uuid.NewString()
	}

	stem := record.Stem(sub.Item.SpecID, sub.Item.Name, sub.Owner.ID)

	log.Info().
		Str("owner", sub.Owner.ID).
		Str("uid", uid).
		Str("stem", stem).
		Int("images", len(sub.Images)).
		Bool("lock_assets", sub.LockAssets).
		Msg("Processing submission")

	var assets []models.Asset
	if !sub.LockAssets {
		uploaded, err := s.uploadAssets(ctx, sub, uid, stem)
		if err != nil {
			return nil, err
		}
		assets = uploaded
	}

	scalars, err := s.scalarDoc(sub, uid)
	if err != nil {
		return nil, err
	}

	var doc map[string]any
	if sub.LockAssets {
		// No fresh descriptors to thread through; recover the stored assets
		// by name pattern.
		doc, err = s.assembler.BuildFromStore(ctx, scalars, s.root, uid, stem)
		if err != nil {
			return nil, err
		}
	} else {
		doc = s.assembler.BuildFromAssets(scalars, assets)
	}

	if err := s.docs.SetItem(ctx, sub.Owner.ID, uid, doc); err != nil {
		return nil, err
	}

	result := &SubmitResult{UID: uid, NextUID: uid, Assets: assets}
	if !sub.LockUID {
		result.NextUID = uuid.NewString()
	}
	return result, nil
}

// uploadAssets pushes every image and the model file, sequentially. Image n
// is stored as {stem}-{n:02d}; the model as the bare stem plus its
// compression suffix.
func (s *Service) uploadAssets(ctx context.Context, sub Submission, uid, stem string) ([]models.Asset, error) {
	assets := make([]models.Asset, 0, len(sub.Images)+1)

	for i, img := range sub.Images {
		asset, err := s.uploadImage(ctx, sub, uid, stem, i, img)
		if err != nil {
			return nil, err
		}
		assets = append(assets, *asset)
	}

	if sub.Model != nil {
		algo := sub.ModelCompression
		if algo == compress.None {
			algo = compress.Gzip
		}
		asset, err := s.blobs.Upload(ctx, blob.UploadParams{
			Root:         s.root,
			UID:          uid,
			Data:         sub.Model.Data,
			DestName:     stem,
			OriginalName: sub.Model.Name,
			Owner:        sub.Owner.ID,
			Category:     models.CategoryModel,
			Compression:  algo,
		})
		if err != nil {
			return nil, err
		}
		assets = append(assets, *asset)
	}

	return assets, nil
}

// uploadImage normalizes one photograph and uploads the re-encoded bytes.
// The original-hash metadata describes the bytes as uploaded by the client,
// before re-encoding.
func (s *Service) uploadImage(ctx context.Context, sub Submission, uid, stem string, seq int, img models.UploadFile) (*models.Asset, error) {
	normalized, err := s.images.Normalize(img.Data, img.Name, sub.ImageQuality, imaging.WebP)
	if err != nil {
		return nil, err
	}
	defer func() {
		if removeErr := os.Remove(normalized); removeErr != nil && !os.IsNotExist(removeErr) {
			log.Error().Err(removeErr).Str("path", normalized).Msg("Failed to remove normalized image")
		}
	}()

	data, err := os.ReadFile(normalized)
	if err != nil {
		return nil, fmt.Errorf("%w: reading normalized image: %w", blob.ErrUploadFailed, err)
	}

	return s.blobs.Upload(ctx, blob.UploadParams{
		Root:         s.root,
		UID:          uid,
		Data:         data,
		DestName:     fmt.Sprintf("%s-%02d", stem, seq),
		OriginalName: normalized,
		Owner:        sub.Owner.ID,
		Category:     models.CategoryImage,
		Metadata: map[string]string{
			blob.MetaOriginalHash: meta.Hash(img.Data),
			blob.MetaOriginalSize: fmt.Sprintf("%d", meta.Size(img.Data)),
			blob.MetaOriginalName: img.Name,
		},
	})
}

// scalarDoc converts the scalar form fields into a document map, stamping
// uid and owner. Asset fields are filled in by the assembler afterwards.
func (s *Service) scalarDoc(sub Submission, uid string) (map[string]any, error) {
	item := sub.Item
	item.UID = uid
	item.Owner = sub.Owner.ID
	doc, err := item.Doc()
	if err != nil {
		return nil, err
	}
	// The assembler owns these keys.
	delete(doc, record.KeyImages)
	delete(doc, record.KeyModel)
	delete(doc, record.KeyImageKeys)
	delete(doc, record.KeyModelKeys)
	delete(doc, record.KeyOriginalHash)
	delete(doc, record.KeyContentHash)
	return doc, nil
}
