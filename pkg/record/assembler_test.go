package record

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salvagedb/pkg/blob"
	"salvagedb/pkg/models"
)

// fakeResolver serves canned assets and counts calls.
type fakeResolver struct {
	assets       map[string][]models.Asset // extension-list fingerprint -> assets
	resolveCalls int
}

func extFingerprint(exts []string) string {
	out := ""
	for _, e := range exts {
		out += e
	}
	return out
}

func (f *fakeResolver) Resolve(_ context.Context, _, _, _ string, extensions []string) ([]models.Asset, error) {
	f.resolveCalls++
	return f.assets[extFingerprint(extensions)], nil
}

func (f *fakeResolver) ExtractInfo(_ context.Context, assets []models.Asset, kind blob.InfoKind) ([]any, error) {
	values := make([]any, 0, len(assets))
	for _, a := range assets {
		switch kind {
		case blob.InfoURL:
			values = append(values, a.URL)
		case blob.InfoHash:
			values = append(values, a.Hash)
		case blob.InfoOriginalHash:
			if a.OriginalHash == "" {
				values = append(values, nil)
			} else {
				values = append(values, a.OriginalHash)
			}
		case blob.InfoSize:
			values = append(values, a.Size)
		default:
			return nil, blob.ErrUnsupportedInfoKind
		}
	}
	return values, nil
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(3, 2, true, false))
	assert.ErrorIs(t, Validate(0, 2, true, false), ErrZeroAmount)
	assert.ErrorIs(t, Validate(-1, 2, true, false), ErrNegativeAmount)
	assert.ErrorIs(t, Validate(1, 11, true, false), ErrTooManyImages)
	assert.ErrorIs(t, Validate(1, 2, false, false), ErrMissingModel)

	// Every validation error is part of the ErrValidation taxonomy.
	assert.ErrorIs(t, Validate(0, 0, false, false), ErrValidation)

	// Locked assets waive the model requirement but nothing else.
	assert.NoError(t, Validate(1, 0, false, true))
	assert.ErrorIs(t, Validate(0, 0, false, true), ErrZeroAmount)
}

func TestStem(t *testing.T) {
	assert.Equal(t, "W01-F-Frame-s1234567", Stem("w01-f", "Frame", "s1234567"))
}

func TestBuildFromAssets(t *testing.T) {
	assets := []models.Asset{
		{
			Filename: "STEM-01.webp", Key: "inventory/u1/STEM-01.webp",
			URL: "https://a/inventory/u1/STEM-01.webp", Category: models.CategoryImage,
		},
		{
			Filename: "STEM.3dm.gz", Key: "inventory/u1/STEM.3dm.gz",
			URL: "https://a/inventory/u1/STEM.3dm.gz", Category: models.CategoryModel,
			Hash: "deadbeef", OriginalHash: "cafebabe",
		},
		{
			Filename: "STEM-00.webp", Key: "inventory/u1/STEM-00.webp",
			URL: "https://a/inventory/u1/STEM-00.webp", Category: models.CategoryImage,
		},
	}

	scalars := map[string]any{"name": "Frame", "material": "Timber"}
	doc := New(nil).BuildFromAssets(scalars, assets)

	// Scalars survive, input map untouched.
	assert.Equal(t, "Frame", doc["name"])
	assert.Len(t, scalars, 2)

	// Images ordered by filename regardless of input order.
	assert.Equal(t, []any{
		"https://a/inventory/u1/STEM-00.webp",
		"https://a/inventory/u1/STEM-01.webp",
	}, doc[KeyImages])
	assert.Equal(t, []any{
		"inventory/u1/STEM-00.webp",
		"inventory/u1/STEM-01.webp",
	}, doc[KeyImageKeys])

	assert.Equal(t, []any{"https://a/inventory/u1/STEM.3dm.gz"}, doc[KeyModel])
	assert.Equal(t, []any{"inventory/u1/STEM.3dm.gz"}, doc[KeyModelKeys])
	assert.Equal(t, []any{"cafebabe"}, doc[KeyOriginalHash])
	assert.Equal(t, []any{"deadbeef"}, doc[KeyContentHash])
	assert.NotEmpty(t, doc[KeyTime])
}

func TestBuildFromStore(t *testing.T) {
	resolver := &fakeResolver{assets: map[string][]models.Asset{
		extFingerprint(ImageExtensions): {
			{Filename: "S-01.webp", Key: "inventory/u1/S-01.webp", URL: "https://a/S-01.webp"},
			{Filename: "S-00.webp", Key: "inventory/u1/S-00.webp", URL: "https://a/S-00.webp"},
		},
		extFingerprint(ModelExtensions): {
			{Filename: "S.3dm.gz", Key: "inventory/u1/S.3dm.gz", URL: "https://a/S.3dm.gz", Hash: "h1", OriginalHash: ""},
		},
	}}

	doc, err := New(resolver).BuildFromStore(context.Background(), map[string]any{"amount": 2.0}, "inventory", "u1", "S")
	require.NoError(t, err)

	assert.Equal(t, 2, resolver.resolveCalls)
	assert.Equal(t, 2.0, doc["amount"])
	assert.Equal(t, []any{"https://a/S-00.webp", "https://a/S-01.webp"}, doc[KeyImages])
	assert.Equal(t, []any{"https://a/S.3dm.gz"}, doc[KeyModel])
	// Absent original hash surfaces as null, not empty string.
	assert.Equal(t, []any{nil}, doc[KeyOriginalHash])
	assert.Equal(t, []any{"h1"}, doc[KeyContentHash])
	assert.Equal(t, []any{"inventory/u1/S-00.webp", "inventory/u1/S-01.webp"}, doc[KeyImageKeys])
}
