package blob

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"salvagedb/pkg/compress"
	"salvagedb/pkg/meta"
	"salvagedb/pkg/models"
	"salvagedb/pkg/scratch"
)

const (
	testRoot = "inventory"
	testUID  = "0b7e4a3c-1f2d-4e5a-9b8c-7d6e5f4a3b2c"
)

// AdapterTestSuite tests the blob adapter against the in-memory store double.
type AdapterTestSuite struct {
	suite.Suite
	mock    *MockObjectStore
	adapter *Adapter
	dir     *scratch.Dir
}

// SetupTest runs before each test
func (s *AdapterTestSuite) SetupTest() {
	var err error
	s.dir, err = scratch.New(filepath.Join(s.T().TempDir(), "scratch"))
	s.Require().NoError(err)

	s.mock = NewMockObjectStore()
	s.adapter = New(s.mock, "salvage-assets", "https://assets.example.com/%s", s.dir, 0)
}

func (s *AdapterTestSuite) upload(p UploadParams) {
	if p.Root == "" {
		p.Root = testRoot
	}
	if p.UID == "" {
		p.UID = testUID
	}
	_, err := s.adapter.Upload(context.Background(), p)
	s.Require().NoError(err)
}

// TestUploadPlain tests an uncompressed upload and its descriptor.
func (s *AdapterTestSuite) TestUploadPlain() {
	data := []byte("webp image bytes")
	asset, err := s.adapter.Upload(context.Background(), UploadParams{
		Root:         testRoot,
		UID:          testUID,
		Data:         data,
		DestName:     "W01-F-frame-s1234567-00",
		OriginalName: "photo.webp",
		Owner:        "s1234567",
		Category:     "image",
	})
	s.Require().NoError(err)

	s.Equal(testRoot+"/"+testUID+"/W01-F-frame-s1234567-00.webp", asset.Key)
	s.Equal("W01-F-frame-s1234567-00.webp", asset.Filename)
	s.Equal("https://assets.example.com/"+asset.Key, asset.URL)
	s.Equal(meta.Hash(data), asset.Hash)
	s.Equal(asset.Hash, asset.OriginalHash)
	s.Equal(int64(len(data)), asset.Size)
	s.True(s.mock.Has(asset.Key))
}

// TestUploadGzipKeyAndHashes tests that compression appends the suffix and
// keeps original-hash describing the pre-compression bytes.
func (s *AdapterTestSuite) TestUploadGzipKeyAndHashes() {
	data := bytes.Repeat([]byte("3dm mesh "), 200)
	asset, err := s.adapter.Upload(context.Background(), UploadParams{
		Root:         testRoot,
		UID:          testUID,
		Data:         data,
		DestName:     "W01-F-frame-s1234567",
		OriginalName: "frame.3dm",
		Owner:        "s1234567",
		Category:     "3d_model",
		Compression:  compress.Gzip,
	})
	s.Require().NoError(err)

	s.Equal("W01-F-frame-s1234567.3dm.gz", asset.Filename)
	s.Equal(meta.Hash(data), asset.OriginalHash)
	s.NotEqual(asset.OriginalHash, asset.Hash)

	stored, metadata := s.mock.Object(asset.Key)
	s.Equal(meta.Hash(stored), asset.Hash)
	s.Equal(meta.Hash(data), metadata[MetaOriginalHash])
	s.Equal("gzip", metadata[MetaCompression])

	reader, err := gzip.NewReader(bytes.NewReader(stored))
	s.Require().NoError(err)
	restored, err := io.ReadAll(reader)
	s.Require().NoError(err)
	s.Equal(data, restored)
}

// TestUploadCleansScratchOnFailure tests that the compressed scratch artifact
// is removed even when the store rejects the upload.
func (s *AdapterTestSuite) TestUploadCleansScratchOnFailure() {
	s.mock.FailPut = errors.New("access denied")

	_, err := s.adapter.Upload(context.Background(), UploadParams{
		Root:         testRoot,
		UID:          testUID,
		Data:         []byte("mesh"),
		DestName:     "stem",
		OriginalName: "frame.3dm",
		Compression:  compress.XZ,
	})
	s.Require().ErrorIs(err, ErrUploadFailed)

	entries, readErr := os.ReadDir(s.dir.Root())
	s.Require().NoError(readErr)
	s.Empty(entries)
}

// TestUploadCallerMetadataWins tests caller-supplied keys override stamped ones.
func (s *AdapterTestSuite) TestUploadCallerMetadataWins() {
	raw := []byte("original jpeg bytes")
	asset, err := s.adapter.Upload(context.Background(), UploadParams{
		Root:         testRoot,
		UID:          testUID,
		Data:         []byte("recoded webp bytes"),
		DestName:     "stem-00",
		OriginalName: "photo.webp",
		Metadata: map[string]string{
			MetaOriginalHash: meta.Hash(raw),
			MetaOriginalName: "photo.jpg",
		},
	})
	s.Require().NoError(err)

	_, metadata := s.mock.Object(asset.Key)
	s.Equal(meta.Hash(raw), metadata[MetaOriginalHash])
	s.Equal("photo.jpg", metadata[MetaOriginalName])
}

// TestUploadUnsupportedAlgorithm tests that a bad codec is rejected before
// any store call.
func (s *AdapterTestSuite) TestUploadUnsupportedAlgorithm() {
	_, err := s.adapter.Upload(context.Background(), UploadParams{
		Root:         testRoot,
		UID:          testUID,
		Data:         []byte("x"),
		DestName:     "stem",
		OriginalName: "a.bin",
		Compression:  compress.Algorithm("zstd"),
	})
	s.Require().ErrorIs(err, compress.ErrUnsupportedAlgorithm)
	s.Zero(s.mock.PutCalls)
}

// TestDownloadRoundTrip tests fetching a blob to scratch storage.
func (s *AdapterTestSuite) TestDownloadRoundTrip() {
	s.upload(UploadParams{Data: []byte("payload"), DestName: "stem-00", OriginalName: "p.webp"})

	path, err := s.adapter.Download(context.Background(), testRoot, testUID, "stem-00.webp")
	s.Require().NoError(err)

	data, err := os.ReadFile(path)
	s.Require().NoError(err)
	s.Equal([]byte("payload"), data)
}

// TestDownloadMissing tests the transport error taxonomy.
func (s *AdapterTestSuite) TestDownloadMissing() {
	_, err := s.adapter.Download(context.Background(), testRoot, testUID, "nope.webp")
	s.ErrorIs(err, ErrDownloadFailed)
}

// TestResolveExactExtensionOrder tests at most one match per extension, in
// extension-list order.
func (s *AdapterTestSuite) TestResolveExactExtensionOrder() {
	s.upload(UploadParams{Data: []byte("a"), DestName: "ABC-01", OriginalName: "x.jpg"})
	s.upload(UploadParams{Data: []byte("b"), DestName: "ABC-01", OriginalName: "x.png"})

	assets, err := s.adapter.Resolve(context.Background(), testRoot, testUID, "ABC-01", []string{".png", ".jpg", ".webp"})
	s.Require().NoError(err)
	s.Require().Len(assets, 2)
	s.Equal("ABC-01.png", assets[0].Filename)
	s.Equal("ABC-01.jpg", assets[1].Filename)
}

// TestResolveExactMissingIsEmpty tests a nonexistent name resolves to an
// empty list, not an error.
func (s *AdapterTestSuite) TestResolveExactMissingIsEmpty() {
	assets, err := s.adapter.Resolve(context.Background(), testRoot, testUID, "ghost", []string{".jpg", ".png"})
	s.Require().NoError(err)
	s.Empty(assets)
}

// TestResolveWildcard tests prefix+glob+extension filtering.
func (s *AdapterTestSuite) TestResolveWildcard() {
	s.upload(UploadParams{Data: []byte("1"), DestName: "ABC-01", OriginalName: "x.jpg"})
	s.upload(UploadParams{Data: []byte("2"), DestName: "ABC-02", OriginalName: "x.png"})
	s.upload(UploadParams{Data: []byte("3"), DestName: "XYZ-01", OriginalName: "x.jpg"})
	s.upload(UploadParams{Data: []byte("4"), DestName: "ABC-03", OriginalName: "x.txt"})

	assets, err := s.adapter.Resolve(context.Background(), testRoot, testUID, "ABC-*", []string{".jpg", ".png"})
	s.Require().NoError(err)
	s.Require().Len(assets, 2)

	names := []string{assets[0].Filename, assets[1].Filename}
	s.Contains(names, "ABC-01.jpg")
	s.Contains(names, "ABC-02.png")
}

// TestResolveWildcardIgnoresOtherUIDs tests the {root}/{uid} scoping.
func (s *AdapterTestSuite) TestResolveWildcardIgnoresOtherUIDs() {
	s.upload(UploadParams{Data: []byte("1"), DestName: "ABC-01", OriginalName: "x.jpg"})
	s.upload(UploadParams{UID: "other-uid", Data: []byte("2"), DestName: "ABC-02", OriginalName: "x.jpg"})

	assets, err := s.adapter.Resolve(context.Background(), testRoot, testUID, "ABC-*", []string{".jpg"})
	s.Require().NoError(err)
	s.Require().Len(assets, 1)
	s.Equal("ABC-01.jpg", assets[0].Filename)
}

// TestExtractInfoKinds tests the four info kinds plus the defect case.
func (s *AdapterTestSuite) TestExtractInfoKinds() {
	raw := bytes.Repeat([]byte("model "), 100)
	s.upload(UploadParams{
		Data: raw, DestName: "MOD-frame", OriginalName: "frame.3dm",
		Compression: compress.Gzip, Category: "3d_model",
	})

	assets, err := s.adapter.Resolve(context.Background(), testRoot, testUID, "MOD-*", []string{".gz"})
	s.Require().NoError(err)
	s.Require().Len(assets, 1)

	urls, err := s.adapter.ExtractInfo(context.Background(), assets, InfoURL)
	s.Require().NoError(err)
	s.Equal([]any{assets[0].URL}, urls)

	hashes, err := s.adapter.ExtractInfo(context.Background(), assets, InfoHash)
	s.Require().NoError(err)
	s.Equal([]any{assets[0].Hash}, hashes)

	sizes, err := s.adapter.ExtractInfo(context.Background(), assets, InfoSize)
	s.Require().NoError(err)
	s.Equal([]any{assets[0].Size}, sizes)

	// Wildcard listings carry no metadata; originalHash triggers a metadata read.
	originals, err := s.adapter.ExtractInfo(context.Background(), assets, InfoOriginalHash)
	s.Require().NoError(err)
	s.Equal([]any{meta.Hash(raw)}, originals)

	_, err = s.adapter.ExtractInfo(context.Background(), assets, InfoKind("etag"))
	s.ErrorIs(err, ErrUnsupportedInfoKind)
}

// TestExtractInfoOriginalHashAbsent tests null for blobs without the field.
func (s *AdapterTestSuite) TestExtractInfoOriginalHashAbsent() {
	values, err := s.adapter.ExtractInfo(context.Background(), []models.Asset{{URL: "u"}}, InfoOriginalHash)
	s.Require().NoError(err)
	s.Equal([]any{nil}, values)
}

// TestDeleteIdempotent tests that deleting missing blobs is silent.
func (s *AdapterTestSuite) TestDeleteIdempotent() {
	s.upload(UploadParams{Data: []byte("1"), DestName: "ABC-01", OriginalName: "x.jpg"})

	err := s.adapter.Delete(context.Background(), testRoot, testUID, []string{"ABC-01.jpg", "never-there.png"})
	s.Require().NoError(err)
	s.False(s.mock.Has(Key(testRoot, testUID, "ABC-01.jpg")))
}

func TestAdapterTestSuite(t *testing.T) {
	suite.Run(t, new(AdapterTestSuite))
}
