package blob

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"salvagedb/pkg/meta"
)

// storedObject is one object held by the in-memory store double.
type storedObject struct {
	data     []byte
	metadata map[string]string
}

// MockObjectStore is an in-memory ObjectAPI implementation with call counters.
type MockObjectStore struct {
	mu      sync.Mutex
	objects map[string]storedObject

	PutCalls    int
	GetCalls    int
	HeadCalls   int
	ListCalls   int
	DeleteCalls int

	// FailPut forces PutObject to fail when set.
	FailPut error
}

func NewMockObjectStore() *MockObjectStore {
	return &MockObjectStore{objects: make(map[string]storedObject)}
}

func (m *MockObjectStore) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PutCalls++

	if m.FailPut != nil {
		return nil, m.FailPut
	}

	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	metadata := make(map[string]string, len(params.Metadata))
	for k, v := range params.Metadata {
		metadata[strings.ToLower(k)] = v
	}
	m.objects[aws.ToString(params.Key)] = storedObject{data: data, metadata: metadata}

	etag := `"` + meta.Hash(data) + `"`
	return &s3.PutObjectOutput{ETag: aws.String(etag)}, nil
}

func (m *MockObjectStore) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCalls++

	obj, ok := m.objects[aws.ToString(params.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(obj.data)),
		ContentLength: aws.Int64(int64(len(obj.data))),
		ETag:          aws.String(`"` + meta.Hash(obj.data) + `"`),
		Metadata:      obj.metadata,
	}, nil
}

func (m *MockObjectStore) HeadObject(_ context.Context, params *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.HeadCalls++

	obj, ok := m.objects[aws.ToString(params.Key)]
	if !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{
		ContentLength: aws.Int64(int64(len(obj.data))),
		ETag:          aws.String(`"` + meta.Hash(obj.data) + `"`),
		Metadata:      obj.metadata,
	}, nil
}

func (m *MockObjectStore) ListObjectsV2(_ context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListCalls++

	prefix := aws.ToString(params.Prefix)
	keys := make([]string, 0, len(m.objects))
	for key := range m.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	contents := make([]types.Object, 0, len(keys))
	for _, key := range keys {
		obj := m.objects[key]
		contents = append(contents, types.Object{
			Key:  aws.String(key),
			Size: aws.Int64(int64(len(obj.data))),
			ETag: aws.String(`"` + meta.Hash(obj.data) + `"`),
		})
	}

	return &s3.ListObjectsV2Output{
		Contents:    contents,
		IsTruncated: aws.Bool(false),
	}, nil
}

func (m *MockObjectStore) DeleteObject(_ context.Context, params *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCalls++

	// S3 delete is idempotent; missing keys succeed.
	delete(m.objects, aws.ToString(params.Key))
	return &s3.DeleteObjectOutput{}, nil
}

// Has reports whether a key is stored.
func (m *MockObjectStore) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}

// Object returns the stored bytes and metadata for a key.
func (m *MockObjectStore) Object(key string) ([]byte, map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj := m.objects[key]
	return obj.data, obj.metadata
}
