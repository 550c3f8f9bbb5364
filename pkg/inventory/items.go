package inventory

import (
	"context"
	"strings"

	"salvagedb/pkg/log"
	"salvagedb/pkg/record"
)

// SetItem overwrites the record at users/{ownerID}/items/{uid}. Used by
// reviewer edits that replace a record wholesale; the owner's access level is
// restamped as a side effect of every write.
func (s *Service) SetItem(ctx context.Context, ownerID, uid string, doc map[string]any) error {
	return s.docs.SetItem(ctx, ownerID, uid, doc)
}

// UpdateItem merges partial fields into an existing record without touching
// the access level. Returns docstore.ErrItemNotFound when the target is
// missing.
func (s *Service) UpdateItem(ctx context.Context, ownerID, uid string, partial map[string]any) error {
	return s.docs.UpdateItem(ctx, ownerID, uid, partial)
}

// DeleteItem removes a record and its assets. The record's blob filenames
// are resolved first (stored keys preferred, URL tails as fallback for
// records written before keys were stored), the blobs are deleted under the
// global asset root, then the document goes. Blob deletion is idempotent, so
// a retried delete that already removed some blobs still completes.
func (s *Service) DeleteItem(ctx context.Context, ownerID, uid string) error {
	doc, err := s.docs.GetItem(ctx, ownerID, uid)
	if err != nil {
		return err
	}

	filenames := assetFilenames(doc)
	if len(filenames) > 0 {
		if err := s.blobs.Delete(ctx, s.root, uid, filenames); err != nil {
			return err
		}
	}

	if err := s.docs.DeleteItem(ctx, ownerID, uid); err != nil {
		return err
	}

	log.Info().
		Str("owner", ownerID).
		Str("uid", uid).
		Int("assets", len(filenames)).
		Msg("Item and assets deleted")
	return nil
}

// assetFilenames derives the blob filenames referenced by a record. Stored
// raw keys are authoritative; image/model URL lists are the fallback, taking
// the last path segment and dropping any query string.
func assetFilenames(doc map[string]any) []string {
	keys := stringList(doc[record.KeyImageKeys])
	keys = append(keys, stringList(doc[record.KeyModelKeys])...)
	if len(keys) > 0 {
		filenames := make([]string, 0, len(keys))
		for _, key := range keys {
			filenames = append(filenames, lastSegment(key))
		}
		return filenames
	}

	urls := stringList(doc[record.KeyImages])
	urls = append(urls, stringList(doc[record.KeyModel])...)
	filenames := make([]string, 0, len(urls))
	for _, u := range urls {
		filenames = append(filenames, lastSegment(u))
	}
	return filenames
}

func stringList(value any) []string {
	items, ok := value.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

func lastSegment(ref string) string {
	if i := strings.IndexByte(ref, '?'); i >= 0 {
		ref = ref[:i]
	}
	if i := strings.LastIndexByte(ref, '/'); i >= 0 {
		ref = ref[i+1:]
	}
	return ref
}
