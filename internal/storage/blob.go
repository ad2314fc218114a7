// Package storage keeps uploaded images in a gocloud.dev bucket.  The bucket
// URL picks the backend: file:// for a local directory, mem:// in tests,
// gs:// for Google Cloud Storage.
package storage

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	"gocloud.dev/gcerrors"

	"github.com/iliyamo/apparte-kost/internal/model"
)

// ErrNotFound is returned by Open for a missing object.
var ErrNotFound = errors.New("object not found")

// BlobStore stores objects under <category>/<uuid><ext> and hands out URLs
// below publicURL.
type BlobStore struct {
	bucket    *blob.Bucket
	publicURL string
}

// Open opens the bucket at bucketURL.
func Open(ctx context.Context, bucketURL, publicURL string) (*BlobStore, error) {
	b, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, errors.Wrapf(err, "open bucket %s", bucketURL)
	}
	return New(b, publicURL), nil
}

// New wraps an already opened bucket.
func New(bucket *blob.Bucket, publicURL string) *BlobStore {
	return &BlobStore{bucket: bucket, publicURL: strings.TrimRight(publicURL, "/")}
}

// Save writes the upload and returns its public URL.
func (s *BlobStore) Save(ctx context.Context, category string, f model.Upload) (string, error) {
	if f.Body == nil {
		return "", errors.New("empty upload")
	}
	key := path.Join(category, uuid.NewString()+strings.ToLower(path.Ext(f.Filename)))

	w, err := s.bucket.NewWriter(ctx, key, &blob.WriterOptions{ContentType: f.ContentType})
	if err != nil {
		return "", errors.Wrap(err, "new writer")
	}
	if _, err := io.Copy(w, f.Body); err != nil {
		_ = w.Close()
		return "", errors.Wrapf(err, "write %s", key)
	}
	if err := w.Close(); err != nil {
		return "", errors.Wrapf(err, "close %s", key)
	}
	return s.publicURL + "/" + key, nil
}

// Remove deletes the object behind a URL returned by Save.  URLs that do not
// belong to this store and objects already gone are ignored.
func (s *BlobStore) Remove(ctx context.Context, url string) error {
	key, ok := s.Key(url)
	if !ok {
		return nil
	}
	err := s.bucket.Delete(ctx, key)
	if err != nil && gcerrors.Code(err) != gcerrors.NotFound {
		return errors.Wrapf(err, "delete %s", key)
	}
	return nil
}

// Key returns the object key of a public URL.
func (s *BlobStore) Key(url string) (string, bool) {
	key, ok := strings.CutPrefix(url, s.publicURL+"/")
	if !ok || key == "" {
		return "", false
	}
	return key, true
}

// Open returns a reader for key.  The caller closes it.
func (s *BlobStore) Open(ctx context.Context, key string) (*blob.Reader, error) {
	r, err := s.bucket.NewReader(ctx, key, nil)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "open %s", key)
	}
	return r, nil
}

func (s *BlobStore) Close() error { return s.bucket.Close() }
