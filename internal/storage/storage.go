// Package storage keeps product images in an S3-compatible bucket and maps
// object keys to the public URLs stored on products.
package storage

import (
	"context"
	"io"
	"strings"
)

// productPrefix is the key prefix of every image uploaded through the API.
const productPrefix = "products/"

// Backend is the bucket the images live in. MinioBackend implements it.
type Backend interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, key string) error
}

// Storage pairs a Backend with the public base URL of its bucket.
type Storage struct {
	backend   Backend
	publicURL string
}

// NewStorage returns a Storage whose URLs are publicURL + "/" + key.
func NewStorage(backend Backend, publicURL string) *Storage {
	return &Storage{backend: backend, publicURL: strings.TrimRight(publicURL, "/")}
}

func (s *Storage) EnsureBucket(ctx context.Context) error {
	return s.backend.EnsureBucket(ctx)
}

// URL returns the public URL for key.
func (s *Storage) URL(key string) string {
	return s.publicURL + "/" + key
}

// KeyFromURL reports the object key behind a product image URL. Only URLs
// under the public base and the products/ prefix belong to this bucket.
func (s *Storage) KeyFromURL(url string) (string, bool) {
	key, ok := strings.CutPrefix(url, s.publicURL+"/")
	if !ok || !strings.HasPrefix(key, productPrefix) || len(key) == len(productPrefix) {
		return "", false
	}
	if strings.Contains(key, "..") || strings.ContainsAny(key, "?#") {
		return "", false
	}
	return key, true
}

// RemoveProductImage deletes the object behind url. URLs pointing outside
// the bucket are left alone.
func (s *Storage) RemoveProductImage(ctx context.Context, url string) error {
	key, ok := s.KeyFromURL(url)
	if !ok {
		return nil
	}
	return s.backend.Remove(ctx, key)
}
