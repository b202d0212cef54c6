package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
)

// MaxImageSize is the largest accepted upload.
const MaxImageSize = 5 << 20

var (
	ErrImageTooLarge   = errors.New("image exceeds 5 MiB")
	ErrImageEmpty      = errors.New("image is empty")
	ErrUnsupportedType = errors.New("image must be jpeg, png or webp")
)

var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// 測試替換點
var newObjectID = uuid.NewString

// UploadedImage describes a stored product image.
type UploadedImage struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// UploadProductImage sniffs the content type from the first bytes, stores
// the image under products/<uuid>.<ext> and returns its public URL.
func (s *Storage) UploadProductImage(ctx context.Context, r io.Reader, size int64) (*UploadedImage, error) {
	if size <= 0 {
		return nil, ErrImageEmpty
	}
	if size > MaxImageSize {
		return nil, ErrImageTooLarge
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if n == 0 {
		return nil, ErrImageEmpty
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, ErrUnsupportedType
	}

	key := fmt.Sprintf("%s%s.%s", productPrefix, newObjectID(), ext)
	body := io.MultiReader(bytes.NewReader(head), r)
	if err := s.backend.Put(ctx, key, body, size, contentType); err != nil {
		return nil, fmt.Errorf("put %s: %w", key, err)
	}
	return &UploadedImage{
		Key:         key,
		URL:         s.URL(key),
		ContentType: contentType,
		Size:        size,
	}, nil
}
