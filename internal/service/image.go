package service

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/storage"
)

const maxImageBytes = 10 << 20

var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ImageService turns base64 image payloads into stored files.
type ImageService struct {
	store storage.ImageStore
}

// NewImageService creates a new ImageService instance
func NewImageService(store storage.ImageStore) *ImageService {
	return &ImageService{store: store}
}

// Save decodes payload and stores it under prefix/. field names the request
// field used in validation errors.
func (s *ImageService) Save(ctx context.Context, prefix, field, payload string) (string, error) {
	data, contentType, err := decodeImage(payload)
	if err != nil {
		return "", newValidationError(field, err.Error())
	}

	key := prefix + "/" + uuid.NewString() + imageExtensions[contentType]
	return s.store.Save(ctx, key, data, contentType)
}

// Remove deletes a stored image. Failures are logged, never returned: a stale
// file must not fail the request that replaced it.
func (s *ImageService) Remove(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.store.Delete(ctx, url); err != nil && !errors.Is(err, storage.ErrNotOwned) {
		logging.Ctx(ctx).Warn().Err(err).Str("url", url).Msg("failed to remove image")
	}
}

// decodeImage accepts "data:image/<type>;base64,<data>" or bare base64.
func decodeImage(payload string) ([]byte, string, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, "", errors.New("this field may not be blank")
	}

	if strings.HasPrefix(payload, "data:") {
		header, body, ok := strings.Cut(payload, ",")
		if !ok || !strings.HasSuffix(header, ";base64") {
			return nil, "", errors.New("invalid data URI")
		}
		payload = body
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(payload)
		if err != nil {
			return nil, "", errors.New("invalid base64 image")
		}
	}
	if len(data) > maxImageBytes {
		return nil, "", errors.New("image is too large")
	}

	contentType := http.DetectContentType(data)
	if _, ok := imageExtensions[contentType]; !ok {
		return nil, "", errors.New("upload a valid image")
	}
	return data, contentType, nil
}
