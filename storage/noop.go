package storage

import (
	"context"
	"errors"
	"io"
)

var ErrUploadsDisabled = errors.New("file uploads are not configured")

type noopUploader struct{}

// NewNoopUploader возвращает заглушку для окружений без настроенного R2:
// загрузка отклоняется, публичные URL не формируются.
func NewNoopUploader() FileUploader {
	return noopUploader{}
}

func (noopUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error) {
	return nil, ErrUploadsDisabled
}

func (noopUploader) Delete(ctx context.Context, key string) error {
	return ErrUploadsDisabled
}

func (noopUploader) GetPublicURL(key string) string {
	return ""
}
