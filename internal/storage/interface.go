package storage

import (
	"context"
	"io"
)

// MediaUploader stores project media and avatars.
// Handlers depend on it so tests can swap in a fake.
type MediaUploader interface {
	UploadMedia(ctx context.Context, body io.Reader, size int64, ownerID, filename string) (*UploadResult, error)
	UploadAvatar(ctx context.Context, body io.Reader, size int64, ownerID, filename string) (*UploadResult, error)
	DeleteFile(ctx context.Context, key string) error
}

// Ensure S3Uploader implements MediaUploader
var _ MediaUploader = (*S3Uploader)(nil)
