package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/creativehub/nexus/internal/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// s3API is the subset of the S3 client the uploader uses
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// S3Uploader handles project media and avatar uploads to AWS S3
type S3Uploader struct {
	client  s3API
	bucket  string
	region  string
	baseURL string
	now     func() time.Time
}

// UploadResult contains the result of an S3 upload
type UploadResult struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	Bucket      string `json:"bucket"`
	Region      string `json:"region"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// NewS3Uploader creates a new S3 uploader. Public URLs are built from baseURL
// (a CDN in front of the bucket) or the bucket's virtual-host URL when empty.
func NewS3Uploader(ctx context.Context, region, bucket, baseURL string) (*S3Uploader, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return newS3Uploader(s3.NewFromConfig(cfg), region, bucket, baseURL), nil
}

func newS3Uploader(client s3API, region, bucket, baseURL string) *S3Uploader {
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}
	return &S3Uploader{
		client:  client,
		bucket:  bucket,
		region:  region,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		now:     time.Now,
	}
}

// UploadMedia stores a project image or video under media/{yyyy}/{mm}/{owner}/
func (u *S3Uploader) UploadMedia(ctx context.Context, body io.Reader, size int64, ownerID, filename string) (*UploadResult, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	now := u.now().UTC()
	key := fmt.Sprintf("media/%d/%02d/%s/%s%s", now.Year(), now.Month(), ownerID, uuid.New().String(), ext)

	// Media objects are immutable; a new upload always gets a new key
	return u.put(ctx, key, body, size, ext, "max-age=31536000, immutable", map[string]string{
		"owner-id":          ownerID,
		"original-filename": sanitizeMetadata(filename),
		"file-type":         "media",
	})
}

// UploadAvatar stores a profile picture under avatars/{owner}/
func (u *S3Uploader) UploadAvatar(ctx context.Context, body io.Reader, size int64, ownerID, filename string) (*UploadResult, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	key := fmt.Sprintf("avatars/%s/%s%s", ownerID, uuid.New().String(), ext)

	return u.put(ctx, key, body, size, ext, "max-age=86400", map[string]string{
		"owner-id":  ownerID,
		"file-type": "avatar",
	})
}

func (u *S3Uploader) put(ctx context.Context, key string, body io.Reader, size int64, ext, cacheControl string, metadata map[string]string) (*UploadResult, error) {
	ctx, span := telemetry.TraceExternalCall(ctx, "s3", "put_object",
		attribute.String("s3.key", key),
		attribute.Int64("s3.size", size),
	)

	contentType := ContentType(ext)
	input := &s3.PutObjectInput{
		Bucket:       aws.String(u.bucket),
		Key:          aws.String(key),
		Body:         body,
		ContentType:  aws.String(contentType),
		CacheControl: aws.String(cacheControl),
		Metadata:     metadata,
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}

	_, err := u.client.PutObject(ctx, input)
	telemetry.EndExternalCall(span, err)
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	return &UploadResult{
		Key:         key,
		URL:         u.PublicURL(key),
		Bucket:      u.bucket,
		Region:      u.region,
		ContentType: contentType,
		Size:        size,
	}, nil
}

// PublicURL returns the URL clients load an object from
func (u *S3Uploader) PublicURL(key string) string {
	return u.baseURL + "/" + key
}

// DeleteFile deletes a file from S3
func (u *S3Uploader) DeleteFile(ctx context.Context, key string) error {
	ctx, span := telemetry.TraceExternalCall(ctx, "s3", "delete_object", attribute.String("s3.key", key))
	_, err := u.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
	})
	telemetry.EndExternalCall(span, err)
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}

	return nil
}

// CheckBucketAccess verifies that we can access the S3 bucket
func (u *S3Uploader) CheckBucketAccess(ctx context.Context) error {
	_, err := u.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(u.bucket),
	})
	if err != nil {
		return fmt.Errorf("cannot access S3 bucket %s: %w", u.bucket, err)
	}

	return nil
}

// ContentType returns the MIME type for a media file extension
func ContentType(extension string) string {
	switch strings.ToLower(extension) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".mp4":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".webm":
		return "video/webm"
	default:
		return "application/octet-stream"
	}
}

// S3 metadata values must be ASCII
func sanitizeMetadata(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= 0x20 && r < 0x7f {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
