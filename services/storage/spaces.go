package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// Key prefixes for the content store. Uploads land under a fixed prefix per
// content kind.
const (
	PrefixVideos          = "videos"
	PrefixVideoThumbnails = "video_thumbnails"
	PrefixNotes           = "notes"
	PrefixProfilePics     = "profile_pics"
	PrefixTeacherProfiles = "teacher_profiles"
	PrefixUploads         = "uploads"
)

// SpacesClient handles object storage on an S3-compatible Spaces bucket.
type SpacesClient struct {
	s3Client *s3.S3
	bucket   string
	endpoint string
	cdnURL   string
}

// SpacesConfig holds configuration for the Spaces client
type SpacesConfig struct {
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Endpoint  string
	CDNURL    string
}

// NewSpacesClient creates a new Spaces client
func NewSpacesClient(config SpacesConfig) (*SpacesClient, error) {
	sess, err := session.NewSession(&aws.Config{
		Credentials: credentials.NewStaticCredentials(
			config.AccessKey,
			config.SecretKey,
			"",
		),
		Endpoint:         aws.String(config.Endpoint),
		Region:           aws.String(config.Region),
		S3ForcePathStyle: aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Spaces session: %w", err)
	}

	return &SpacesClient{
		s3Client: s3.New(sess),
		bucket:   config.Bucket,
		endpoint: config.Endpoint,
		cdnURL:   config.CDNURL,
	}, nil
}

// UploadFile uploads a file to Spaces and returns its public URL.
func (s *SpacesClient) UploadFile(ctx context.Context, key string, data io.Reader, contentType string) (string, error) {
	_, err := s.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        aws.ReadSeekCloser(data),
		ACL:         aws.String("public-read"),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	return s.FileURL(key), nil
}

// DeleteFile deletes a file from Spaces
func (s *SpacesClient) DeleteFile(ctx context.Context, key string) error {
	_, err := s.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// ListFiles lists object keys under a prefix.
func (s *SpacesClient) ListFiles(ctx context.Context, prefix string) ([]string, error) {
	result, err := s.s3Client.ListObjectsV2WithContext(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	var keys []string
	for _, obj := range result.Contents {
		keys = append(keys, *obj.Key)
	}
	return keys, nil
}

// FileURL returns the public URL for a key.
func (s *SpacesClient) FileURL(key string) string {
	if s.cdnURL != "" {
		return fmt.Sprintf("%s/%s", s.cdnURL, key)
	}
	return fmt.Sprintf("https://%s.%s/%s", s.bucket, s.endpoint, key)
}

// PresignedURL generates a temporary download URL.
func (s *SpacesClient) PresignedURL(key string, expiration time.Duration) (string, error) {
	req, _ := s.s3Client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})

	url, err := req.Presign(expiration)
	if err != nil {
		return "", fmt.Errorf("failed to presign URL: %w", err)
	}
	return url, nil
}

// GenerateKey generates a unique storage key under a prefix.
func GenerateKey(prefix, filename string) string {
	timestamp := time.Now().Unix()
	ext := filepath.Ext(filename)
	base := filename[:len(filename)-len(ext)]

	return fmt.Sprintf("%s/%d_%s%s", prefix, timestamp, base, ext)
}

// ContentTypeFor returns the MIME type for a filename.
func ContentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".mp4":
		return "video/mp4"
	case ".webm":
		return "video/webm"
	case ".ogg":
		return "video/ogg"
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}
