// Package storage issues presigned upload URLs for deed photos on an S3
// compatible bucket (Cloudflare R2 in production).
package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var (
	ErrUnsupportedType = errors.New("unsupported photo type")
	ErrTooLarge        = errors.New("photo exceeds the size limit")
)

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/heic": ".heic",
}

type Options struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	PublicURL       string
	PresignTTL      time.Duration
	MaxPhotoBytes   int64
}

type Upload struct {
	UploadURL string `json:"uploadUrl"`
	FileURL   string `json:"fileUrl"`
	Key       string `json:"key"`
	ExpiresIn int    `json:"expiresIn"`
}

type PhotoStore struct {
	presigner *s3.PresignClient
	opts      Options
	now       func() time.Time
}

func NewPhotoStore(opts Options) *PhotoStore {
	client := s3.New(s3.Options{
		BaseEndpoint: aws.String(opts.Endpoint),
		Credentials:  credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		Region:       opts.Region,
		UsePathStyle: true,
	})

	if opts.PresignTTL <= 0 {
		opts.PresignTTL = 15 * time.Minute
	}

	return &PhotoStore{
		presigner: s3.NewPresignClient(client),
		opts:      opts,
		now:       time.Now,
	}
}

// PresignPhoto returns a PUT URL the client uploads the photo to, and the
// public URL to store on the deed afterwards.
func (s *PhotoStore) PresignPhoto(ctx context.Context, userID, fileName, contentType string, size int64) (*Upload, error) {
	ext, ok := allowedTypes[strings.ToLower(contentType)]
	if !ok {
		return nil, ErrUnsupportedType
	}
	if size <= 0 || (s.opts.MaxPhotoBytes > 0 && size > s.opts.MaxPhotoBytes) {
		return nil, ErrTooLarge
	}

	if ext == ".jpg" && strings.EqualFold(filepath.Ext(fileName), ".jpeg") {
		ext = ".jpeg"
	}
	key := fmt.Sprintf("deeds/%s/%s/%s%s", userID, s.now().UTC().Format("2006/01"), uuid.NewString(), ext)

	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.opts.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(s.opts.PresignTTL))
	if err != nil {
		return nil, fmt.Errorf("presign put: %w", err)
	}

	return &Upload{
		UploadURL: req.URL,
		FileURL:   s.publicURL(key),
		Key:       key,
		ExpiresIn: int(s.opts.PresignTTL.Seconds()),
	}, nil
}

func (s *PhotoStore) publicURL(key string) string {
	if s.opts.PublicURL != "" {
		return strings.TrimRight(s.opts.PublicURL, "/") + "/" + key
	}
	return strings.TrimRight(s.opts.Endpoint, "/") + "/" + s.opts.Bucket + "/" + key
}
