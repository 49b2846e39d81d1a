// Package storage keeps photo blobs in Cloudflare R2 (or any S3-compatible bucket).
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"activityhub/internal/config"
	"activityhub/internal/model"
)

// ObjectAPI is the slice of the S3 client the store uses.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// PhotoStore uploads normalised photos and deletes them by public id.
// The public id is the object key.
type PhotoStore struct {
	client    ObjectAPI
	bucket    string
	publicURL string
}

// NewR2PhotoStore constructs an S3-compatible client for Cloudflare R2.
func NewR2PhotoStore(ctx context.Context, cfg *config.Config) (*PhotoStore, error) {
	if cfg.R2AccountID == "" || cfg.R2AccessKeyID == "" || cfg.R2SecretAccessKey == "" || cfg.R2BucketName == "" || cfg.R2PublicURL == "" {
		return nil, fmt.Errorf("missing Cloudflare R2 configuration")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.R2AccessKeyID, cfg.R2SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for R2: %w", err)
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID)
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return NewPhotoStore(client, cfg.R2BucketName, cfg.R2PublicURL), nil
}

func NewPhotoStore(client ObjectAPI, bucket, publicURL string) *PhotoStore {
	return &PhotoStore{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}
}

// AddPhoto enforces size/type, scales the image to fit PhotoMaxDimension as JPEG and uploads it.
func (s *PhotoStore) AddPhoto(ctx context.Context, upload model.PhotoUpload) (*model.UploadResult, error) {
	data, err := readAndValidateImage(upload, model.MaxPhotoSizeBytes)
	if err != nil {
		return nil, err
	}

	jpegBytes, err := fitToJPEG(data, model.PhotoMaxDimension, 85)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/%s%s", model.PhotoFolder, uuid.NewString(), model.PhotoExt)

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(jpegBytes),
		ContentType:  aws.String(model.ContentTypeJPEG),
		CacheControl: aws.String(model.PhotoCacheControl),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to r2: %w", err)
	}

	return &model.UploadResult{
		PublicID: key,
		URL:      fmt.Sprintf("%s/%s", s.publicURL, key),
	}, nil
}

// DeletePhoto removes an object by public id.
func (s *PhotoStore) DeletePhoto(ctx context.Context, publicID string) error {
	if publicID == "" {
		return fmt.Errorf("empty public id")
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from r2: %w", err)
	}
	return nil
}

// readAndValidateImage loads the upload into memory with size and type checks.
func readAndValidateImage(upload model.PhotoUpload, maxSize int64) ([]byte, error) {
	if upload.Size > maxSize {
		return nil, model.ErrFileTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(upload.File, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > maxSize {
		return nil, model.ErrFileTooLarge
	}

	contentType := upload.ContentType
	if contentType == "" && len(data) > 0 {
		contentType = http.DetectContentType(data[:min(len(data), 512)])
	}
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = strings.TrimSpace(contentType[:idx])
	}
	if !model.IsAllowedImageType(contentType) {
		return nil, model.ErrInvalidImageType
	}

	return data, nil
}

// fitToJPEG scales the image down so neither side exceeds maxDim and encodes as JPEG.
// Smaller images keep their size.
func fitToJPEG(data []byte, maxDim, quality int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxDim || bounds.Dy() > maxDim {
		img = imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}

	return buf.Bytes(), nil
}
