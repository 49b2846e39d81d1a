package model

import (
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
)

const (
	MaxPhotoSizeBytes = 10 * 1024 * 1024
	PhotoMaxDimension = 1080
	PhotoFolder       = "photos"
	PhotoExt          = ".jpg"
	PhotoCacheControl = "public, max-age=31536000" // 1 year
)

// Supported image content types for upload validation
const (
	ContentTypeJPEG = "image/jpeg"
	ContentTypePNG  = "image/png"
	ContentTypeGIF  = "image/gif"
	ContentTypeWebP = "image/webp"
)

var allowedImageTypes = map[string]struct{}{
	ContentTypeJPEG: {},
	ContentTypePNG:  {},
	ContentTypeGIF:  {},
	ContentTypeWebP: {},
}

// Error codes for HTTP responses
const (
	CodeFileTooLarge     = "FILE_TOO_LARGE"
	CodeInvalidImageType = "INVALID_IMAGE_TYPE"
)

// Domain errors for photo uploads
var (
	ErrFileTooLarge     = errors.New("file too large")
	ErrInvalidImageType = errors.New("invalid image type")
	ErrPhotoNotFound    = errors.New("photo not found")
)

// Photo belongs to one user. At most one photo per user is main.
// ID is the blob store's public id for the object.
type Photo struct {
	ID        string    `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"-"`
	URL       string    `db:"url" json:"url"`
	IsMain    bool      `db:"is_main" json:"isMain"`
	CreatedAt time.Time `db:"created_at" json:"-"`
}

// UploadResult is what the blob store returns for a stored object.
// PublicID identifies the object for later deletes; URL is public-facing.
type UploadResult struct {
	PublicID string `json:"publicId"`
	URL      string `json:"url"`
}

// IsAllowedImageType reports if the provided content type is supported
func IsAllowedImageType(contentType string) bool {
	_, ok := allowedImageTypes[contentType]
	return ok
}

// PhotoUpload is an incoming image before it reaches the blob store.
type PhotoUpload struct {
	File        io.Reader
	Size        int64
	ContentType string
}
