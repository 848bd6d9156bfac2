package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

const (
	ResourceTypeImage = "image"
	ResourceTypeVideo = "video"

	// DefaultUploadMaxBytes is the upload ceiling when none is configured.
	DefaultUploadMaxBytes int64 = 10 << 20
)

var (
	ErrUploadEmpty          = errors.New("no file provided")
	ErrUploadTooLarge       = errors.New("file size too large")
	ErrUploadTypeNotAllowed = errors.New("file type not allowed")
	ErrUploadCorrupt        = errors.New("image could not be decoded")
	ErrUploadNotConfigured  = errors.New("media host is not configured")
	ErrMediaNotFound        = errors.New("media not found")
	ErrMediaIDRequired      = errors.New("public id is required")
)

// allowedUploadTypes maps accepted MIME types to the decoder format name
// (images) or an empty string (videos).
var allowedUploadTypes = map[string]string{
	"image/jpeg":      "jpeg",
	"image/png":       "png",
	"image/webp":      "webp",
	"image/gif":       "gif",
	"video/mp4":       "",
	"video/webm":      "",
	"video/quicktime": "",
}

// UploadInput is a file received from the admin editor.
type UploadInput struct {
	Filename    string
	ContentType string
	Data        []byte
}

// MediaAsset describes a stored file on the media host.
type MediaAsset struct {
	URL          string `json:"url"`
	PublicID     string `json:"public_id"`
	ResourceType string `json:"resource_type"`
	Format       string `json:"format"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Bytes        int64  `json:"bytes"`
}

// MediaUploadRequest is what the service forwards to the host.
type MediaUploadRequest struct {
	Filename       string
	ContentType    string
	Data           []byte
	Folder         string
	PublicID       string
	ResourceType   string
	Transformation string
}

// MediaHost stores and removes files on a third-party media CDN.
type MediaHost interface {
	Upload(ctx context.Context, req MediaUploadRequest) (*MediaAsset, error)
	Destroy(ctx context.Context, publicID, resourceType string) error
}

// MediaService validates uploads before proxying them to the media host.
type MediaService struct {
	host     MediaHost
	folder   string
	maxBytes int64
	now      func() time.Time
}

// NewMediaService creates a MediaService. A nil host leaves uploads disabled.
func NewMediaService(host MediaHost, folder string, maxBytes int64) *MediaService {
	if maxBytes <= 0 {
		maxBytes = DefaultUploadMaxBytes
	}
	folder = strings.Trim(strings.TrimSpace(folder), "/")
	if folder == "" {
		folder = "portfolio"
	}
	return &MediaService{host: host, folder: folder, maxBytes: maxBytes, now: time.Now}
}

// MaxBytes returns the upload ceiling.
func (s *MediaService) MaxBytes() int64 {
	return s.maxBytes
}

// Upload validates the file and forwards it to the media host.
func (s *MediaService) Upload(ctx context.Context, input UploadInput) (*MediaAsset, error) {
	if len(input.Data) == 0 {
		return nil, ErrUploadEmpty
	}
	if int64(len(input.Data)) > s.maxBytes {
		return nil, ErrUploadTooLarge
	}

	contentType := normalizeContentType(input.ContentType)
	format, ok := allowedUploadTypes[contentType]
	if !ok {
		return nil, ErrUploadTypeNotAllowed
	}

	resourceType := ResourceTypeImage
	if strings.HasPrefix(contentType, "video/") {
		resourceType = ResourceTypeVideo
	}

	var width, height int
	if resourceType == ResourceTypeImage {
		cfg, decoded, err := image.DecodeConfig(bytes.NewReader(input.Data))
		if err != nil || decoded != format {
			return nil, ErrUploadCorrupt
		}
		width, height = cfg.Width, cfg.Height
	}

	if s.host == nil {
		return nil, ErrUploadNotConfigured
	}

	req := MediaUploadRequest{
		Filename:       input.Filename,
		ContentType:    contentType,
		Data:           input.Data,
		Folder:         s.folder,
		PublicID:       fmt.Sprintf("%s-%s", s.now().Format("20060102"), uuid.New().String()),
		ResourceType:   resourceType,
		Transformation: uploadTransformation(resourceType),
	}

	asset, err := s.host.Upload(ctx, req)
	if err != nil {
		log.Printf("[upload] media host rejected %s (%s, %d bytes): %v", input.Filename, contentType, len(input.Data), err)
		return nil, fmt.Errorf("upload to media host: %w", err)
	}

	if asset.ResourceType == "" {
		asset.ResourceType = resourceType
	}
	if asset.Width == 0 && asset.Height == 0 {
		asset.Width, asset.Height = width, height
	}
	if asset.Bytes == 0 {
		asset.Bytes = int64(len(input.Data))
	}
	return asset, nil
}

// Delete removes a previously uploaded file.
func (s *MediaService) Delete(ctx context.Context, publicID, resourceType string) error {
	publicID = strings.TrimSpace(publicID)
	if publicID == "" {
		return ErrMediaIDRequired
	}
	if s.host == nil {
		return ErrUploadNotConfigured
	}

	resourceType = strings.ToLower(strings.TrimSpace(resourceType))
	if resourceType != ResourceTypeVideo {
		resourceType = ResourceTypeImage
	}
	return s.host.Destroy(ctx, publicID, resourceType)
}

func normalizeContentType(contentType string) string {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = strings.TrimSpace(contentType[:idx])
	}
	return contentType
}

// uploadTransformation mirrors the site's delivery settings: automatic
// quality everywhere and images capped at the 1200x630 card size.
func uploadTransformation(resourceType string) string {
	if resourceType == ResourceTypeImage {
		return "c_limit,h_630,w_1200,q_auto"
	}
	return "q_auto"
}
