package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const cloudinaryTimeout = 60 * time.Second

// CloudinaryClient is the MediaHost backed by the Cloudinary upload API.
type CloudinaryClient struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryClient returns nil when any credential is missing, which
// leaves the media service in its "not configured" state.
func NewCloudinaryClient(cloudName, apiKey, apiSecret string) *CloudinaryClient {
	cloudName = strings.TrimSpace(cloudName)
	apiKey = strings.TrimSpace(apiKey)
	apiSecret = strings.TrimSpace(apiSecret)
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil
	}

	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		log.Printf("[upload] cloudinary config rejected: %v", err)
		return nil
	}
	return &CloudinaryClient{cld: cld}
}

// SetBaseURL points uploads at a different API host, e.g. a local fake.
func (c *CloudinaryClient) SetBaseURL(base string) {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		return
	}
	// uploader.API keeps its own copy of the configuration
	c.cld.Config.API.UploadPrefix = base
	c.cld.Upload.Config.API.UploadPrefix = base
}

// Upload sends the file as a signed upload.
func (c *CloudinaryClient) Upload(ctx context.Context, req MediaUploadRequest) (*MediaAsset, error) {
	ctx, cancel := context.WithTimeout(ctx, cloudinaryTimeout)
	defer cancel()

	resourceType := req.ResourceType
	if resourceType == "" {
		resourceType = ResourceTypeImage
	}

	res, err := c.cld.Upload.Upload(ctx, bytes.NewReader(req.Data), uploader.UploadParams{
		Folder:         req.Folder,
		PublicID:       req.PublicID,
		ResourceType:   resourceType,
		Transformation: req.Transformation,
	})
	if err != nil {
		return nil, fmt.Errorf("call cloudinary upload: %w", err)
	}
	if msg := strings.TrimSpace(res.Error.Message); msg != "" {
		return nil, fmt.Errorf("cloudinary upload failed: %s", msg)
	}
	if res.PublicID == "" {
		return nil, errors.New("cloudinary upload returned no public id")
	}

	url := res.SecureURL
	if url == "" {
		url = res.URL
	}
	return &MediaAsset{
		URL:          url,
		PublicID:     res.PublicID,
		ResourceType: res.ResourceType,
		Format:       res.Format,
		Width:        res.Width,
		Height:       res.Height,
		Bytes:        int64(res.Bytes),
	}, nil
}

// Destroy deletes an asset by public id.
func (c *CloudinaryClient) Destroy(ctx context.Context, publicID, resourceType string) error {
	ctx, cancel := context.WithTimeout(ctx, cloudinaryTimeout)
	defer cancel()

	res, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: resourceType,
	})
	if err != nil {
		return fmt.Errorf("call cloudinary destroy: %w", err)
	}
	if msg := strings.TrimSpace(res.Error.Message); msg != "" {
		return fmt.Errorf("cloudinary destroy failed: %s", msg)
	}

	switch res.Result {
	case "ok":
		return nil
	case "not found":
		return ErrMediaNotFound
	default:
		return fmt.Errorf("cloudinary destroy returned %q", res.Result)
	}
}
