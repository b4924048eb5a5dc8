package media_storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/khoahotran/projectshelf/internal/application/service"
	"github.com/khoahotran/projectshelf/internal/config"
	"github.com/khoahotran/projectshelf/pkg/logger"
)

const ProviderCloudinary = "cloudinary"

// CloudinaryAdapter stores assets on Cloudinary. Keys have the form "{resource_type}/{public_id}"
// so deletes and derived URLs know which delivery type to address.
type CloudinaryAdapter struct {
	cld *cloudinary.Cloudinary
}

var (
	_ service.Uploader         = (*CloudinaryAdapter)(nil)
	_ service.ImageTransformer = (*CloudinaryAdapter)(nil)
)

func NewCloudinaryAdapter(cfg config.Config, log logger.Logger) (*CloudinaryAdapter, error) {
	if cfg.Cloudinary.CloudName == "" {
		return nil, fmt.Errorf("cloudinary cloud_name has not config")
	}

	cld, err := cloudinary.NewFromParams(
		cfg.Cloudinary.CloudName,
		cfg.Cloudinary.ApiKey,
		cfg.Cloudinary.ApiSecret,
	)
	if err != nil {
		return nil, fmt.Errorf("cannot init cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true

	log.Info("connect Cloudinary successfully.")
	return &CloudinaryAdapter{cld: cld}, nil
}

func (a *CloudinaryAdapter) Provider() string { return ProviderCloudinary }

func (a *CloudinaryAdapter) Upload(ctx context.Context, file io.Reader, objectPath string, contentType string) (*service.UploadResult, error) {
	publicID := strings.TrimSuffix(objectPath, path.Ext(objectPath))
	result, err := a.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID:     publicID,
		ResourceType: resourceTypeFor(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload cloudinary: %w", err)
	}
	if result.Error.Message != "" {
		return nil, fmt.Errorf("failed to upload cloudinary: %s", result.Error.Message)
	}
	return &service.UploadResult{
		URL: result.SecureURL,
		Key: result.ResourceType + "/" + result.PublicID,
	}, nil
}

func (a *CloudinaryAdapter) Delete(ctx context.Context, key string) error {
	resourceType, publicID := splitKey(key)
	result, err := a.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: resourceType,
	})
	if err != nil {
		return fmt.Errorf("failed to delete cloudinary: %w", err)
	}
	if result.Error.Message != "" {
		return fmt.Errorf("failed to delete cloudinary: %s", result.Error.Message)
	}
	return nil
}

// DerivedURL builds the delivery URL of an on-the-fly rendition, e.g. "c_limit,w_1200".
func (a *CloudinaryAdapter) DerivedURL(key string, transformation string) (string, error) {
	resourceType, publicID := splitKey(key)
	if resourceType != "image" {
		return "", fmt.Errorf("cloudinary: cannot transform %s asset %q", resourceType, publicID)
	}
	img, err := a.cld.Image(publicID)
	if err != nil {
		return "", fmt.Errorf("cloudinary image %q: %w", publicID, err)
	}
	img.Transformation = transformation
	return img.String()
}

func resourceTypeFor(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return "image"
	case strings.HasPrefix(contentType, "video/"):
		return "video"
	}
	return "auto"
}

// splitKey separates "{resource_type}/{public_id}". Keys without a known prefix are images.
func splitKey(key string) (resourceType, publicID string) {
	if i := strings.IndexByte(key, '/'); i > 0 {
		switch key[:i] {
		case "image", "video", "raw":
			return key[:i], key[i+1:]
		}
	}
	return "image", key
}
