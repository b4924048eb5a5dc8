package media_storage

import (
	"github.com/khoahotran/projectshelf/internal/application/service"
	"github.com/khoahotran/projectshelf/internal/config"
	"github.com/khoahotran/projectshelf/pkg/logger"
)

// New builds the store named by storage.provider. The transformer is nil for stores that cannot
// derive renditions.
func New(cfg config.Config, log logger.Logger) (service.Uploader, service.ImageTransformer, error) {
	if cfg.Storage.Provider == ProviderS3 {
		a, err := NewS3Adapter(cfg, log)
		if err != nil {
			return nil, nil, err
		}
		return a, nil, nil
	}
	a, err := NewCloudinaryAdapter(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return a, a, nil
}
