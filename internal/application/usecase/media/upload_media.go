package media

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/projectshelf/internal/application/service"
	"github.com/khoahotran/projectshelf/internal/domain/casestudy"
	"github.com/khoahotran/projectshelf/internal/domain/media"
	"github.com/khoahotran/projectshelf/pkg/apperror"
	"github.com/khoahotran/projectshelf/pkg/logger"
)

type UploadMediaUseCase struct {
	mediaRepo media.Repository
	uploader  service.Uploader
	publisher service.MediaEventPublisher
	logger    logger.Logger
}

// NewUploadMediaUseCase takes an optional publisher. Without one, uploads are ready at once and
// no renditions are derived.
func NewUploadMediaUseCase(
	r media.Repository,
	u service.Uploader,
	p service.MediaEventPublisher,
	log logger.Logger,
) *UploadMediaUseCase {
	return &UploadMediaUseCase{mediaRepo: r, uploader: u, publisher: p, logger: log}
}

type UploadMediaInput struct {
	OwnerID     uuid.UUID
	File        io.Reader
	FileName    string
	ContentType string
	Caption     string
}

type UploadMediaOutput struct {
	Media *media.Media
	// Item is ready to be added to a case study gallery.
	Item casestudy.MediaItem
}

func (uc *UploadMediaUseCase) Execute(ctx context.Context, input UploadMediaInput) (*UploadMediaOutput, error) {
	kind, err := kindOf(input.ContentType, input.FileName)
	if err != nil {
		return nil, err
	}

	mediaID := uuid.New()
	key := fmt.Sprintf("case-studies/%s/%s%s", input.OwnerID, mediaID, strings.ToLower(path.Ext(input.FileName)))

	res, err := uc.uploader.Upload(ctx, input.File, key, input.ContentType)
	if err != nil {
		return nil, apperror.NewInternal("failed to upload media file", err)
	}

	now := time.Now().UTC()
	m := &media.Media{
		ID:         mediaID,
		OwnerID:    input.OwnerID,
		Provider:   uc.uploader.Provider(),
		StorageKey: res.Key,
		Kind:       kind,
		URL:        res.URL,
		Status:     media.StatusPending,
		Metadata: map[string]any{
			"original_url": res.URL,
			"file_name":    input.FileName,
			"content_type": input.ContentType,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if uc.publisher == nil {
		m.Status = media.StatusReady
	}

	if err := uc.mediaRepo.Save(ctx, m); err != nil {
		go func() {
			if delErr := uc.uploader.Delete(context.Background(), res.Key); delErr != nil {
				uc.logger.Warn("Failed to remove orphaned upload", zap.String("key", res.Key), zap.Error(delErr))
			}
		}()
		return nil, err
	}

	if uc.publisher != nil {
		go func() {
			evt := service.MediaEvent{
				EventType:  service.MediaEventUploaded,
				MediaID:    m.ID,
				OwnerID:    m.OwnerID,
				Provider:   m.Provider,
				StorageKey: m.StorageKey,
				URL:        m.URL,
			}
			if err := uc.publisher.PublishMediaEvent(context.Background(), evt); err != nil {
				uc.logger.Error("Failed to publish 'media.uploaded' event", err, zap.String("media_id", m.ID.String()))
			}
		}()
	}

	return &UploadMediaOutput{Media: m, Item: m.AsItem(input.Caption)}, nil
}

func kindOf(contentType, fileName string) (casestudy.MediaType, error) {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return casestudy.MediaImage, nil
	case strings.HasPrefix(contentType, "video/"):
		return casestudy.MediaVideo, nil
	case contentType == "" || contentType == "application/octet-stream":
		return casestudy.InferMediaType(fileName), nil
	}
	return "", apperror.NewInvalidInput(fmt.Sprintf("unsupported content type %q", contentType), nil)
}
