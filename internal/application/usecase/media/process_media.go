package media

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/khoahotran/projectshelf/internal/application/service"
	"github.com/khoahotran/projectshelf/internal/domain/casestudy"
	"github.com/khoahotran/projectshelf/internal/domain/media"
	"github.com/khoahotran/projectshelf/pkg/apperror"
	"github.com/khoahotran/projectshelf/pkg/logger"
)

const (
	displayTransformation   = "c_limit,w_1200"
	thumbnailTransformation = "c_fill,g_auto,w_400,h_400"
)

// ProcessMediaUseCase runs in the worker: it derives display and thumbnail renditions for an
// uploaded image and marks the media ready.
type ProcessMediaUseCase struct {
	mediaRepo   media.Repository
	transformer service.ImageTransformer
	logger      logger.Logger
}

// NewProcessMediaUseCase accepts a nil transformer; the original URL then serves every rendition.
func NewProcessMediaUseCase(r media.Repository, t service.ImageTransformer, log logger.Logger) *ProcessMediaUseCase {
	return &ProcessMediaUseCase{mediaRepo: r, transformer: t, logger: log}
}

func (uc *ProcessMediaUseCase) Execute(ctx context.Context, evt service.MediaEvent) error {
	l := uc.logger.With(zap.String("media_id", evt.MediaID.String()), zap.String("event_type", string(evt.EventType)))
	l.Info("Worker processing media event")

	if evt.EventType != service.MediaEventUploaded {
		l.Debug("Ignoring media event")
		return nil
	}

	m, err := uc.mediaRepo.FindByID(ctx, evt.MediaID, evt.OwnerID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			l.Warn("Media not found, skipping event")
			return nil
		}
		return apperror.NewInternal("failed to get media", err)
	}

	if m.Status == media.StatusReady {
		l.Info("Media already in 'ready' state, skipping")
		return nil
	}

	thumb := m.URL
	if m.Kind == casestudy.MediaImage && uc.transformer != nil {
		display, err := uc.transformer.DerivedURL(m.StorageKey, displayTransformation)
		if err != nil {
			return uc.markFailed(ctx, m, "failed to build display URL", err)
		}
		thumb, err = uc.transformer.DerivedURL(m.StorageKey, thumbnailTransformation)
		if err != nil {
			return uc.markFailed(ctx, m, "failed to build thumbnail URL", err)
		}
		m.URL = display
	}

	m.ThumbnailURL = &thumb
	m.Status = media.StatusReady
	if err := uc.mediaRepo.Update(ctx, m); err != nil {
		return apperror.NewInternal("failed to update media to 'ready'", err)
	}

	l.Info("Successfully processed media", zap.String("status", string(m.Status)))
	return nil
}

func (uc *ProcessMediaUseCase) markFailed(ctx context.Context, m *media.Media, details string, cause error) error {
	m.Status = media.StatusError
	if m.Metadata == nil {
		m.Metadata = map[string]any{}
	}
	m.Metadata["error"] = cause.Error()
	if err := uc.mediaRepo.Update(ctx, m); err != nil {
		uc.logger.Error("Failed to mark media as errored", err, zap.String("media_id", m.ID.String()))
	}
	return apperror.NewInternal(details, cause)
}
