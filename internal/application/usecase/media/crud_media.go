package media

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/projectshelf/internal/application/service"
	"github.com/khoahotran/projectshelf/internal/domain/media"
	"github.com/khoahotran/projectshelf/pkg/logger"
)

// List

type ListMediaUseCase struct {
	mediaRepo media.Repository
}

func NewListMediaUseCase(r media.Repository) *ListMediaUseCase {
	return &ListMediaUseCase{mediaRepo: r}
}

type ListMediaInput struct {
	OwnerID       uuid.UUID
	Limit, Offset int
}
type ListMediaOutput struct{ Medias []*media.Media }

func (uc *ListMediaUseCase) Execute(ctx context.Context, in ListMediaInput) (*ListMediaOutput, error) {
	if in.Limit <= 0 || in.Limit > 100 {
		in.Limit = 30
	}
	if in.Offset < 0 {
		in.Offset = 0
	}
	medias, err := uc.mediaRepo.ListByOwner(ctx, in.OwnerID, in.Limit, in.Offset)
	if err != nil {
		return nil, fmt.Errorf("list media failed: %w", err)
	}
	return &ListMediaOutput{Medias: medias}, nil
}

// Delete

type DeleteMediaUseCase struct {
	mediaRepo media.Repository
	uploader  service.Uploader
	logger    logger.Logger
}

func NewDeleteMediaUseCase(r media.Repository, u service.Uploader, log logger.Logger) *DeleteMediaUseCase {
	return &DeleteMediaUseCase{mediaRepo: r, uploader: u, logger: log}
}

type DeleteMediaInput struct {
	OwnerID uuid.UUID
	MediaID uuid.UUID
}

// Execute removes the library row. A blob that cannot be deleted is logged and left behind;
// case studies that still reference its URL keep rendering it.
func (uc *DeleteMediaUseCase) Execute(ctx context.Context, in DeleteMediaInput) error {
	m, err := uc.mediaRepo.FindByID(ctx, in.MediaID, in.OwnerID)
	if err != nil {
		return err
	}

	if m.StorageKey != "" {
		if err := uc.uploader.Delete(ctx, m.StorageKey); err != nil {
			uc.logger.Warn("Failed to delete media blob",
				zap.String("media_id", m.ID.String()),
				zap.String("provider", m.Provider),
				zap.Error(err),
			)
		}
	} else {
		uc.logger.Warn("Media has no storage key", zap.String("media_id", m.ID.String()))
	}

	return uc.mediaRepo.Delete(ctx, in.MediaID, in.OwnerID)
}
