package profile

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
	"github.com/khoahotran/projectshelf/internal/domain/profile"
	"github.com/khoahotran/projectshelf/internal/domain/theme"
	"github.com/khoahotran/projectshelf/pkg/apperror"
	"github.com/khoahotran/projectshelf/pkg/logger"
	"github.com/khoahotran/projectshelf/pkg/validator"
)

type ProfileUseCase struct {
	profileRepo profile.Repository
	uploader    service.Uploader
	logger      logger.Logger
}

func NewProfileUseCase(repo profile.Repository, uploader service.Uploader, log logger.Logger) *ProfileUseCase {
	return &ProfileUseCase{
		profileRepo: repo,
		uploader:    uploader,
		logger:      log,
	}
}

func (uc *ProfileUseCase) ExecuteGetProfile(ctx context.Context, ownerID uuid.UUID) (*profile.Profile, error) {
	p, err := uc.profileRepo.FindByID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get profile failed: %w", err)
	}
	return p, nil
}

func (uc *ProfileUseCase) ExecuteGetPublicProfile(ctx context.Context, username string) (*profile.Profile, error) {
	return uc.profileRepo.FindByUsername(ctx, profile.NormalizeUsername(username))
}

// UpdateProfileInput carries the editable fields. A nil pointer leaves the field unchanged.
type UpdateProfileInput struct {
	OwnerID  uuid.UUID
	Username *string
	FullName *string
	Bio      *string
	Website  *string
	Location *string
	Theme    *string
}

func (uc *ProfileUseCase) ExecuteUpdateProfile(ctx context.Context, input UpdateProfileInput) (*profile.Profile, error) {
	p, err := uc.profileRepo.FindByID(ctx, input.OwnerID)
	if err != nil {
		return nil, err
	}

	if input.Username != nil {
		p.Username = profile.NormalizeUsername(*input.Username)
	}
	if input.FullName != nil {
		p.FullName = strings.TrimSpace(*input.FullName)
	}
	if input.Bio != nil {
		p.Bio = strings.TrimSpace(*input.Bio)
	}
	if input.Website != nil {
		p.Website = strings.TrimSpace(*input.Website)
	}
	if input.Location != nil {
		p.Location = strings.TrimSpace(*input.Location)
	}
	if input.Theme != nil {
		p.Theme = theme.ID(strings.ToLower(strings.TrimSpace(*input.Theme)))
	}

	return uc.save(ctx, p)
}

// ExecuteUpdateTheme switches the portfolio theme. Only presentation changes.
func (uc *ProfileUseCase) ExecuteUpdateTheme(ctx context.Context, ownerID uuid.UUID, themeID string) (*profile.Profile, error) {
	return uc.ExecuteUpdateProfile(ctx, UpdateProfileInput{OwnerID: ownerID, Theme: &themeID})
}

type UploadAvatarInput struct {
	OwnerID     uuid.UUID
	File        io.Reader
	FileName    string
	ContentType string
}

func (uc *ProfileUseCase) ExecuteUploadAvatar(ctx context.Context, input UploadAvatarInput) (*profile.Profile, error) {
	if !strings.HasPrefix(input.ContentType, "image/") {
		return nil, apperror.NewInvalidInput("avatar must be an image", nil)
	}
	p, err := uc.profileRepo.FindByID(ctx, input.OwnerID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("avatars/%s/%d%s", input.OwnerID, time.Now().UnixNano(), strings.ToLower(path.Ext(input.FileName)))
	res, err := uc.uploader.Upload(ctx, input.File, key, input.ContentType)
	if err != nil {
		uc.logger.Error("Failed to upload avatar", err, zap.String("owner_id", input.OwnerID.String()))
		return nil, apperror.NewInternal("failed to upload avatar", err)
	}

	p.AvatarURL = res.URL
	return uc.save(ctx, p)
}

func (uc *ProfileUseCase) save(ctx context.Context, p *profile.Profile) (*profile.Profile, error) {
	if err := p.Validate(); err != nil {
		if fields := validator.Fields(err); fields != nil {
			return nil, apperror.NewValidationFailed(fields)
		}
		return nil, apperror.NewInvalidInput("profile is invalid", err)
	}
	p.UpdatedAt = time.Now().UTC()
	if err := uc.profileRepo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update profile failed: %w", err)
	}
	return p, nil
}
