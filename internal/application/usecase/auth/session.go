package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/projectshelf/internal/application/service"
	"github.com/khoahotran/projectshelf/internal/domain/profile"
	"github.com/khoahotran/projectshelf/internal/domain/user"
	"github.com/khoahotran/projectshelf/pkg/apperror"
	"github.com/khoahotran/projectshelf/pkg/auth"
	"github.com/khoahotran/projectshelf/pkg/logger"
)

type SignOutUseCase struct {
	revoker  service.TokenRevoker
	notifier service.SessionNotifier
	logger   logger.Logger
}

func NewSignOutUseCase(revoker service.TokenRevoker, notifier service.SessionNotifier, log logger.Logger) *SignOutUseCase {
	return &SignOutUseCase{revoker: revoker, notifier: notifier, logger: log}
}

// Execute revokes the presented token for the rest of its lifetime.
func (uc *SignOutUseCase) Execute(ctx context.Context, claims *auth.CustomClaims) error {
	ctx, span := tracer.Start(ctx, "SignOut")
	defer span.End()

	now := time.Now()
	if ttl := claims.Remaining(now); ttl > 0 && claims.TokenID() != "" {
		if err := uc.revoker.Revoke(ctx, claims.TokenID(), ttl); err != nil {
			span.RecordError(err)
			uc.logger.Error("Failed to revoke token", err, zap.String("user_id", claims.OwnerID.String()))
			return apperror.NewInternal("failed to sign out", err)
		}
	}
	publish(ctx, uc.notifier, uc.logger, service.SessionEvent{UserID: claims.OwnerID, Kind: service.SessionSignedOut, At: now.UTC()})
	return nil
}

type CurrentUserUseCase struct {
	userRepo    user.Repository
	profileRepo profile.Repository
}

func NewCurrentUserUseCase(uRepo user.Repository, pRepo profile.Repository) *CurrentUserUseCase {
	return &CurrentUserUseCase{userRepo: uRepo, profileRepo: pRepo}
}

type CurrentUserOutput struct {
	User    *user.User
	Profile *profile.Profile
}

func (uc *CurrentUserUseCase) Execute(ctx context.Context, userID uuid.UUID) (*CurrentUserOutput, error) {
	u, err := uc.userRepo.FindByID(ctx, userID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewUnauthorized("account no longer exists", err)
		}
		return nil, err
	}
	p, err := uc.profileRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &CurrentUserOutput{User: u, Profile: p}, nil
}

// SessionEventsUseCase streams session changes of one user.
type SessionEventsUseCase struct {
	notifier service.SessionNotifier
}

func NewSessionEventsUseCase(notifier service.SessionNotifier) *SessionEventsUseCase {
	return &SessionEventsUseCase{notifier: notifier}
}

func (uc *SessionEventsUseCase) Subscribe(ctx context.Context, userID uuid.UUID) (<-chan service.SessionEvent, error) {
	return uc.notifier.Subscribe(ctx, userID)
}
