package auth

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/projectshelf/internal/application/service"
	"github.com/khoahotran/projectshelf/internal/domain/user"
	"github.com/khoahotran/projectshelf/pkg/apperror"
	"github.com/khoahotran/projectshelf/pkg/auth"
	"github.com/khoahotran/projectshelf/pkg/logger"
)

var tracer = otel.Tracer("auth_usecase")

type SignInUseCase struct {
	userRepo user.Repository
	jwtSvc   *auth.JWTService
	notifier service.SessionNotifier
	logger   logger.Logger
}

func NewSignInUseCase(repo user.Repository, jwtSvc *auth.JWTService, notifier service.SessionNotifier, log logger.Logger) *SignInUseCase {
	return &SignInUseCase{
		userRepo: repo,
		jwtSvc:   jwtSvc,
		notifier: notifier,
		logger:   log,
	}
}

type SignInInput struct {
	Email    string
	Password string
}

type SignInOutput struct {
	AccessToken string
	User        *user.User
}

func (uc *SignInUseCase) Execute(ctx context.Context, input SignInInput) (*SignInOutput, error) {
	ctx, span := tracer.Start(ctx, "SignIn")
	defer span.End()

	u, err := uc.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		span.RecordError(err)
		if apperror.IsNotFound(err) {
			return nil, apperror.NewUnauthorized("unknown email", nil)
		}
		return nil, err
	}

	if !auth.CheckPasswordHash(input.Password, u.PasswordHash) {
		err := apperror.NewUnauthorized("incorrect password", nil)
		span.RecordError(err)
		return nil, err
	}

	token, err := uc.jwtSvc.GenerateToken(u.ID)
	if err != nil {
		uc.logger.Error("Failed to generate token", err, zap.String("user_id", u.ID.String()))
		err = apperror.NewInternal("failed to generate token", err)
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("user_id", u.ID.String()))

	publish(ctx, uc.notifier, uc.logger, service.SessionEvent{UserID: u.ID, Kind: service.SessionSignedIn, At: time.Now().UTC()})
	return &SignInOutput{AccessToken: token, User: u}, nil
}

// publish is best effort: a lost notification never fails the auth operation.
func publish(ctx context.Context, n service.SessionNotifier, log logger.Logger, e service.SessionEvent) {
	if n == nil {
		return
	}
	if err := n.Publish(ctx, e); err != nil {
		log.Warn("Failed to publish session event",
			zap.String("user_id", e.UserID.String()),
			zap.String("kind", string(e.Kind)),
			zap.Error(err),
		)
	}
}
