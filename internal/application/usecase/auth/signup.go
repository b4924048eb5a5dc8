package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/projectshelf/internal/application/service"
	"github.com/khoahotran/projectshelf/internal/domain/profile"
	"github.com/khoahotran/projectshelf/internal/domain/theme"
	"github.com/khoahotran/projectshelf/internal/domain/user"
	"github.com/khoahotran/projectshelf/pkg/apperror"
	"github.com/khoahotran/projectshelf/pkg/auth"
	"github.com/khoahotran/projectshelf/pkg/logger"
	"github.com/khoahotran/projectshelf/pkg/validator"
)

// SignUpUseCase creates a user and its profile. The profile row is written second; if that
// fails the user row is deleted again so no account exists without a profile.
type SignUpUseCase struct {
	userRepo    user.Repository
	profileRepo profile.Repository
	jwtSvc      *auth.JWTService
	notifier    service.SessionNotifier
	logger      logger.Logger
}

func NewSignUpUseCase(
	uRepo user.Repository,
	pRepo profile.Repository,
	jwtSvc *auth.JWTService,
	notifier service.SessionNotifier,
	log logger.Logger,
) *SignUpUseCase {
	return &SignUpUseCase{
		userRepo:    uRepo,
		profileRepo: pRepo,
		jwtSvc:      jwtSvc,
		notifier:    notifier,
		logger:      log,
	}
}

type SignUpInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Username string `json:"username" validate:"required,min=3,max=32,username"`
	FullName string `json:"full_name" validate:"required,min=2,max=120"`
}

type SignUpOutput struct {
	AccessToken string
	User        *user.User
	Profile     *profile.Profile
}

func (uc *SignUpUseCase) Execute(ctx context.Context, input SignUpInput) (*SignUpOutput, error) {
	ctx, span := tracer.Start(ctx, "SignUp")
	defer span.End()

	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Username = profile.NormalizeUsername(input.Username)
	input.FullName = strings.TrimSpace(input.FullName)
	if err := validator.Struct(&input); err != nil {
		if fields := validator.Fields(err); fields != nil {
			return nil, apperror.NewValidationFailed(fields)
		}
		return nil, apperror.NewInvalidInput("sign up request is invalid", err)
	}

	taken, err := uc.profileRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if taken {
		return nil, apperror.NewAppError(apperror.ErrConflict, "Username is already taken",
			"username '"+input.Username+"' is in use", nil)
	}
	if _, err := uc.userRepo.FindByEmail(ctx, input.Email); err == nil {
		return nil, apperror.NewConflict("user", "email", input.Email)
	} else if !apperror.IsNotFound(err) {
		span.RecordError(err)
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, apperror.NewInternal("failed to hash password", err)
	}

	now := time.Now().UTC()
	u := &user.User{ID: uuid.New(), Email: input.Email, PasswordHash: hash, CreatedAt: now}
	if err := uc.userRepo.Save(ctx, u); err != nil {
		span.RecordError(err)
		return nil, err
	}

	p := &profile.Profile{
		ID:        u.ID,
		Username:  input.Username,
		FullName:  input.FullName,
		Theme:     theme.Default,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.profileRepo.Save(ctx, p); err != nil {
		span.RecordError(err)
		if delErr := uc.userRepo.Delete(ctx, u.ID); delErr != nil {
			uc.logger.Error("Failed to roll back user after profile creation failed", delErr,
				zap.String("user_id", u.ID.String()),
				zap.NamedError("cause", err),
			)
			return nil, apperror.NewPartialWrite("account was created without a profile", err)
		}
		return nil, err
	}

	token, err := uc.jwtSvc.GenerateToken(u.ID)
	if err != nil {
		uc.logger.Error("Failed to generate token", err, zap.String("user_id", u.ID.String()))
		return nil, apperror.NewInternal("failed to generate token", err)
	}
	span.SetAttributes(attribute.String("user_id", u.ID.String()))

	publish(ctx, uc.notifier, uc.logger, service.SessionEvent{UserID: u.ID, Kind: service.SessionSignedUp, At: now})
	uc.logger.Info("User signed up", zap.String("user_id", u.ID.String()), zap.String("username", p.Username))
	return &SignUpOutput{AccessToken: token, User: u, Profile: p}, nil
}
