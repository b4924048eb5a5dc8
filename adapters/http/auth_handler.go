package http

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/khoahotran/projectshelf/internal/application/usecase/auth"
	"github.com/khoahotran/projectshelf/pkg/apperror"
	"github.com/khoahotran/projectshelf/pkg/logger"
)

type AuthHandler struct {
	signUpUseCase        *auth.SignUpUseCase
	signInUseCase        *auth.SignInUseCase
	signOutUseCase       *auth.SignOutUseCase
	currentUserUseCase   *auth.CurrentUserUseCase
	sessionEventsUseCase *auth.SessionEventsUseCase
	logger               logger.Logger
}

func NewAuthHandler(
	signUpUC *auth.SignUpUseCase,
	signInUC *auth.SignInUseCase,
	signOutUC *auth.SignOutUseCase,
	currentUserUC *auth.CurrentUserUseCase,
	sessionEventsUC *auth.SessionEventsUseCase,
	log logger.Logger,
) *AuthHandler {
	return &AuthHandler{
		signUpUseCase:        signUpUC,
		signInUseCase:        signInUC,
		signOutUseCase:       signOutUC,
		currentUserUseCase:   currentUserUC,
		sessionEventsUseCase: sessionEventsUC,
		logger:               log,
	}
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid request data", err))
		return
	}

	output, err := h.signUpUseCase.Execute(c.Request.Context(), auth.SignUpInput{
		Email:    req.Email,
		Password: req.Password,
		Username: req.Username,
		FullName: req.FullName,
	})
	if err != nil {
		c.Error(err)
		return
	}

	p := ToProfileDTO(output.Profile)
	c.JSON(http.StatusCreated, AuthResponse{AccessToken: output.AccessToken, User: ToUserDTO(output.User), Profile: &p})
}

func (h *AuthHandler) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid request data", err))
		return
	}

	output, err := h.signInUseCase.Execute(c.Request.Context(), auth.SignInInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, AuthResponse{AccessToken: output.AccessToken, User: ToUserDTO(output.User)})
}

func (h *AuthHandler) SignOut(c *gin.Context) {
	claims, ok := GetClaimsFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("claims not found in context"))
		return
	}
	if err := h.signOutUseCase.Execute(c.Request.Context(), claims); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) Me(c *gin.Context) {
	ownerID, ok := GetOwnerIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("ownerID not found in context"))
		return
	}
	output, err := h.currentUserUseCase.Execute(c.Request.Context(), ownerID)
	if err != nil {
		c.Error(err)
		return
	}
	p := ToProfileDTO(output.Profile)
	c.JSON(http.StatusOK, AuthResponse{User: ToUserDTO(output.User), Profile: &p})
}

// SessionEvents streams the caller's sign-in, sign-up and sign-out events as server-sent events
// until the client goes away.
func (h *AuthHandler) SessionEvents(c *gin.Context) {
	ownerID, ok := GetOwnerIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("ownerID not found in context"))
		return
	}

	events, err := h.sessionEventsUseCase.Subscribe(c.Request.Context(), ownerID)
	if err != nil {
		c.Error(apperror.NewInternal("failed to subscribe to session events", err))
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		e, ok := <-events
		if !ok {
			return false
		}
		c.SSEvent(string(e.Kind), e)
		return true
	})
	h.logger.Debug("Session event stream closed", zap.String("owner_id", ownerID.String()))
}
