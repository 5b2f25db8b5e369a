package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authDomain "github.com/allisson/gatekeeper/internal/auth/domain"
	"github.com/allisson/gatekeeper/internal/auth/http/dto"
	authUseCase "github.com/allisson/gatekeeper/internal/auth/usecase"
	apperrors "github.com/allisson/gatekeeper/internal/errors"
	"github.com/allisson/gatekeeper/internal/httputil"
	customValidation "github.com/allisson/gatekeeper/internal/validation"
)

// UsersAdminScope lets a session manage principals other than its own.
const UsersAdminScope = "users:admin"

// UserHandler handles HTTP requests for user principals.
type UserHandler struct {
	userUseCase    authUseCase.UserUseCase
	sessionUseCase authUseCase.SessionUseCase
	logger         *slog.Logger
}

// NewUserHandler creates a new user handler with required dependencies.
func NewUserHandler(
	userUseCase authUseCase.UserUseCase,
	sessionUseCase authUseCase.SessionUseCase,
	logger *slog.Logger,
) *UserHandler {
	return &UserHandler{
		userUseCase:    userUseCase,
		sessionUseCase: sessionUseCase,
		logger:         logger,
	}
}

// RegisterHandler creates a user.
// POST /v1/users - Returns 201 Created with the user.
func (h *UserHandler) RegisterHandler(c *gin.Context) {
	var req dto.RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	user, err := h.userUseCase.Register(c.Request.Context(), &authDomain.RegisterUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapUserToResponse(user))
}

// AvailabilityHandler reports whether a username or email is already taken.
// GET /v1/users/availability?username=&email= - Returns 200 OK.
func (h *UserHandler) AvailabilityHandler(c *gin.Context) {
	var req dto.UserAvailabilityRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	var response dto.UserAvailabilityResponse
	if req.Username != "" {
		taken, err := h.userUseCase.UsernameExists(c.Request.Context(), req.Username)
		if err != nil {
			httputil.HandleErrorGin(c, err, h.logger)
			return
		}
		response.UsernameTaken = &taken
	}
	if req.Email != "" {
		taken, err := h.userUseCase.EmailExists(c.Request.Context(), req.Email)
		if err != nil {
			httputil.HandleErrorGin(c, err, h.logger)
			return
		}
		response.EmailTaken = &taken
	}

	c.JSON(http.StatusOK, response)
}

// GetHandler returns a user. A principal may read itself; other principals need
// the users:admin scope.
// GET /v1/users/:id - Requires AuthenticationMiddleware. Returns 200 OK.
func (h *UserHandler) GetHandler(c *gin.Context) {
	userID, ok := h.authorizeUser(c)
	if !ok {
		return
	}

	user, err := h.userUseCase.Get(c.Request.Context(), userID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapUserToResponse(user))
}

// SetStatusHandler activates, disables or revokes a user. Leaving the active status
// revokes every session of the user.
// PATCH /v1/users/:id/status - Requires the users:admin scope. Returns 204 No Content.
func (h *UserHandler) SetStatusHandler(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	var req dto.SetUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	err = h.userUseCase.SetStatus(c.Request.Context(), userID, authDomain.UserStatus(req.Status))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// ChangePasswordHandler replaces the password of a user and revokes its sessions.
// PUT /v1/users/:id/password - Requires the users:admin scope. Returns 204 No Content.
func (h *UserHandler) ChangePasswordHandler(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	if err := h.userUseCase.ChangePassword(c.Request.Context(), userID, req.Password); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// RevokeSessionsHandler revokes every session of a user. A principal may always
// revoke its own sessions; other principals need the users:admin scope.
// DELETE /v1/users/:id/sessions - Requires AuthenticationMiddleware. Returns 204 No Content.
func (h *UserHandler) RevokeSessionsHandler(c *gin.Context) {
	userID, ok := h.authorizeUser(c)
	if !ok {
		return
	}

	if err := h.sessionUseCase.RevokeAll(c.Request.Context(), userID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// authorizeUser parses the :id parameter and admits the user itself or a session
// holding users:admin. On failure the response is already written.
func (h *UserHandler) authorizeUser(c *gin.Context) (uuid.UUID, bool) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return uuid.Nil, false
	}

	session, ok := GetSession(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return uuid.Nil, false
	}
	if session.PrincipalID != userID && !session.HasScope(UsersAdminScope) {
		httputil.HandleErrorGin(c, apperrors.ErrForbidden, h.logger)
		return uuid.Nil, false
	}
	return userID, true
}
