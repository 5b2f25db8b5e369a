// Package http provides HTTP handlers for the client registry.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authHTTP "github.com/allisson/gatekeeper/internal/auth/http"
	apperrors "github.com/allisson/gatekeeper/internal/errors"
	"github.com/allisson/gatekeeper/internal/httputil"
	registryDomain "github.com/allisson/gatekeeper/internal/registry/domain"
	"github.com/allisson/gatekeeper/internal/registry/http/dto"
	registryUseCase "github.com/allisson/gatekeeper/internal/registry/usecase"
	customValidation "github.com/allisson/gatekeeper/internal/validation"
)

// RegistryAdminScope is required by every client management endpoint.
const RegistryAdminScope = "registry:admin"

// ClientHandler handles HTTP requests for client credentials.
type ClientHandler struct {
	clientUseCase registryUseCase.ClientUseCase
	logger        *slog.Logger
}

// NewClientHandler creates a new client handler with required dependencies.
func NewClientHandler(clientUseCase registryUseCase.ClientUseCase, logger *slog.Logger) *ClientHandler {
	return &ClientHandler{
		clientUseCase: clientUseCase,
		logger:        logger,
	}
}

// RegisterHandler registers a client owned by the caller or by an explicit owner.
// POST /v1/clients - Requires registry:admin. Returns 201 Created with ID and plain text secret.
func (h *ClientHandler) RegisterHandler(c *gin.Context) {
	session, ok := authHTTP.GetSession(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req dto.RegisterClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	ownerID := session.PrincipalID
	if req.OwnerPrincipalID != "" {
		ownerID = uuid.MustParse(req.OwnerPrincipalID)
	}

	output, err := h.clientUseCase.Register(c.Request.Context(), &registryDomain.RegisterClientInput{
		Name:             req.Name,
		OwnerPrincipalID: ownerID,
		Scopes:           req.Scopes,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.RegisterClientResponse{
		ID:     output.ClientID.String(),
		Secret: output.PlainSecret,
	})
}

// GetHandler retrieves a client by ID.
// GET /v1/clients/:id - Requires registry:admin. Returns 200 OK with client data (no secret).
func (h *ClientHandler) GetHandler(c *gin.Context) {
	clientID, ok := h.parseClientID(c)
	if !ok {
		return
	}

	client, err := h.clientUseCase.Get(c.Request.Context(), clientID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapClientToResponse(client))
}

// ListHandler lists clients with pagination.
// GET /v1/clients?offset=0&limit=50 - Requires registry:admin.
func (h *ClientHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	clients, err := h.clientUseCase.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapClientsToListResponse(clients))
}

// RotateSecretHandler replaces the client secret.
// POST /v1/clients/:id/rotate-secret - Requires registry:admin. Returns 200 OK with the new secret.
func (h *ClientHandler) RotateSecretHandler(c *gin.Context) {
	clientID, ok := h.parseClientID(c)
	if !ok {
		return
	}

	plainSecret, err := h.clientUseCase.RotateSecret(c.Request.Context(), clientID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.RotateSecretResponse{
		ID:     clientID.String(),
		Secret: plainSecret,
	})
}

// RevokeHandler permanently revokes a client.
// DELETE /v1/clients/:id - Requires registry:admin. Returns 204 No Content.
func (h *ClientHandler) RevokeHandler(c *gin.Context) {
	clientID, ok := h.parseClientID(c)
	if !ok {
		return
	}

	if err := h.clientUseCase.Revoke(c.Request.Context(), clientID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// AuthenticateHandler verifies client credentials for downstream services.
// POST /v1/clients/authenticate - No session required. Returns 200 OK with the client scopes.
func (h *ClientHandler) AuthenticateHandler(c *gin.Context) {
	var req dto.AuthenticateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	clientID := uuid.MustParse(req.ClientID)
	scopes, err := h.clientUseCase.Authenticate(c.Request.Context(), clientID, req.ClientSecret)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.AuthenticateClientResponse{
		ClientID: clientID.String(),
		Scopes:   scopes,
	})
}

func (h *ClientHandler) parseClientID(c *gin.Context) (uuid.UUID, bool) {
	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c,
			fmt.Errorf("invalid client ID format: must be a valid UUID"),
			h.logger)
		return uuid.Nil, false
	}
	return clientID, true
}
