package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	authUseCase "github.com/allisson/gatekeeper/internal/auth/usecase"
	apperrors "github.com/allisson/gatekeeper/internal/errors"
	"github.com/allisson/gatekeeper/internal/httputil"
)

const bearerPrefix = "bearer "

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
// The scheme is matched case-insensitively.
func BearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) < len(bearerPrefix) ||
		!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}

	token := strings.TrimSpace(authHeader[len(bearerPrefix):])
	return token, token != ""
}

// AuthenticationMiddleware verifies the bearer token against the session cache and
// stores the session in the request context.
//
// Error handling:
//   - Missing or malformed Authorization header → 401 Unauthorized
//   - Invalid, expired or revoked session → 401 Unauthorized
//   - Session cache unreachable → 503 Service Unavailable
func AuthenticationMiddleware(sessionUseCase authUseCase.SessionUseCase, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c)
		if !ok {
			logger.Debug("authentication failed: missing or malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		session, err := sessionUseCase.Verify(c.Request.Context(), token)
		if err != nil {
			logger.Debug("authentication failed", slog.Any("error", err))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		ctx := WithSession(c.Request.Context(), session)
		ctx = WithToken(ctx, token)
		c.Request = c.Request.WithContext(ctx)

		logger.Debug("authentication successful",
			slog.String("principal_id", session.PrincipalID.String()))

		c.Next()
	}
}

// RequireScopeMiddleware rejects sessions that were not granted scope.
// It must run after AuthenticationMiddleware.
func RequireScopeMiddleware(scope string, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := GetSession(c.Request.Context())
		if !ok || session == nil {
			logger.Debug("authorization failed: no session in context")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		if !session.HasScope(scope) {
			logger.Debug("authorization failed: missing scope",
				slog.String("principal_id", session.PrincipalID.String()),
				slog.String("scope", scope))
			httputil.HandleErrorGin(c, apperrors.ErrForbidden, logger)
			c.Abort()
			return
		}

		c.Next()
	}
}
