package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/allisson/gatekeeper/internal/auth/domain"
	usecaseMocks "github.com/allisson/gatekeeper/internal/auth/usecase/mocks"
	apperrors "github.com/allisson/gatekeeper/internal/errors"
)

func newProtectedRouter(sessionUseCase *usecaseMocks.MockSessionUseCase, scope string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := newTestLogger()

	router := gin.New()
	handlers := []gin.HandlerFunc{AuthenticationMiddleware(sessionUseCase, logger)}
	if scope != "" {
		handlers = append(handlers, RequireScopeMiddleware(scope, logger))
	}
	handlers = append(handlers, func(c *gin.Context) {
		session, ok := GetSession(c.Request.Context())
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		token, _ := GetToken(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"principal_id": session.PrincipalID.String(), "token": token})
	})
	router.GET("/protected", handlers...)
	return router
}

func requestWithAuth(router *gin.Engine, header string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestAuthenticationMiddleware(t *testing.T) {
	principalID := uuid.Must(uuid.NewV7())

	t.Run("Success", func(t *testing.T) {
		sessionUseCase := &usecaseMocks.MockSessionUseCase{}
		sessionUseCase.On("Verify", mock.Anything, "token").
			Return(&authDomain.SessionInfo{SessionID: "sid", PrincipalID: principalID}, nil).
			Once()

		w := requestWithAuth(newProtectedRouter(sessionUseCase, ""), "BEARER token")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), principalID.String())
		assert.Contains(t, w.Body.String(), `"token":"token"`)
	})

	t.Run("Error_Header", func(t *testing.T) {
		for _, header := range []string{"", "Basic dXNlcjpwYXNz", "Bearer ", "Bearer"} {
			sessionUseCase := &usecaseMocks.MockSessionUseCase{}

			w := requestWithAuth(newProtectedRouter(sessionUseCase, ""), header)

			assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
			sessionUseCase.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
		}
	})

	t.Run("Error_Revoked", func(t *testing.T) {
		sessionUseCase := &usecaseMocks.MockSessionUseCase{}
		sessionUseCase.On("Verify", mock.Anything, "token").Return(nil, authDomain.ErrSessionRevoked).Once()

		w := requestWithAuth(newProtectedRouter(sessionUseCase, ""), "Bearer token")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Error_Unavailable", func(t *testing.T) {
		sessionUseCase := &usecaseMocks.MockSessionUseCase{}
		sessionUseCase.On("Verify", mock.Anything, "token").
			Return(nil, apperrors.Wrap(apperrors.ErrUnavailable, "failed to get session")).
			Once()

		w := requestWithAuth(newProtectedRouter(sessionUseCase, ""), "Bearer token")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestRequireScopeMiddleware(t *testing.T) {
	principalID := uuid.Must(uuid.NewV7())

	t.Run("Success_HasScope", func(t *testing.T) {
		sessionUseCase := &usecaseMocks.MockSessionUseCase{}
		sessionUseCase.On("Verify", mock.Anything, "token").Return(&authDomain.SessionInfo{
			PrincipalID: principalID,
			Scopes:      []string{"registry:admin"},
		}, nil).Once()

		w := requestWithAuth(newProtectedRouter(sessionUseCase, "registry:admin"), "Bearer token")

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Error_MissingScope", func(t *testing.T) {
		sessionUseCase := &usecaseMocks.MockSessionUseCase{}
		sessionUseCase.On("Verify", mock.Anything, "token").Return(&authDomain.SessionInfo{
			PrincipalID: principalID,
			Scopes:      []string{"reports.read"},
		}, nil).Once()

		w := requestWithAuth(newProtectedRouter(sessionUseCase, "registry:admin"), "Bearer token")

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Error_NoSession", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		router := gin.New()
		router.GET("/protected", RequireScopeMiddleware("registry:admin", newTestLogger()), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		w := requestWithAuth(router, "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
