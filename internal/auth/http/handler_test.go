package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/gatekeeper/internal/auth/domain"
	"github.com/allisson/gatekeeper/internal/auth/http/dto"
	usecaseMocks "github.com/allisson/gatekeeper/internal/auth/usecase/mocks"
	apperrors "github.com/allisson/gatekeeper/internal/errors"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// createTestContext creates a test Gin context with the given request.
func createTestContext(method, path string, body any) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	return c, w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var response map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response["error"].(string)
}

func decodeErrorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var response map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	code, _ := response["code"].(string)
	return code
}

func TestSessionHandler_LoginHandler(t *testing.T) {
	validRequest := dto.LoginRequest{
		Username:      "alice",
		Password:      "Correct-Horse-1",
		ChallengeID:   "challenge",
		CaptchaAnswer: "42",
	}

	t.Run("Success", func(t *testing.T) {
		mockUseCase := &usecaseMocks.MockSessionUseCase{}
		handler := NewSessionHandler(mockUseCase, newTestLogger())
		expiresAt := time.Now().UTC().Add(time.Hour).Truncate(time.Second)

		mockUseCase.On("Login", mock.Anything, mock.MatchedBy(func(input *authDomain.LoginInput) bool {
			return input.Username == "alice" && input.CaptchaAnswer == "42" && input.IPAddress != ""
		})).Return(&authDomain.LoginOutput{
			Token:     "token",
			TokenType: authDomain.TokenType,
			SessionID: "sid",
			ExpiresAt: expiresAt,
		}, nil).Once()

		c, w := createTestContext(http.MethodPost, "/v1/sessions", validRequest)
		handler.LoginHandler(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		var response dto.LoginResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "token", response.Token)
		assert.Equal(t, "Bearer", response.TokenType)
		assert.Equal(t, "sid", response.SessionID)
		assert.True(t, expiresAt.Equal(response.ExpiresAt))
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_InvalidJSON", func(t *testing.T) {
		handler := NewSessionHandler(&usecaseMocks.MockSessionUseCase{}, newTestLogger())

		c, w := createTestContext(http.MethodPost, "/v1/sessions", nil)
		c.Request.Body = io.NopCloser(bytes.NewReader([]byte("invalid json")))
		handler.LoginHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "bad_request", decodeError(t, w))
	})

	t.Run("Error_MissingCaptcha", func(t *testing.T) {
		handler := NewSessionHandler(&usecaseMocks.MockSessionUseCase{}, newTestLogger())
		request := validRequest
		request.ChallengeID = ""

		c, w := createTestContext(http.MethodPost, "/v1/sessions", request)
		handler.LoginHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_FailureCodes", func(t *testing.T) {
		tests := []struct {
			err  error
			code string
		}{
			{authDomain.ErrInvalidCredentials, "invalid_credentials"},
			{authDomain.ErrCaptchaFailed, "captcha_failed"},
		}

		for _, tt := range tests {
			mockUseCase := &usecaseMocks.MockSessionUseCase{}
			handler := NewSessionHandler(mockUseCase, newTestLogger())
			mockUseCase.On("Login", mock.Anything, mock.Anything).Return(nil, tt.err).Once()

			c, w := createTestContext(http.MethodPost, "/v1/sessions", validRequest)
			handler.LoginHandler(c)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "unauthorized", decodeError(t, w))
			assert.Equal(t, tt.code, decodeErrorCode(t, w))
			assert.NotContains(t, w.Body.String(), "unknown_user")
		}
	})

	t.Run("Error_Unavailable", func(t *testing.T) {
		mockUseCase := &usecaseMocks.MockSessionUseCase{}
		handler := NewSessionHandler(mockUseCase, newTestLogger())
		mockUseCase.On("Login", mock.Anything, mock.Anything).
			Return(nil, apperrors.Wrap(apperrors.ErrUnavailable, "failed to create session")).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/sessions", validRequest)
		handler.LoginHandler(c)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestSessionHandler_VerifyHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockUseCase := &usecaseMocks.MockSessionUseCase{}
		handler := NewSessionHandler(mockUseCase, newTestLogger())
		principalID := uuid.Must(uuid.NewV7())

		mockUseCase.On("Verify", mock.Anything, "token").Return(&authDomain.SessionInfo{
			SessionID:   "sid",
			PrincipalID: principalID,
			Scopes:      []string{"registry:admin"},
		}, nil).Once()

		c, w := createTestContext(http.MethodPost, "/v1/sessions/verify", dto.VerifyTokenRequest{Token: "token"})
		handler.VerifyHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var response dto.SessionResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, principalID.String(), response.PrincipalID)
		assert.Equal(t, []string{"registry:admin"}, response.Scopes)
	})

	t.Run("Error_Kinds", func(t *testing.T) {
		tests := []struct {
			name string
			err  error
			code string
		}{
			{"revoked", authDomain.ErrSessionRevoked, "session_revoked"},
			{"expired", authDomain.ErrTokenExpired, "token_expired"},
			{"invalid", authDomain.ErrInvalidToken, "invalid_token"},
			{"bad signature", authDomain.ErrTokenBadSignature, "invalid_token"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				mockUseCase := &usecaseMocks.MockSessionUseCase{}
				handler := NewSessionHandler(mockUseCase, newTestLogger())
				mockUseCase.On("Verify", mock.Anything, "token").Return(nil, tt.err).Once()

				c, w := createTestContext(
					http.MethodPost,
					"/v1/sessions/verify",
					dto.VerifyTokenRequest{Token: "token"},
				)
				handler.VerifyHandler(c)

				assert.Equal(t, http.StatusUnauthorized, w.Code)
				assert.Equal(t, tt.code, decodeErrorCode(t, w))
			})
		}
	})
}

func TestSessionHandler_RefreshHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockUseCase := &usecaseMocks.MockSessionUseCase{}
		handler := NewSessionHandler(mockUseCase, newTestLogger())
		mockUseCase.On("Refresh", mock.Anything, "token").Return(&authDomain.LoginOutput{
			Token:     "new-token",
			TokenType: authDomain.TokenType,
			SessionID: "sid",
		}, nil).Once()

		c, w := createTestContext(http.MethodPost, "/v1/sessions/refresh", nil)
		c.Request.Header.Set("Authorization", "Bearer token")
		handler.RefreshHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "new-token")
	})

	t.Run("Error_MissingBearer", func(t *testing.T) {
		handler := NewSessionHandler(&usecaseMocks.MockSessionUseCase{}, newTestLogger())

		c, w := createTestContext(http.MethodPost, "/v1/sessions/refresh", nil)
		handler.RefreshHandler(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Error_Conflict", func(t *testing.T) {
		mockUseCase := &usecaseMocks.MockSessionUseCase{}
		handler := NewSessionHandler(mockUseCase, newTestLogger())
		mockUseCase.On("Refresh", mock.Anything, "token").Return(nil, authDomain.ErrSessionConflict).Once()

		c, w := createTestContext(http.MethodPost, "/v1/sessions/refresh", nil)
		c.Request.Header.Set("Authorization", "bearer token")
		handler.RefreshHandler(c)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "session_conflict", decodeErrorCode(t, w))
	})
}

func TestSessionHandler_LogoutHandler(t *testing.T) {
	mockUseCase := &usecaseMocks.MockSessionUseCase{}
	handler := NewSessionHandler(mockUseCase, newTestLogger())
	mockUseCase.On("Logout", mock.Anything, "token").Return(nil).Once()

	c, w := createTestContext(http.MethodDelete, "/v1/sessions/current", nil)
	c.Request.Header.Set("Authorization", "Bearer token")
	handler.LogoutHandler(c)

	assert.Equal(t, http.StatusNoContent, w.Code)
	mockUseCase.AssertExpectations(t)
}

func TestSessionHandler_ListHandler(t *testing.T) {
	mockUseCase := &usecaseMocks.MockSessionUseCase{}
	handler := NewSessionHandler(mockUseCase, newTestLogger())
	principalID := uuid.Must(uuid.NewV7())
	mockUseCase.On("ListSessions", mock.Anything, principalID).
		Return([]*authDomain.SessionInfo{{SessionID: "a", PrincipalID: principalID}}, nil).
		Once()

	c, w := createTestContext(http.MethodGet, "/v1/sessions", nil)
	c.Request = c.Request.WithContext(WithSession(c.Request.Context(), &authDomain.SessionInfo{PrincipalID: principalID}))
	handler.ListHandler(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response dto.ListSessionsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response.Data, 1)
}

func TestCaptchaHandler_IssueHandler(t *testing.T) {
	mockUseCase := &usecaseMocks.MockCaptchaUseCase{}
	handler := NewCaptchaHandler(mockUseCase, newTestLogger())
	mockUseCase.On("Issue", mock.Anything).Return(&authDomain.IssuedCaptcha{
		ChallengeID: "challenge",
		Prompt:      "What is 3 plus 4?",
	}, nil).Once()

	c, w := createTestContext(http.MethodPost, "/v1/captcha", nil)
	handler.IssueHandler(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var response dto.CaptchaResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "challenge", response.ChallengeID)
	assert.Equal(t, "What is 3 plus 4?", response.Prompt)
	assert.NotContains(t, w.Body.String(), "answer_hash")
}

func TestUserHandler_RegisterHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockUserUseCase := &usecaseMocks.MockUserUseCase{}
		handler := NewUserHandler(mockUserUseCase, &usecaseMocks.MockSessionUseCase{}, newTestLogger())
		userID := uuid.Must(uuid.NewV7())

		mockUserUseCase.On("Register", mock.Anything, &authDomain.RegisterUserInput{
			Username: "alice",
			Email:    "alice@example.com",
			Password: "Correct-Horse-1",
		}).Return(&authDomain.User{
			ID:           userID,
			Username:     "alice",
			Email:        "alice@example.com",
			PasswordHash: "$argon2id$secret",
			Status:       authDomain.UserStatusActive,
		}, nil).Once()

		c, w := createTestContext(http.MethodPost, "/v1/users", dto.RegisterUserRequest{
			Username: "alice",
			Email:    "alice@example.com",
			Password: "Correct-Horse-1",
		})
		handler.RegisterHandler(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), userID.String())
		assert.NotContains(t, w.Body.String(), "argon2id")
	})

	t.Run("Success_IgnoresRequestedScopes", func(t *testing.T) {
		mockUserUseCase := &usecaseMocks.MockUserUseCase{}
		handler := NewUserHandler(mockUserUseCase, &usecaseMocks.MockSessionUseCase{}, newTestLogger())

		mockUserUseCase.On("Register", mock.Anything, mock.MatchedBy(func(input *authDomain.RegisterUserInput) bool {
			return len(input.Scopes) == 0
		})).Return(&authDomain.User{
			ID:       uuid.Must(uuid.NewV7()),
			Username: "mallory",
			Email:    "mallory@example.com",
			Status:   authDomain.UserStatusActive,
		}, nil).Once()

		c, w := createTestContext(http.MethodPost, "/v1/users", map[string]any{
			"username": "mallory",
			"email":    "mallory@example.com",
			"password": "Correct-Horse-1",
			"scopes":   []string{"registry:admin"},
		})
		handler.RegisterHandler(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		mockUserUseCase.AssertExpectations(t)
	})

	t.Run("Error_Duplicate", func(t *testing.T) {
		mockUserUseCase := &usecaseMocks.MockUserUseCase{}
		handler := NewUserHandler(mockUserUseCase, &usecaseMocks.MockSessionUseCase{}, newTestLogger())
		mockUserUseCase.On("Register", mock.Anything, mock.Anything).Return(nil, authDomain.ErrUserAlreadyExists).Once()

		c, w := createTestContext(http.MethodPost, "/v1/users", dto.RegisterUserRequest{
			Username: "alice",
			Email:    "alice@example.com",
			Password: "Correct-Horse-1",
		})
		handler.RegisterHandler(c)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestUserHandler_RevokeSessionsHandler(t *testing.T) {
	userID := uuid.Must(uuid.NewV7())

	newContext := func(session *authDomain.SessionInfo) (*gin.Context, *httptest.ResponseRecorder) {
		c, w := createTestContext(http.MethodDelete, "/v1/users/"+userID.String()+"/sessions", nil)
		c.Params = gin.Params{{Key: "id", Value: userID.String()}}
		c.Request = c.Request.WithContext(WithSession(c.Request.Context(), session))
		return c, w
	}

	t.Run("Success_Self", func(t *testing.T) {
		mockSessionUseCase := &usecaseMocks.MockSessionUseCase{}
		handler := NewUserHandler(&usecaseMocks.MockUserUseCase{}, mockSessionUseCase, newTestLogger())
		mockSessionUseCase.On("RevokeAll", mock.Anything, userID).Return(nil).Once()

		c, w := newContext(&authDomain.SessionInfo{PrincipalID: userID})
		handler.RevokeSessionsHandler(c)

		assert.Equal(t, http.StatusNoContent, w.Code)
		mockSessionUseCase.AssertExpectations(t)
	})

	t.Run("Success_Admin", func(t *testing.T) {
		mockSessionUseCase := &usecaseMocks.MockSessionUseCase{}
		handler := NewUserHandler(&usecaseMocks.MockUserUseCase{}, mockSessionUseCase, newTestLogger())
		mockSessionUseCase.On("RevokeAll", mock.Anything, userID).Return(nil).Once()

		c, w := newContext(&authDomain.SessionInfo{
			PrincipalID: uuid.Must(uuid.NewV7()),
			Scopes:      []string{UsersAdminScope},
		})
		handler.RevokeSessionsHandler(c)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("Error_OtherPrincipal", func(t *testing.T) {
		mockSessionUseCase := &usecaseMocks.MockSessionUseCase{}
		handler := NewUserHandler(&usecaseMocks.MockUserUseCase{}, mockSessionUseCase, newTestLogger())

		c, w := newContext(&authDomain.SessionInfo{PrincipalID: uuid.Must(uuid.NewV7())})
		handler.RevokeSessionsHandler(c)

		assert.Equal(t, http.StatusForbidden, w.Code)
		mockSessionUseCase.AssertNotCalled(t, "RevokeAll", mock.Anything, mock.Anything)
	})
}

func TestUserHandler_AvailabilityHandler(t *testing.T) {
	t.Run("Success_BothFields", func(t *testing.T) {
		mockUserUseCase := &usecaseMocks.MockUserUseCase{}
		handler := NewUserHandler(mockUserUseCase, &usecaseMocks.MockSessionUseCase{}, newTestLogger())
		mockUserUseCase.On("UsernameExists", mock.Anything, "alice").Return(true, nil).Once()
		mockUserUseCase.On("EmailExists", mock.Anything, "new@example.com").Return(false, nil).Once()

		c, w := createTestContext(
			http.MethodGet,
			"/v1/users/availability?username=alice&email=new@example.com",
			nil,
		)
		handler.AvailabilityHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"username_taken":true,"email_taken":false}`, w.Body.String())
		mockUserUseCase.AssertExpectations(t)
	})

	t.Run("Success_EmailOnly", func(t *testing.T) {
		mockUserUseCase := &usecaseMocks.MockUserUseCase{}
		handler := NewUserHandler(mockUserUseCase, &usecaseMocks.MockSessionUseCase{}, newTestLogger())
		mockUserUseCase.On("EmailExists", mock.Anything, "alice@example.com").Return(true, nil).Once()

		c, w := createTestContext(http.MethodGet, "/v1/users/availability?email=alice@example.com", nil)
		handler.AvailabilityHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"email_taken":true}`, w.Body.String())
		mockUserUseCase.AssertNotCalled(t, "UsernameExists", mock.Anything, mock.Anything)
	})

	t.Run("Error_NoQuery", func(t *testing.T) {
		handler := NewUserHandler(&usecaseMocks.MockUserUseCase{}, &usecaseMocks.MockSessionUseCase{}, newTestLogger())

		c, w := createTestContext(http.MethodGet, "/v1/users/availability", nil)
		handler.AvailabilityHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_Unavailable", func(t *testing.T) {
		mockUserUseCase := &usecaseMocks.MockUserUseCase{}
		handler := NewUserHandler(mockUserUseCase, &usecaseMocks.MockSessionUseCase{}, newTestLogger())
		mockUserUseCase.On("UsernameExists", mock.Anything, "alice").
			Return(false, apperrors.Wrap(apperrors.ErrUnavailable, "failed to get user")).
			Once()

		c, w := createTestContext(http.MethodGet, "/v1/users/availability?username=alice", nil)
		handler.AvailabilityHandler(c)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestUserHandler_GetHandler(t *testing.T) {
	userID := uuid.Must(uuid.NewV7())

	newContext := func(session *authDomain.SessionInfo) (*gin.Context, *httptest.ResponseRecorder) {
		c, w := createTestContext(http.MethodGet, "/v1/users/"+userID.String(), nil)
		c.Params = gin.Params{{Key: "id", Value: userID.String()}}
		c.Request = c.Request.WithContext(WithSession(c.Request.Context(), session))
		return c, w
	}

	t.Run("Success_Self", func(t *testing.T) {
		mockUserUseCase := &usecaseMocks.MockUserUseCase{}
		handler := NewUserHandler(mockUserUseCase, &usecaseMocks.MockSessionUseCase{}, newTestLogger())
		mockUserUseCase.On("Get", mock.Anything, userID).Return(&authDomain.User{
			ID:           userID,
			Username:     "alice",
			PasswordHash: "$argon2id$secret",
			Status:       authDomain.UserStatusDisabled,
		}, nil).Once()

		c, w := newContext(&authDomain.SessionInfo{PrincipalID: userID})
		handler.GetHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var response dto.UserResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "disabled", response.Status)
		assert.NotContains(t, w.Body.String(), "argon2id")
	})

	t.Run("Error_OtherPrincipal", func(t *testing.T) {
		mockUserUseCase := &usecaseMocks.MockUserUseCase{}
		handler := NewUserHandler(mockUserUseCase, &usecaseMocks.MockSessionUseCase{}, newTestLogger())

		c, w := newContext(&authDomain.SessionInfo{PrincipalID: uuid.Must(uuid.NewV7())})
		handler.GetHandler(c)

		assert.Equal(t, http.StatusForbidden, w.Code)
		mockUserUseCase.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		mockUserUseCase := &usecaseMocks.MockUserUseCase{}
		handler := NewUserHandler(mockUserUseCase, &usecaseMocks.MockSessionUseCase{}, newTestLogger())
		mockUserUseCase.On("Get", mock.Anything, userID).Return(nil, authDomain.ErrUserNotFound).Once()

		c, w := newContext(&authDomain.SessionInfo{
			PrincipalID: uuid.Must(uuid.NewV7()),
			Scopes:      []string{UsersAdminScope},
		})
		handler.GetHandler(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestUserHandler_SetStatusHandler(t *testing.T) {
	userID := uuid.Must(uuid.NewV7())

	newContext := func(body any) (*gin.Context, *httptest.ResponseRecorder) {
		c, w := createTestContext(http.MethodPatch, "/v1/users/"+userID.String()+"/status", body)
		c.Params = gin.Params{{Key: "id", Value: userID.String()}}
		return c, w
	}

	t.Run("Success", func(t *testing.T) {
		mockUserUseCase := &usecaseMocks.MockUserUseCase{}
		handler := NewUserHandler(mockUserUseCase, &usecaseMocks.MockSessionUseCase{}, newTestLogger())
		mockUserUseCase.On("SetStatus", mock.Anything, userID, authDomain.UserStatusRevoked).Return(nil).Once()

		c, w := newContext(dto.SetUserStatusRequest{Status: "revoked"})
		handler.SetStatusHandler(c)

		assert.Equal(t, http.StatusNoContent, w.Code)
		mockUserUseCase.AssertExpectations(t)
	})

	t.Run("Error_UnknownStatus", func(t *testing.T) {
		mockUserUseCase := &usecaseMocks.MockUserUseCase{}
		handler := NewUserHandler(mockUserUseCase, &usecaseMocks.MockSessionUseCase{}, newTestLogger())

		c, w := newContext(dto.SetUserStatusRequest{Status: "paused"})
		handler.SetStatusHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockUserUseCase.AssertNotCalled(t, "SetStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Error_InvalidID", func(t *testing.T) {
		handler := NewUserHandler(&usecaseMocks.MockUserUseCase{}, &usecaseMocks.MockSessionUseCase{}, newTestLogger())

		c, w := createTestContext(
			http.MethodPatch,
			"/v1/users/invalid/status",
			dto.SetUserStatusRequest{Status: "active"},
		)
		c.Params = gin.Params{{Key: "id", Value: "invalid"}}
		handler.SetStatusHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUserHandler_ChangePasswordHandler(t *testing.T) {
	userID := uuid.Must(uuid.NewV7())

	newContext := func(body any) (*gin.Context, *httptest.ResponseRecorder) {
		c, w := createTestContext(http.MethodPut, "/v1/users/"+userID.String()+"/password", body)
		c.Params = gin.Params{{Key: "id", Value: userID.String()}}
		return c, w
	}

	t.Run("Success", func(t *testing.T) {
		mockUserUseCase := &usecaseMocks.MockUserUseCase{}
		handler := NewUserHandler(mockUserUseCase, &usecaseMocks.MockSessionUseCase{}, newTestLogger())
		mockUserUseCase.On("ChangePassword", mock.Anything, userID, "New-Password-2").Return(nil).Once()

		c, w := newContext(dto.ChangePasswordRequest{Password: "New-Password-2"})
		handler.ChangePasswordHandler(c)

		assert.Equal(t, http.StatusNoContent, w.Code)
		mockUserUseCase.AssertExpectations(t)
	})

	t.Run("Error_WeakPassword", func(t *testing.T) {
		mockUserUseCase := &usecaseMocks.MockUserUseCase{}
		handler := NewUserHandler(mockUserUseCase, &usecaseMocks.MockSessionUseCase{}, newTestLogger())
		mockUserUseCase.On("ChangePassword", mock.Anything, userID, "short").
			Return(apperrors.Wrap(apperrors.ErrInvalidInput, "password must be at least 8 characters")).
			Once()

		c, w := newContext(dto.ChangePasswordRequest{Password: "short"})
		handler.ChangePasswordHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_MissingPassword", func(t *testing.T) {
		mockUserUseCase := &usecaseMocks.MockUserUseCase{}
		handler := NewUserHandler(mockUserUseCase, &usecaseMocks.MockSessionUseCase{}, newTestLogger())

		c, w := newContext(dto.ChangePasswordRequest{})
		handler.ChangePasswordHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockUserUseCase.AssertNotCalled(t, "ChangePassword", mock.Anything, mock.Anything, mock.Anything)
	})
}
