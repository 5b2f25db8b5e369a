package dto

import (
	"time"

	authDomain "github.com/allisson/gatekeeper/internal/auth/domain"
)

// LoginResponse is returned by login and refresh.
// SECURITY: the token is only ever returned here.
type LoginResponse struct {
	Token     string    `json:"token"` //nolint:gosec // returned to the session owner
	TokenType string    `json:"token_type"`
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// MapLoginOutputToResponse converts a login output to an API response.
func MapLoginOutputToResponse(output *authDomain.LoginOutput) LoginResponse {
	return LoginResponse{
		Token:     output.Token,
		TokenType: output.TokenType,
		SessionID: output.SessionID,
		ExpiresAt: output.ExpiresAt,
	}
}

// SessionResponse describes a live session.
type SessionResponse struct {
	SessionID   string    `json:"session_id"`
	PrincipalID string    `json:"principal_id"`
	Scopes      []string  `json:"scopes"`
	IssuedAt    time.Time `json:"issued_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// MapSessionToResponse converts a session to an API response.
func MapSessionToResponse(session *authDomain.SessionInfo) SessionResponse {
	scopes := session.Scopes
	if scopes == nil {
		scopes = []string{}
	}
	return SessionResponse{
		SessionID:   session.SessionID,
		PrincipalID: session.PrincipalID.String(),
		Scopes:      scopes,
		IssuedAt:    session.IssuedAt,
		ExpiresAt:   session.ExpiresAt,
	}
}

// ListSessionsResponse represents the live sessions of a principal.
type ListSessionsResponse struct {
	Data []SessionResponse `json:"data"`
}

// MapSessionsToListResponse converts sessions to a list API response.
func MapSessionsToListResponse(sessions []*authDomain.SessionInfo) ListSessionsResponse {
	data := make([]SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		data = append(data, MapSessionToResponse(session))
	}
	return ListSessionsResponse{Data: data}
}

// CaptchaResponse is returned when a captcha challenge is issued.
type CaptchaResponse struct {
	ChallengeID string    `json:"challenge_id"`
	Prompt      string    `json:"prompt"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// MapCaptchaToResponse converts an issued captcha to an API response.
func MapCaptchaToResponse(captcha *authDomain.IssuedCaptcha) CaptchaResponse {
	return CaptchaResponse{
		ChallengeID: captcha.ChallengeID,
		Prompt:      captcha.Prompt,
		ExpiresAt:   captcha.ExpiresAt,
	}
}

// UserResponse represents a user in API responses (excludes the password hash).
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Scopes    []string  `json:"scopes"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// MapUserToResponse converts a domain user to an API response.
func MapUserToResponse(user *authDomain.User) UserResponse {
	scopes := user.Scopes
	if scopes == nil {
		scopes = []string{}
	}
	return UserResponse{
		ID:        user.ID.String(),
		Username:  user.Username,
		Email:     user.Email,
		Scopes:    scopes,
		Status:    string(user.Status),
		CreatedAt: user.CreatedAt,
	}
}

// UserAvailabilityResponse reports which of the queried fields are taken. Fields
// that were not queried are omitted.
type UserAvailabilityResponse struct {
	UsernameTaken *bool `json:"username_taken,omitempty"`
	EmailTaken    *bool `json:"email_taken,omitempty"`
}
