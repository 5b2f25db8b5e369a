// Package dto provides data transfer objects for the authenticator HTTP API.
package dto

import (
	validation "github.com/jellydator/validation"

	authDomain "github.com/allisson/gatekeeper/internal/auth/domain"
	customValidation "github.com/allisson/gatekeeper/internal/validation"
)

// LoginRequest contains the credentials and the captcha answer of a login attempt.
type LoginRequest struct {
	Username      string `json:"username"`
	Password      string `json:"password"` //nolint:gosec // request field
	ChallengeID   string `json:"challenge_id"`
	CaptchaAnswer string `json:"captcha_answer"`
}

// Validate checks that every field is present. Credential checks happen in the usecase.
func (r *LoginRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(
			&r.Username,
			validation.Required,
			validation.Length(1, 64),
			customValidation.NoControlChars,
		),
		validation.Field(&r.Password, validation.Required, validation.Length(1, 128)),
		validation.Field(&r.ChallengeID, validation.Required, customValidation.NotBlank),
		validation.Field(&r.CaptchaAnswer, validation.Required, customValidation.NotBlank),
	)
}

// VerifyTokenRequest carries a token to introspect.
type VerifyTokenRequest struct {
	Token string `json:"token"`
}

// Validate checks if the verify request is valid.
func (r *VerifyTokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Token, validation.Required, customValidation.NotBlank),
	)
}

// RegisterUserRequest contains the parameters for self-registration. It carries no
// scopes: self-registered users start unprivileged and scopes are granted with the
// create-user command.
type RegisterUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"` //nolint:gosec // request field
}

// Validate checks the request shape. Password strength is enforced by the usecase.
func (r *RegisterUserRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(
			&r.Username,
			validation.Required,
			customValidation.NotBlank,
			customValidation.NoControlChars,
		),
		validation.Field(&r.Email, validation.Required, customValidation.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// SetUserStatusRequest changes the status of a user.
type SetUserStatusRequest struct {
	Status string `json:"status"`
}

// Validate checks the status against the known user statuses.
func (r *SetUserStatusRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Status, validation.Required, validation.In(
			string(authDomain.UserStatusActive),
			string(authDomain.UserStatusDisabled),
			string(authDomain.UserStatusRevoked),
		)),
	)
}

// ChangePasswordRequest carries the new password of a user. Strength rules are
// enforced by the usecase.
type ChangePasswordRequest struct {
	Password string `json:"password"` //nolint:gosec // request field
}

// Validate checks if the password is present.
func (r *ChangePasswordRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Password, validation.Required, validation.Length(1, 128)),
	)
}

// UserAvailabilityRequest holds the query of an availability check. At least one
// field must be set.
type UserAvailabilityRequest struct {
	Username string `form:"username"`
	Email    string `form:"email"`
}

// Validate checks that a username or an email was given.
func (r *UserAvailabilityRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Username,
			validation.Required.When(r.Email == "").Error("username or email is required"),
			validation.Length(1, 64),
			customValidation.NoControlChars,
		),
		validation.Field(&r.Email, validation.Length(1, 255), customValidation.NoControlChars),
	)
}
