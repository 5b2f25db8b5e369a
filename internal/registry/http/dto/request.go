// Package dto provides data transfer objects for the client registry HTTP API.
package dto

import (
	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/gatekeeper/internal/validation"
)

var uuidString = validation.NewStringRule(func(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}, "must be a valid UUID")

// RegisterClientRequest contains the parameters for registering a client.
// OwnerPrincipalID defaults to the principal of the calling session.
type RegisterClientRequest struct {
	Name             string   `json:"name"`
	OwnerPrincipalID string   `json:"owner_principal_id,omitempty"`
	Scopes           []string `json:"scopes"`
}

// Validate checks if the register request is valid.
func (r *RegisterClientRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&r.OwnerPrincipalID, uuidString),
		validation.Field(&r.Scopes, validation.Each(customValidation.Scope)),
	)
}

// AuthenticateClientRequest carries client credentials to verify.
type AuthenticateClientRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"` //nolint:gosec // request field
}

// Validate checks if the authenticate request is valid.
func (r *AuthenticateClientRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ClientID, validation.Required, uuidString),
		validation.Field(&r.ClientSecret, validation.Required, customValidation.NotBlank),
	)
}
