package dto

import (
	"time"

	registryDomain "github.com/allisson/gatekeeper/internal/registry/domain"
)

// RegisterClientResponse is returned once on registration.
// SECURITY: the plaintext secret is never retrievable again.
type RegisterClientResponse struct {
	ID     string `json:"id"`
	Secret string `json:"secret"` //nolint:gosec // returned once to the caller
}

// RotateSecretResponse carries the new plaintext secret.
type RotateSecretResponse struct {
	ID     string `json:"id"`
	Secret string `json:"secret"` //nolint:gosec // returned once to the caller
}

// AuthenticateClientResponse lists the scopes granted to an authenticated client.
type AuthenticateClientResponse struct {
	ClientID string   `json:"client_id"`
	Scopes   []string `json:"scopes"`
}

// ClientResponse represents a client in API responses. The secret hash is never exposed.
type ClientResponse struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	OwnerPrincipalID string    `json:"owner_principal_id"`
	Scopes           []string  `json:"scopes"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// MapClientToResponse converts a domain client to an API response.
func MapClientToResponse(client *registryDomain.Client) ClientResponse {
	scopes := client.Scopes
	if scopes == nil {
		scopes = []string{}
	}
	return ClientResponse{
		ID:               client.ID.String(),
		Name:             client.Name,
		OwnerPrincipalID: client.OwnerPrincipalID.String(),
		Scopes:           scopes,
		Status:           string(client.Status),
		CreatedAt:        client.CreatedAt,
		UpdatedAt:        client.UpdatedAt,
	}
}

// ListClientsResponse represents a paginated list of clients.
type ListClientsResponse struct {
	Data []ClientResponse `json:"data"`
}

// MapClientsToListResponse converts clients to a list API response.
func MapClientsToListResponse(clients []*registryDomain.Client) ListClientsResponse {
	data := make([]ClientResponse, 0, len(clients))
	for _, client := range clients {
		data = append(data, MapClientToResponse(client))
	}
	return ListClientsResponse{Data: data}
}
