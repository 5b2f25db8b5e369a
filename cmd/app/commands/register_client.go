package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	registryDomain "github.com/allisson/gatekeeper/internal/registry/domain"
	registryUseCase "github.com/allisson/gatekeeper/internal/registry/usecase"
)

// RunRegisterClient registers a client owned by ownerID and prints its id and
// plaintext secret. The secret cannot be recovered afterwards.
func RunRegisterClient(
	ctx context.Context,
	clientUseCase registryUseCase.ClientUseCase,
	logger *slog.Logger,
	writer io.Writer,
	name string,
	ownerID string,
	scopes string,
	format string,
) error {
	ownerPrincipalID, err := uuid.Parse(ownerID)
	if err != nil {
		return fmt.Errorf("invalid owner ID format: %w", err)
	}

	logger.Info("registering new client", slog.String("name", name))

	output, err := clientUseCase.Register(ctx, &registryDomain.RegisterClientInput{
		Name:             name,
		OwnerPrincipalID: ownerPrincipalID,
		Scopes:           parseScopes(scopes),
	})
	if err != nil {
		return fmt.Errorf("failed to register client: %w", err)
	}

	err = outputClientSecret(writer, format, "Client registered successfully!", output.ClientID, output.PlainSecret)
	if err != nil {
		return err
	}

	logger.Info("client registered successfully",
		slog.String("client_id", output.ClientID.String()),
		slog.String("name", name),
	)

	return nil
}

// outputClientSecret prints a client id with its one-time plaintext secret.
func outputClientSecret(writer io.Writer, format, title string, clientID uuid.UUID, plainSecret string) error {
	if format == "json" {
		return writeJSON(writer, map[string]string{
			"client_id": clientID.String(),
			"secret":    plainSecret,
		})
	}

	_, _ = fmt.Fprintf(writer, "\n%s\n", title)
	_, _ = fmt.Fprintf(writer, "Client ID: %s\n", clientID.String())
	_, _ = fmt.Fprintf(writer, "Secret: %s\n", plainSecret)
	_, _ = fmt.Fprintln(writer, "\nIMPORTANT: The secret is shown only once. Store it securely.")
	return nil
}
