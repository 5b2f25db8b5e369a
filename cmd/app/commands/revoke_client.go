package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	registryUseCase "github.com/allisson/gatekeeper/internal/registry/usecase"
)

// RunRevokeClient permanently revokes a client. Revoked clients can no longer
// authenticate and cannot be reactivated.
func RunRevokeClient(
	ctx context.Context,
	clientUseCase registryUseCase.ClientUseCase,
	logger *slog.Logger,
	writer io.Writer,
	clientIDStr string,
) error {
	clientID, err := uuid.Parse(clientIDStr)
	if err != nil {
		return fmt.Errorf("invalid client ID format: %w", err)
	}

	logger.Info("revoking client", slog.String("client_id", clientID.String()))

	if err := clientUseCase.Revoke(ctx, clientID); err != nil {
		return fmt.Errorf("failed to revoke client: %w", err)
	}

	_, _ = fmt.Fprintf(writer, "Client %s revoked successfully\n", clientID.String())

	logger.Info("client revoked successfully", slog.String("client_id", clientID.String()))

	return nil
}
