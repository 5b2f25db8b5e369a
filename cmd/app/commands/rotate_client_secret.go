package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	registryUseCase "github.com/allisson/gatekeeper/internal/registry/usecase"
)

// RunRotateClientSecret replaces a client secret and prints the new one. The
// previous secret stops working immediately.
func RunRotateClientSecret(
	ctx context.Context,
	clientUseCase registryUseCase.ClientUseCase,
	logger *slog.Logger,
	writer io.Writer,
	clientIDStr string,
	format string,
) error {
	clientID, err := uuid.Parse(clientIDStr)
	if err != nil {
		return fmt.Errorf("invalid client ID format: %w", err)
	}

	logger.Info("rotating client secret", slog.String("client_id", clientID.String()))

	plainSecret, err := clientUseCase.RotateSecret(ctx, clientID)
	if err != nil {
		return fmt.Errorf("failed to rotate client secret: %w", err)
	}

	err = outputClientSecret(writer, format, "Client secret rotated successfully!", clientID, plainSecret)
	if err != nil {
		return err
	}

	logger.Info("client secret rotated successfully", slog.String("client_id", clientID.String()))

	return nil
}
