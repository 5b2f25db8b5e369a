package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	authUseCase "github.com/allisson/gatekeeper/internal/auth/usecase"
)

// RunRevokeSessions revokes every session of a principal, for example after a
// suspected credential leak.
func RunRevokeSessions(
	ctx context.Context,
	sessionUseCase authUseCase.SessionUseCase,
	logger *slog.Logger,
	writer io.Writer,
	principalIDStr string,
) error {
	principalID, err := uuid.Parse(principalIDStr)
	if err != nil {
		return fmt.Errorf("invalid principal ID format: %w", err)
	}

	logger.Info("revoking sessions", slog.String("principal_id", principalID.String()))

	if err := sessionUseCase.RevokeAll(ctx, principalID); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}

	_, _ = fmt.Fprintf(writer, "All sessions of %s revoked successfully\n", principalID.String())

	logger.Info("sessions revoked successfully", slog.String("principal_id", principalID.String()))

	return nil
}
