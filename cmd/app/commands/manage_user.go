package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	authDomain "github.com/allisson/gatekeeper/internal/auth/domain"
	authUseCase "github.com/allisson/gatekeeper/internal/auth/usecase"
)

// RunSetUserStatus activates, disables or revokes a user. Any status other than
// active also revokes the user's sessions.
func RunSetUserStatus(
	ctx context.Context,
	userUseCase authUseCase.UserUseCase,
	logger *slog.Logger,
	writer io.Writer,
	userIDStr string,
	status string,
) error {
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return fmt.Errorf("invalid user ID format: %w", err)
	}

	logger.Info("setting user status",
		slog.String("user_id", userID.String()),
		slog.String("status", status),
	)

	if err := userUseCase.SetStatus(ctx, userID, authDomain.UserStatus(status)); err != nil {
		return fmt.Errorf("failed to set user status: %w", err)
	}

	_, _ = fmt.Fprintf(writer, "User %s is now %s\n", userID.String(), status)

	logger.Info("user status updated", slog.String("user_id", userID.String()))

	return nil
}

// RunChangePassword replaces a user's password and revokes its sessions. When
// password is empty it is read from io.Reader.
func RunChangePassword(
	ctx context.Context,
	userUseCase authUseCase.UserUseCase,
	logger *slog.Logger,
	io IOTuple,
	userIDStr string,
	password string,
) error {
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return fmt.Errorf("invalid user ID format: %w", err)
	}

	if password == "" {
		password, err = promptForPassword(io)
		if err != nil {
			return fmt.Errorf("failed to get password: %w", err)
		}
	}

	logger.Info("changing user password", slog.String("user_id", userID.String()))

	if err := userUseCase.ChangePassword(ctx, userID, password); err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}

	_, _ = fmt.Fprintf(io.Writer, "Password of %s changed; all sessions revoked\n", userID.String())

	logger.Info("user password changed", slog.String("user_id", userID.String()))

	return nil
}
