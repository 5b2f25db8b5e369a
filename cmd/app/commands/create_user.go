package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	authDomain "github.com/allisson/gatekeeper/internal/auth/domain"
	authUseCase "github.com/allisson/gatekeeper/internal/auth/usecase"
)

// RunCreateUser registers a user account. When password is empty it is read from
// io.Reader, so it never has to appear in the shell history.
func RunCreateUser(
	ctx context.Context,
	userUseCase authUseCase.UserUseCase,
	logger *slog.Logger,
	io IOTuple,
	username string,
	email string,
	password string,
	scopes string,
	format string,
) error {
	logger.Info("creating new user", slog.String("username", username))

	if password == "" {
		var err error
		password, err = promptForPassword(io)
		if err != nil {
			return fmt.Errorf("failed to get password: %w", err)
		}
	}

	user, err := userUseCase.Register(ctx, &authDomain.RegisterUserInput{
		Username: username,
		Email:    email,
		Password: password,
		Scopes:   parseScopes(scopes),
	})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	if format == "json" {
		if err := writeJSON(io.Writer, map[string]any{
			"user_id":  user.ID.String(),
			"username": user.Username,
			"email":    user.Email,
			"scopes":   user.Scopes,
		}); err != nil {
			return err
		}
	} else {
		outputUserText(io.Writer, user)
	}

	logger.Info("user created successfully",
		slog.String("user_id", user.ID.String()),
		slog.String("username", user.Username),
	)

	return nil
}

func promptForPassword(io IOTuple) (string, error) {
	_, _ = fmt.Fprint(io.Writer, "Enter password: ")

	reader := bufio.NewReader(io.Reader)
	password, err := reader.ReadString('\n')
	if err != nil && password == "" {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	password = strings.TrimRight(password, "\r\n")

	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	return password, nil
}

func outputUserText(writer io.Writer, user *authDomain.User) {
	_, _ = fmt.Fprintln(writer, "\nUser created successfully!")
	_, _ = fmt.Fprintf(writer, "User ID: %s\n", user.ID.String())
	_, _ = fmt.Fprintf(writer, "Username: %s\n", user.Username)
	_, _ = fmt.Fprintf(writer, "Email: %s\n", user.Email)
	_, _ = fmt.Fprintf(writer, "Scopes: %s\n", strings.Join(user.Scopes, ","))
}
