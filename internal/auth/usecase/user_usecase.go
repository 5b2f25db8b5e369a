package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	authDomain "github.com/allisson/gatekeeper/internal/auth/domain"
	authService "github.com/allisson/gatekeeper/internal/auth/service"
	auditDomain "github.com/allisson/gatekeeper/internal/audit/domain"
	"github.com/allisson/gatekeeper/internal/config"
	outboxDomain "github.com/allisson/gatekeeper/internal/outbox/domain"
	appValidation "github.com/allisson/gatekeeper/internal/validation"
)

var passwordRules = []validation.Rule{
	validation.Required.Error("password is required"),
	validation.Length(8, 128).Error("password must be between 8 and 128 characters"),
	appValidation.PasswordStrength{
		MinLength:     8,
		RequireUpper:  true,
		RequireLower:  true,
		RequireNumber: true,
	},
}

// userUseCase implements UserUseCase.
type userUseCase struct {
	config          *config.Config
	userRepo        UserRepository
	sessionUseCase  SessionUseCase
	passwordService authService.PasswordService
	tasks           TaskSubmitter
	logger          *slog.Logger
	clock           func() time.Time
}

func validateRegisterUserInput(input *authDomain.RegisterUserInput) error {
	err := validation.ValidateStruct(input,
		validation.Field(&input.Username,
			validation.Required.Error("username is required"),
			validation.Length(3, 64).Error("username must be between 3 and 64 characters"),
			appValidation.Username,
		),
		validation.Field(&input.Email,
			validation.Required.Error("email is required"),
			appValidation.NotBlank,
			appValidation.Email,
			validation.Length(5, 255).Error("email must be between 5 and 255 characters"),
		),
		validation.Field(&input.Password, passwordRules...),
		validation.Field(&input.Scopes, validation.Each(appValidation.Scope)),
	)
	return appValidation.WrapValidationError(err)
}

// Register validates the input, stores an active user and emits user.registered.
func (u *userUseCase) Register(
	ctx context.Context,
	input *authDomain.RegisterUserInput,
) (*authDomain.User, error) {
	if err := validateRegisterUserInput(input); err != nil {
		return nil, err
	}

	passwordHash, err := u.passwordService.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	scopes := input.Scopes
	if scopes == nil {
		scopes = []string{}
	}

	now := u.now()
	user := &authDomain.User{
		ID:           uuid.Must(uuid.NewV7()),
		Username:     input.Username,
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: passwordHash,
		Scopes:       scopes,
		Status:       authDomain.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	storeCtx, cancel := u.storeContext(ctx)
	defer cancel()
	if err := u.userRepo.Create(storeCtx, user); err != nil {
		return nil, err
	}

	u.submit(authDomain.EventUserRegistered, user.ID, map[string]any{
		"username": user.Username,
		"scopes":   user.Scopes,
	})

	return user, nil
}

// UsernameExists reports whether username is taken.
func (u *userUseCase) UsernameExists(ctx context.Context, username string) (bool, error) {
	storeCtx, cancel := u.storeContext(ctx)
	defer cancel()
	_, err := u.userRepo.GetByUsername(storeCtx, username)
	return exists(err)
}

// EmailExists reports whether email is taken.
func (u *userUseCase) EmailExists(ctx context.Context, email string) (bool, error) {
	storeCtx, cancel := u.storeContext(ctx)
	defer cancel()
	_, err := u.userRepo.GetByEmail(storeCtx, strings.ToLower(strings.TrimSpace(email)))
	return exists(err)
}

// Get retrieves a user by ID.
func (u *userUseCase) Get(ctx context.Context, userID uuid.UUID) (*authDomain.User, error) {
	storeCtx, cancel := u.storeContext(ctx)
	defer cancel()
	return u.userRepo.Get(storeCtx, userID)
}

// ChangePassword stores a new password hash and then revokes every session of
// the user, so tokens issued under the old password stop verifying.
func (u *userUseCase) ChangePassword(ctx context.Context, userID uuid.UUID, newPassword string) error {
	if err := appValidation.WrapValidationError(validation.Validate(newPassword, passwordRules...)); err != nil {
		return err
	}

	passwordHash, err := u.passwordService.Hash(newPassword)
	if err != nil {
		return err
	}

	storeCtx, cancel := u.storeContext(ctx)
	err = u.userRepo.UpdatePassword(storeCtx, userID, passwordHash, u.now())
	cancel()
	if err != nil {
		return err
	}

	u.submit(authDomain.EventUserUpdated, userID, map[string]any{"change": "password"})

	return u.sessionUseCase.RevokeAll(ctx, userID)
}

// SetStatus changes the user status. Any status other than active also
// revokes every session of the user.
func (u *userUseCase) SetStatus(ctx context.Context, userID uuid.UUID, status authDomain.UserStatus) error {
	if !status.IsValid() {
		return authDomain.ErrInvalidUserStatus
	}

	storeCtx, cancel := u.storeContext(ctx)
	err := u.userRepo.UpdateStatus(storeCtx, userID, status, u.now())
	cancel()
	if err != nil {
		return err
	}

	u.submit(authDomain.EventUserUpdated, userID, map[string]any{"status": string(status)})

	if status == authDomain.UserStatusActive {
		return nil
	}
	return u.sessionUseCase.RevokeAll(ctx, userID)
}

func (u *userUseCase) now() time.Time {
	return u.clock().UTC()
}

func (u *userUseCase) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if u.config.StoreTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, u.config.StoreTimeout)
}

func (u *userUseCase) submit(eventType string, userID uuid.UUID, metadata map[string]any) {
	accepted := u.tasks.Submit(outboxDomain.Task{
		EventType: eventType,
		Payload: auditDomain.EventPayload{
			PrincipalID: &userID,
			Metadata:    metadata,
		},
	})
	if !accepted {
		u.logger.Warn("audit task dropped", slog.String("event_type", eventType))
	}
}

func exists(err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	if errors.Is(err, authDomain.ErrUserNotFound) {
		return false, nil
	}
	return false, err
}

// NewUserUseCase creates a new UserUseCase with the provided dependencies.
func NewUserUseCase(
	config *config.Config,
	userRepo UserRepository,
	sessionUseCase SessionUseCase,
	passwordService authService.PasswordService,
	tasks TaskSubmitter,
	logger *slog.Logger,
) UserUseCase {
	return &userUseCase{
		config:          config,
		userRepo:        userRepo,
		sessionUseCase:  sessionUseCase,
		passwordService: passwordService,
		tasks:           tasks,
		logger:          logger,
		clock:           time.Now,
	}
}
