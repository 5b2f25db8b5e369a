package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/gatekeeper/internal/auth/domain"
	"github.com/allisson/gatekeeper/internal/metrics"
)

const metricsDomain = "auth"

func recordOperation(ctx context.Context, m metrics.BusinessMetrics, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	m.RecordOperation(ctx, metricsDomain, operation, status)
	m.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

// sessionUseCaseWithMetrics decorates SessionUseCase with metrics instrumentation.
type sessionUseCaseWithMetrics struct {
	next    SessionUseCase
	metrics metrics.BusinessMetrics
}

// NewSessionUseCaseWithMetrics wraps a SessionUseCase with metrics recording.
func NewSessionUseCaseWithMetrics(useCase SessionUseCase, m metrics.BusinessMetrics) SessionUseCase {
	return &sessionUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Login records metrics for login attempts.
func (s *sessionUseCaseWithMetrics) Login(
	ctx context.Context,
	input *authDomain.LoginInput,
) (*authDomain.LoginOutput, error) {
	start := time.Now()
	output, err := s.next.Login(ctx, input)
	recordOperation(ctx, s.metrics, "session_login", start, err)
	return output, err
}

// Verify records metrics for token verification.
func (s *sessionUseCaseWithMetrics) Verify(ctx context.Context, token string) (*authDomain.SessionInfo, error) {
	start := time.Now()
	info, err := s.next.Verify(ctx, token)
	recordOperation(ctx, s.metrics, "session_verify", start, err)
	return info, err
}

// Refresh records metrics for session refreshes.
func (s *sessionUseCaseWithMetrics) Refresh(ctx context.Context, token string) (*authDomain.LoginOutput, error) {
	start := time.Now()
	output, err := s.next.Refresh(ctx, token)
	recordOperation(ctx, s.metrics, "session_refresh", start, err)
	return output, err
}

// Revoke records metrics for session revocation.
func (s *sessionUseCaseWithMetrics) Revoke(ctx context.Context, sessionID string) error {
	start := time.Now()
	err := s.next.Revoke(ctx, sessionID)
	recordOperation(ctx, s.metrics, "session_revoke", start, err)
	return err
}

// RevokeAll records metrics for bulk session revocation.
func (s *sessionUseCaseWithMetrics) RevokeAll(ctx context.Context, principalID uuid.UUID) error {
	start := time.Now()
	err := s.next.RevokeAll(ctx, principalID)
	recordOperation(ctx, s.metrics, "session_revoke_all", start, err)
	return err
}

// Logout records metrics for logouts.
func (s *sessionUseCaseWithMetrics) Logout(ctx context.Context, token string) error {
	start := time.Now()
	err := s.next.Logout(ctx, token)
	recordOperation(ctx, s.metrics, "session_logout", start, err)
	return err
}

// ListSessions records metrics for session listing.
func (s *sessionUseCaseWithMetrics) ListSessions(
	ctx context.Context,
	principalID uuid.UUID,
) ([]*authDomain.SessionInfo, error) {
	start := time.Now()
	sessions, err := s.next.ListSessions(ctx, principalID)
	recordOperation(ctx, s.metrics, "session_list", start, err)
	return sessions, err
}

// captchaUseCaseWithMetrics decorates CaptchaUseCase with metrics instrumentation.
type captchaUseCaseWithMetrics struct {
	next    CaptchaUseCase
	metrics metrics.BusinessMetrics
}

// NewCaptchaUseCaseWithMetrics wraps a CaptchaUseCase with metrics recording.
func NewCaptchaUseCaseWithMetrics(useCase CaptchaUseCase, m metrics.BusinessMetrics) CaptchaUseCase {
	return &captchaUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Issue records metrics for captcha issuance.
func (c *captchaUseCaseWithMetrics) Issue(ctx context.Context) (*authDomain.IssuedCaptcha, error) {
	start := time.Now()
	captcha, err := c.next.Issue(ctx)
	recordOperation(ctx, c.metrics, "captcha_issue", start, err)
	return captcha, err
}

// Verify records metrics for captcha verification.
func (c *captchaUseCaseWithMetrics) Verify(ctx context.Context, challengeID, answer string) error {
	start := time.Now()
	err := c.next.Verify(ctx, challengeID, answer)
	recordOperation(ctx, c.metrics, "captcha_verify", start, err)
	return err
}

// userUseCaseWithMetrics decorates UserUseCase with metrics instrumentation.
type userUseCaseWithMetrics struct {
	next    UserUseCase
	metrics metrics.BusinessMetrics
}

// NewUserUseCaseWithMetrics wraps a UserUseCase with metrics recording.
func NewUserUseCaseWithMetrics(useCase UserUseCase, m metrics.BusinessMetrics) UserUseCase {
	return &userUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Register records metrics for user registration.
func (u *userUseCaseWithMetrics) Register(
	ctx context.Context,
	input *authDomain.RegisterUserInput,
) (*authDomain.User, error) {
	start := time.Now()
	user, err := u.next.Register(ctx, input)
	recordOperation(ctx, u.metrics, "user_register", start, err)
	return user, err
}

// UsernameExists records metrics for username lookups.
func (u *userUseCaseWithMetrics) UsernameExists(ctx context.Context, username string) (bool, error) {
	start := time.Now()
	found, err := u.next.UsernameExists(ctx, username)
	recordOperation(ctx, u.metrics, "user_username_exists", start, err)
	return found, err
}

// EmailExists records metrics for email lookups.
func (u *userUseCaseWithMetrics) EmailExists(ctx context.Context, email string) (bool, error) {
	start := time.Now()
	found, err := u.next.EmailExists(ctx, email)
	recordOperation(ctx, u.metrics, "user_email_exists", start, err)
	return found, err
}

// Get records metrics for user retrieval.
func (u *userUseCaseWithMetrics) Get(ctx context.Context, userID uuid.UUID) (*authDomain.User, error) {
	start := time.Now()
	user, err := u.next.Get(ctx, userID)
	recordOperation(ctx, u.metrics, "user_get", start, err)
	return user, err
}

// ChangePassword records metrics for password changes.
func (u *userUseCaseWithMetrics) ChangePassword(ctx context.Context, userID uuid.UUID, newPassword string) error {
	start := time.Now()
	err := u.next.ChangePassword(ctx, userID, newPassword)
	recordOperation(ctx, u.metrics, "user_change_password", start, err)
	return err
}

// SetStatus records metrics for status changes.
func (u *userUseCaseWithMetrics) SetStatus(
	ctx context.Context,
	userID uuid.UUID,
	status authDomain.UserStatus,
) error {
	start := time.Now()
	err := u.next.SetStatus(ctx, userID, status)
	recordOperation(ctx, u.metrics, "user_set_status", start, err)
	return err
}
