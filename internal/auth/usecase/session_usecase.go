package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/gatekeeper/internal/auth/domain"
	authService "github.com/allisson/gatekeeper/internal/auth/service"
	auditDomain "github.com/allisson/gatekeeper/internal/audit/domain"
	"github.com/allisson/gatekeeper/internal/config"
	apperrors "github.com/allisson/gatekeeper/internal/errors"
	outboxDomain "github.com/allisson/gatekeeper/internal/outbox/domain"
)

// maxRevokeAttempts bounds the compare-and-set loop of a revocation racing
// with refreshes of the same session.
const maxRevokeAttempts = 3

// sessionUseCase implements SessionUseCase.
type sessionUseCase struct {
	config          *config.Config
	userRepo        UserRepository
	sessionRepo     SessionRepository
	captchaUseCase  CaptchaUseCase
	passwordService authService.PasswordService
	tokenCodec      authService.TokenCodec
	tasks           TaskSubmitter
	logger          *slog.Logger
	clock           func() time.Time
}

// Login authenticates a user and opens a session.
//
// The captcha is verified first and fails closed. Unknown users, wrong passwords
// and inactive users all return ErrInvalidCredentials; an unknown user still
// costs one password verification so response time does not reveal whether the
// username exists. The login audit event is submitted asynchronously and never
// fails the login.
func (s *sessionUseCase) Login(
	ctx context.Context,
	input *authDomain.LoginInput,
) (*authDomain.LoginOutput, error) {
	if err := s.captchaUseCase.Verify(ctx, input.ChallengeID, input.CaptchaAnswer); err != nil {
		s.recordLoginFailure(nil, input, "captcha_failed")
		return nil, authDomain.ErrCaptchaFailed
	}

	storeCtx, cancel := s.storeContext(ctx)
	user, err := s.userRepo.GetByUsername(storeCtx, input.Username)
	cancel()
	if err != nil {
		if errors.Is(err, authDomain.ErrUserNotFound) {
			s.passwordService.CompareDummy(input.Password)
			s.recordLoginFailure(nil, input, "unknown_user")
			return nil, authDomain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.passwordService.Compare(input.Password, user.PasswordHash) {
		s.recordLoginFailure(&user.ID, input, "wrong_password")
		return nil, authDomain.ErrInvalidCredentials
	}

	if !user.IsActive() {
		s.recordLoginFailure(&user.ID, input, "inactive_user")
		return nil, authDomain.ErrInvalidCredentials
	}

	sessionID, err := authService.GenerateSessionID()
	if err != nil {
		return nil, err
	}

	now := s.now()
	session := &authDomain.Session{
		ID:              sessionID,
		PrincipalID:     user.ID,
		Scopes:          user.Scopes,
		IssuedAt:        now,
		ExpiresAt:       now.Add(s.config.SessionTTL),
		LastRefreshedAt: now,
		IPAddress:       input.IPAddress,
		UserAgent:       input.UserAgent,
	}

	storeCtx, cancel = s.storeContext(ctx)
	err = s.sessionRepo.Create(storeCtx, session, s.cacheTTL(session, now))
	cancel()
	if err != nil {
		return nil, err
	}

	output, err := s.mint(session)
	if err != nil {
		return nil, err
	}

	s.submit(authDomain.EventSessionLogin, &session.PrincipalID, session.ID, map[string]any{
		"ip_address": input.IPAddress,
		"user_agent": input.UserAgent,
	})

	return output, nil
}

// Verify decodes token and checks its session against the cache.
func (s *sessionUseCase) Verify(ctx context.Context, token string) (*authDomain.SessionInfo, error) {
	session, _, err := s.loadLiveSession(ctx, token)
	if err != nil {
		return nil, err
	}
	return session.Info(), nil
}

// Refresh extends the session behind token by the configured TTL, provided the
// last refresh happened within the refresh window. The write is conditioned on
// the value read, so a concurrent revocation always wins.
func (s *sessionUseCase) Refresh(ctx context.Context, token string) (*authDomain.LoginOutput, error) {
	session, revision, err := s.loadLiveSession(ctx, token)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if !session.CanRefresh(now, s.config.SessionRefreshWindow) {
		return nil, apperrors.Wrap(authDomain.ErrTokenExpired, "refresh window elapsed")
	}

	refreshed := *session
	refreshed.LastRefreshedAt = now
	refreshed.ExpiresAt = now.Add(s.config.SessionTTL)

	storeCtx, cancel := s.storeContext(ctx)
	swapped, err := s.sessionRepo.CompareAndSwap(storeCtx, &refreshed, revision, s.cacheTTL(&refreshed, now))
	cancel()
	if err != nil {
		return nil, err
	}

	if !swapped {
		storeCtx, cancel := s.storeContext(ctx)
		current, _, err := s.sessionRepo.Get(storeCtx, session.ID)
		cancel()
		switch {
		case errors.Is(err, authDomain.ErrSessionNotFound):
			return nil, authDomain.ErrSessionRevoked
		case err != nil:
			return nil, err
		case current.Revoked:
			return nil, authDomain.ErrSessionRevoked
		default:
			return nil, authDomain.ErrSessionConflict
		}
	}

	output, err := s.mint(&refreshed)
	if err != nil {
		return nil, err
	}

	s.submit(authDomain.EventSessionRefreshed, &refreshed.PrincipalID, refreshed.ID, nil)

	return output, nil
}

// Revoke marks the session revoked. It is idempotent.
func (s *sessionUseCase) Revoke(ctx context.Context, sessionID string) error {
	_, err := s.revokeSession(ctx, sessionID, uuid.Nil)
	return err
}

// RevokeAll revokes every indexed session of principalID. Index entries whose
// session already left the cache are cleaned up along the way.
func (s *sessionUseCase) RevokeAll(ctx context.Context, principalID uuid.UUID) error {
	storeCtx, cancel := s.storeContext(ctx)
	sessionIDs, err := s.sessionRepo.ListIDsByPrincipal(storeCtx, principalID)
	cancel()
	if err != nil {
		return err
	}

	var errs []error
	var gone []string
	for _, sessionID := range sessionIDs {
		found, err := s.revokeSession(ctx, sessionID, principalID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !found {
			gone = append(gone, sessionID)
		}
	}

	if len(gone) > 0 {
		storeCtx, cancel := s.storeContext(ctx)
		if err := s.sessionRepo.RemoveFromIndex(storeCtx, principalID, gone...); err != nil {
			s.logger.Warn("failed to clean session index",
				slog.String("principal_id", principalID.String()),
				slog.Any("error", err),
			)
		}
		cancel()
	}

	return errors.Join(errs...)
}

// Logout revokes the session behind token. Expiry is ignored so a client can
// always end its own session; the signature must still verify.
func (s *sessionUseCase) Logout(ctx context.Context, token string) error {
	claims, err := s.tokenCodec.Decode(token)
	if err != nil {
		return err
	}
	_, err = s.revokeSession(ctx, claims.SessionID, claims.PrincipalID)
	return err
}

// ListSessions returns the live sessions of principalID.
func (s *sessionUseCase) ListSessions(
	ctx context.Context,
	principalID uuid.UUID,
) ([]*authDomain.SessionInfo, error) {
	storeCtx, cancel := s.storeContext(ctx)
	sessionIDs, err := s.sessionRepo.ListIDsByPrincipal(storeCtx, principalID)
	cancel()
	if err != nil {
		return nil, err
	}

	now := s.now()
	sessions := make([]*authDomain.SessionInfo, 0, len(sessionIDs))
	for _, sessionID := range sessionIDs {
		storeCtx, cancel := s.storeContext(ctx)
		session, _, err := s.sessionRepo.Get(storeCtx, sessionID)
		cancel()
		if err != nil {
			if errors.Is(err, authDomain.ErrSessionNotFound) {
				continue
			}
			return nil, err
		}
		if session.Revoked || session.IsExpired(now) || session.PrincipalID != principalID {
			continue
		}
		sessions = append(sessions, session.Info())
	}
	return sessions, nil
}

// loadLiveSession runs the checks shared by Verify and Refresh.
func (s *sessionUseCase) loadLiveSession(
	ctx context.Context,
	token string,
) (*authDomain.Session, authDomain.SessionRevision, error) {
	claims, err := s.tokenCodec.Decode(token)
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	if claims.IsExpired(now) {
		return nil, nil, authDomain.ErrTokenExpired
	}

	storeCtx, cancel := s.storeContext(ctx)
	session, revision, err := s.sessionRepo.Get(storeCtx, claims.SessionID)
	cancel()
	if err != nil {
		if errors.Is(err, authDomain.ErrSessionNotFound) {
			return nil, nil, authDomain.ErrSessionRevoked
		}
		return nil, nil, err
	}

	if session.Revoked {
		return nil, nil, authDomain.ErrSessionRevoked
	}
	if session.PrincipalID != claims.PrincipalID {
		return nil, nil, authDomain.ErrInvalidToken
	}
	if session.IsExpired(now) {
		return nil, nil, authDomain.ErrTokenExpired
	}

	return session, revision, nil
}

// revokeSession reports whether the session was present in the cache. A non-nil
// principalID must own the session.
func (s *sessionUseCase) revokeSession(
	ctx context.Context,
	sessionID string,
	principalID uuid.UUID,
) (bool, error) {
	for range maxRevokeAttempts {
		storeCtx, cancel := s.storeContext(ctx)
		session, revision, err := s.sessionRepo.Get(storeCtx, sessionID)
		cancel()
		if err != nil {
			if errors.Is(err, authDomain.ErrSessionNotFound) {
				return false, nil
			}
			return false, err
		}

		if principalID != uuid.Nil && session.PrincipalID != principalID {
			return true, authDomain.ErrInvalidToken
		}
		if session.Revoked {
			return true, nil
		}

		now := s.now()
		revoked := *session
		revoked.Revoked = true
		revoked.RevokedAt = &now

		storeCtx, cancel = s.storeContext(ctx)
		swapped, err := s.sessionRepo.CompareAndSwap(storeCtx, &revoked, revision, s.cacheTTL(&revoked, now))
		cancel()
		if err != nil {
			return true, err
		}
		if swapped {
			s.submit(authDomain.EventSessionRevoked, &revoked.PrincipalID, revoked.ID, nil)
			return true, nil
		}
	}
	return true, authDomain.ErrSessionConflict
}

// mint projects the session onto a new token.
func (s *sessionUseCase) mint(session *authDomain.Session) (*authDomain.LoginOutput, error) {
	token, err := s.tokenCodec.Encode(session.Claims())
	if err != nil {
		return nil, err
	}
	return &authDomain.LoginOutput{
		Token:     token,
		TokenType: authDomain.TokenType,
		SessionID: session.ID,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// cacheTTL keeps the cache entry alive for the remaining validity of the
// session plus a grace period, and never less than the grace period.
func (s *sessionUseCase) cacheTTL(session *authDomain.Session, now time.Time) time.Duration {
	ttl := session.ExpiresAt.Sub(now)
	if ttl < 0 {
		ttl = 0
	}
	ttl += s.config.SessionCacheGrace
	if ttl <= 0 {
		ttl = time.Second
	}
	return ttl
}

func (s *sessionUseCase) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.config.StoreTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.config.StoreTimeout)
}

// now returns the current time truncated to the token timestamp precision so
// that session timestamps and token claims always agree.
func (s *sessionUseCase) now() time.Time {
	return s.clock().UTC().Truncate(time.Second)
}

func (s *sessionUseCase) recordLoginFailure(principalID *uuid.UUID, input *authDomain.LoginInput, reason string) {
	s.logger.Info("login failed",
		slog.String("reason", reason),
		slog.String("username", input.Username),
		slog.String("ip_address", input.IPAddress),
	)
	s.submit(authDomain.EventSessionLoginFailed, principalID, "", map[string]any{
		"reason":     reason,
		"username":   input.Username,
		"ip_address": input.IPAddress,
		"user_agent": input.UserAgent,
	})
}

func (s *sessionUseCase) submit(
	eventType string,
	principalID *uuid.UUID,
	sessionID string,
	metadata map[string]any,
) {
	accepted := s.tasks.Submit(outboxDomain.Task{
		EventType: eventType,
		Payload: auditDomain.EventPayload{
			PrincipalID: principalID,
			SessionID:   sessionID,
			Metadata:    metadata,
		},
	})
	if !accepted {
		s.logger.Warn("audit task dropped", slog.String("event_type", eventType))
	}
}

// NewSessionUseCase creates a new SessionUseCase with the provided dependencies.
func NewSessionUseCase(
	config *config.Config,
	userRepo UserRepository,
	sessionRepo SessionRepository,
	captchaUseCase CaptchaUseCase,
	passwordService authService.PasswordService,
	tokenCodec authService.TokenCodec,
	tasks TaskSubmitter,
	logger *slog.Logger,
) SessionUseCase {
	return &sessionUseCase{
		config:          config,
		userRepo:        userRepo,
		sessionRepo:     sessionRepo,
		captchaUseCase:  captchaUseCase,
		passwordService: passwordService,
		tokenCodec:      tokenCodec,
		tasks:           tasks,
		logger:          logger,
		clock:           time.Now,
	}
}
