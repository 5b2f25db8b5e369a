package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/gatekeeper/internal/auth/domain"
	authService "github.com/allisson/gatekeeper/internal/auth/service"
	"github.com/allisson/gatekeeper/internal/config"
)

// captchaUseCase implements CaptchaUseCase.
type captchaUseCase struct {
	config         *config.Config
	captchaRepo    CaptchaRepository
	captchaService authService.CaptchaService
	logger         *slog.Logger
	clock          func() time.Time
}

// Issue creates a new challenge. Only the answer hash is stored.
func (c *captchaUseCase) Issue(ctx context.Context) (*authDomain.IssuedCaptcha, error) {
	prompt, answer, err := c.captchaService.Generate()
	if err != nil {
		return nil, err
	}

	challengeID := uuid.NewString()
	answerHash, err := c.captchaService.HashAnswer(challengeID, answer)
	if err != nil {
		return nil, err
	}

	challenge := &authDomain.CaptchaChallenge{
		ID:         challengeID,
		AnswerHash: answerHash,
		ExpiresAt:  c.clock().UTC().Add(c.config.CaptchaTTL),
	}

	storeCtx, cancel := c.storeContext(ctx)
	defer cancel()
	if err := c.captchaRepo.Create(storeCtx, challenge, c.config.CaptchaTTL); err != nil {
		return nil, err
	}

	return &authDomain.IssuedCaptcha{
		ChallengeID: challenge.ID,
		Prompt:      prompt,
		ExpiresAt:   challenge.ExpiresAt,
	}, nil
}

// Verify consumes the challenge before comparing, so every challenge gets at
// most one attempt. The store being unreachable fails closed.
func (c *captchaUseCase) Verify(ctx context.Context, challengeID, answer string) error {
	if challengeID == "" {
		return authDomain.ErrCaptchaFailed
	}

	storeCtx, cancel := c.storeContext(ctx)
	challenge, err := c.captchaRepo.Consume(storeCtx, challengeID)
	cancel()
	if err != nil {
		c.logger.Debug("captcha consume failed",
			slog.String("challenge_id", challengeID),
			slog.Any("error", err),
		)
		return authDomain.ErrCaptchaFailed
	}

	if !c.clock().UTC().Before(challenge.ExpiresAt) {
		return authDomain.ErrCaptchaFailed
	}

	if !c.captchaService.CompareAnswer(challengeID, answer, challenge.AnswerHash) {
		return authDomain.ErrCaptchaFailed
	}

	return nil
}

func (c *captchaUseCase) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.config.StoreTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.config.StoreTimeout)
}

// NewCaptchaUseCase creates a new CaptchaUseCase with the provided dependencies.
func NewCaptchaUseCase(
	config *config.Config,
	captchaRepo CaptchaRepository,
	captchaService authService.CaptchaService,
	logger *slog.Logger,
) CaptchaUseCase {
	return &captchaUseCase{
		config:         config,
		captchaRepo:    captchaRepo,
		captchaService: captchaService,
		logger:         logger,
		clock:          time.Now,
	}
}
