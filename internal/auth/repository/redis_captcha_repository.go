package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	authDomain "github.com/allisson/gatekeeper/internal/auth/domain"
	"github.com/allisson/gatekeeper/internal/cache"
	apperrors "github.com/allisson/gatekeeper/internal/errors"
)

const captchaKeyPrefix = "captcha:"

// RedisCaptchaRepository stores captcha challenges until they expire or are consumed.
type RedisCaptchaRepository struct {
	cache cache.Cache
}

// Create stores challenge for ttl.
func (r *RedisCaptchaRepository) Create(
	ctx context.Context,
	challenge *authDomain.CaptchaChallenge,
	ttl time.Duration,
) error {
	data, err := json.Marshal(challenge)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal captcha challenge")
	}
	if err := r.cache.Set(ctx, captchaKeyPrefix+challenge.ID, data, ttl); err != nil {
		return apperrors.Wrap(err, "failed to store captcha challenge")
	}
	return nil
}

// Consume atomically removes and returns the challenge. A second call for the
// same id always returns ErrCaptchaNotFound.
func (r *RedisCaptchaRepository) Consume(ctx context.Context, challengeID string) (*authDomain.CaptchaChallenge, error) {
	data, err := r.cache.GetDel(ctx, captchaKeyPrefix+challengeID)
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, authDomain.ErrCaptchaNotFound
		}
		return nil, apperrors.Wrap(err, "failed to consume captcha challenge")
	}

	var challenge authDomain.CaptchaChallenge
	if err := json.Unmarshal(data, &challenge); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal captcha challenge")
	}
	return &challenge, nil
}

// NewRedisCaptchaRepository creates a captcha repository on top of c.
func NewRedisCaptchaRepository(c cache.Cache) *RedisCaptchaRepository {
	return &RedisCaptchaRepository{cache: c}
}
