package domain

import "time"

// CaptchaChallenge is the stored half of a captcha. It is consumed by the
// first verification attempt, whatever the answer.
type CaptchaChallenge struct {
	ID         string    `json:"id"`
	AnswerHash string    `json:"answer_hash"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// IssuedCaptcha is handed to the client.
type IssuedCaptcha struct {
	ChallengeID string
	Prompt      string
	ExpiresAt   time.Time
}
