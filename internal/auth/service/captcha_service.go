package service

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"

	"golang.org/x/crypto/hkdf"

	authDomain "github.com/allisson/gatekeeper/internal/auth/domain"
)

// captchaKeyInfo is the HKDF info string; bump the version to change the derivation.
const captchaKeyInfo = "captcha-answer-v1"

const maxCaptchaOperand = 20

// captchaService renders arithmetic challenges and hashes their answers with
// an HMAC key derived from the active signing key.
type captchaService struct {
	ring *authDomain.SigningKeyRing
}

// NewCaptchaService creates a CaptchaService deriving its HMAC key from ring.
func NewCaptchaService(ring *authDomain.SigningKeyRing) CaptchaService {
	return &captchaService{ring: ring}
}

// Generate returns a prompt such as "What is 7 plus 12?" and its answer.
func (c *captchaService) Generate() (string, string, error) {
	a, err := randomOperand()
	if err != nil {
		return "", "", err
	}
	b, err := randomOperand()
	if err != nil {
		return "", "", err
	}
	op, err := rand.Int(rand.Reader, big.NewInt(3))
	if err != nil {
		return "", "", fmt.Errorf("failed to generate captcha: %w", err)
	}

	switch op.Int64() {
	case 0:
		return fmt.Sprintf("What is %d plus %d?", a, b), strconv.FormatInt(a+b, 10), nil
	case 1:
		if a < b {
			a, b = b, a
		}
		return fmt.Sprintf("What is %d minus %d?", a, b), strconv.FormatInt(a-b, 10), nil
	default:
		return fmt.Sprintf("What is %d times %d?", a, b), strconv.FormatInt(a*b, 10), nil
	}
}

// HashAnswer computes HMAC-SHA256(challengeID || 0x00 || normalized answer).
func (c *captchaService) HashAnswer(challengeID, answer string) (string, error) {
	var sum []byte
	err := c.ring.Active().WithKey(func(signingKey []byte) error {
		key, err := deriveCaptchaKey(signingKey)
		if err != nil {
			return err
		}
		defer clear(key)

		mac := hmac.New(sha256.New, key)
		mac.Write([]byte(challengeID))
		mac.Write([]byte{0})
		mac.Write([]byte(normalizeAnswer(answer)))
		sum = mac.Sum(nil)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to hash captcha answer: %w", err)
	}
	return hex.EncodeToString(sum), nil
}

// CompareAnswer recomputes the hash of answer and compares in constant time.
func (c *captchaService) CompareAnswer(challengeID, answer, expectedHash string) bool {
	actual, err := c.HashAnswer(challengeID, answer)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(actual), []byte(expectedHash))
}

func deriveCaptchaKey(signingKey []byte) ([]byte, error) {
	reader := hkdf.New(sha256.New, signingKey, nil, []byte(captchaKeyInfo))
	key := make([]byte, 32)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, err
	}
	return key, nil
}

func normalizeAnswer(answer string) string {
	return strings.ToLower(strings.TrimSpace(answer))
}

func randomOperand() (int64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(maxCaptchaOperand))
	if err != nil {
		return 0, fmt.Errorf("failed to generate captcha: %w", err)
	}
	return n.Int64() + 1, nil
}
