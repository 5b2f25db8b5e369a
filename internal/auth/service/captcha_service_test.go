package service

import (
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var promptPattern = regexp.MustCompile(`^What is (\d+) (plus|minus|times) (\d+)\?$`)

func TestCaptchaService_Generate(t *testing.T) {
	svc := NewCaptchaService(newTestRing(t, newTestKey(t, "k1", 1)))

	for range 50 {
		prompt, answer, err := svc.Generate()
		require.NoError(t, err)

		match := promptPattern.FindStringSubmatch(prompt)
		require.NotNil(t, match, prompt)

		a, _ := strconv.Atoi(match[1])
		b, _ := strconv.Atoi(match[3])
		var expected int
		switch match[2] {
		case "plus":
			expected = a + b
		case "minus":
			expected = a - b
			assert.GreaterOrEqual(t, expected, 0)
		case "times":
			expected = a * b
		}
		assert.Equal(t, strconv.Itoa(expected), answer)
	}
}

func TestCaptchaService_HashAndCompare(t *testing.T) {
	svc := NewCaptchaService(newTestRing(t, newTestKey(t, "k1", 1)))

	hash, err := svc.HashAnswer("challenge-1", "42")
	require.NoError(t, err)
	assert.Len(t, hash, 64)

	assert.True(t, svc.CompareAnswer("challenge-1", "42", hash))
	assert.True(t, svc.CompareAnswer("challenge-1", "  42 ", hash))
	assert.False(t, svc.CompareAnswer("challenge-1", "43", hash))
	assert.False(t, svc.CompareAnswer("challenge-2", "42", hash))
}

func TestCaptchaService_KeyDependsOnSigningKey(t *testing.T) {
	svc1 := NewCaptchaService(newTestRing(t, newTestKey(t, "k1", 1)))
	svc2 := NewCaptchaService(newTestRing(t, newTestKey(t, "k2", 2)))

	hash1, err := svc1.HashAnswer("c", "7")
	require.NoError(t, err)
	hash2, err := svc2.HashAnswer("c", "7")
	require.NoError(t, err)

	assert.NotEqual(t, hash1, hash2)
}
