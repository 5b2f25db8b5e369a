// Package validation holds the jellydator/validation rules shared by request DTOs and
// use case inputs.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/gatekeeper/internal/errors"
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	scopeRegex    = regexp.MustCompile(`^[a-z][a-z0-9_.:-]{0,63}$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)
)

// WrapValidationError turns a validation failure into ErrInvalidInput.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// PasswordStrength requires a minimum length in characters and, optionally, one
// character from each enabled class.
type PasswordStrength struct {
	MinLength      int
	RequireUpper   bool
	RequireLower   bool
	RequireNumber  bool
	RequireSpecial bool
}

type charClass struct {
	required bool
	present  func(rune) bool
	code     string
	message  string
}

// Validate implements validation.Rule.
func (p PasswordStrength) Validate(value any) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_password_strength", "password must be a string")
	}

	if utf8.RuneCountInString(s) < p.MinLength {
		return validation.NewError(
			"validation_password_min_length",
			fmt.Sprintf("password must be at least %d characters", p.MinLength),
		)
	}

	classes := []charClass{
		{p.RequireUpper, unicode.IsUpper, "validation_password_uppercase", "an uppercase letter"},
		{p.RequireLower, unicode.IsLower, "validation_password_lowercase", "a lowercase letter"},
		{p.RequireNumber, unicode.IsNumber, "validation_password_number", "a number"},
		{p.RequireSpecial, isSpecial, "validation_password_special", "a special character"},
	}
	for _, class := range classes {
		if class.required && !strings.ContainsFunc(s, class.present) {
			return validation.NewError(class.code, "password must contain at least "+class.message)
		}
	}
	return nil
}

func isSpecial(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

func stringRule(match func(string) bool, code, message string) validation.StringRule {
	return validation.NewStringRuleWithError(match, validation.NewError(code, message))
}

// Email checks the address shape only; deliverability is not verified.
var Email = stringRule(emailRegex.MatchString, "validation_email_format", "must be a valid email address")

// NotBlank rejects strings that are empty after trimming.
var NotBlank = stringRule(func(s string) bool {
	return strings.TrimSpace(s) != ""
}, "validation_not_blank", "must not be blank")

// NoControlChars rejects strings carrying control characters such as NUL, which
// JSONB columns refuse.
var NoControlChars = stringRule(func(s string) bool {
	return !strings.ContainsFunc(s, unicode.IsControl)
}, "validation_control_chars", "must not contain control characters")

// Scope accepts lowercase scope names such as "registry:admin" or "reports.read".
var Scope = stringRule(scopeRegex.MatchString, "validation_scope_format", "must be a valid scope name")

// Username accepts letters, digits and . _ -
var Username = stringRule(
	usernameRegex.MatchString,
	"validation_username_format",
	"must only contain letters, digits, '.', '_' or '-'",
)

// NotNilUUID rejects uuid.Nil and non-UUID values.
var NotNilUUID = validation.By(func(value any) error {
	id, ok := value.(uuid.UUID)
	if !ok || id == uuid.Nil {
		return validation.NewError("validation_uuid_required", "must be a valid UUID")
	}
	return nil
})
