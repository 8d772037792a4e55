package auth

import (
	"errors"
	"fmt"
	"sync"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"taskboard/internal/apperr"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// MaxPasswordBytes is the longest password bcrypt can hash.
const MaxPasswordBytes = 72

// ErrWeakPassword is returned for passwords that fail the strength policy.
var ErrWeakPassword = apperr.Validation(apperr.CodeWeakPassword,
	fmt.Sprintf("Password must be at least %d characters and contain a letter and a digit.", MinPasswordLength)).WithField("password")

// ErrPasswordTooLong is returned for passwords bcrypt cannot hash.
var ErrPasswordTooLong = apperr.Validation(apperr.CodePasswordTooLong,
	fmt.Sprintf("Password must be at most %d bytes.", MaxPasswordBytes)).WithField("password")

// CheckPasswordStrength enforces the length bounds and requires at least one
// letter and one digit.
func CheckPasswordStrength(password string) error {
	if len(password) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	if len([]rune(password)) < MinPasswordLength {
		return ErrWeakPassword
	}
	var letter, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !letter || !digit {
		return ErrWeakPassword
	}
	return nil
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches hash. A mismatch is not an
// error; only a malformed hash is.
func VerifyPassword(hash, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("compare password: %w", err)
}

var dummyHash = sync.OnceValue(func() []byte {
	hash, _ := bcrypt.GenerateFromPassword([]byte("taskboard-dummy-passw0rd"), bcrypt.DefaultCost)
	return hash
})

// BurnPasswordCheck spends the same bcrypt work as VerifyPassword so a login
// for an unknown account takes as long as one with a wrong password.
func BurnPasswordCheck(password string) {
	if len(password) > MaxPasswordBytes {
		password = password[:MaxPasswordBytes]
	}
	_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
}
