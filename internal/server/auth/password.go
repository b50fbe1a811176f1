package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	passwordCost = 10
	// bcrypt only reads this many bytes of input.
	passwordMaxBytes = 72
)

// passwordBytes truncates to the bcrypt input limit so hashing and checking
// see the same bytes for any length.
func passwordBytes(password string) []byte {
	b := []byte(password)
	if len(b) > passwordMaxBytes {
		b = b[:passwordMaxBytes]
	}
	return b
}

func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword(passwordBytes(password), passwordCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// CheckPassword reports whether password matches hash. A malformed hash is
// an error, a plain mismatch is not.
func CheckPassword(hash, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), passwordBytes(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("compare password: %w", err)
}
