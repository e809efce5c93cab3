package secrettoken

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"regexp"
)

const (
	// HeaderName carries the secret on every provider delivery
	HeaderName = "X-Telegram-Bot-Api-Secret-Token"

	// MinBytes is the smallest generated secret (128 bits)
	MinBytes = 16

	// MaxBytes keeps the encoded secret within the provider's 256 character limit
	MaxBytes = 192
)

var tokenPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,256}$`)

// Generate creates a random secret of size bytes, encoded with the URL-safe alphabet
func Generate(size int) (string, error) {
	if size < MinBytes || size > MaxBytes {
		return "", fmt.Errorf("secret size must be between %d and %d bytes", MinBytes, MaxBytes)
	}

	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Validate checks that token is accepted by the provider
func Validate(token string) error {
	if !tokenPattern.MatchString(token) {
		return fmt.Errorf("secret token must be 1-256 characters of A-Z, a-z, 0-9, _ and -")
	}
	return nil
}

// Verify compares the received header against the configured secret in constant time.
// An empty expected secret disables the check.
func Verify(expected, received string) bool {
	if expected == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(received)) == 1
}
