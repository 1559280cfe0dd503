package security

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
)

// TokenBytes is the entropy of session ids, CSRF tokens and remember tokens (256 bits).
const TokenBytes = 32

// ErrInvalidTokenSize is returned when GenerateToken is asked for zero or negative bytes.
var ErrInvalidTokenSize = errors.New("token size must be positive")

// GenerateToken returns n bytes from crypto/rand, hex-encoded (2n characters).
func GenerateToken(n int) (string, error) {
	if n <= 0 {
		return "", ErrInvalidTokenSize
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// NewToken returns a 256-bit random hex token.
func NewToken() (string, error) {
	return GenerateToken(TokenBytes)
}
