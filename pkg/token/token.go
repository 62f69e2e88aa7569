// Package token generates opaque random tokens for single-purpose use:
// password resets, CSRF values, OAuth state and upload filenames. Tokens are
// plain hex strings with no embedded structure; whatever meaning they carry
// lives server-side next to their expiry.
package token

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
)

// ErrInvalidLength is returned when the requested byte length is not positive.
var ErrInvalidLength = errors.New("token: length must be positive")

// Generate returns nBytes of cryptographically random data hex-encoded,
// so the resulting string is 2*nBytes characters long.
func Generate(nBytes int) (string, error) {
	if nBytes <= 0 {
		return "", ErrInvalidLength
	}
	buf := make([]byte, nBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// MustGenerate is Generate panicking on failure. crypto/rand only fails when
// the platform entropy source is broken, which is not a recoverable state.
func MustGenerate(nBytes int) string {
	s, err := Generate(nBytes)
	if err != nil {
		panic(err)
	}
	return s
}
