package utils

import (
	"math/rand"

	"github.com/google/uuid"
)

// URL-safe without escaping.
const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// GenerateShortCode returns a random string of the given length drawn from charset.
func GenerateShortCode(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}

// NewRequestID returns a UUID used to correlate log lines of one request.
func NewRequestID() string {
	return uuid.NewString()
}
