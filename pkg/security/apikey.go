package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// APIKeyBytes is the amount of randomness behind every API key.
const APIKeyBytes = 32

// GenerateAPIKey returns a hex encoded key backed by APIKeyBytes of
// crypto/rand output.
func GenerateAPIKey() (string, error) {
	buf := make([]byte, APIKeyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate api key: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// MaskAPIKey keeps only a short prefix so keys can be correlated in logs.
func MaskAPIKey(key string) string {
	const visible = 8
	if len(key) <= visible {
		return "***"
	}
	return key[:visible] + "***"
}
