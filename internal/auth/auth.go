package auth

import (
	"errors"
	"strings"
)

// KeyPrefix is the literal prefix every Quantum X key carries. The server
// performs the real validation; this check only keeps obviously wrong keys
// off the wire.
const KeyPrefix = "oneness_"

var (
	ErrMissingKey       = errors.New("api key is not set")
	ErrInvalidKeyFormat = errors.New("api key must start with " + KeyPrefix)
)

// ValidateKey reports why key cannot be sent, or nil if it can.
func ValidateKey(key string) error {
	if key == "" {
		return ErrMissingKey
	}
	if !strings.HasPrefix(key, KeyPrefix) {
		return ErrInvalidKeyFormat
	}
	return nil
}

func IsValidKey(key string) bool { return ValidateKey(key) == nil }

// Mask hides everything after the prefix so a key can be shown in logs or
// status lines.
func Mask(key string) string {
	if key == "" {
		return ""
	}
	if !strings.HasPrefix(key, KeyPrefix) {
		return strings.Repeat("•", min(len([]rune(key)), 8))
	}
	rest := len([]rune(key)) - len(KeyPrefix)
	return KeyPrefix + strings.Repeat("•", min(rest, 8))
}
