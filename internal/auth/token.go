package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token has expired")
	ErrTokenNotFound = errors.New("token not found")
)

// AccessToken is an opaque bearer token record. The opaque value itself is
// returned exactly once at issuance; only its hash is persisted.
type AccessToken struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Type       string
	Name       string
	Hash       string
	Abilities  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	LastUsedAt *time.Time
	ExpiresAt  *time.Time
}

// IsExpired reports whether the token has passed its expiry.
// A nil ExpiresAt means the token never expires.
func (t *AccessToken) IsExpired() bool {
	return t.ExpiresAt != nil && time.Now().After(*t.ExpiresAt)
}

// generateOpaqueToken creates a cryptographically secure random token value
func generateOpaqueToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// hashToken returns the hex-encoded sha256 hash of a token value
func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
