package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"userprofile-api/internal/user"
)

const (
	tokenType      = "auth_token"
	tokenAbilities = `["*"]`
)

// TokenService issues, verifies and revokes opaque bearer tokens.
//
// Token lifecycle: Issued -> (Verified)* -> Revoked | Expired.
type TokenService struct {
	tokens   TokenRepository
	users    UserRepository
	duration time.Duration // 0 = tokens never expire
}

func NewTokenService(tokens TokenRepository, users UserRepository, duration time.Duration) *TokenService {
	return &TokenService{
		tokens:   tokens,
		users:    users,
		duration: duration,
	}
}

// Issue mints a new opaque token for the user and returns its raw value.
// The raw value is not recoverable afterwards; only its hash is stored.
func (s *TokenService) Issue(ctx context.Context, u *user.User) (string, error) {
	opaque, err := generateOpaqueToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	now := time.Now()
	token := &AccessToken{
		ID:        uuid.New(),
		UserID:    u.ID,
		Type:      tokenType,
		Name:      tokenType,
		Hash:      hashToken(opaque),
		Abilities: tokenAbilities,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if s.duration > 0 {
		expiresAt := now.Add(s.duration)
		token.ExpiresAt = &expiresAt
	}

	if err := s.tokens.Store(ctx, token); err != nil {
		return "", fmt.Errorf("failed to store token: %w", err)
	}

	return opaque, nil
}

// Verify resolves a presented opaque value to its user, rejecting unknown and
// expired tokens. A successful verification bumps last_used_at.
func (s *TokenService) Verify(ctx context.Context, opaque string) (*user.User, *AccessToken, error) {
	token, err := s.tokens.GetByHash(ctx, hashToken(opaque))
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return nil, nil, ErrInvalidToken
		}
		return nil, nil, fmt.Errorf("failed to look up token: %w", err)
	}

	if token.IsExpired() {
		return nil, nil, ErrExpiredToken
	}

	u, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// Token row without a live user is invalid, not an internal error.
			return nil, nil, ErrInvalidToken
		}
		return nil, nil, fmt.Errorf("failed to load token owner: %w", err)
	}

	now := time.Now()
	if err := s.tokens.TouchLastUsed(ctx, token.ID, now); err != nil {
		return nil, nil, fmt.Errorf("failed to record token use: %w", err)
	}
	token.LastUsedAt = &now

	return u, token, nil
}

// Revoke deletes the given token if it belongs to the user.
// Revoking another user's token reports ErrTokenNotFound.
func (s *TokenService) Revoke(ctx context.Context, userID, tokenID uuid.UUID) error {
	return s.tokens.DeleteByID(ctx, userID, tokenID)
}

// CleanupExpired removes tokens past their expiry from the backing store.
func (s *TokenService) CleanupExpired(ctx context.Context) error {
	return s.tokens.DeleteExpired(ctx)
}
