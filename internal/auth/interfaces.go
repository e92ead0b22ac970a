package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"userprofile-api/internal/user"
)

// UserRepository defines the user storage operations the auth layer needs.
type UserRepository interface {
	Create(ctx context.Context, email, passwordHash string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

// TokenRepository defines the interface for access token storage.
// Implementations include Repository (Postgres/bun) and RedisRepository.
type TokenRepository interface {
	Store(ctx context.Context, token *AccessToken) error
	GetByHash(ctx context.Context, hash string) (*AccessToken, error)
	TouchLastUsed(ctx context.Context, tokenID uuid.UUID, usedAt time.Time) error
	DeleteByID(ctx context.Context, userID, tokenID uuid.UUID) error
	DeleteExpired(ctx context.Context) error
}

// TokenVerifier resolves a presented opaque token to its user and token record.
type TokenVerifier interface {
	Verify(ctx context.Context, opaque string) (*user.User, *AccessToken, error)
}
