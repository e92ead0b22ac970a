package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisRepository handles access token persistence in Redis.
// Expiring tokens get a TTL so Redis drops them on its own.
type RedisRepository struct {
	client *redis.Client
}

func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client}
}

// getTokenKey generates the Redis key for a token hash
func getTokenKey(tokenHash string) string {
	return fmt.Sprintf("access_token:%s", tokenHash)
}

// getTokenIDKey generates the Redis key mapping a token id to its hash
func getTokenIDKey(tokenID uuid.UUID) string {
	return fmt.Sprintf("access_token:id:%s", tokenID.String())
}

// getUserTokensKey generates the Redis key for a user's token set
func getUserTokensKey(userID uuid.UUID) string {
	return fmt.Sprintf("user_tokens:%s", userID.String())
}

// Store stores an access token in Redis
func (r *RedisRepository) Store(ctx context.Context, token *AccessToken) error {
	tokenKey := getTokenKey(token.Hash)
	idKey := getTokenIDKey(token.ID)
	userTokensKey := getUserTokensKey(token.UserID)

	var expiresAtUnix int64
	if token.ExpiresAt != nil {
		expiresAtUnix = token.ExpiresAt.Unix()
	}

	pipe := r.client.Pipeline()

	pipe.HSet(ctx, tokenKey, map[string]interface{}{
		"id":         token.ID.String(),
		"user_id":    token.UserID.String(),
		"type":       token.Type,
		"name":       token.Name,
		"abilities":  token.Abilities,
		"created_at": token.CreatedAt.Unix(),
		"expires_at": expiresAtUnix,
	})
	pipe.Set(ctx, idKey, token.Hash, 0)
	pipe.SAdd(ctx, userTokensKey, token.Hash)

	// No TTL on the user set: it may hold hashes of longer-lived tokens.
	// Stale members are removed on delete and are otherwise inert.
	if token.ExpiresAt != nil {
		ttl := time.Until(*token.ExpiresAt)
		if ttl <= 0 {
			return fmt.Errorf("token expiration time is in the past")
		}
		pipe.Expire(ctx, tokenKey, ttl)
		pipe.Expire(ctx, idKey, ttl)
	}

	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to store access token: %w", err)
	}

	return nil
}

// GetByHash retrieves an access token by the hash of its opaque value
func (r *RedisRepository) GetByHash(ctx context.Context, hash string) (*AccessToken, error) {
	data, err := r.client.HGetAll(ctx, getTokenKey(hash)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}

	if len(data) == 0 {
		return nil, ErrTokenNotFound
	}

	tokenID, err := uuid.Parse(data["id"])
	if err != nil {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(data["user_id"])
	if err != nil {
		return nil, ErrInvalidToken
	}

	token := &AccessToken{
		ID:        tokenID,
		UserID:    userID,
		Type:      data["type"],
		Name:      data["name"],
		Hash:      hash,
		Abilities: data["abilities"],
	}

	if createdAtUnix, err := strconv.ParseInt(data["created_at"], 10, 64); err == nil {
		token.CreatedAt = time.Unix(createdAtUnix, 0)
		token.UpdatedAt = token.CreatedAt
	}

	if expiresAtUnix, err := strconv.ParseInt(data["expires_at"], 10, 64); err == nil && expiresAtUnix > 0 {
		expiresAt := time.Unix(expiresAtUnix, 0)
		token.ExpiresAt = &expiresAt
	}

	if lastUsedAtUnix, err := strconv.ParseInt(data["last_used_at"], 10, 64); err == nil && lastUsedAtUnix > 0 {
		lastUsedAt := time.Unix(lastUsedAtUnix, 0)
		token.LastUsedAt = &lastUsedAt
	}

	return token, nil
}

// TouchLastUsed records a successful verification on the token
func (r *RedisRepository) TouchLastUsed(ctx context.Context, tokenID uuid.UUID, usedAt time.Time) error {
	hash, err := r.client.Get(ctx, getTokenIDKey(tokenID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrTokenNotFound
		}
		return fmt.Errorf("failed to resolve token id: %w", err)
	}

	if err := r.client.HSet(ctx, getTokenKey(hash), "last_used_at", usedAt.Unix()).Err(); err != nil {
		return fmt.Errorf("failed to update last used at: %w", err)
	}

	return nil
}

// DeleteExpired is a no-op: Redis drops expiring tokens itself via TTL.
func (r *RedisRepository) DeleteExpired(ctx context.Context) error {
	return nil
}

// DeleteByID deletes a token only when it belongs to the given user
func (r *RedisRepository) DeleteByID(ctx context.Context, userID, tokenID uuid.UUID) error {
	idKey := getTokenIDKey(tokenID)

	hash, err := r.client.Get(ctx, idKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrTokenNotFound
		}
		return fmt.Errorf("failed to resolve token id: %w", err)
	}

	tokenKey := getTokenKey(hash)

	owner, err := r.client.HGet(ctx, tokenKey, "user_id").Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrTokenNotFound
		}
		return fmt.Errorf("failed to check token owner: %w", err)
	}

	if owner != userID.String() {
		return ErrTokenNotFound
	}

	pipe := r.client.Pipeline()
	pipe.Del(ctx, tokenKey)
	pipe.Del(ctx, idKey)
	pipe.SRem(ctx, getUserTokensKey(userID), hash)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete access token: %w", err)
	}

	return nil
}
