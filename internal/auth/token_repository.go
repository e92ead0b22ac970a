package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"userprofile-api/internal/database"
)

// Repository handles access token persistence in Postgres
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Store inserts a new access token row
func (r *Repository) Store(ctx context.Context, token *AccessToken) error {
	dbToken := &database.AccessToken{
		ID:          token.ID,
		TokenableID: token.UserID,
		Type:        token.Type,
		Name:        token.Name,
		Hash:        token.Hash,
		Abilities:   token.Abilities,
		CreatedAt:   token.CreatedAt,
		UpdatedAt:   token.UpdatedAt,
		ExpiresAt:   token.ExpiresAt,
	}

	_, err := r.db.NewInsert().
		Model(dbToken).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to store access token: %w", err)
	}

	return nil
}

// GetByHash retrieves an access token by the hash of its opaque value
func (r *Repository) GetByHash(ctx context.Context, hash string) (*AccessToken, error) {
	dbToken := new(database.AccessToken)
	err := r.db.NewSelect().
		Model(dbToken).
		Where("hash = ?", hash).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}

	return mapDBTokenToModel(dbToken), nil
}

// TouchLastUsed records a successful verification on the token row
func (r *Repository) TouchLastUsed(ctx context.Context, tokenID uuid.UUID, usedAt time.Time) error {
	_, err := r.db.NewUpdate().
		Model((*database.AccessToken)(nil)).
		Set("last_used_at = ?", usedAt).
		Set("updated_at = ?", usedAt).
		Where("id = ?", tokenID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update last used at: %w", err)
	}

	return nil
}

// DeleteByID deletes a token only when it belongs to the given user.
// Deleting another user's token reports ErrTokenNotFound.
func (r *Repository) DeleteByID(ctx context.Context, userID, tokenID uuid.UUID) error {
	result, err := r.db.NewDelete().
		Model((*database.AccessToken)(nil)).
		Where("id = ?", tokenID).
		Where("tokenable_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete access token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrTokenNotFound
	}

	return nil
}

// DeleteExpired removes expired tokens from the database.
func (r *Repository) DeleteExpired(ctx context.Context) error {
	_, err := r.db.NewDelete().
		Model((*database.AccessToken)(nil)).
		Where("expires_at IS NOT NULL").
		Where("expires_at < NOW()").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to cleanup expired tokens: %w", err)
	}

	return nil
}

// mapDBTokenToModel converts database model to domain model
func mapDBTokenToModel(dbt *database.AccessToken) *AccessToken {
	return &AccessToken{
		ID:         dbt.ID,
		UserID:     dbt.TokenableID,
		Type:       dbt.Type,
		Name:       dbt.Name,
		Hash:       dbt.Hash,
		Abilities:  dbt.Abilities,
		CreatedAt:  dbt.CreatedAt,
		UpdatedAt:  dbt.UpdatedAt,
		LastUsedAt: dbt.LastUsedAt,
		ExpiresAt:  dbt.ExpiresAt,
	}
}
