package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"userprofile-api/internal/database"
)

var (
	ErrNotFound        = errors.New("profile not found")
	ErrAlreadyExists   = errors.New("profile already exists for this user")
	ErrDuplicateEmail  = errors.New("profile email already exists")
	ErrDuplicateMobile = errors.New("mobile number already exists")
)

// Repository handles profile data persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new profile. Unique-constraint violations on user_id,
// email and mobile surface as the matching sentinel error.
func (r *Repository) Create(ctx context.Context, p *Profile) (*Profile, error) {
	dbProfile := &database.Profile{
		UserID:      p.UserID,
		Name:        p.Name,
		Mobile:      p.Mobile,
		Email:       p.Email,
		Gender:      p.Gender,
		DateOfBirth: p.DateOfBirth,
	}

	_, err := r.db.NewInsert().
		Model(dbProfile).
		Returning("*").
		Exec(ctx)

	if err != nil {
		if dup := mapUniqueViolation(err); dup != nil {
			return nil, dup
		}
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	return mapDBProfileToModel(dbProfile), nil
}

// GetByUserID retrieves the profile owned by a user
func (r *Repository) GetByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	dbProfile := new(database.Profile)
	err := r.db.NewSelect().
		Model(dbProfile).
		Where("user_id = ?", userID).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get profile by user id: %w", err)
	}

	return mapDBProfileToModel(dbProfile), nil
}

// GetByEmail retrieves a profile by its email
func (r *Repository) GetByEmail(ctx context.Context, email string) (*Profile, error) {
	dbProfile := new(database.Profile)
	err := r.db.NewSelect().
		Model(dbProfile).
		Where("email = ?", email).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get profile by email: %w", err)
	}

	return mapDBProfileToModel(dbProfile), nil
}

// GetByMobile retrieves a profile by its mobile number
func (r *Repository) GetByMobile(ctx context.Context, mobile string) (*Profile, error) {
	dbProfile := new(database.Profile)
	err := r.db.NewSelect().
		Model(dbProfile).
		Where("mobile = ?", mobile).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get profile by mobile: %w", err)
	}

	return mapDBProfileToModel(dbProfile), nil
}

// Update saves the profile's mutable fields in place
func (r *Repository) Update(ctx context.Context, p *Profile) (*Profile, error) {
	result, err := r.db.NewUpdate().
		Model((*database.Profile)(nil)).
		Set("name = ?", p.Name).
		Set("mobile = ?", p.Mobile).
		Set("email = ?", p.Email).
		Set("gender = ?", p.Gender).
		Set("date_of_birth = ?", p.DateOfBirth).
		Set("updated_at = NOW()").
		Where("id = ?", p.ID).
		Exec(ctx)

	if err != nil {
		if dup := mapUniqueViolation(err); dup != nil {
			return nil, dup
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	return p, nil
}

// Delete removes a profile row
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.NewDelete().
		Model((*database.Profile)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// mapUniqueViolation translates a duplicate-key error into the sentinel
// matching the violated constraint, or nil if the error is something else.
func mapUniqueViolation(err error) error {
	msg := err.Error()
	if !strings.Contains(msg, "duplicate key value violates unique constraint") {
		return nil
	}
	switch {
	case strings.Contains(msg, "profiles_user_id_key"):
		return ErrAlreadyExists
	case strings.Contains(msg, "profiles_mobile_key"):
		return ErrDuplicateMobile
	case strings.Contains(msg, "profiles_email_key"):
		return ErrDuplicateEmail
	default:
		return ErrAlreadyExists
	}
}

// mapDBProfileToModel converts database model to domain model
func mapDBProfileToModel(dbp *database.Profile) *Profile {
	return &Profile{
		ID:          dbp.ID,
		UserID:      dbp.UserID,
		Name:        dbp.Name,
		Mobile:      dbp.Mobile,
		Email:       dbp.Email,
		Gender:      dbp.Gender,
		DateOfBirth: dbp.DateOfBirth,
		CreatedAt:   dbp.CreatedAt,
		UpdatedAt:   dbp.UpdatedAt,
	}
}
