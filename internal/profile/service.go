package profile

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"userprofile-api/internal/user"
)

var (
	ErrUserNotFound   = errors.New("provided user does not exist")
	ErrNameRequired   = errors.New("name is required")
	ErrNameTooLong    = errors.New("name must be at most 30 characters")
	ErrMobileRequired = errors.New("mobile is required")
	ErrMobileTooLong  = errors.New("mobile must be at most 10 characters")
	ErrEmailRequired  = errors.New("email is required")
	ErrInvalidEmail   = errors.New("invalid email format")
	ErrInvalidGender  = errors.New("gender must be MALE or FEMALE")
	ErrGenderRequired = errors.New("gender is required")
	ErrInvalidDate    = errors.New("dateOfBirth must be a valid YYYY-MM-DD date")
)

// IsValidationError reports whether err is one of the input validation sentinels.
func IsValidationError(err error) bool {
	for _, verr := range []error{
		ErrNameRequired, ErrNameTooLong,
		ErrMobileRequired, ErrMobileTooLong,
		ErrEmailRequired, ErrInvalidEmail,
		ErrGenderRequired, ErrInvalidGender,
		ErrInvalidDate,
	} {
		if errors.Is(err, verr) {
			return true
		}
	}
	return false
}

// ProfileRepository defines the profile storage operations the service needs.
type ProfileRepository interface {
	Create(ctx context.Context, p *Profile) (*Profile, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error)
	GetByEmail(ctx context.Context, email string) (*Profile, error)
	GetByMobile(ctx context.Context, mobile string) (*Profile, error)
	Update(ctx context.Context, p *Profile) (*Profile, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// UserRepository is the slice of user storage the profile service needs
// for its defensive existence check.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

// CreateInput carries the fields for a new profile. All are required.
type CreateInput struct {
	Name        string
	Mobile      string
	Email       string
	Gender      string
	DateOfBirth string
}

// UpdateInput carries a partial update. A nil field means "not supplied"
// and leaves the stored value unchanged; a pointer to an empty string is
// an explicitly supplied value and is validated like any other.
type UpdateInput struct {
	Name        *string
	Mobile      *string
	Email       *string
	Gender      *string
	DateOfBirth *string
}

// Service orchestrates profile create/read/update/delete
type Service struct {
	profiles ProfileRepository
	users    UserRepository
}

func NewService(profiles ProfileRepository, users UserRepository) *Service {
	return &Service{
		profiles: profiles,
		users:    users,
	}
}

// Create validates the input and creates the caller's profile.
// The user-existence check is defensive; the verified token already
// proves the user, but a cascade delete can race it.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*Profile, error) {
	if err := validateName(input.Name); err != nil {
		return nil, err
	}
	if err := validateMobile(input.Mobile); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	if input.Gender == "" {
		return nil, ErrGenderRequired
	}
	if err := validateGender(input.Gender); err != nil {
		return nil, err
	}

	dateOfBirth, err := parseDate(input.DateOfBirth)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to check user: %w", err)
	}

	created, err := s.profiles.Create(ctx, &Profile{
		UserID:      userID,
		Name:        input.Name,
		Mobile:      input.Mobile,
		Email:       email,
		Gender:      input.Gender,
		DateOfBirth: dateOfBirth,
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// View returns the profile owned by the authenticated user
func (s *Service) View(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	return s.profiles.GetByUserID(ctx, userID)
}

// Update applies a partial update to the caller's profile. Each field is
// independently optional; only explicitly supplied fields are written.
func (s *Service) Update(ctx context.Context, userID uuid.UUID, input UpdateInput) (*Profile, error) {
	p, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if err := validateName(*input.Name); err != nil {
			return nil, err
		}
		p.Name = *input.Name
	}

	if input.Mobile != nil {
		if err := validateMobile(*input.Mobile); err != nil {
			return nil, err
		}
		p.Mobile = *input.Mobile
	}

	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		p.Email = email
	}

	if input.Gender != nil {
		if err := validateGender(*input.Gender); err != nil {
			return nil, err
		}
		p.Gender = *input.Gender
	}

	if input.DateOfBirth != nil {
		dateOfBirth, err := parseDate(*input.DateOfBirth)
		if err != nil {
			return nil, err
		}
		p.DateOfBirth = dateOfBirth
	}

	return s.profiles.Update(ctx, p)
}

// Delete removes the profile matching the given mobile number, but only
// when it belongs to the authenticated caller. A mobile owned by another
// user reports ErrNotFound rather than revealing the row exists.
func (s *Service) Delete(ctx context.Context, userID uuid.UUID, mobile string) error {
	if mobile == "" {
		return ErrMobileRequired
	}

	p, err := s.profiles.GetByMobile(ctx, mobile)
	if err != nil {
		return err
	}

	if p.UserID != userID {
		return ErrNotFound
	}

	return s.profiles.Delete(ctx, p.ID)
}

func validateName(name string) error {
	if name == "" {
		return ErrNameRequired
	}
	if len(name) > 30 {
		return ErrNameTooLong
	}
	return nil
}

func validateMobile(mobile string) error {
	if mobile == "" {
		return ErrMobileRequired
	}
	if len(mobile) > 10 {
		return ErrMobileTooLong
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return ErrEmailRequired
	}
	if len(email) > 254 {
		return ErrInvalidEmail
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrInvalidEmail
	}
	return nil
}

func validateGender(gender string) error {
	if gender != GenderMale && gender != GenderFemale {
		return ErrInvalidGender
	}
	return nil
}

func parseDate(value string) (time.Time, error) {
	parsed, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return parsed, nil
}
