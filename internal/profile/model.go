package profile

import (
	"time"

	"github.com/google/uuid"
)

// Gender values accepted for a profile.
const (
	GenderMale   = "MALE"
	GenderFemale = "FEMALE"
)

// DateLayout is the wire format for dateOfBirth: an ISO calendar date
// with no time component.
const DateLayout = "2006-01-02"

// Profile is a user's profile. One per user; mobile and email are unique
// across all profiles.
type Profile struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Name        string    `json:"name"`
	Mobile      string    `json:"mobile"`
	Email       string    `json:"email"`
	Gender      string    `json:"gender"`
	DateOfBirth time.Time `json:"-"` // serialized date-only at the boundary
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
