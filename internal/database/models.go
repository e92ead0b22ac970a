package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the bun model for the users table.
type User struct {
	bun.BaseModel `bun:"table:users"`

	ID           uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Email        string    `bun:"email,notnull"`
	PasswordHash string    `bun:"password_hash,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt    time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// AccessToken is the bun model for the access_tokens table.
// The owning user column keeps the tokenable_id name from the original schema.
type AccessToken struct {
	bun.BaseModel `bun:"table:access_tokens"`

	ID          uuid.UUID  `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	TokenableID uuid.UUID  `bun:"tokenable_id,type:uuid,notnull"`
	Type        string     `bun:"type,notnull"`
	Name        string     `bun:"name,nullzero"`
	Hash        string     `bun:"hash,notnull"`
	Abilities   string     `bun:"abilities,notnull"`
	CreatedAt   time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt   time.Time  `bun:"updated_at,notnull,default:current_timestamp"`
	LastUsedAt  *time.Time `bun:"last_used_at"`
	ExpiresAt   *time.Time `bun:"expires_at"`
}

// Profile is the bun model for the profiles table.
type Profile struct {
	bun.BaseModel `bun:"table:profiles"`

	ID          uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	UserID      uuid.UUID `bun:"user_id,type:uuid,notnull"`
	Name        string    `bun:"name,notnull"`
	Mobile      string    `bun:"mobile,notnull"`
	Email       string    `bun:"email,notnull"`
	Gender      string    `bun:"gender,notnull"`
	DateOfBirth time.Time `bun:"date_of_birth,notnull,type:date"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}
