package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered account
type User struct {
	ID                uuid.UUID  `json:"id" db:"id"`
	Email             string     `json:"email" db:"email"`
	PasswordHash      string     `json:"-" db:"password_hash"` // Never expose in JSON
	Name              string     `json:"name" db:"name"`
	Phone             NullString `json:"phone,omitempty" db:"phone"`
	DefaultSOSMessage NullString `json:"default_sos_message,omitempty" db:"default_sos_message"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}

// EmergencyContact represents a user's emergency contact.
// At most one contact per user carries IsPrimary; the contact
// repository enforces this inside a single transaction.
type EmergencyContact struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	UserID       uuid.UUID  `json:"user_id" db:"user_id"`
	Name         string     `json:"name" db:"name"`
	Phone        string     `json:"phone" db:"phone"`
	Relationship NullString `json:"relationship,omitempty" db:"relationship"`
	IsPrimary    bool       `json:"is_primary" db:"is_primary"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}
