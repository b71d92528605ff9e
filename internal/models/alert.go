package models

import (
	"time"

	"github.com/google/uuid"
)

// Alert types
const (
	AlertTypeSOS        = "SOS"
	AlertTypeLowBattery = "LOW_BATTERY"
	AlertTypeManual     = "MANUAL"
)

// Alert delivery statuses
const (
	AlertStatusPending = "pending"
	AlertStatusSent    = "sent"
	AlertStatusFailed  = "failed"
)

// ValidAlertType reports whether t is one of the known alert types
func ValidAlertType(t string) bool {
	switch t {
	case AlertTypeSOS, AlertTypeLowBattery, AlertTypeManual:
		return true
	}
	return false
}

// AlertPayload is the location payload carried by an alert.
// Lat and Lng are required; the rest is optional client context.
type AlertPayload struct {
	Lat          *float64 `json:"lat" binding:"required"`
	Lng          *float64 `json:"lng" binding:"required"`
	Message      string   `json:"message,omitempty"`
	Timestamp    string   `json:"timestamp,omitempty"`
	BatteryLevel *float64 `json:"battery_level,omitempty"`
}

// Alert represents a logged distress/status event
type Alert struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	UserID         uuid.UUID  `json:"user_id" db:"user_id"`
	Type           string     `json:"type" db:"type"`
	Payload        JSONMap    `json:"payload" db:"payload"`
	Status         string     `json:"status" db:"status"`
	DeliveryMethod NullString `json:"delivery_method,omitempty" db:"delivery_method"`
	ErrorMessage   NullString `json:"error_message,omitempty" db:"error_message"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	SentAt         NullTime   `json:"sent_at,omitempty" db:"sent_at"`
}

// AlertRetryLog records a single delivery attempt for an alert.
// Attempt 1 is the inline best-effort send at logging time.
type AlertRetryLog struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	AlertID      uuid.UUID  `json:"alert_id" db:"alert_id"`
	RetryAttempt int        `json:"retry_attempt" db:"retry_attempt"`
	Status       string     `json:"status" db:"status"` // success, failed
	ErrorMessage NullString `json:"error_message,omitempty" db:"error_message"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}
