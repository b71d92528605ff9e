package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/parvatguard/backend/internal/models"
)

// AlertRepository handles alert database operations
type AlertRepository struct {
	db DB
}

// NewAlertRepository creates a new alert repository
func NewAlertRepository(db DB) *AlertRepository {
	return &AlertRepository{
		db: db,
	}
}

// CreateAlert inserts an alert with status pending
func (r *AlertRepository) CreateAlert(userID uuid.UUID, alertType string, payload models.JSONMap, deliveryMethod *string) (*models.Alert, error) {
	alert := &models.Alert{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      alertType,
		Payload:   payload,
		Status:    models.AlertStatusPending,
		CreatedAt: time.Now(),
	}
	if deliveryMethod != nil {
		alert.DeliveryMethod = models.NewNullString(*deliveryMethod)
	}

	query := `
		INSERT INTO alerts (id, user_id, type, payload, status, delivery_method, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(
		query,
		alert.ID,
		alert.UserID,
		alert.Type,
		alert.Payload,
		alert.Status,
		alert.DeliveryMethod,
		alert.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create alert: %w", err)
	}

	return alert, nil
}

// MarkSent transitions an alert to sent and stamps sent_at
func (r *AlertRepository) MarkSent(id uuid.UUID, deliveryMethod string) error {
	query := `
		UPDATE alerts
		SET status = $1, delivery_method = $2, sent_at = $3
		WHERE id = $4
	`

	_, err := r.db.Exec(query, models.AlertStatusSent, deliveryMethod, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to mark alert sent: %w", err)
	}

	return nil
}

// MarkFailed transitions an alert to failed and records the gateway error
func (r *AlertRepository) MarkFailed(id uuid.UUID, errorMessage string) error {
	query := `
		UPDATE alerts
		SET status = $1, error_message = $2
		WHERE id = $3
	`

	_, err := r.db.Exec(query, models.AlertStatusFailed, errorMessage, id)
	if err != nil {
		return fmt.Errorf("failed to mark alert failed: %w", err)
	}

	return nil
}

// GetAlertsByUserID lists a user's alerts, newest first
func (r *AlertRepository) GetAlertsByUserID(userID uuid.UUID, limit int) ([]*models.Alert, error) {
	var alerts []*models.Alert

	query := `
		SELECT id, user_id, type, payload, status, delivery_method,
		       error_message, created_at, sent_at
		FROM alerts
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	err := r.db.Select(&alerts, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}

	return alerts, nil
}

// RecordRetryAttempt writes an alert_retry_log row for a delivery attempt
func (r *AlertRepository) RecordRetryAttempt(alertID uuid.UUID, attempt int, status string, errorMessage *string) error {
	query := `
		INSERT INTO alert_retry_log (id, alert_id, retry_attempt, status, error_message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	var errMsg models.NullString
	if errorMessage != nil {
		errMsg = models.NewNullString(*errorMessage)
	}

	_, err := r.db.Exec(query, uuid.New(), alertID, attempt, status, errMsg, time.Now())
	if err != nil {
		return fmt.Errorf("failed to record retry attempt: %w", err)
	}

	return nil
}
