package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/parvatguard/backend/internal/models"
)

// ContactRepository handles emergency contact database operations
type ContactRepository struct {
	db DB
}

// NewContactRepository creates a new contact repository
func NewContactRepository(db DB) *ContactRepository {
	return &ContactRepository{
		db: db,
	}
}

// CreateContact creates an emergency contact. When isPrimary is set,
// clearing the other primaries and the insert run in one transaction so
// "at most one primary per user" holds even under concurrent writers.
func (r *ContactRepository) CreateContact(userID uuid.UUID, name, phone string, relationship *string, isPrimary bool) (*models.EmergencyContact, error) {
	contact := &models.EmergencyContact{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		Phone:     phone,
		IsPrimary: isPrimary,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if relationship != nil {
		contact.Relationship = models.NewNullString(*relationship)
	}

	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if isPrimary {
		if _, err := tx.Exec(`UPDATE emergency_contacts SET is_primary = false WHERE user_id = $1`, userID); err != nil {
			return nil, fmt.Errorf("failed to clear primary contacts: %w", err)
		}
	}

	query := `
		INSERT INTO emergency_contacts (id, user_id, name, phone, relationship, is_primary, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = tx.Exec(
		query,
		contact.ID,
		contact.UserID,
		contact.Name,
		contact.Phone,
		contact.Relationship,
		contact.IsPrimary,
		contact.CreatedAt,
		contact.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit contact create: %w", err)
	}

	return contact, nil
}

// GetContactsByUserID lists a user's contacts, primary first
func (r *ContactRepository) GetContactsByUserID(userID uuid.UUID) ([]*models.EmergencyContact, error) {
	var contacts []*models.EmergencyContact

	query := `
		SELECT id, user_id, name, phone, relationship, is_primary, created_at, updated_at
		FROM emergency_contacts
		WHERE user_id = $1
		ORDER BY is_primary DESC, created_at ASC
	`

	err := r.db.Select(&contacts, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}

	return contacts, nil
}

// GetContactByID retrieves a single contact
func (r *ContactRepository) GetContactByID(id uuid.UUID) (*models.EmergencyContact, error) {
	var contact models.EmergencyContact

	query := `
		SELECT id, user_id, name, phone, relationship, is_primary, created_at, updated_at
		FROM emergency_contacts
		WHERE id = $1
	`

	err := r.db.Get(&contact, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}

	return &contact, nil
}

// ContactUpdate carries the optional contact fields; nil means "leave as is"
type ContactUpdate struct {
	Name         *string
	Phone        *string
	Relationship *string
	IsPrimary    *bool
}

// UpdateContact applies a partial update. Promoting a contact to primary
// demotes the user's other contacts inside the same transaction.
func (r *ContactRepository) UpdateContact(id, userID uuid.UUID, update ContactUpdate) (*models.EmergencyContact, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if update.IsPrimary != nil && *update.IsPrimary {
		if _, err := tx.Exec(`UPDATE emergency_contacts SET is_primary = false WHERE user_id = $1 AND id <> $2`, userID, id); err != nil {
			return nil, fmt.Errorf("failed to clear primary contacts: %w", err)
		}
	}

	query := `
		UPDATE emergency_contacts
		SET name = COALESCE($1, name),
		    phone = COALESCE($2, phone),
		    relationship = COALESCE($3, relationship),
		    is_primary = COALESCE($4, is_primary),
		    updated_at = $5
		WHERE id = $6 AND user_id = $7
	`

	result, err := tx.Exec(query, update.Name, update.Phone, update.Relationship, update.IsPrimary, time.Now(), id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, nil
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit contact update: %w", err)
	}

	return r.GetContactByID(id)
}

// DeleteContact removes a contact owned by the given user
func (r *ContactRepository) DeleteContact(id, userID uuid.UUID) (bool, error) {
	query := `DELETE FROM emergency_contacts WHERE id = $1 AND user_id = $2`

	result, err := r.db.Exec(query, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete contact: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}
