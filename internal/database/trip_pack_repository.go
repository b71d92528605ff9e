package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/parvatguard/backend/internal/models"
)

// TripPackRepository handles offline pack database operations
type TripPackRepository struct {
	db DB
}

// NewTripPackRepository creates a new trip pack repository
func NewTripPackRepository(db DB) *TripPackRepository {
	return &TripPackRepository{
		db: db,
	}
}

// GetCurrentPackByTripID returns the newest pack for a trip, or nil when
// the trip has no pack yet.
func (r *TripPackRepository) GetCurrentPackByTripID(tripID uuid.UUID) (*models.TripPack, error) {
	var pack models.TripPack

	query := `
		SELECT id, trip_id, pack_version, map_image_url, tips, waypoints,
		       gallery_urls, guide_text, offline_advisory, pack_size_bytes,
		       checksum, created_at, updated_at
		FROM trip_packs
		WHERE trip_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	err := r.db.Get(&pack, query, tripID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get trip pack: %w", err)
	}

	return &pack, nil
}
