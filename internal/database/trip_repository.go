package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/parvatguard/backend/internal/models"
)

// TripRepository handles trip catalog database operations
type TripRepository struct {
	db DB
}

// NewTripRepository creates a new trip repository
func NewTripRepository(db DB) *TripRepository {
	return &TripRepository{
		db: db,
	}
}

const tripColumns = `id, name, description, start_lat, start_lng, end_lat, end_lng,
	       path_coordinates, difficulty, estimated_duration_hours, region,
	       created_at, updated_at`

// GetAllTrips lists the full catalog ordered by name
func (r *TripRepository) GetAllTrips() ([]*models.Trip, error) {
	var trips []*models.Trip

	query := `
		SELECT ` + tripColumns + `
		FROM trips
		ORDER BY name ASC
	`

	err := r.db.Select(&trips, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}

	return trips, nil
}

// GetTripsNear filters the catalog by great-circle distance from the query
// point to each trip's start coordinate. The radius boundary is inclusive,
// so radius 0 matches exact coordinate equality only. Evaluated per row;
// there is no spatial index on the catalog.
func (r *TripRepository) GetTripsNear(lat, lng, radiusKm float64) ([]*models.Trip, error) {
	var trips []*models.Trip

	query := `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE (
			6371 * 2 * ASIN(
				SQRT(
					POWER(SIN(RADIANS(($1 - start_lat) / 2)), 2) +
					COS(RADIANS(start_lat)) * COS(RADIANS($2)) *
					POWER(SIN(RADIANS(($3 - start_lng) / 2)), 2)
				)
			)
		) <= $4
		ORDER BY name ASC
	`

	err := r.db.Select(&trips, query, lat, lat, lng, radiusKm)
	if err != nil {
		return nil, fmt.Errorf("failed to query nearby trips: %w", err)
	}

	return trips, nil
}

// GetTripByID retrieves a trip by ID
func (r *TripRepository) GetTripByID(id uuid.UUID) (*models.Trip, error) {
	var trip models.Trip

	query := `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE id = $1
	`

	err := r.db.Get(&trip, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}

	return &trip, nil
}
