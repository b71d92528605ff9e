package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/parvatguard/backend/internal/models"
)

// UserTripRepository handles planned-route log database operations
type UserTripRepository struct {
	db DB
}

// NewUserTripRepository creates a new user trip repository
func NewUserTripRepository(db DB) *UserTripRepository {
	return &UserTripRepository{
		db: db,
	}
}

// NewUserTrip carries the fields for a planned-route insert
type NewUserTrip struct {
	StartLat       float64
	StartLng       float64
	DestLat        float64
	DestLng        float64
	DistanceKm     *float64
	DurationText   *string
	OfflineMapPath *string
	RouteGeoJSON   models.JSONMap
}

// CreateUserTrip logs a planned route for a user
func (r *UserTripRepository) CreateUserTrip(userID uuid.UUID, trip NewUserTrip) (*models.UserTrip, error) {
	userTrip := &models.UserTrip{
		ID:           uuid.New(),
		UserID:       userID,
		StartLat:     trip.StartLat,
		StartLng:     trip.StartLng,
		DestLat:      trip.DestLat,
		DestLng:      trip.DestLng,
		RouteGeoJSON: trip.RouteGeoJSON,
		CreatedAt:    time.Now(),
	}
	if trip.DistanceKm != nil {
		userTrip.DistanceKm.Float64 = *trip.DistanceKm
		userTrip.DistanceKm.Valid = true
	}
	if trip.DurationText != nil {
		userTrip.DurationText = models.NewNullString(*trip.DurationText)
	}
	if trip.OfflineMapPath != nil {
		userTrip.OfflineMapPath = models.NewNullString(*trip.OfflineMapPath)
	}

	query := `
		INSERT INTO user_trips (id, user_id, start_lat, start_lng, dest_lat, dest_lng,
		                        distance_km, duration_text, offline_map_path, route_geojson, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.Exec(
		query,
		userTrip.ID,
		userTrip.UserID,
		userTrip.StartLat,
		userTrip.StartLng,
		userTrip.DestLat,
		userTrip.DestLng,
		userTrip.DistanceKm,
		userTrip.DurationText,
		userTrip.OfflineMapPath,
		userTrip.RouteGeoJSON,
		userTrip.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user trip: %w", err)
	}

	return userTrip, nil
}

// GetUserTrips lists a user's planned routes, newest first
func (r *UserTripRepository) GetUserTrips(userID uuid.UUID) ([]*models.UserTrip, error) {
	var trips []*models.UserTrip

	query := `
		SELECT id, user_id, start_lat, start_lng, dest_lat, dest_lng,
		       distance_km, duration_text, offline_map_path, route_geojson, created_at
		FROM user_trips
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	err := r.db.Select(&trips, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user trips: %w", err)
	}

	return trips, nil
}
