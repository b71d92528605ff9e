package models

import (
	"time"

	"github.com/google/uuid"
)

// Trip represents a catalog trip (read-mostly reference data)
type Trip struct {
	ID                      uuid.UUID      `json:"id" db:"id"`
	Name                    string         `json:"name" db:"name"`
	Description             NullString     `json:"description,omitempty" db:"description"`
	StartLat                float64        `json:"start_lat" db:"start_lat"`
	StartLng                float64        `json:"start_lng" db:"start_lng"`
	EndLat                  float64        `json:"end_lat" db:"end_lat"`
	EndLng                  float64        `json:"end_lng" db:"end_lng"`
	PathCoordinates         CoordinateList `json:"path_coordinates,omitempty" db:"path_coordinates"`
	Difficulty              NullString     `json:"difficulty,omitempty" db:"difficulty"`
	EstimatedDurationHours  NullInt64      `json:"estimated_duration_hours,omitempty" db:"estimated_duration_hours"`
	Region                  NullString     `json:"region,omitempty" db:"region"`
	CreatedAt               time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt               time.Time      `json:"updated_at" db:"updated_at"`
}

// TripPack represents the offline content bundle for a trip.
// The current pack is the newest row by created_at.
type TripPack struct {
	ID              uuid.UUID    `json:"id" db:"id"`
	TripID          uuid.UUID    `json:"trip_id" db:"trip_id"`
	PackVersion     string       `json:"pack_version" db:"pack_version"`
	MapImageURL     NullString   `json:"map_image_url,omitempty" db:"map_image_url"`
	Tips            JSONMap      `json:"tips,omitempty" db:"tips"`
	Waypoints       WaypointList `json:"waypoints,omitempty" db:"waypoints"`
	GalleryURLs     StringList   `json:"gallery_urls,omitempty" db:"gallery_urls"`
	GuideText       NullString   `json:"guide_text,omitempty" db:"guide_text"`
	OfflineAdvisory NullString   `json:"offline_advisory,omitempty" db:"offline_advisory"`
	PackSizeBytes   NullInt64    `json:"pack_size_bytes,omitempty" db:"pack_size_bytes"`
	Checksum        NullString   `json:"checksum,omitempty" db:"checksum"`
	CreatedAt       time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at" db:"updated_at"`
}

// UserTrip is a planned route logged by a user. Insert and list only.
type UserTrip struct {
	ID             uuid.UUID   `json:"id" db:"id"`
	UserID         uuid.UUID   `json:"user_id" db:"user_id"`
	StartLat       float64     `json:"start_lat" db:"start_lat"`
	StartLng       float64     `json:"start_lng" db:"start_lng"`
	DestLat        float64     `json:"dest_lat" db:"dest_lat"`
	DestLng        float64     `json:"dest_lng" db:"dest_lng"`
	DistanceKm     NullFloat64 `json:"distance_km,omitempty" db:"distance_km"`
	DurationText   NullString  `json:"duration_text,omitempty" db:"duration_text"`
	OfflineMapPath NullString  `json:"offline_map_path,omitempty" db:"offline_map_path"`
	RouteGeoJSON   JSONMap     `json:"route_geojson,omitempty" db:"route_geojson"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
}
