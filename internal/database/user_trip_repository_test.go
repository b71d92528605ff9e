package database

import (
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parvatguard/backend/internal/models"
)

func TestCreateUserTrip(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := newMockDatabase(db)
	repo := NewUserTripRepository(mockDB)

	t.Run("Success", func(t *testing.T) {
		userID := uuid.New()
		distance := 12.4
		duration := "4 hours"

		mock.ExpectExec(`INSERT INTO user_trips`).
			WithArgs(sqlmock.AnyArg(), userID, 27.7, 85.3, 27.8, 85.4,
				sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		userTrip, err := repo.CreateUserTrip(userID, NewUserTrip{
			StartLat:     27.7,
			StartLng:     85.3,
			DestLat:      27.8,
			DestLng:      85.4,
			DistanceKm:   &distance,
			DurationText: &duration,
			RouteGeoJSON: models.JSONMap{"type": "LineString"},
		})
		require.NoError(t, err)
		require.NotNil(t, userTrip)
		assert.Equal(t, userID, userTrip.UserID)
		assert.Equal(t, 12.4, userTrip.DistanceKm.Float64)
		assert.Equal(t, "4 hours", userTrip.DurationText.String)

		err = mock.ExpectationsWereMet()
		assert.NoError(t, err)
	})

	t.Run("Database Error", func(t *testing.T) {
		userID := uuid.New()

		mock.ExpectExec(`INSERT INTO user_trips`).
			WithArgs(sqlmock.AnyArg(), userID, 27.7, 85.3, 27.8, 85.4,
				sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnError(fmt.Errorf("database error"))

		userTrip, err := repo.CreateUserTrip(userID, NewUserTrip{
			StartLat: 27.7, StartLng: 85.3, DestLat: 27.8, DestLng: 85.4,
		})
		assert.Error(t, err)
		assert.Nil(t, userTrip)
		assert.Contains(t, err.Error(), "failed to create user trip")

		err = mock.ExpectationsWereMet()
		assert.NoError(t, err)
	})
}

func TestGetUserTrips(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := newMockDatabase(db)
	repo := NewUserTripRepository(mockDB)

	columns := []string{
		"id", "user_id", "start_lat", "start_lng", "dest_lat", "dest_lng",
		"distance_km", "duration_text", "offline_map_path", "route_geojson", "created_at",
	}

	t.Run("Newest First", func(t *testing.T) {
		userID := uuid.New()
		now := time.Now()

		mock.ExpectQuery(`SELECT (.+) FROM user_trips WHERE user_id (.+) ORDER BY created_at DESC`).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow(uuid.New(), userID, 27.7, 85.3, 27.8, 85.4, 12.4, "4 hours", nil,
					[]byte(`{"type":"LineString"}`), now).
				AddRow(uuid.New(), userID, 27.1, 85.1, 27.2, 85.2, nil, nil, nil, nil, now.Add(-time.Hour)))

		trips, err := repo.GetUserTrips(userID)
		require.NoError(t, err)
		require.Len(t, trips, 2)
		assert.Equal(t, "LineString", trips[0].RouteGeoJSON["type"])
		assert.False(t, trips[1].DistanceKm.Valid)

		err = mock.ExpectationsWereMet()
		assert.NoError(t, err)
	})

	t.Run("Empty Result", func(t *testing.T) {
		userID := uuid.New()

		mock.ExpectQuery(`SELECT (.+) FROM user_trips WHERE user_id`).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows(columns))

		trips, err := repo.GetUserTrips(userID)
		require.NoError(t, err)
		assert.Len(t, trips, 0)

		err = mock.ExpectationsWereMet()
		assert.NoError(t, err)
	})
}
