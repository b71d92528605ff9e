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

func TestCreateAlert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := newMockDatabase(db)
	repo := NewAlertRepository(mockDB)

	t.Run("Success", func(t *testing.T) {
		userID := uuid.New()
		payload := models.JSONMap{"lat": 27.7, "lng": 85.3}

		mock.ExpectExec(`INSERT INTO alerts`).
			WithArgs(sqlmock.AnyArg(), userID, models.AlertTypeSOS, sqlmock.AnyArg(), models.AlertStatusPending, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		alert, err := repo.CreateAlert(userID, models.AlertTypeSOS, payload, nil)
		require.NoError(t, err)
		require.NotNil(t, alert)
		assert.Equal(t, models.AlertStatusPending, alert.Status)
		assert.Equal(t, models.AlertTypeSOS, alert.Type)
		assert.False(t, alert.SentAt.Valid)

		err = mock.ExpectationsWereMet()
		assert.NoError(t, err)
	})

	t.Run("Database Error", func(t *testing.T) {
		userID := uuid.New()

		mock.ExpectExec(`INSERT INTO alerts`).
			WithArgs(sqlmock.AnyArg(), userID, models.AlertTypeManual, sqlmock.AnyArg(), models.AlertStatusPending, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnError(fmt.Errorf("database error"))

		alert, err := repo.CreateAlert(userID, models.AlertTypeManual, models.JSONMap{"lat": 1.0, "lng": 2.0}, nil)
		assert.Error(t, err)
		assert.Nil(t, alert)
		assert.Contains(t, err.Error(), "failed to create alert")

		err = mock.ExpectationsWereMet()
		assert.NoError(t, err)
	})
}

func TestMarkSent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := newMockDatabase(db)
	repo := NewAlertRepository(mockDB)

	alertID := uuid.New()

	mock.ExpectExec(`UPDATE alerts`).
		WithArgs(models.AlertStatusSent, "twilio", sqlmock.AnyArg(), alertID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.MarkSent(alertID, "twilio")
	require.NoError(t, err)

	err = mock.ExpectationsWereMet()
	assert.NoError(t, err)
}

func TestMarkFailed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := newMockDatabase(db)
	repo := NewAlertRepository(mockDB)

	alertID := uuid.New()

	mock.ExpectExec(`UPDATE alerts`).
		WithArgs(models.AlertStatusFailed, "gateway timeout", alertID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.MarkFailed(alertID, "gateway timeout")
	require.NoError(t, err)

	err = mock.ExpectationsWereMet()
	assert.NoError(t, err)
}

func TestGetAlertsByUserID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := newMockDatabase(db)
	repo := NewAlertRepository(mockDB)

	alertColumns := []string{
		"id", "user_id", "type", "payload", "status", "delivery_method",
		"error_message", "created_at", "sent_at",
	}

	t.Run("Success", func(t *testing.T) {
		userID := uuid.New()
		now := time.Now()

		mock.ExpectQuery(`SELECT (.+) FROM alerts WHERE user_id (.+) ORDER BY created_at DESC LIMIT`).
			WithArgs(userID, 50).
			WillReturnRows(sqlmock.NewRows(alertColumns).
				AddRow(uuid.New(), userID, models.AlertTypeSOS, []byte(`{"lat":27.7,"lng":85.3}`),
					models.AlertStatusSent, "twilio", nil, now, now).
				AddRow(uuid.New(), userID, models.AlertTypeLowBattery, []byte(`{"lat":27.7,"lng":85.3,"battery_level":9}`),
					models.AlertStatusPending, nil, nil, now.Add(-time.Hour), nil))

		alerts, err := repo.GetAlertsByUserID(userID, 50)
		require.NoError(t, err)
		require.Len(t, alerts, 2)
		assert.Equal(t, models.AlertStatusSent, alerts[0].Status)
		assert.Equal(t, 27.7, alerts[0].Payload["lat"])
		assert.True(t, alerts[0].SentAt.Valid)
		assert.False(t, alerts[1].SentAt.Valid)

		err = mock.ExpectationsWereMet()
		assert.NoError(t, err)
	})

	t.Run("Empty History", func(t *testing.T) {
		userID := uuid.New()

		mock.ExpectQuery(`SELECT (.+) FROM alerts WHERE user_id`).
			WithArgs(userID, 50).
			WillReturnRows(sqlmock.NewRows(alertColumns))

		alerts, err := repo.GetAlertsByUserID(userID, 50)
		require.NoError(t, err)
		assert.Len(t, alerts, 0)

		err = mock.ExpectationsWereMet()
		assert.NoError(t, err)
	})
}

func TestRecordRetryAttempt(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := newMockDatabase(db)
	repo := NewAlertRepository(mockDB)

	t.Run("Failed Attempt", func(t *testing.T) {
		alertID := uuid.New()
		errMsg := "gateway timeout"

		mock.ExpectExec(`INSERT INTO alert_retry_log`).
			WithArgs(sqlmock.AnyArg(), alertID, 1, "failed", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.RecordRetryAttempt(alertID, 1, "failed", &errMsg)
		require.NoError(t, err)

		err = mock.ExpectationsWereMet()
		assert.NoError(t, err)
	})

	t.Run("Successful Attempt", func(t *testing.T) {
		alertID := uuid.New()

		mock.ExpectExec(`INSERT INTO alert_retry_log`).
			WithArgs(sqlmock.AnyArg(), alertID, 1, "success", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.RecordRetryAttempt(alertID, 1, "success", nil)
		require.NoError(t, err)

		err = mock.ExpectationsWereMet()
		assert.NoError(t, err)
	})
}
