package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/parvatguard/backend/internal/database"
	"github.com/parvatguard/backend/internal/middleware"
	"github.com/parvatguard/backend/internal/models"
	"github.com/parvatguard/backend/internal/services"
)

func newAlertRouter(t *testing.T, user middleware.AuthUser) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mockDB, mock := newMockDB(t)
	userRepo := database.NewUserRepository(mockDB)
	contactRepo := database.NewContactRepository(mockDB)
	alertRepo := database.NewAlertRepository(mockDB)

	// Relay with no gateway configured: logging still works, delivery is off
	relay := services.NewAlertRelayService(userRepo, contactRepo, alertRepo, nil, testLogger())
	handler := NewAlertHandler(alertRepo, relay, testLogger(), "test")

	router := gin.New()
	router.POST("/api/alert/log", authAs(user), handler.LogAlert)
	router.GET("/api/alert/history", authAs(user), handler.GetAlertHistory)
	return router, mock
}

func TestLogAlert(t *testing.T) {
	user := middleware.AuthUser{UserID: uuid.New(), Email: "hiker@example.com"}

	t.Run("Valid SOS", func(t *testing.T) {
		router, mock := newAlertRouter(t, user)

		mock.ExpectExec(`INSERT INTO alerts`).
			WithArgs(sqlmock.AnyArg(), user.UserID, models.AlertTypeSOS, sqlmock.AnyArg(),
				models.AlertStatusPending, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		w := postJSON(router, "/api/alert/log", gin.H{
			"type": "SOS",
			"payload": gin.H{
				"lat":     27.7,
				"lng":     85.3,
				"message": "Injured near the pass",
			},
		})

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), "Alert logged successfully")
		assert.Contains(t, w.Body.String(), models.AlertStatusPending)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Invalid Type", func(t *testing.T) {
		router, mock := newAlertRouter(t, user)

		w := postJSON(router, "/api/alert/log", gin.H{
			"type":    "PANIC",
			"payload": gin.H{"lat": 27.7, "lng": 85.3},
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "type must be one of SOS, LOW_BATTERY, MANUAL")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing Coordinates", func(t *testing.T) {
		router, mock := newAlertRouter(t, user)

		w := postJSON(router, "/api/alert/log", gin.H{
			"type":    "SOS",
			"payload": gin.H{"lat": 27.7},
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Type and payload with lat/lng are required")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Low Battery With Level", func(t *testing.T) {
		router, mock := newAlertRouter(t, user)

		mock.ExpectExec(`INSERT INTO alerts`).
			WithArgs(sqlmock.AnyArg(), user.UserID, models.AlertTypeLowBattery, sqlmock.AnyArg(),
				models.AlertStatusPending, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		w := postJSON(router, "/api/alert/log", gin.H{
			"type": "LOW_BATTERY",
			"payload": gin.H{
				"lat":           27.7,
				"lng":           85.3,
				"battery_level": 7,
			},
		})

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetAlertHistory(t *testing.T) {
	user := middleware.AuthUser{UserID: uuid.New(), Email: "hiker@example.com"}

	alertColumns := []string{
		"id", "user_id", "type", "payload", "status", "delivery_method",
		"error_message", "created_at", "sent_at",
	}

	t.Run("Success", func(t *testing.T) {
		router, mock := newAlertRouter(t, user)
		now := time.Now()

		mock.ExpectQuery(`SELECT (.+) FROM alerts WHERE user_id`).
			WithArgs(user.UserID, 50).
			WillReturnRows(sqlmock.NewRows(alertColumns).
				AddRow(uuid.New(), user.UserID, models.AlertTypeSOS, []byte(`{"lat":27.7,"lng":85.3}`),
					models.AlertStatusSent, "twilio", nil, now, now))

		w := getRequest(router, "/api/alert/history")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "alerts")
		assert.Contains(t, w.Body.String(), models.AlertTypeSOS)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Empty History", func(t *testing.T) {
		router, mock := newAlertRouter(t, user)

		mock.ExpectQuery(`SELECT (.+) FROM alerts WHERE user_id`).
			WithArgs(user.UserID, 50).
			WillReturnRows(sqlmock.NewRows(alertColumns))

		w := getRequest(router, "/api/alert/history")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
