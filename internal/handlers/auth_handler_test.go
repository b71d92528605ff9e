package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/parvatguard/backend/internal/database"
	"github.com/parvatguard/backend/pkg/jwt"
)

func newAuthRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock, *jwt.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mockDB, mock := newMockDB(t)
	jwtService := jwt.NewService("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	handler := NewAuthHandler(jwtService, database.NewUserRepository(mockDB), testLogger(), "test")

	router := gin.New()
	router.POST("/api/auth/register", handler.Register)
	router.POST("/api/auth/login", handler.Login)
	router.POST("/api/auth/refresh", handler.Refresh)
	return router, mock, jwtService
}

func postJSON(router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestRegister(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		router, mock, _ := newAuthRouter(t)

		mock.ExpectExec(`INSERT INTO users`).
			WithArgs(sqlmock.AnyArg(), "hiker@example.com", sqlmock.AnyArg(), "Asha Rai", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		w := postJSON(router, "/api/auth/register", gin.H{
			"email":    "hiker@example.com",
			"password": "trailsafe123",
			"name":     "Asha Rai",
		})

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), "User registered successfully")
		assert.Contains(t, w.Body.String(), "accessToken")
		assert.Contains(t, w.Body.String(), "refreshToken")
		assert.NotContains(t, w.Body.String(), "password")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Duplicate Email", func(t *testing.T) {
		router, mock, _ := newAuthRouter(t)

		mock.ExpectExec(`INSERT INTO users`).
			WithArgs(sqlmock.AnyArg(), "taken@example.com", sqlmock.AnyArg(), "Asha Rai", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnError(&pq.Error{Code: "23505"})

		w := postJSON(router, "/api/auth/register", gin.H{
			"email":    "taken@example.com",
			"password": "trailsafe123",
			"name":     "Asha Rai",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "User with this email already exists")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Short Password", func(t *testing.T) {
		router, _, _ := newAuthRouter(t)

		w := postJSON(router, "/api/auth/register", gin.H{
			"email":    "hiker@example.com",
			"password": "short",
			"name":     "Asha Rai",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Invalid Email", func(t *testing.T) {
		router, _, _ := newAuthRouter(t)

		w := postJSON(router, "/api/auth/register", gin.H{
			"email":    "not-an-email",
			"password": "trailsafe123",
			"name":     "Asha Rai",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLogin(t *testing.T) {
	userColumns := []string{
		"id", "email", "password_hash", "name", "phone", "default_sos_message",
		"created_at", "updated_at",
	}

	t.Run("Success", func(t *testing.T) {
		router, mock, _ := newAuthRouter(t)

		hash, err := bcrypt.GenerateFromPassword([]byte("trailsafe123"), bcrypt.DefaultCost)
		require.NoError(t, err)
		now := time.Now()

		mock.ExpectQuery(`SELECT (.+) FROM users WHERE email`).
			WithArgs("hiker@example.com").
			WillReturnRows(sqlmock.NewRows(userColumns).AddRow(
				uuid.New(), "hiker@example.com", string(hash), "Asha Rai", nil, nil, now, now,
			))

		w := postJSON(router, "/api/auth/login", gin.H{
			"email":    "hiker@example.com",
			"password": "trailsafe123",
		})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Login successful")
		assert.Contains(t, w.Body.String(), "accessToken")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown Email", func(t *testing.T) {
		router, mock, _ := newAuthRouter(t)

		mock.ExpectQuery(`SELECT (.+) FROM users WHERE email`).
			WithArgs("nobody@example.com").
			WillReturnRows(sqlmock.NewRows(userColumns))

		w := postJSON(router, "/api/auth/login", gin.H{
			"email":    "nobody@example.com",
			"password": "trailsafe123",
		})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid email or password")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Wrong Password", func(t *testing.T) {
		router, mock, _ := newAuthRouter(t)

		hash, err := bcrypt.GenerateFromPassword([]byte("trailsafe123"), bcrypt.DefaultCost)
		require.NoError(t, err)
		now := time.Now()

		mock.ExpectQuery(`SELECT (.+) FROM users WHERE email`).
			WithArgs("hiker@example.com").
			WillReturnRows(sqlmock.NewRows(userColumns).AddRow(
				uuid.New(), "hiker@example.com", string(hash), "Asha Rai", nil, nil, now, now,
			))

		w := postJSON(router, "/api/auth/login", gin.H{
			"email":    "hiker@example.com",
			"password": "wrongpassword",
		})

		// Same response as unknown email
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid email or password")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRefresh(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		router, _, jwtService := newAuthRouter(t)

		refreshToken, err := jwtService.GenerateRefreshToken(uuid.New(), "hiker@example.com")
		require.NoError(t, err)

		w := postJSON(router, "/api/auth/refresh", gin.H{"refreshToken": refreshToken})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "accessToken")
	})

	t.Run("Missing Token", func(t *testing.T) {
		router, _, _ := newAuthRouter(t)

		w := postJSON(router, "/api/auth/refresh", gin.H{})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Refresh token required")
	})

	t.Run("Invalid Token", func(t *testing.T) {
		router, _, _ := newAuthRouter(t)

		w := postJSON(router, "/api/auth/refresh", gin.H{"refreshToken": "invalid.token.here"})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid or expired refresh token")
	})

	t.Run("Access Token Rejected", func(t *testing.T) {
		router, _, jwtService := newAuthRouter(t)

		accessToken, err := jwtService.GenerateAccessToken(uuid.New(), "hiker@example.com")
		require.NoError(t, err)

		w := postJSON(router, "/api/auth/refresh", gin.H{"refreshToken": accessToken})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
