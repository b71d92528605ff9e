package handlers

import (
	"database/sql"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/parvatguard/backend/internal/middleware"
)

// newMockDB returns a sqlmock-backed database.DB implementation
func newMockDB(t *testing.T) (*handlerMockDB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &handlerMockDB{db: sqlx.NewDb(db, "sqlmock")}, mock
}

// testLogger returns a logger that stays quiet during tests
func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// getRequest performs a GET against the router and returns the recorder
func getRequest(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)
	return w
}

// authAs returns a middleware that injects a fixed authenticated user
func authAs(user middleware.AuthUser) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.AuthUserKey, user)
		c.Next()
	}
}

// handlerMockDB adapts sqlmock to the database.DB interface
type handlerMockDB struct {
	db *sqlx.DB
}

func (m *handlerMockDB) Get(dest interface{}, query string, args ...interface{}) error {
	return m.db.Get(dest, query, args...)
}

func (m *handlerMockDB) Select(dest interface{}, query string, args ...interface{}) error {
	return m.db.Select(dest, query, args...)
}

func (m *handlerMockDB) Exec(query string, args ...interface{}) (sql.Result, error) {
	return m.db.Exec(query, args...)
}

func (m *handlerMockDB) QueryRow(query string, args ...interface{}) *sql.Row {
	return m.db.QueryRow(query, args...)
}

func (m *handlerMockDB) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return m.db.Query(query, args...)
}

func (m *handlerMockDB) Beginx() (*sqlx.Tx, error) {
	return m.db.Beginx()
}

func (m *handlerMockDB) Ping() error {
	return m.db.Ping()
}

func (m *handlerMockDB) Close() error {
	return m.db.Close()
}
