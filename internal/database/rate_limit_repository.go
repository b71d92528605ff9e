package database

import (
	"database/sql"
	"fmt"
	"time"
)

// RateLimitRepository backs the per-IP request limiter
type RateLimitRepository struct {
	db DB
}

// NewRateLimitRepository creates a new rate limit repository
func NewRateLimitRepository(db DB) *RateLimitRepository {
	return &RateLimitRepository{
		db: db,
	}
}

// CountRequests counts recorded requests for an identifier and scope within
// the window ending now
func (r *RateLimitRepository) CountRequests(identifier, scope string, window time.Duration) (int, error) {
	windowStart := time.Now().Add(-window)

	query := `
		SELECT COUNT(*)
		FROM rate_limits
		WHERE identifier = $1
		  AND scope = $2
		  AND created_at > $3
	`

	var count int
	err := r.db.QueryRow(query, identifier, scope, windowStart).Scan(&count)
	if err != nil && err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to count rate limit requests: %w", err)
	}

	return count, nil
}

// RecordRequest inserts a rate limit record
func (r *RateLimitRepository) RecordRequest(identifier, scope string) error {
	query := `
		INSERT INTO rate_limits (identifier, scope, created_at)
		VALUES ($1, $2, NOW())
	`

	_, err := r.db.Exec(query, identifier, scope)
	if err != nil {
		return fmt.Errorf("failed to record rate limit request: %w", err)
	}

	return nil
}

// CleanupExpired removes records older than the given retention window
func (r *RateLimitRepository) CleanupExpired(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)

	query := `DELETE FROM rate_limits WHERE created_at < $1`

	result, err := r.db.Exec(query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup rate limits: %w", err)
	}

	return result.RowsAffected()
}
