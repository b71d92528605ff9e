package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/parvatguard/backend/internal/database"
)

// RateLimitRule describes one limiter scope
type RateLimitRule struct {
	Scope       string        // rate_limits.scope value
	MaxRequests int           // allowed requests per window
	Window      time.Duration // sliding window length
	// SkipSuccessful leaves successful requests (status < 400) uncounted,
	// so only failed attempts burn the budget.
	SkipSuccessful bool
	Message        string
}

// APILimitRule is the general API limit: 100 requests per 15 minutes per IP
func APILimitRule() RateLimitRule {
	return RateLimitRule{
		Scope:       "api",
		MaxRequests: 100,
		Window:      15 * time.Minute,
		Message:     "Too many requests from this IP, please try again later.",
	}
}

// AuthLimitRule is the auth endpoint limit: 5 failed attempts per 15 minutes per IP
func AuthLimitRule() RateLimitRule {
	return RateLimitRule{
		Scope:          "auth",
		MaxRequests:    5,
		Window:         15 * time.Minute,
		SkipSuccessful: true,
		Message:        "Too many authentication attempts, please try again later.",
	}
}

// AlertLimitRule is the alert logging limit: 10 requests per minute per IP
func AlertLimitRule() RateLimitRule {
	return RateLimitRule{
		Scope:       "alert",
		MaxRequests: 10,
		Window:      time.Minute,
		Message:     "Too many alert requests, please try again later.",
	}
}

// RateLimitRetention is how long rate limit rows are kept. It must cover the
// longest rule window with room to spare.
const RateLimitRetention = 24 * time.Hour

// StartRateLimitCleanup purges expired rate limit rows on the given interval
// until stop is closed.
func StartRateLimitCleanup(repo *database.RateLimitRepository, logger *logrus.Logger, interval time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				removed, err := repo.CleanupExpired(RateLimitRetention)
				if err != nil {
					logger.WithError(err).Warn("Rate limit cleanup failed")
					continue
				}
				if removed > 0 {
					logger.WithField("removed", removed).Debug("Purged expired rate limit records")
				}
			case <-stop:
				return
			}
		}
	}()
}

// RateLimiter creates a per-client-IP limiter middleware backed by the
// rate_limits table. Storage errors fail open: a broken limiter must not
// take the API down with it.
func RateLimiter(repo *database.RateLimitRepository, logger *logrus.Logger, rule RateLimitRule) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		count, err := repo.CountRequests(ip, rule.Scope, rule.Window)
		if err != nil {
			logger.WithError(err).WithField("scope", rule.Scope).Warn("Rate limit check failed, allowing request")
			c.Next()
			return
		}

		if count >= rule.MaxRequests {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": rule.Message})
			c.Abort()
			return
		}

		c.Next()

		if rule.SkipSuccessful && c.Writer.Status() < http.StatusBadRequest {
			return
		}

		if err := repo.RecordRequest(ip, rule.Scope); err != nil {
			logger.WithError(err).WithField("scope", rule.Scope).Warn("Failed to record rate limit request")
		}
	}
}
