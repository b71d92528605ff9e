package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// internalError logs an unexpected error and responds with a generic 500.
// Error detail is only attached outside production.
func internalError(c *gin.Context, logger *logrus.Logger, environment string, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"path":   c.Request.URL.Path,
		"method": c.Request.Method,
	}).Error("Unexpected error")

	body := gin.H{"error": "Internal server error"}
	if environment != "production" {
		body["details"] = err.Error()
	}
	c.JSON(http.StatusInternalServerError, body)
}
