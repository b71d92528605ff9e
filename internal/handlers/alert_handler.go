package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/parvatguard/backend/internal/database"
	"github.com/parvatguard/backend/internal/middleware"
	"github.com/parvatguard/backend/internal/models"
	"github.com/parvatguard/backend/internal/services"
)

// alertHistoryLimit caps the history endpoint page size
const alertHistoryLimit = 50

// AlertHandler handles distress alert logging and history
type AlertHandler struct {
	alertRepo   *database.AlertRepository
	relay       *services.AlertRelayService
	logger      *logrus.Logger
	environment string
}

// NewAlertHandler creates a new alert handler
func NewAlertHandler(alertRepo *database.AlertRepository, relay *services.AlertRelayService, logger *logrus.Logger, environment string) *AlertHandler {
	return &AlertHandler{
		alertRepo:   alertRepo,
		relay:       relay,
		logger:      logger,
		environment: environment,
	}
}

// LogAlertRequest is the alert logging body. The mobile app posts these
// through its store-and-forward queue, so the same alert may arrive long
// after the client-side timestamp in the payload.
type LogAlertRequest struct {
	Type           string              `json:"type" binding:"required"`
	Payload        models.AlertPayload `json:"payload" binding:"required"`
	DeliveryMethod *string             `json:"delivery_method"`
}

// LogAlert handles POST /api/alert/log
func (h *AlertHandler) LogAlert(c *gin.Context) {
	authUser, ok := middleware.GetAuthUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req LogAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Type and payload with lat/lng are required"})
		return
	}

	if !models.ValidAlertType(req.Type) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be one of SOS, LOW_BATTERY, MANUAL"})
		return
	}

	payload := models.JSONMap{
		"lat": *req.Payload.Lat,
		"lng": *req.Payload.Lng,
	}
	if req.Payload.Message != "" {
		payload["message"] = req.Payload.Message
	}
	if req.Payload.Timestamp != "" {
		payload["timestamp"] = req.Payload.Timestamp
	}
	if req.Payload.BatteryLevel != nil {
		payload["battery_level"] = *req.Payload.BatteryLevel
	}

	alert, err := h.alertRepo.CreateAlert(authUser.UserID, req.Type, payload, req.DeliveryMethod)
	if err != nil {
		internalError(c, h.logger, h.environment, err)
		return
	}

	// Best-effort SMS relay. The response below reports the insert only:
	// whatever happens in the relay, the alert is already logged.
	h.relay.Relay(alert, req.Payload)

	h.logger.WithFields(logrus.Fields{
		"alert_id": alert.ID,
		"user_id":  authUser.UserID,
		"type":     alert.Type,
	}).Info("Alert logged")

	c.JSON(http.StatusCreated, gin.H{
		"message": "Alert logged successfully",
		"alert": gin.H{
			"id":         alert.ID,
			"type":       alert.Type,
			"status":     alert.Status,
			"created_at": alert.CreatedAt,
		},
	})
}

// GetAlertHistory handles GET /api/alert/history
func (h *AlertHandler) GetAlertHistory(c *gin.Context) {
	authUser, ok := middleware.GetAuthUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	alerts, err := h.alertRepo.GetAlertsByUserID(authUser.UserID, alertHistoryLimit)
	if err != nil {
		internalError(c, h.logger, h.environment, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}
