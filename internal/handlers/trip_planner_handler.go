package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/parvatguard/backend/internal/config"
	"github.com/parvatguard/backend/internal/database"
	"github.com/parvatguard/backend/internal/middleware"
	"github.com/parvatguard/backend/internal/models"
)

// TripPlannerHandler handles planned-route logging and OSRM routing
type TripPlannerHandler struct {
	userTripRepo *database.UserTripRepository
	mapConfig    config.MapConfig
	client       *http.Client
	logger       *logrus.Logger
	environment  string
}

// NewTripPlannerHandler creates a new trip planner handler
func NewTripPlannerHandler(userTripRepo *database.UserTripRepository, mapConfig config.MapConfig, logger *logrus.Logger, environment string) *TripPlannerHandler {
	return &TripPlannerHandler{
		userTripRepo: userTripRepo,
		mapConfig:    mapConfig,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger:      logger,
		environment: environment,
	}
}

// CreateUserTripRequest is the planned-route logging body. The owner is
// always the authenticated caller; any user id in the body is ignored.
type CreateUserTripRequest struct {
	StartLat       *float64       `json:"start_lat" binding:"required"`
	StartLng       *float64       `json:"start_lng" binding:"required"`
	DestLat        *float64       `json:"dest_lat" binding:"required"`
	DestLng        *float64       `json:"dest_lng" binding:"required"`
	DistanceKm     *float64       `json:"distance_km"`
	DurationText   *string        `json:"duration_text"`
	OfflineMapPath *string        `json:"offline_map_path"`
	RouteGeoJSON   models.JSONMap `json:"route_geojson"`
}

// RouteRequest is the routing proxy body
type RouteRequest struct {
	StartLat *float64 `json:"start_lat" binding:"required"`
	StartLng *float64 `json:"start_lng" binding:"required"`
	DestLat  *float64 `json:"dest_lat" binding:"required"`
	DestLng  *float64 `json:"dest_lng" binding:"required"`
}

// CreateUserTrip handles POST /api/trip-planner/create
func (h *TripPlannerHandler) CreateUserTrip(c *gin.Context) {
	authUser, ok := middleware.GetAuthUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateUserTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_lat, start_lng, dest_lat and dest_lng are required"})
		return
	}

	userTrip, err := h.userTripRepo.CreateUserTrip(authUser.UserID, database.NewUserTrip{
		StartLat:       *req.StartLat,
		StartLng:       *req.StartLng,
		DestLat:        *req.DestLat,
		DestLng:        *req.DestLng,
		DistanceKm:     req.DistanceKm,
		DurationText:   req.DurationText,
		OfflineMapPath: req.OfflineMapPath,
		RouteGeoJSON:   req.RouteGeoJSON,
	})
	if err != nil {
		internalError(c, h.logger, h.environment, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Trip saved successfully",
		"trip":    userTrip,
	})
}

// GetUserTrips handles GET /api/trip-planner/user/:userId
func (h *TripPlannerHandler) GetUserTrips(c *gin.Context) {
	authUser, ok := middleware.GetAuthUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	requestedID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	if requestedID != authUser.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cannot access another user's trips"})
		return
	}

	trips, err := h.userTripRepo.GetUserTrips(authUser.UserID)
	if err != nil {
		internalError(c, h.logger, h.environment, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"trips": trips})
}

// GetRoute handles POST /api/trip-planner/route by proxying OSRM
func (h *TripPlannerHandler) GetRoute(c *gin.Context) {
	var req RouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_lat, start_lng, dest_lat and dest_lng are required"})
		return
	}

	// OSRM takes lng,lat pairs
	url := fmt.Sprintf(
		"%s/route/v1/foot/%f,%f;%f,%f?overview=full&geometries=geojson&steps=true",
		h.mapConfig.OSRMBaseURL,
		*req.StartLng, *req.StartLat,
		*req.DestLng, *req.DestLat,
	)

	upstreamReq, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, url, nil)
	if err != nil {
		internalError(c, h.logger, h.environment, err)
		return
	}
	upstreamReq.Header.Set("User-Agent", h.mapConfig.UserAgent)

	resp, err := h.client.Do(upstreamReq)
	if err != nil {
		h.logger.WithError(err).Warn("OSRM request failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Routing service unavailable"})
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		h.logger.WithError(err).Warn("OSRM response read failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Routing service unavailable"})
		return
	}

	if resp.StatusCode != http.StatusOK || !json.Valid(body) {
		h.logger.WithField("status", resp.StatusCode).Warn("OSRM returned an error")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Routing service unavailable"})
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}
