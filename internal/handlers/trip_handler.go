package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/parvatguard/backend/internal/database"
	"github.com/parvatguard/backend/internal/models"
)

// defaultNearRadiusKm is the catalog search radius when none is given
const defaultNearRadiusKm = 20

// TripHandler handles trip catalog and offline pack reads
type TripHandler struct {
	tripRepo    *database.TripRepository
	packRepo    *database.TripPackRepository
	logger      *logrus.Logger
	environment string
}

// NewTripHandler creates a new trip handler
func NewTripHandler(tripRepo *database.TripRepository, packRepo *database.TripPackRepository, logger *logrus.Logger, environment string) *TripHandler {
	return &TripHandler{
		tripRepo:    tripRepo,
		packRepo:    packRepo,
		logger:      logger,
		environment: environment,
	}
}

// GetTrips handles GET /api/trips, optionally filtered by ?near=lat,lng&radius=km
func (h *TripHandler) GetTrips(c *gin.Context) {
	nearParam := c.Query("near")
	if nearParam == "" {
		trips, err := h.tripRepo.GetAllTrips()
		if err != nil {
			internalError(c, h.logger, h.environment, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"trips": trips})
		return
	}

	parts := strings.SplitN(nearParam, ",", 2)
	if len(parts) != 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid near parameter. Expected near=lat,lng"})
		return
	}

	lat, latErr := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lng, lngErr := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if latErr != nil || lngErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid near parameter. Expected near=lat,lng"})
		return
	}

	radiusKm := float64(defaultNearRadiusKm)
	if radiusParam := c.Query("radius"); radiusParam != "" {
		parsed, err := strconv.ParseFloat(radiusParam, 64)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid radius parameter"})
			return
		}
		radiusKm = parsed
	}

	trips, err := h.tripRepo.GetTripsNear(lat, lng, radiusKm)
	if err != nil {
		internalError(c, h.logger, h.environment, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"trips": trips})
}

// GetTripByID handles GET /api/trips/:id
func (h *TripHandler) GetTripByID(c *gin.Context) {
	trip, ok := h.lookupTrip(c)
	if !ok {
		return
	}

	pack, err := h.packRepo.GetCurrentPackByTripID(trip.ID)
	if err != nil {
		internalError(c, h.logger, h.environment, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"trip": gin.H{
			"id":                       trip.ID,
			"name":                     trip.Name,
			"description":              trip.Description,
			"start_lat":                trip.StartLat,
			"start_lng":                trip.StartLng,
			"end_lat":                  trip.EndLat,
			"end_lng":                  trip.EndLng,
			"path_coordinates":         trip.PathCoordinates,
			"difficulty":               trip.Difficulty,
			"estimated_duration_hours": trip.EstimatedDurationHours,
			"region":                   trip.Region,
			"created_at":               trip.CreatedAt,
			"updated_at":               trip.UpdatedAt,
			"pack":                     pack,
		},
	})
}

// GetTripOfflinePack handles GET /api/trips/:id/offline-pack
func (h *TripHandler) GetTripOfflinePack(c *gin.Context) {
	trip, ok := h.lookupTrip(c)
	if !ok {
		return
	}

	pack, err := h.packRepo.GetCurrentPackByTripID(trip.ID)
	if err != nil {
		internalError(c, h.logger, h.environment, err)
		return
	}

	var mapImageURL interface{}
	checkpoints := models.WaypointList{}
	gallery := models.StringList{}
	var guideText interface{}
	advisory := "Last Updated: " + time.Now().Format("1/2/2006") + " - Path status unknown"

	if pack != nil {
		mapImageURL = pack.MapImageURL
		if pack.Waypoints != nil {
			checkpoints = pack.Waypoints
		}
		if pack.GalleryURLs != nil {
			gallery = pack.GalleryURLs
		}
		guideText = pack.GuideText
		if pack.OfflineAdvisory.Valid && pack.OfflineAdvisory.String != "" {
			advisory = pack.OfflineAdvisory.String
		}
	}

	routePolyline := models.CoordinateList{}
	if trip.PathCoordinates != nil {
		routePolyline = trip.PathCoordinates
	}

	c.JSON(http.StatusOK, gin.H{
		"id":               trip.ID,
		"name":             trip.Name,
		"map_image_url":    mapImageURL,
		"checkpoints":      checkpoints,
		"route_polyline":   routePolyline,
		"gallery":          gallery,
		"guide_text":       guideText,
		"offline_advisory": advisory,
	})
}

// lookupTrip loads the :id trip, writing the error response on failure
func (h *TripHandler) lookupTrip(c *gin.Context) (*models.Trip, bool) {
	tripID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Trip not found"})
		return nil, false
	}

	trip, err := h.tripRepo.GetTripByID(tripID)
	if err != nil {
		internalError(c, h.logger, h.environment, err)
		return nil, false
	}
	if trip == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Trip not found"})
		return nil, false
	}

	return trip, true
}
