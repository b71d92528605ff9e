package handlers

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/parvatguard/backend/internal/config"
)

// tileCoordPattern accepts only non-negative integer tile coordinates
var tileCoordPattern = regexp.MustCompile(`^\d+$`)

// MapHandler proxies geocoding and tile requests so that clients never
// talk to the OSM services directly and the configured User-Agent is
// always presented upstream.
type MapHandler struct {
	mapConfig   config.MapConfig
	client      *http.Client
	logger      *logrus.Logger
	environment string
}

// NewMapHandler creates a new map handler
func NewMapHandler(mapConfig config.MapConfig, logger *logrus.Logger, environment string) *MapHandler {
	return &MapHandler{
		mapConfig: mapConfig,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger:      logger,
		environment: environment,
	}
}

// Search handles GET /api/map/search by proxying Nominatim
func (h *MapHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if len(query) < 2 {
		c.Header("Cache-Control", "public, max-age=300")
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte("[]"))
		return
	}

	limit := c.Query("limit")
	if limit == "" {
		limit = "8"
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", limit)
	params.Set("addressdetails", "0")

	upstreamURL := h.mapConfig.NominatimBaseURL + "/search?" + params.Encode()

	upstreamReq, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, upstreamURL, nil)
	if err != nil {
		internalError(c, h.logger, h.environment, err)
		return
	}
	upstreamReq.Header.Set("User-Agent", h.mapConfig.UserAgent)

	resp, err := h.client.Do(upstreamReq)
	if err != nil {
		h.logger.WithError(err).Warn("Nominatim request failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Geocoding service unavailable"})
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		h.logger.WithError(err).Warn("Nominatim response read failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Geocoding service unavailable"})
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json; charset=utf-8"
	}

	c.Header("Cache-Control", "public, max-age=300")
	c.Data(resp.StatusCode, contentType, body)
}

// Tile handles GET /api/map/tiles/:z/:x/:y by proxying the OSM tile server
func (h *MapHandler) Tile(c *gin.Context) {
	z := c.Param("z")
	x := c.Param("x")
	y := strings.TrimSuffix(c.Param("y"), ".png")

	if !tileCoordPattern.MatchString(z) || !tileCoordPattern.MatchString(x) || !tileCoordPattern.MatchString(y) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tile coordinates"})
		return
	}

	upstreamURL := fmt.Sprintf("%s/%s/%s/%s.png", h.mapConfig.TileBaseURL, z, x, y)

	upstreamReq, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, upstreamURL, nil)
	if err != nil {
		internalError(c, h.logger, h.environment, err)
		return
	}
	upstreamReq.Header.Set("User-Agent", h.mapConfig.UserAgent)

	resp, err := h.client.Do(upstreamReq)
	if err != nil {
		h.logger.WithError(err).Warn("Tile request failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Tile service unavailable"})
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Tile service unavailable"})
		return
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil || len(body) == 0 {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Tile service unavailable"})
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}
	if etag := resp.Header.Get("ETag"); etag != "" {
		c.Header("ETag", etag)
	}

	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, contentType, body)
}
