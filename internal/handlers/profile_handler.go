package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/parvatguard/backend/internal/database"
	"github.com/parvatguard/backend/internal/middleware"
	"github.com/parvatguard/backend/internal/models"
)

// ProfileHandler handles the authenticated user's profile
type ProfileHandler struct {
	userRepo    *database.UserRepository
	logger      *logrus.Logger
	environment string
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(userRepo *database.UserRepository, logger *logrus.Logger, environment string) *ProfileHandler {
	return &ProfileHandler{
		userRepo:    userRepo,
		logger:      logger,
		environment: environment,
	}
}

// UpdateProfileRequest is the profile update body; absent fields are untouched
type UpdateProfileRequest struct {
	Name              *string `json:"name" binding:"omitempty,min=2"`
	Phone             *string `json:"phone"`
	DefaultSOSMessage *string `json:"default_sos_message"`
}

// GetProfile handles GET /api/profile
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	authUser, ok := middleware.GetAuthUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	user, err := h.userRepo.GetUserByID(authUser.UserID)
	if err != nil {
		internalError(c, h.logger, h.environment, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, profileResponse(user))
}

// UpdateProfile handles PUT /api/profile
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	authUser, ok := middleware.GetAuthUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid profile fields"})
		return
	}

	user, err := h.userRepo.UpdateProfile(authUser.UserID, database.ProfileUpdate{
		Name:              req.Name,
		Phone:             req.Phone,
		DefaultSOSMessage: req.DefaultSOSMessage,
	})
	if err != nil {
		internalError(c, h.logger, h.environment, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, profileResponse(user))
}

func profileResponse(user *models.User) gin.H {
	return gin.H{
		"id":                  user.ID,
		"email":               user.Email,
		"name":                user.Name,
		"phone":               user.Phone,
		"default_sos_message": user.DefaultSOSMessage,
	}
}
