package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/parvatguard/backend/internal/database"
	"github.com/parvatguard/backend/internal/models"
	"github.com/parvatguard/backend/pkg/jwt"
)

// bcryptCost matches the cost the mobile clients were provisioned against
const bcryptCost = 10

// AuthHandler handles registration, login and token refresh
type AuthHandler struct {
	jwtService  *jwt.Service
	userRepo    *database.UserRepository
	logger      *logrus.Logger
	environment string
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(jwtService *jwt.Service, userRepo *database.UserRepository, logger *logrus.Logger, environment string) *AuthHandler {
	return &AuthHandler{
		jwtService:  jwtService,
		userRepo:    userRepo,
		logger:      logger,
		environment: environment,
	}
}

// RegisterRequest is the register request body
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required,min=2"`
}

// LoginRequest is the login request body
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest is the token refresh request body
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// tokenPair bundles the two credentials issued on register/login
type tokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email, password (min 8) and name (min 2) are required"})
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		internalError(c, h.logger, h.environment, err)
		return
	}

	user, err := h.userRepo.CreateUser(req.Email, string(passwordHash), req.Name)
	if err != nil {
		if errors.Is(err, database.ErrDuplicateEmail) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "User with this email already exists"})
			return
		}
		internalError(c, h.logger, h.environment, err)
		return
	}

	tokens, err := h.issueTokens(user)
	if err != nil {
		internalError(c, h.logger, h.environment, err)
		return
	}

	h.logger.WithFields(logrus.Fields{"user_id": user.ID, "email": user.Email}).Info("User registered")

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
		},
		"tokens": tokens,
	})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	user, err := h.userRepo.GetUserByEmail(req.Email)
	if err != nil {
		internalError(c, h.logger, h.environment, err)
		return
	}

	// Same response for unknown email and wrong password; the login
	// endpoint must not reveal which emails are registered.
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	tokens, err := h.issueTokens(user)
	if err != nil {
		internalError(c, h.logger, h.environment, err)
		return
	}

	h.logger.WithFields(logrus.Fields{"user_id": user.ID, "email": user.Email}).Info("User logged in")

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
			"phone": user.Phone,
		},
		"tokens": tokens,
	})
}

// Refresh handles POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Refresh token required"})
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired refresh token"})
		return
	}

	accessToken, err := h.jwtService.GenerateAccessToken(claims.UserID, claims.Email)
	if err != nil {
		internalError(c, h.logger, h.environment, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"accessToken": accessToken})
}

func (h *AuthHandler) issueTokens(user *models.User) (*tokenPair, error) {
	accessToken, err := h.jwtService.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	refreshToken, err := h.jwtService.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	return &tokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
