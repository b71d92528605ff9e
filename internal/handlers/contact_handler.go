package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/parvatguard/backend/internal/database"
	"github.com/parvatguard/backend/internal/middleware"
)

// ContactHandler handles emergency contact operations
type ContactHandler struct {
	contactRepo *database.ContactRepository
	logger      *logrus.Logger
	environment string
}

// NewContactHandler creates a new contact handler
func NewContactHandler(contactRepo *database.ContactRepository, logger *logrus.Logger, environment string) *ContactHandler {
	return &ContactHandler{
		contactRepo: contactRepo,
		logger:      logger,
		environment: environment,
	}
}

// CreateContactRequest is the contact creation body
type CreateContactRequest struct {
	Name         string  `json:"name" binding:"required,min=2"`
	Phone        string  `json:"phone" binding:"required"`
	Relationship *string `json:"relationship"`
	IsPrimary    bool    `json:"is_primary"`
}

// UpdateContactRequest is the contact update body; absent fields are untouched
type UpdateContactRequest struct {
	Name         *string `json:"name" binding:"omitempty,min=2"`
	Phone        *string `json:"phone"`
	Relationship *string `json:"relationship"`
	IsPrimary    *bool   `json:"is_primary"`
}

// GetContacts handles GET /api/profile/contact
func (h *ContactHandler) GetContacts(c *gin.Context) {
	authUser, ok := middleware.GetAuthUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	contacts, err := h.contactRepo.GetContactsByUserID(authUser.UserID)
	if err != nil {
		internalError(c, h.logger, h.environment, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"contacts": contacts})
}

// CreateContact handles POST /api/profile/contact
func (h *ContactHandler) CreateContact(c *gin.Context) {
	authUser, ok := middleware.GetAuthUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name and phone are required"})
		return
	}

	contact, err := h.contactRepo.CreateContact(authUser.UserID, req.Name, req.Phone, req.Relationship, req.IsPrimary)
	if err != nil {
		internalError(c, h.logger, h.environment, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"contact": contact})
}

// UpdateContact handles PUT /api/profile/contact/:id
func (h *ContactHandler) UpdateContact(c *gin.Context) {
	authUser, ok := middleware.GetAuthUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	contactID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contact not found"})
		return
	}

	var req UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid contact fields"})
		return
	}

	// Ownership check before the write: foreign contacts look identical
	// to missing ones.
	existing, err := h.contactRepo.GetContactByID(contactID)
	if err != nil {
		internalError(c, h.logger, h.environment, err)
		return
	}
	if existing == nil || existing.UserID != authUser.UserID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contact not found"})
		return
	}

	contact, err := h.contactRepo.UpdateContact(contactID, authUser.UserID, database.ContactUpdate{
		Name:         req.Name,
		Phone:        req.Phone,
		Relationship: req.Relationship,
		IsPrimary:    req.IsPrimary,
	})
	if err != nil {
		internalError(c, h.logger, h.environment, err)
		return
	}
	if contact == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contact not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"contact": contact})
}

// DeleteContact handles DELETE /api/profile/contact/:id
func (h *ContactHandler) DeleteContact(c *gin.Context) {
	authUser, ok := middleware.GetAuthUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	contactID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contact not found"})
		return
	}

	deleted, err := h.contactRepo.DeleteContact(contactID, authUser.UserID)
	if err != nil {
		internalError(c, h.logger, h.environment, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contact not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Contact deleted successfully"})
}
