package services

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/parvatguard/backend/internal/database"
	"github.com/parvatguard/backend/internal/models"
	"github.com/parvatguard/backend/pkg/sms"
)

// AlertRelayService forwards a freshly logged alert to the owner's primary
// emergency contact over SMS. The relay is best-effort: logging the alert
// is the durable side effect, so every failure here is absorbed after being
// recorded on the alert row and in alert_retry_log.
type AlertRelayService struct {
	userRepo    *database.UserRepository
	contactRepo *database.ContactRepository
	alertRepo   *database.AlertRepository
	gateway     sms.Gateway
	logger      *logrus.Logger
}

// NewAlertRelayService creates a new alert relay service. A nil gateway
// disables relaying entirely.
func NewAlertRelayService(
	userRepo *database.UserRepository,
	contactRepo *database.ContactRepository,
	alertRepo *database.AlertRepository,
	gateway sms.Gateway,
	logger *logrus.Logger,
) *AlertRelayService {
	return &AlertRelayService{
		userRepo:    userRepo,
		contactRepo: contactRepo,
		alertRepo:   alertRepo,
		gateway:     gateway,
		logger:      logger,
	}
}

// Relay attempts delivery of the alert and persists the outcome. It never
// returns an error to the caller; the HTTP response must reflect only the
// alert insert.
func (s *AlertRelayService) Relay(alert *models.Alert, payload models.AlertPayload) {
	if s.gateway == nil {
		return
	}

	log := s.logger.WithFields(logrus.Fields{
		"alert_id": alert.ID,
		"user_id":  alert.UserID,
	})

	contact, message, err := s.prepare(alert, payload)
	if err != nil {
		log.WithError(err).Warn("Alert relay skipped")
		return
	}

	sid, err := s.gateway.Send(contact.Phone, message)
	if err != nil {
		log.WithError(err).Error("Failed to relay alert via SMS")
		errMsg := err.Error()
		if markErr := s.alertRepo.MarkFailed(alert.ID, errMsg); markErr != nil {
			log.WithError(markErr).Error("Failed to record alert failure")
		}
		if logErr := s.alertRepo.RecordRetryAttempt(alert.ID, 1, "failed", &errMsg); logErr != nil {
			log.WithError(logErr).Error("Failed to record delivery attempt")
		}
		return
	}

	if err := s.alertRepo.MarkSent(alert.ID, s.gateway.Name()); err != nil {
		log.WithError(err).Error("Failed to record alert delivery")
	}
	if err := s.alertRepo.RecordRetryAttempt(alert.ID, 1, "success", nil); err != nil {
		log.WithError(err).Error("Failed to record delivery attempt")
	}

	log.WithFields(logrus.Fields{"to": contact.Phone, "message_sid": sid}).Info("Alert relayed via SMS")
}

// prepare resolves the relay target and composes the message
func (s *AlertRelayService) prepare(alert *models.Alert, payload models.AlertPayload) (*models.EmergencyContact, string, error) {
	user, err := s.userRepo.GetUserByID(alert.UserID)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", fmt.Errorf("user %s not found", alert.UserID)
	}

	contacts, err := s.contactRepo.GetContactsByUserID(alert.UserID)
	if err != nil {
		return nil, "", err
	}
	if len(contacts) == 0 {
		return nil, "", fmt.Errorf("no emergency contact configured")
	}

	// Contacts come back primary-first, so the head is the primary when one
	// exists and the oldest contact otherwise.
	contact := contacts[0]

	sosMessage := "Emergency SOS alert"
	if user.DefaultSOSMessage.Valid && user.DefaultSOSMessage.String != "" {
		sosMessage = user.DefaultSOSMessage.String
	}

	message := fmt.Sprintf("%s\nLocation: %v, %v\nTime: %s",
		sosMessage, *payload.Lat, *payload.Lng, time.Now().UTC().Format(time.RFC3339))

	return contact, message, nil
}
