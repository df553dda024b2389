package events

import (
	"encoding/json"
	"errors"
	"fmt"

	"need1-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Append records a lifecycle event inside the caller's transaction.
func Append(tx *gorm.DB, requestID uuid.UUID, eventType string, actorID uuid.UUID, data map[string]interface{}) error {
	if data == nil {
		data = map[string]interface{}{}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	payload := datatypes.JSON(b)
	event := domain.RequestEvent{
		RequestID:   requestID,
		EventType:   eventType,
		ActorUserID: actorID,
		EventData:   payload,
	}
	return tx.Create(&event).Error
}

// Service reads the audit trail of a request and the per-user notification
// feed built on top of it.
type Service struct {
	DB *gorm.DB
}

// GetUserEvents returns events on requests the user owns or has bid on,
// newest first.
func (s *Service) GetUserEvents(userID uuid.UUID) ([]domain.RequestEvent, error) {
	owned := s.DB.Model(&domain.Request{}).Select("request_id").Where("seeker_id = ?", userID)
	bid := s.DB.Model(&domain.Offer{}).Select("request_id").Where("bidder_id = ?", userID)

	var list []domain.RequestEvent
	err := s.DB.Where("request_id IN (?) OR request_id IN (?)", owned, bid).
		Order("created_at DESC").Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

// ListByRequest returns a request's events oldest first. The request must
// exist.
func (s *Service) ListByRequest(requestID uuid.UUID) ([]domain.RequestEvent, error) {
	var req domain.Request
	err := s.DB.Where("request_id = ?", requestID).First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("request %s: %w", requestID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	var list []domain.RequestEvent
	if err := s.DB.Where("request_id = ?", requestID).Order("created_at ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
