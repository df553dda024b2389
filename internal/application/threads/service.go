package threads

import (
	"errors"
	"fmt"
	"time"

	"need1-backend/internal/domain"
	"need1-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service manages chat threads opened when an offer is accepted. Messages
// are append-only; expired threads are read-only.
type Service struct {
	DB *gorm.DB
}

// GetByID returns a thread the caller participates in.
func (s *Service) GetByID(threadID, actorID uuid.UUID) (*domain.Thread, error) {
	thread, err := s.load(threadID)
	if err != nil {
		return nil, err
	}
	if !thread.HasParticipant(actorID) {
		return nil, fmt.Errorf("thread %s: %w", threadID, domain.ErrUnauthorized)
	}
	return thread, nil
}

// ListForUser returns threads the user participates in, newest first.
func (s *Service) ListForUser(userID uuid.UUID) ([]domain.Thread, error) {
	var threads []domain.Thread
	err := s.DB.Where("seeker_id = ? OR helper_id = ?", userID, userID).
		Order("created_at DESC").Find(&threads).Error
	if err != nil {
		return nil, err
	}
	return threads, nil
}

// PostMessage appends a message. Only participants may post and only while
// the thread is live.
func (s *Service) PostMessage(threadID, senderID uuid.UUID, body string) (*domain.Message, error) {
	if !validation.IsNonEmpty(body) {
		return nil, fmt.Errorf("message body: %w", domain.ErrValidation)
	}
	thread, err := s.load(threadID)
	if err != nil {
		return nil, err
	}
	if !thread.HasParticipant(senderID) {
		return nil, fmt.Errorf("thread %s: %w", threadID, domain.ErrUnauthorized)
	}
	if thread.Expired(time.Now()) {
		return nil, fmt.Errorf("thread expired: %w", domain.ErrInvalidState)
	}

	msg := domain.Message{
		ThreadID: threadID,
		SenderID: senderID,
		Body:     body,
	}
	if err := s.DB.Create(&msg).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// ListMessages returns a thread's messages oldest first. Participants can
// still read after expiry.
func (s *Service) ListMessages(threadID, actorID uuid.UUID) ([]domain.Message, error) {
	thread, err := s.load(threadID)
	if err != nil {
		return nil, err
	}
	if !thread.HasParticipant(actorID) {
		return nil, fmt.Errorf("thread %s: %w", threadID, domain.ErrUnauthorized)
	}

	var msgs []domain.Message
	if err := s.DB.Where("thread_id = ?", threadID).Order("created_at ASC").Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

func (s *Service) load(threadID uuid.UUID) (*domain.Thread, error) {
	var thread domain.Thread
	err := s.DB.Where("thread_id = ?", threadID).First(&thread).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("thread %s: %w", threadID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &thread, nil
}
