package feed

import (
	"errors"
	"fmt"
	"time"

	"need1-backend/internal/domain"
	"need1-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FlashDropInput carries the fields for a new flash drop.
type FlashDropInput struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	EndsAt      time.Time `json:"ends_at"`
}

// SafeSpotInput carries the fields for a new safe spot.
type SafeSpotInput struct {
	Name        string  `json:"name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Description string  `json:"description"`
	Hours       string  `json:"hours"`
}

// OpenRequest is a feed entry: an open request plus the advisory overdue
// flag (deadline passed, nothing enforced).
type OpenRequest struct {
	domain.Request
	Overdue bool `json:"overdue"`
}

// Service serves the campus feed: open requests, flash drops and safe
// meetup spots.
type Service struct {
	DB *gorm.DB
}

// GetOpenFeed returns open requests newest first, optionally filtered by
// category, each flagged overdue when its deadline has passed.
func (s *Service) GetOpenFeed(category string) ([]OpenRequest, error) {
	q := s.DB.Where("status = ?", domain.RequestOpen).Order("created_at DESC")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var reqs []domain.Request
	if err := q.Find(&reqs).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	feed := make([]OpenRequest, 0, len(reqs))
	for i := range reqs {
		feed = append(feed, OpenRequest{Request: reqs[i], Overdue: reqs[i].Overdue(now)})
	}
	return feed, nil
}

// ListFlashDrops returns drops that have not ended, soonest-ending first.
func (s *Service) ListFlashDrops() ([]domain.FlashDrop, error) {
	var drops []domain.FlashDrop
	err := s.DB.Where("ends_at > ?", time.Now()).Order("ends_at ASC").Find(&drops).Error
	if err != nil {
		return nil, err
	}
	return drops, nil
}

// CreateFlashDrop adds a drop. Moderator only (enforced at the route).
func (s *Service) CreateFlashDrop(in FlashDropInput) (*domain.FlashDrop, error) {
	if !validation.IsNonEmpty(in.Title) {
		return nil, fmt.Errorf("title: %w", domain.ErrValidation)
	}
	if in.EndsAt.Before(time.Now()) {
		return nil, fmt.Errorf("ends_at in the past: %w", domain.ErrValidation)
	}
	drop := domain.FlashDrop{
		Title:       in.Title,
		Description: in.Description,
		EndsAt:      in.EndsAt,
	}
	if err := s.DB.Create(&drop).Error; err != nil {
		return nil, err
	}
	return &drop, nil
}

// JoinFlashDrop bumps the participant counter for a live drop.
func (s *Service) JoinFlashDrop(dropID uuid.UUID) (*domain.FlashDrop, error) {
	var drop domain.FlashDrop
	err := s.DB.Where("drop_id = ?", dropID).First(&drop).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("flash drop %s: %w", dropID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if drop.EndsAt.Before(time.Now()) {
		return nil, fmt.Errorf("flash drop ended: %w", domain.ErrInvalidState)
	}
	err = s.DB.Model(&domain.FlashDrop{}).Where("drop_id = ?", dropID).
		Update("participant_count", gorm.Expr("participant_count + 1")).Error
	if err != nil {
		return nil, err
	}
	drop.ParticipantCount++
	return &drop, nil
}

// ListSafeSpots returns all safe meetup spots, alphabetical.
func (s *Service) ListSafeSpots() ([]domain.SafeSpot, error) {
	var spots []domain.SafeSpot
	if err := s.DB.Order("name ASC").Find(&spots).Error; err != nil {
		return nil, err
	}
	return spots, nil
}

// CreateSafeSpot adds a spot. Moderator only (enforced at the route).
func (s *Service) CreateSafeSpot(in SafeSpotInput) (*domain.SafeSpot, error) {
	if !validation.IsNonEmpty(in.Name) {
		return nil, fmt.Errorf("name: %w", domain.ErrValidation)
	}
	if in.Latitude < -90 || in.Latitude > 90 || in.Longitude < -180 || in.Longitude > 180 {
		return nil, fmt.Errorf("coordinates: %w", domain.ErrValidation)
	}
	spot := domain.SafeSpot{
		Name:        in.Name,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		Description: in.Description,
		Hours:       in.Hours,
	}
	if err := s.DB.Create(&spot).Error; err != nil {
		return nil, err
	}
	return &spot, nil
}
