package requests

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"need1-backend/internal/application/events"
	"need1-backend/internal/domain"
	"need1-backend/internal/pkg/constants"
	"need1-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	cachePrefix = "request:"
	cacheTTL    = 5 * time.Minute
)

// CreateInput carries the fields for a new request.
type CreateInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Budget      float64    `json:"budget"`
	Location    string     `json:"location"`
	IsRemote    bool       `json:"is_remote"`
	Tags        []string   `json:"tags"`
	Deadline    *time.Time `json:"deadline"`
	FlashDropID *uuid.UUID `json:"flash_drop_id"`
}

// ListFilter narrows request listings.
type ListFilter struct {
	Status   string
	Category string
	Remote   *bool
	Limit    int
	Offset   int
}

// Service manages the request lifecycle. Mutations run inside transactions
// with a version guard; every transition appends a RequestEvent.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
}

// Create inserts a new open request (version 1) and records the created
// event. Deadlines in the past are rejected.
func (s *Service) Create(seekerID uuid.UUID, in CreateInput) (*domain.Request, error) {
	if !validation.IsNonEmpty(in.Title) {
		return nil, fmt.Errorf("title: %w", domain.ErrValidation)
	}
	if !validation.IsNonEmpty(in.Description) {
		return nil, fmt.Errorf("description: %w", domain.ErrValidation)
	}
	if !constants.IsValidCategory(in.Category) {
		return nil, fmt.Errorf("category %q: %w", in.Category, domain.ErrValidation)
	}
	if in.Budget < 0 {
		return nil, fmt.Errorf("budget: %w", domain.ErrValidation)
	}
	if in.Deadline != nil && in.Deadline.Before(time.Now()) {
		return nil, fmt.Errorf("deadline in the past: %w", domain.ErrValidation)
	}

	var tags datatypes.JSON
	if in.Tags != nil {
		b, err := json.Marshal(in.Tags)
		if err != nil {
			return nil, err
		}
		tags = datatypes.JSON(b)
	}

	req := domain.Request{
		SeekerID:    seekerID,
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Budget:      in.Budget,
		Location:    in.Location,
		IsRemote:    in.IsRemote,
		Tags:        tags,
		Deadline:    in.Deadline,
		FlashDropID: in.FlashDropID,
		Status:      domain.RequestOpen,
		Version:     1,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&req).Error; err != nil {
			return err
		}
		return events.Append(tx, req.RequestID, domain.EventRequestCreated, seekerID, map[string]interface{}{
			"title":    req.Title,
			"category": req.Category,
		})
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// GetByID returns a request, served from the Redis cache when warm.
func (s *Service) GetByID(ctx context.Context, requestID uuid.UUID) (*domain.Request, error) {
	key := cachePrefix + requestID.String()
	if s.Redis != nil {
		if b, err := s.Redis.Get(ctx, key).Bytes(); err == nil {
			var cached domain.Request
			if json.Unmarshal(b, &cached) == nil {
				return &cached, nil
			}
		}
	}

	var req domain.Request
	err := s.DB.Where("request_id = ?", requestID).First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("request %s: %w", requestID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		if b, err := json.Marshal(&req); err == nil {
			s.Redis.Set(ctx, key, b, cacheTTL)
		}
	}
	return &req, nil
}

// List returns requests matching the filter, newest first.
func (s *Service) List(filter ListFilter) ([]domain.Request, error) {
	q := s.DB.Model(&domain.Request{}).Order("created_at DESC")
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Remote != nil {
		q = q.Where("is_remote = ?", *filter.Remote)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}
	var reqs []domain.Request
	if err := q.Find(&reqs).Error; err != nil {
		return nil, err
	}
	return reqs, nil
}

// ListBySeeker returns all requests the user has created, newest first.
func (s *Service) ListBySeeker(seekerID uuid.UUID) ([]domain.Request, error) {
	var reqs []domain.Request
	err := s.DB.Where("seeker_id = ?", seekerID).Order("created_at DESC").Find(&reqs).Error
	if err != nil {
		return nil, err
	}
	return reqs, nil
}

// Karma amounts applied on completion.
const (
	karmaHelperScore   = 5
	karmaHelperCredits = 10
	karmaHelperEco     = 1
	karmaSeekerScore   = 2
)

// Complete moves an in_progress request to completed. Only the seeker may
// complete; the accepted helper and the seeker receive karma in the same
// transaction.
func (s *Service) Complete(ctx context.Context, requestID, actorID uuid.UUID, expectedVersion int) (*domain.Request, error) {
	var out domain.Request
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		req, err := LoadForUpdate(tx, requestID)
		if err != nil {
			return err
		}
		if req.SeekerID != actorID {
			return fmt.Errorf("only the seeker may complete: %w", domain.ErrUnauthorized)
		}
		if req.Status != domain.RequestInProgress {
			return fmt.Errorf("complete from %s: %w", req.Status, domain.ErrInvalidState)
		}

		if err := GuardedUpdate(tx, req.RequestID, expectedVersion, map[string]interface{}{
			"status": domain.RequestCompleted,
		}); err != nil {
			return err
		}

		var accepted domain.Offer
		err = tx.Where("request_id = ? AND status = ?", requestID, domain.OfferAccepted).First(&accepted).Error
		if err != nil {
			return fmt.Errorf("accepted offer for %s: %w", requestID, err)
		}

		if err := grantKarma(tx, accepted.BidderID, requestID, domain.KarmaRequestFulfilled,
			karmaHelperScore, karmaHelperCredits, karmaHelperEco); err != nil {
			return err
		}
		if err := grantKarma(tx, req.SeekerID, requestID, domain.KarmaRequestCompleted,
			karmaSeekerScore, 0, 0); err != nil {
			return err
		}

		if err := events.Append(tx, requestID, domain.EventRequestCompleted, actorID, map[string]interface{}{
			"bidder_id": accepted.BidderID.String(),
		}); err != nil {
			return err
		}

		out = *req
		out.Status = domain.RequestCompleted
		out.Version = expectedVersion + 1
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, requestID)
	return &out, nil
}

// Cancel moves an open or in_progress request to cancelled. The seeker may
// cancel their own request; roles holding the moderate_requests permission
// may cancel any. Pending offers are rejected and any thread expires
// immediately.
func (s *Service) Cancel(ctx context.Context, requestID, actorID uuid.UUID, actorRole string, expectedVersion int) (*domain.Request, error) {
	var out domain.Request
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		req, err := LoadForUpdate(tx, requestID)
		if err != nil {
			return err
		}
		if req.SeekerID != actorID && !constants.AllowedRole(constants.ModerateRequests, actorRole) {
			return fmt.Errorf("only the seeker or a moderator may cancel: %w", domain.ErrUnauthorized)
		}
		if req.Terminal() {
			return fmt.Errorf("cancel from %s: %w", req.Status, domain.ErrInvalidState)
		}

		if err := GuardedUpdate(tx, req.RequestID, expectedVersion, map[string]interface{}{
			"status": domain.RequestCancelled,
		}); err != nil {
			return err
		}

		if err := tx.Model(&domain.Offer{}).
			Where("request_id = ? AND status = ?", requestID, domain.OfferPending).
			Update("status", domain.OfferRejected).Error; err != nil {
			return err
		}

		now := time.Now()
		if err := tx.Model(&domain.Thread{}).
			Where("request_id = ? AND expires_at > ?", requestID, now).
			Update("expires_at", now).Error; err != nil {
			return err
		}

		if err := events.Append(tx, requestID, domain.EventRequestCancelled, actorID, nil); err != nil {
			return err
		}

		out = *req
		out.Status = domain.RequestCancelled
		out.Version = expectedVersion + 1
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, requestID)
	return &out, nil
}

// Invalidate drops the cache entry for a request. Used by the offers service
// after accept/submit/decline touch the row.
func (s *Service) Invalidate(ctx context.Context, requestID uuid.UUID) {
	s.invalidate(ctx, requestID)
}

func (s *Service) invalidate(ctx context.Context, requestID uuid.UUID) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(ctx, cachePrefix+requestID.String()).Err(); err != nil {
		log.Warn().Err(err).Str("request_id", requestID.String()).Msg("cache invalidation failed")
	}
}

// LoadForUpdate fetches a request inside a transaction for a guarded write.
func LoadForUpdate(tx *gorm.DB, requestID uuid.UUID) (*domain.Request, error) {
	var req domain.Request
	err := tx.Where("request_id = ?", requestID).First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("request %s: %w", requestID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// GuardedUpdate applies updates only if the stored version still matches
// the caller's expected version, and bumps the version. Zero rows affected
// means another writer got there first.
func GuardedUpdate(tx *gorm.DB, requestID uuid.UUID, expectedVersion int, updates map[string]interface{}) error {
	updates["version"] = expectedVersion + 1
	res := tx.Model(&domain.Request{}).
		Where("request_id = ? AND version = ?", requestID, expectedVersion).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("request %s version %d: %w", requestID, expectedVersion, domain.ErrConflict)
	}
	return nil
}

func grantKarma(tx *gorm.DB, userID, requestID uuid.UUID, kind string, karma, credits, eco int) error {
	entry := domain.KarmaEntry{
		UserID:      userID,
		RequestID:   requestID,
		Kind:        kind,
		KarmaDelta:  karma,
		CreditDelta: credits,
		EcoDelta:    eco,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return err
	}
	return tx.Model(&domain.User{}).Where("user_id = ?", userID).Updates(map[string]interface{}{
		"karma_score":    gorm.Expr("karma_score + ?", karma),
		"campus_credits": gorm.Expr("campus_credits + ?", credits),
		"eco_impact":     gorm.Expr("eco_impact + ?", eco),
	}).Error
}
