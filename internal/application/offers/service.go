package offers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"need1-backend/internal/application/events"
	"need1-backend/internal/application/requests"
	"need1-backend/internal/domain"
	"need1-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// SubmitInput carries the fields for a new offer.
type SubmitInput struct {
	RequestID uuid.UUID `json:"request_id"`
	Message   string    `json:"message"`
	Amount    float64   `json:"amount"`
}

// Policy holds the configurable lifecycle decisions.
type Policy struct {
	// AllowSelfBid lets a seeker bid on their own request.
	AllowSelfBid bool
	// AutoRejectSiblings rejects all other pending offers when one is
	// accepted.
	AutoRejectSiblings bool
}

// DefaultPolicy disallows self-bids and auto-rejects siblings on accept.
func DefaultPolicy() Policy {
	return Policy{AllowSelfBid: false, AutoRejectSiblings: true}
}

// OfferNotifier sends offer lifecycle emails: new-offer to the seeker,
// accepted/declined to the bidder. Satisfied by emails.Service.
type OfferNotifier interface {
	SendOfferNotification(ctx context.Context, to, fullname, requestTitle string) error
	SendOfferAccepted(ctx context.Context, to, fullname, requestTitle string) error
	SendOfferDeclined(ctx context.Context, to, fullname, requestTitle string) error
}

// Thread lifetime granted when an offer is accepted.
const threadLifetime = 7 * 24 * time.Hour

// Service manages offers against requests. All writes share the request's
// version guard so concurrent accepts cannot both win.
type Service struct {
	DB       *gorm.DB
	Requests *requests.Service
	Policy   Policy
	Notifier OfferNotifier
}

// Submit creates a pending offer on an open request and bumps its bid count.
// One pending offer per bidder per request.
func (s *Service) Submit(ctx context.Context, bidderID uuid.UUID, in SubmitInput) (*domain.Offer, error) {
	if !validation.IsNonEmpty(in.Message) {
		return nil, fmt.Errorf("message: %w", domain.ErrValidation)
	}
	if in.Amount < 0 {
		return nil, fmt.Errorf("amount: %w", domain.ErrValidation)
	}

	var offer domain.Offer
	var seeker domain.User
	var reqTitle string
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		req, err := requests.LoadForUpdate(tx, in.RequestID)
		if err != nil {
			return err
		}
		if req.Status != domain.RequestOpen {
			return fmt.Errorf("offer on %s request: %w", req.Status, domain.ErrInvalidState)
		}
		if !s.Policy.AllowSelfBid && req.SeekerID == bidderID {
			return fmt.Errorf("seeker cannot bid on own request: %w", domain.ErrValidation)
		}

		var existing int64
		if err := tx.Model(&domain.Offer{}).
			Where("request_id = ? AND bidder_id = ? AND status = ?", in.RequestID, bidderID, domain.OfferPending).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return fmt.Errorf("pending offer already exists: %w", domain.ErrConflict)
		}

		offer = domain.Offer{
			RequestID: in.RequestID,
			BidderID:  bidderID,
			Message:   in.Message,
			Amount:    in.Amount,
			Status:    domain.OfferPending,
		}
		if err := tx.Create(&offer).Error; err != nil {
			return err
		}

		if err := requests.GuardedUpdate(tx, req.RequestID, req.Version, map[string]interface{}{
			"bid_count": gorm.Expr("bid_count + 1"),
		}); err != nil {
			return err
		}

		if err := events.Append(tx, in.RequestID, domain.EventOfferSubmitted, bidderID, map[string]interface{}{
			"offer_id": offer.OfferID.String(),
			"amount":   in.Amount,
		}); err != nil {
			return err
		}

		reqTitle = req.Title
		return tx.Where("user_id = ?", req.SeekerID).First(&seeker).Error
	})
	if err != nil {
		return nil, err
	}
	s.Requests.Invalidate(ctx, in.RequestID)

	if s.Notifier != nil {
		if err := s.Notifier.SendOfferNotification(ctx, seeker.Email, seeker.Fullname, reqTitle); err != nil {
			log.Warn().Err(err).Str("request_id", in.RequestID.String()).Msg("offer notification failed")
		}
	}
	return &offer, nil
}

// Accept marks an offer accepted, rejects its pending siblings, moves the
// request to in_progress and opens a chat thread, all in one transaction.
// Only the seeker may accept. A stale version returns ErrConflict, so of two
// concurrent accepts exactly one wins.
func (s *Service) Accept(ctx context.Context, offerID, actorID uuid.UUID, expectedVersion int) (*domain.Offer, *domain.Thread, error) {
	var offer domain.Offer
	var thread domain.Thread
	var bidder domain.User
	var reqTitle string
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := loadOffer(tx, offerID, &offer); err != nil {
			return err
		}
		req, err := requests.LoadForUpdate(tx, offer.RequestID)
		if err != nil {
			return err
		}
		if req.SeekerID != actorID {
			return fmt.Errorf("only the seeker may accept: %w", domain.ErrUnauthorized)
		}
		if offer.Status != domain.OfferPending {
			return fmt.Errorf("accept %s offer: %w", offer.Status, domain.ErrInvalidState)
		}
		if req.Status != domain.RequestOpen {
			return fmt.Errorf("accept on %s request: %w", req.Status, domain.ErrInvalidState)
		}

		if err := requests.GuardedUpdate(tx, req.RequestID, expectedVersion, map[string]interface{}{
			"status": domain.RequestInProgress,
		}); err != nil {
			return err
		}

		if err := tx.Model(&domain.Offer{}).
			Where("offer_id = ?", offerID).
			Update("status", domain.OfferAccepted).Error; err != nil {
			return err
		}
		offer.Status = domain.OfferAccepted

		if s.Policy.AutoRejectSiblings {
			if err := tx.Model(&domain.Offer{}).
				Where("request_id = ? AND offer_id <> ? AND status = ?", offer.RequestID, offerID, domain.OfferPending).
				Update("status", domain.OfferRejected).Error; err != nil {
				return err
			}
		}

		thread = domain.Thread{
			RequestID: offer.RequestID,
			SeekerID:  req.SeekerID,
			HelperID:  offer.BidderID,
			ExpiresAt: time.Now().Add(threadLifetime),
		}
		if err := tx.Create(&thread).Error; err != nil {
			return err
		}

		if err := events.Append(tx, offer.RequestID, domain.EventOfferAccepted, actorID, map[string]interface{}{
			"offer_id":  offerID.String(),
			"bidder_id": offer.BidderID.String(),
			"thread_id": thread.ThreadID.String(),
		}); err != nil {
			return err
		}

		reqTitle = req.Title
		return tx.Where("user_id = ?", offer.BidderID).First(&bidder).Error
	})
	if err != nil {
		return nil, nil, err
	}
	s.Requests.Invalidate(ctx, offer.RequestID)

	if s.Notifier != nil {
		if err := s.Notifier.SendOfferAccepted(ctx, bidder.Email, bidder.Fullname, reqTitle); err != nil {
			log.Warn().Err(err).Str("offer_id", offerID.String()).Msg("offer accepted notification failed")
		}
	}
	return &offer, &thread, nil
}

// Decline marks a pending offer rejected. Only the seeker may decline. The
// request stays open; its version still advances so readers see the change.
func (s *Service) Decline(ctx context.Context, offerID, actorID uuid.UUID, expectedVersion int) (*domain.Offer, error) {
	var offer domain.Offer
	var bidder domain.User
	var reqTitle string
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := loadOffer(tx, offerID, &offer); err != nil {
			return err
		}
		req, err := requests.LoadForUpdate(tx, offer.RequestID)
		if err != nil {
			return err
		}
		if req.SeekerID != actorID {
			return fmt.Errorf("only the seeker may decline: %w", domain.ErrUnauthorized)
		}
		if offer.Status != domain.OfferPending {
			return fmt.Errorf("decline %s offer: %w", offer.Status, domain.ErrInvalidState)
		}
		if req.Terminal() {
			return fmt.Errorf("decline on %s request: %w", req.Status, domain.ErrInvalidState)
		}

		if err := requests.GuardedUpdate(tx, req.RequestID, expectedVersion, map[string]interface{}{}); err != nil {
			return err
		}

		if err := tx.Model(&domain.Offer{}).
			Where("offer_id = ?", offerID).
			Update("status", domain.OfferRejected).Error; err != nil {
			return err
		}
		offer.Status = domain.OfferRejected

		if err := events.Append(tx, offer.RequestID, domain.EventOfferDeclined, actorID, map[string]interface{}{
			"offer_id": offerID.String(),
		}); err != nil {
			return err
		}

		reqTitle = req.Title
		return tx.Where("user_id = ?", offer.BidderID).First(&bidder).Error
	})
	if err != nil {
		return nil, err
	}
	s.Requests.Invalidate(ctx, offer.RequestID)

	if s.Notifier != nil {
		if err := s.Notifier.SendOfferDeclined(ctx, bidder.Email, bidder.Fullname, reqTitle); err != nil {
			log.Warn().Err(err).Str("offer_id", offerID.String()).Msg("offer declined notification failed")
		}
	}
	return &offer, nil
}

// ListByRequest returns a request's offers, newest first. Only the seeker
// sees the full list.
func (s *Service) ListByRequest(requestID, actorID uuid.UUID) ([]domain.Offer, error) {
	var req domain.Request
	err := s.DB.Where("request_id = ?", requestID).First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("request %s: %w", requestID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if req.SeekerID != actorID {
		return nil, fmt.Errorf("only the seeker may list offers: %w", domain.ErrUnauthorized)
	}

	var offers []domain.Offer
	if err := s.DB.Where("request_id = ?", requestID).Order("created_at DESC").Find(&offers).Error; err != nil {
		return nil, err
	}
	return offers, nil
}

// ListByBidder returns every offer the user has submitted, newest first.
func (s *Service) ListByBidder(bidderID uuid.UUID) ([]domain.Offer, error) {
	var offers []domain.Offer
	if err := s.DB.Where("bidder_id = ?", bidderID).Order("created_at DESC").Find(&offers).Error; err != nil {
		return nil, err
	}
	return offers, nil
}

func loadOffer(tx *gorm.DB, offerID uuid.UUID, out *domain.Offer) error {
	err := tx.Where("offer_id = ?", offerID).First(out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("offer %s: %w", offerID, domain.ErrNotFound)
	}
	return err
}
