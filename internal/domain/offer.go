package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Offer statuses. pending -> accepted | rejected; both terminal. At most one
// offer per request is ever accepted.
const (
	OfferPending  = "pending"
	OfferAccepted = "accepted"
	OfferRejected = "rejected"
)

// Offer is a bid against a Request. Never deleted once decided.
type Offer struct {
	OfferID   uuid.UUID      `gorm:"column:offer_id;type:uuid;primaryKey" json:"offer_id"`
	RequestID uuid.UUID      `gorm:"column:request_id;type:uuid;not null;index" json:"request_id"`
	BidderID  uuid.UUID      `gorm:"column:bidder_id;type:uuid;not null;index" json:"bidder_id"`
	Amount    float64        `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	Message   string         `gorm:"column:message" json:"message"`
	Status    string         `gorm:"column:status;type:varchar(20);not null;default:pending" json:"status"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Offer) TableName() string {
	return "Offers"
}

func (o *Offer) BeforeCreate(tx *gorm.DB) error {
	if o.OfferID == uuid.Nil {
		o.OfferID = uuid.New()
	}
	return nil
}
