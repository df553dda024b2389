package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RequestEvent types, appended inside the same transaction as the lifecycle
// mutation they record. Consumers (notification feed, emails) read them after
// commit; the lifecycle never calls into them directly.
const (
	EventRequestCreated   = "REQUEST_CREATED"
	EventOfferSubmitted   = "OFFER_SUBMITTED"
	EventOfferAccepted    = "OFFER_ACCEPTED"
	EventOfferDeclined    = "OFFER_DECLINED"
	EventRequestCompleted = "REQUEST_COMPLETED"
	EventRequestCancelled = "REQUEST_CANCELLED"
)

type RequestEvent struct {
	EventID     uuid.UUID      `gorm:"column:event_id;type:uuid;primaryKey" json:"event_id"`
	RequestID   uuid.UUID      `gorm:"column:request_id;type:uuid;not null;index" json:"request_id"`
	EventType   string         `gorm:"column:event_type;type:varchar(30);not null" json:"event_type"`
	ActorUserID uuid.UUID      `gorm:"column:actor_user_id;type:uuid;not null" json:"actor_user_id"`
	EventData   datatypes.JSON `gorm:"column:event_data;type:json;not null" json:"event_data"`
	CreatedAt   time.Time      `json:"createdAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (RequestEvent) TableName() string {
	return "RequestEvents"
}

func (e *RequestEvent) BeforeCreate(tx *gorm.DB) error {
	if e.EventID == uuid.Nil {
		e.EventID = uuid.New()
	}
	return nil
}
