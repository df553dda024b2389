package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Thread is a chat conversation scoped to one Request and two participants
// (the seeker and one helper). Messages to an expired thread are rejected;
// cancelling a request expires its threads immediately.
type Thread struct {
	ThreadID  uuid.UUID      `gorm:"column:thread_id;type:uuid;primaryKey" json:"thread_id"`
	RequestID uuid.UUID      `gorm:"column:request_id;type:uuid;not null;index" json:"request_id"`
	SeekerID  uuid.UUID      `gorm:"column:seeker_id;type:uuid;not null;index" json:"seeker_id"`
	HelperID  uuid.UUID      `gorm:"column:helper_id;type:uuid;not null;index" json:"helper_id"`
	ExpiresAt time.Time      `gorm:"column:expires_at;not null" json:"expires_at"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Thread) TableName() string {
	return "Threads"
}

func (t *Thread) BeforeCreate(tx *gorm.DB) error {
	if t.ThreadID == uuid.Nil {
		t.ThreadID = uuid.New()
	}
	return nil
}

// Expired reports whether the thread no longer accepts messages.
func (t *Thread) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// HasParticipant reports whether userID is one of the two parties.
func (t *Thread) HasParticipant(userID uuid.UUID) bool {
	return t.SeekerID == userID || t.HelperID == userID
}
