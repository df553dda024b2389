package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message is one chat message in a Thread. Append-only; ordering is by
// creation timestamp.
type Message struct {
	MessageID uuid.UUID `gorm:"column:message_id;type:uuid;primaryKey" json:"message_id"`
	ThreadID  uuid.UUID `gorm:"column:thread_id;type:uuid;not null;index" json:"thread_id"`
	SenderID  uuid.UUID `gorm:"column:sender_id;type:uuid;not null" json:"sender_id"`
	Body      string    `gorm:"column:body;not null" json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Message) TableName() string {
	return "Messages"
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.MessageID == uuid.Nil {
		m.MessageID = uuid.New()
	}
	return nil
}
