package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FlashDrop is a time-boxed grouping of requests promoted together. Requests
// join via Request.FlashDropID; the drop has no lifecycle of its own beyond
// its end time.
type FlashDrop struct {
	DropID           uuid.UUID      `gorm:"column:drop_id;type:uuid;primaryKey" json:"drop_id"`
	Title            string         `gorm:"column:title;not null" json:"title"`
	Description      string         `gorm:"column:description" json:"description"`
	EndsAt           time.Time      `gorm:"column:ends_at;not null" json:"ends_at"`
	ParticipantCount int            `gorm:"column:participant_count;not null;default:0" json:"participant_count"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

func (FlashDrop) TableName() string {
	return "FlashDrops"
}

func (d *FlashDrop) BeforeCreate(tx *gorm.DB) error {
	if d.DropID == uuid.Nil {
		d.DropID = uuid.New()
	}
	return nil
}
