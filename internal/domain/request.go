package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Request statuses. Transitions: open -> in_progress -> completed,
// open/in_progress -> cancelled. completed and cancelled are terminal.
const (
	RequestOpen       = "open"
	RequestInProgress = "in_progress"
	RequestCompleted  = "completed"
	RequestCancelled  = "cancelled"
)

// Request is a posted need for help. BidCount is a denormalized count of
// attached offers; Version is the optimistic-lock counter bumped on every
// successful mutation.
type Request struct {
	RequestID   uuid.UUID      `gorm:"column:request_id;type:uuid;primaryKey" json:"request_id"`
	SeekerID    uuid.UUID      `gorm:"column:seeker_id;type:uuid;not null;index" json:"seeker_id"`
	Title       string         `gorm:"column:title;not null" json:"title"`
	Description string         `gorm:"column:description;not null" json:"description"`
	Category    string         `gorm:"column:category;not null" json:"category"`
	Budget      float64        `gorm:"column:budget;type:decimal(18,2);not null" json:"budget"`
	Location    string         `gorm:"column:location" json:"location"`
	IsRemote    bool           `gorm:"column:is_remote;not null;default:false" json:"is_remote"`
	Deadline    *time.Time     `gorm:"column:deadline" json:"deadline"`
	Status      string         `gorm:"column:status;type:varchar(20);not null;default:open" json:"status"`
	BidCount    int            `gorm:"column:bid_count;not null;default:0" json:"bid_count"`
	Tags        datatypes.JSON `gorm:"column:tags;type:json" json:"tags"`
	Version     int            `gorm:"column:version;not null;default:0" json:"version"`
	FlashDropID *uuid.UUID     `gorm:"column:flash_drop_id;type:uuid;index" json:"flash_drop_id"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Request) TableName() string {
	return "Requests"
}

func (r *Request) BeforeCreate(tx *gorm.DB) error {
	if r.RequestID == uuid.Nil {
		r.RequestID = uuid.New()
	}
	return nil
}

// Terminal reports whether the status admits no further transition.
func (r *Request) Terminal() bool {
	return r.Status == RequestCompleted || r.Status == RequestCancelled
}

// Overdue reports whether the deadline has passed. Advisory only; nothing in
// the lifecycle enforces it.
func (r *Request) Overdue(now time.Time) bool {
	return r.Deadline != nil && now.After(*r.Deadline) && r.Status == RequestOpen
}
