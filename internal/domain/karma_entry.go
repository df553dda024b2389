package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// KarmaEntry kinds.
const (
	KarmaRequestCompleted = "request_completed" // seeker side of a completed request
	KarmaRequestFulfilled = "request_fulfilled" // helper side of a completed request
)

// KarmaEntry is one row of the reputation ledger. User counters
// (karma_score, campus_credits, eco_impact) are the running sums.
type KarmaEntry struct {
	EntryID     uuid.UUID `gorm:"column:entry_id;type:uuid;primaryKey" json:"entry_id"`
	UserID      uuid.UUID `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	RequestID   uuid.UUID `gorm:"column:request_id;type:uuid;not null" json:"request_id"`
	Kind        string    `gorm:"column:kind;type:varchar(30);not null" json:"kind"`
	KarmaDelta  int       `gorm:"column:karma_delta;not null" json:"karma_delta"`
	CreditDelta int       `gorm:"column:credit_delta;not null" json:"credit_delta"`
	EcoDelta    int       `gorm:"column:eco_delta;not null" json:"eco_delta"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (KarmaEntry) TableName() string {
	return "KarmaEntries"
}

func (k *KarmaEntry) BeforeCreate(tx *gorm.DB) error {
	if k.EntryID == uuid.Nil {
		k.EntryID = uuid.New()
	}
	return nil
}
