package domain

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SafeSpot is a well-lit campus location suggested for in-person handoffs.
type SafeSpot struct {
	SpotID      uuid.UUID `gorm:"column:spot_id;type:uuid;primaryKey" json:"spot_id"`
	Name        string    `gorm:"column:name;not null" json:"name"`
	Latitude    float64   `gorm:"column:latitude;not null" json:"latitude"`
	Longitude   float64   `gorm:"column:longitude;not null" json:"longitude"`
	Description string    `gorm:"column:description" json:"description"`
	Hours       string    `gorm:"column:hours" json:"hours"`
}

func (SafeSpot) TableName() string {
	return "SafeSpots"
}

func (s *SafeSpot) BeforeCreate(tx *gorm.DB) error {
	if s.SpotID == uuid.Nil {
		s.SpotID = uuid.New()
	}
	return nil
}
