package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User is a campus marketplace account. Karma, eco impact and campus credits
// are denormalized counters maintained by the request lifecycle; the ledger of
// how they accrued lives in KarmaEntries.
type User struct {
	UserID         uuid.UUID      `gorm:"column:user_id;type:uuid;primaryKey" json:"user_id"`
	Fullname       string         `gorm:"column:fullname;not null" json:"fullname"`
	Email          string         `gorm:"column:email;not null;uniqueIndex" json:"email"`
	PasswordHash   string         `gorm:"column:password_hash" json:"-"`
	AvatarURL      string         `gorm:"column:avatar_url" json:"avatar_url"`
	Major          string         `gorm:"column:major" json:"major"`
	GraduationYear int            `gorm:"column:graduation_year" json:"graduation_year"`
	Skills         datatypes.JSON `gorm:"column:skills;type:json" json:"skills"`
	IsVerified     bool           `gorm:"column:is_verified;not null;default:false" json:"is_verified"`
	KarmaScore     int            `gorm:"column:karma_score;not null;default:0" json:"karma_score"`
	EcoImpact      int            `gorm:"column:eco_impact;not null;default:0" json:"eco_impact"`
	CampusCredits  int            `gorm:"column:campus_credits;not null;default:0" json:"campus_credits"`
	Role           string         `gorm:"column:role;not null;default:student" json:"role"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "Users"
}

// BeforeCreate sets UUID if not set (for DBs without gen_random_uuid).
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UserID == uuid.Nil {
		u.UserID = uuid.New()
	}
	return nil
}
