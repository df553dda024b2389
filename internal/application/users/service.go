package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"need1-backend/internal/domain"
	"need1-backend/internal/pkg/constants"
	"need1-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RegisterInput carries the fields needed to create an account.
type RegisterInput struct {
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Major    string `json:"major"`
	GradYear int    `json:"graduation_year"`
}

// UpdateProfileInput carries editable profile fields. Nil means unchanged.
type UpdateProfileInput struct {
	Fullname  *string  `json:"fullname"`
	Major     *string  `json:"major"`
	GradYear  *int     `json:"graduation_year"`
	AvatarURL *string  `json:"avatar_url"`
	Skills    []string `json:"skills"`
}

// Stats aggregates a user's marketplace activity.
type Stats struct {
	KarmaScore        int   `json:"karma_score"`
	EcoImpact         int   `json:"eco_impact"`
	CampusCredits     int   `json:"campus_credits"`
	RequestsCreated   int64 `json:"requests_created"`
	RequestsFulfilled int64 `json:"requests_fulfilled"`
	OffersSubmitted   int64 `json:"offers_submitted"`
}

// WelcomeSender sends the welcome email. Satisfied by emails.Service.
type WelcomeSender interface {
	SendWelcome(ctx context.Context, to, fullname string) error
}

// Service manages accounts and profiles.
type Service struct {
	DB     *gorm.DB
	Mailer WelcomeSender
}

// Register creates a user with a bcrypt-hashed password and the default
// student role.
func (s *Service) Register(in RegisterInput) (*domain.User, error) {
	if !validation.IsValidFullname(in.Fullname) {
		return nil, fmt.Errorf("fullname: %w", domain.ErrValidation)
	}
	if !validation.IsValidEmail(in.Email) {
		return nil, fmt.Errorf("email: %w", domain.ErrValidation)
	}
	if !validation.IsValidPassword(in.Password) {
		return nil, fmt.Errorf("password: %w", domain.ErrValidation)
	}

	var existing domain.User
	err := s.DB.Where("email = ?", in.Email).First(&existing).Error
	if err == nil {
		return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		Fullname:       in.Fullname,
		Email:          in.Email,
		PasswordHash:   string(hash),
		Major:          in.Major,
		GraduationYear: in.GradYear,
		Role:           constants.Student,
	}
	if err := s.DB.Create(&user).Error; err != nil {
		return nil, err
	}

	if s.Mailer != nil {
		if err := s.Mailer.SendWelcome(context.Background(), user.Email, user.Fullname); err != nil {
			log.Warn().Err(err).Str("email", user.Email).Msg("welcome email failed")
		}
	}
	return &user, nil
}

// GetByID returns a user by id.
func (s *Service) GetByID(userID uuid.UUID) (*domain.User, error) {
	var user domain.User
	err := s.DB.Where("user_id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile applies the provided fields to the caller's own profile.
func (s *Service) UpdateProfile(userID uuid.UUID, in UpdateProfileInput) (*domain.User, error) {
	user, err := s.GetByID(userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Fullname != nil {
		if !validation.IsValidFullname(*in.Fullname) {
			return nil, fmt.Errorf("fullname: %w", domain.ErrValidation)
		}
		updates["fullname"] = *in.Fullname
	}
	if in.Major != nil {
		updates["major"] = *in.Major
	}
	if in.GradYear != nil {
		updates["graduation_year"] = *in.GradYear
	}
	if in.AvatarURL != nil {
		updates["avatar_url"] = *in.AvatarURL
	}
	if in.Skills != nil {
		b, err := json.Marshal(in.Skills)
		if err != nil {
			return nil, err
		}
		updates["skills"] = datatypes.JSON(b)
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.DB.Model(&domain.User{}).Where("user_id = ?", userID).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetByID(userID)
}

// GetStats aggregates karma counters and activity counts.
func (s *Service) GetStats(userID uuid.UUID) (*Stats, error) {
	user, err := s.GetByID(userID)
	if err != nil {
		return nil, err
	}

	stats := Stats{
		KarmaScore:    user.KarmaScore,
		EcoImpact:     user.EcoImpact,
		CampusCredits: user.CampusCredits,
	}
	if err := s.DB.Model(&domain.Request{}).Where("seeker_id = ?", userID).Count(&stats.RequestsCreated).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&domain.KarmaEntry{}).
		Where("user_id = ? AND kind = ?", userID, domain.KarmaRequestFulfilled).
		Count(&stats.RequestsFulfilled).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&domain.Offer{}).Where("bidder_id = ?", userID).Count(&stats.OffersSubmitted).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

// UpdateRole assigns a role to a user. Admin only (enforced at the route).
func (s *Service) UpdateRole(userID uuid.UUID, role string) (*domain.User, error) {
	if !constants.IsValidRole(role) {
		return nil, fmt.Errorf("unknown role %q: %w", role, domain.ErrValidation)
	}
	user, err := s.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if err := s.DB.Model(&domain.User{}).Where("user_id = ?", userID).Update("role", role).Error; err != nil {
		return nil, err
	}
	user.Role = role
	return user, nil
}

// Remove soft-deletes a user. Admin only (enforced at the route).
func (s *Service) Remove(userID uuid.UUID) error {
	res := s.DB.Where("user_id = ?", userID).Delete(&domain.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}
	return nil
}
