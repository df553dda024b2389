package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"need1-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// LoginInput carries credentials for password login.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserFinder abstracts user lookup for login.
type UserFinder interface {
	FindByEmail(email string) (*domain.User, error)
}

// GormUserFinder looks up users in the database.
type GormUserFinder struct {
	DB *gorm.DB
}

func (f *GormUserFinder) FindByEmail(email string) (*domain.User, error) {
	var user domain.User
	err := f.DB.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %s: %w", email, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

const (
	magicLinkPrefix = "magic:"
	magicLinkTTL    = 15 * time.Minute
)

// MagicLinkSender sends the sign-in email. Satisfied by emails.Service.
type MagicLinkSender interface {
	SendMagicLink(ctx context.Context, to, fullname, link string) error
}

// Service handles password login and magic-link sign-in.
type Service struct {
	Users   UserFinder
	DB      *gorm.DB
	Redis   *redis.Client
	Mailer  MagicLinkSender
	BaseURL string
}

// Login verifies credentials. Wrong email or password both return
// ErrUnauthorized so callers cannot probe for accounts.
func (s *Service) Login(in LoginInput) (*domain.User, error) {
	user, err := s.Users.FindByEmail(in.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("login: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)) != nil {
		return nil, fmt.Errorf("login: %w", domain.ErrUnauthorized)
	}
	return user, nil
}

// IssueMagicLink stores a one-time token in Redis and emails the link.
// Unknown emails succeed silently.
func (s *Service) IssueMagicLink(ctx context.Context, email string) error {
	user, err := s.Users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	token := uuid.New().String()
	key := magicLinkPrefix + token
	if err := s.Redis.Set(ctx, key, user.UserID.String(), magicLinkTTL).Err(); err != nil {
		return fmt.Errorf("store magic link: %w", err)
	}
	link := fmt.Sprintf("%s/auth/verify?token=%s", s.BaseURL, token)
	if s.Mailer != nil {
		if err := s.Mailer.SendMagicLink(ctx, user.Email, user.Fullname, link); err != nil {
			return fmt.Errorf("send magic link: %w", err)
		}
	}
	return nil
}

// VerifyMagicLink consumes a token and returns the user. The token is
// deleted on first use; reuse returns ErrUnauthorized. Verifying also marks
// the user as verified.
func (s *Service) VerifyMagicLink(ctx context.Context, token string) (*domain.User, error) {
	key := magicLinkPrefix + token
	userID, err := s.Redis.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("magic link: %w", domain.ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	s.Redis.Del(ctx, key)

	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("magic link: %w", domain.ErrUnauthorized)
	}
	var user domain.User
	if err := s.DB.Where("user_id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("magic link user: %w", domain.ErrNotFound)
		}
		return nil, err
	}
	if !user.IsVerified {
		if err := s.DB.Model(&domain.User{}).Where("user_id = ?", id).Update("is_verified", true).Error; err != nil {
			return nil, err
		}
		user.IsVerified = true
	}
	return &user, nil
}
