package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"aitools/internal/models"

	"gorm.io/gorm"
)

type NewsletterService struct {
	db     *gorm.DB
	mailer *MailService
}

func NewNewsletterService(db *gorm.DB, mailer *MailService) *NewsletterService {
	return &NewsletterService{db: db, mailer: mailer}
}

// Subscribe adds an email to the list. A repeat subscription returns
// ErrAlreadySubscribed.
func (s *NewsletterService) Subscribe(ctx context.Context, email string) (*models.NewsletterSubscriber, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, invalid("email", "Please enter your email")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, invalid("email", "Please enter a valid email address")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.NewsletterSubscriber{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrAlreadySubscribed
	}

	sub := models.NewsletterSubscriber{Email: email}
	if err := s.db.WithContext(ctx).Create(&sub).Error; err != nil {
		// lost a race with a concurrent subscribe
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadySubscribed
		}
		return nil, err
	}
	s.mailer.SendNewsletterWelcome(email)
	return &sub, nil
}

func (s *NewsletterService) List(ctx context.Context) ([]models.NewsletterSubscriber, error) {
	var subs []models.NewsletterSubscriber
	err := s.db.WithContext(ctx).Order("subscribed_at DESC").Find(&subs).Error
	return subs, err
}

func (s *NewsletterService) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.NewsletterSubscriber{}).Count(&count).Error
	return count, err
}
