package models

import (
	"time"

	"gorm.io/gorm"
)

type NewsletterSubscriber struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	SubscribedAt time.Time `gorm:"autoCreateTime" json:"subscribed_at"`
}

func (s *NewsletterSubscriber) BeforeCreate(tx *gorm.DB) error {
	assignID(&s.ID)
	return nil
}
