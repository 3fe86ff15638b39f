package models

import (
	"time"

	"gorm.io/gorm"
)

// Review is one user's rating of one tool. A second submission replaces the first.
type Review struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	UserID     string    `gorm:"size:36;not null;index;uniqueIndex:idx_review_user_tool" json:"user_id"`
	User       User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	ToolID     string    `gorm:"size:36;not null;index;uniqueIndex:idx_review_user_tool" json:"tool_id"`
	Tool       Tool      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Rating     int       `gorm:"not null" json:"rating"` // 1..5
	ReviewText string    `gorm:"type:text" json:"review_text"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	assignID(&r.ID)
	return nil
}
