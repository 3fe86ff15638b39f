package models

import (
	"time"

	"gorm.io/gorm"
)

type Upvote struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:36;not null;index;uniqueIndex:idx_upvote_user_tool" json:"user_id"`
	ToolID    string    `gorm:"size:36;not null;index;uniqueIndex:idx_upvote_user_tool" json:"tool_id"`
	Tool      Tool      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *Upvote) BeforeCreate(tx *gorm.DB) error {
	assignID(&u.ID)
	return nil
}
