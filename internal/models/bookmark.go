package models

import (
	"time"

	"gorm.io/gorm"
)

// Bookmark 用户收藏的工具
type Bookmark struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:36;not null;index;uniqueIndex:idx_bookmark_user_tool" json:"user_id"`
	ToolID    string    `gorm:"size:36;not null;index;uniqueIndex:idx_bookmark_user_tool" json:"tool_id"`
	Tool      Tool      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"tool"`
	CreatedAt time.Time `json:"created_at"`
}

func (b *Bookmark) BeforeCreate(tx *gorm.DB) error {
	assignID(&b.ID)
	return nil
}
