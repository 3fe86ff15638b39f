package models

import (
	"time"

	"gorm.io/gorm"
)

// Category holds display metadata for a tool category; Slug matches ToolCategory.
type Category struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Slug        string    `gorm:"uniqueIndex;size:64;not null" json:"slug"`
	Description string    `json:"description"`
	Icon        string    `gorm:"size:32" json:"icon"`
	CreatedAt   time.Time `json:"created_at"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	assignID(&c.ID)
	return nil
}
