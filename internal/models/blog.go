package models

import (
	"time"

	"gorm.io/gorm"
)

type BlogPost struct {
	ID            string     `gorm:"primaryKey;size:36" json:"id"`
	Title         string     `gorm:"not null" json:"title"`
	Slug          string     `gorm:"uniqueIndex;size:191;not null" json:"slug"`
	Excerpt       string     `gorm:"type:text" json:"excerpt"`
	Content       string     `gorm:"type:text;not null" json:"content"` // Markdown
	CoverImageURL string     `json:"cover_image_url"`
	AuthorID      *string    `gorm:"size:36" json:"author_id"`
	Published     bool       `gorm:"default:false;index" json:"published"`
	PublishedAt   *time.Time `json:"published_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (p *BlogPost) BeforeCreate(tx *gorm.DB) error {
	assignID(&p.ID)
	return nil
}
