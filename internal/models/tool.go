package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ToolCategory string

const (
	CategoryChatbot      ToolCategory = "chatbot"
	CategoryImage        ToolCategory = "image"
	CategoryVideo        ToolCategory = "video"
	CategoryAudio        ToolCategory = "audio"
	CategoryCode         ToolCategory = "code"
	CategoryProductivity ToolCategory = "productivity"
	CategoryWriting      ToolCategory = "writing"
	CategoryResearch     ToolCategory = "research"
	CategoryOther        ToolCategory = "other"
)

// ToolCategories lists every category in display order.
var ToolCategories = []ToolCategory{
	CategoryChatbot, CategoryImage, CategoryVideo, CategoryAudio, CategoryCode,
	CategoryProductivity, CategoryWriting, CategoryResearch, CategoryOther,
}

func (c ToolCategory) Valid() bool {
	for _, known := range ToolCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Pricing values shown in the catalogue filter.
const (
	PricingFree     = "free"
	PricingFreemium = "freemium"
	PricingPaid     = "paid"
)

var PricingOptions = []string{PricingFree, PricingFreemium, PricingPaid}

type Tool struct {
	ID            string                      `gorm:"primaryKey;size:36" json:"id"`
	Name          string                      `gorm:"not null" json:"name"`
	Description   string                      `gorm:"type:text;not null" json:"description"`
	Category      ToolCategory                `gorm:"size:20;not null;default:'other';index" json:"category"`
	Link          string                      `gorm:"not null" json:"link"`
	AffiliateLink string                      `json:"affiliate_link"`
	LogoURL       string                      `json:"logo_url"`
	Pricing       string                      `gorm:"size:20" json:"pricing"`
	Features      datatypes.JSONSlice[string] `json:"features"`
	UpvoteCount   int                         `gorm:"default:0" json:"upvote_count"`
	ReviewCount   int                         `gorm:"default:0" json:"review_count"`
	AverageRating float64                     `gorm:"default:0" json:"average_rating"`
	ClickCount    int                         `gorm:"default:0" json:"click_count"`
	Featured      bool                        `gorm:"default:false;index" json:"featured"`
	CreatedAt     time.Time                   `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`
}

func (t *Tool) BeforeCreate(tx *gorm.DB) error {
	assignID(&t.ID)
	return nil
}

// OutboundLink is where "Visit" sends people: the affiliate link when set.
func (t *Tool) OutboundLink() string {
	if t.AffiliateLink != "" {
		return t.AffiliateLink
	}
	return t.Link
}
