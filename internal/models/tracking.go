package models

import (
	"time"

	"gorm.io/gorm"
)

// PageVisit 页面访问记录，同一 IP 同一页面每天只记一次
type PageVisit struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	PagePath  string    `gorm:"not null;index:idx_visit_dedup" json:"page_path"`
	VisitorIP string    `gorm:"size:64;index:idx_visit_dedup" json:"visitor_ip"`
	UserAgent string    `gorm:"type:text" json:"user_agent"`
	Referrer  string    `gorm:"type:text" json:"referrer"`
	VisitedAt time.Time `gorm:"not null;index;index:idx_visit_dedup" json:"visited_at"`
}

func (v *PageVisit) BeforeCreate(tx *gorm.DB) error {
	assignID(&v.ID)
	return nil
}

// ToolClick 记录工具详情页的打开
type ToolClick struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	ToolID    string    `gorm:"size:36;not null;index" json:"tool_id"`
	Tool      Tool      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID    *string   `gorm:"size:36" json:"user_id"`
	ClickedAt time.Time `gorm:"not null;index" json:"clicked_at"`
}

func (c *ToolClick) BeforeCreate(tx *gorm.DB) error {
	assignID(&c.ID)
	return nil
}
