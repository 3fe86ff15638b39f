package services

import (
	"context"
	"strings"
	"time"

	"aitools/internal/models"

	"gorm.io/gorm"
)

type VisitStats struct {
	Total          int64
	UniqueVisitors int64
	Today          int64
	ThisWeek       int64
	ThisMonth      int64
}

type AnalyticsService struct {
	db *gorm.DB
}

func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{db: db}
}

// Stats counts page visits. Windows start at local midnight today, seven
// days before that and one calendar month before that.
func (s *AnalyticsService) Stats(ctx context.Context, now time.Time) (*VisitStats, error) {
	q := func() *gorm.DB { return s.db.WithContext(ctx).Model(&models.PageVisit{}) }
	today := startOfDay(now)

	var stats VisitStats
	if err := q().Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := q().Where("visitor_ip <> ''").Distinct("visitor_ip").Count(&stats.UniqueVisitors).Error; err != nil {
		return nil, err
	}
	if err := q().Where("visited_at >= ?", today).Count(&stats.Today).Error; err != nil {
		return nil, err
	}
	if err := q().Where("visited_at >= ?", today.AddDate(0, 0, -7)).Count(&stats.ThisWeek).Error; err != nil {
		return nil, err
	}
	if err := q().Where("visited_at >= ?", today.AddDate(0, -1, 0)).Count(&stats.ThisMonth).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

// Recent returns the latest visits, newest first.
func (s *AnalyticsService) Recent(ctx context.Context, limit int) ([]models.PageVisit, error) {
	var visits []models.PageVisit
	err := s.db.WithContext(ctx).Order("visited_at DESC").Limit(limit).Find(&visits).Error
	return visits, err
}

type PageCount struct {
	PagePath string
	Visits   int64
}

// TopPages ranks paths by visit count.
func (s *AnalyticsService) TopPages(ctx context.Context, limit int) ([]PageCount, error) {
	var pages []PageCount
	err := s.db.WithContext(ctx).Model(&models.PageVisit{}).
		Select("page_path, COUNT(*) AS visits").
		Group("page_path").
		Order("visits DESC, page_path").
		Limit(limit).
		Scan(&pages).Error
	return pages, err
}

// TopTools ranks tools by recorded detail-page opens.
func (s *AnalyticsService) TopTools(ctx context.Context, limit int) ([]models.Tool, error) {
	var tools []models.Tool
	err := s.db.WithContext(ctx).
		Where("click_count > 0").
		Order("click_count DESC, name").
		Limit(limit).
		Find(&tools).Error
	return tools, err
}

// BrowserFromUserAgent names the browser family of a User-Agent header.
// Families are checked in a fixed order, so Chromium-based Edge reports as Chrome.
func BrowserFromUserAgent(ua string) string {
	switch {
	case ua == "":
		return "Unknown"
	case strings.Contains(ua, "Chrome"):
		return "Chrome"
	case strings.Contains(ua, "Firefox"):
		return "Firefox"
	case strings.Contains(ua, "Safari"):
		return "Safari"
	case strings.Contains(ua, "Edge"):
		return "Edge"
	default:
		return "Unknown"
	}
}
