package services

import (
	"context"
	"strings"

	"aitools/internal/catalog"
	"aitools/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxReviewLength = 2000

type ReviewService struct {
	db    *gorm.DB
	tools *ToolService
}

func NewReviewService(db *gorm.DB, tools *ToolService) *ReviewService {
	return &ReviewService{db: db, tools: tools}
}

// ValidateReview checks a rating before anything is sent to the database.
func ValidateReview(rating int, text string) error {
	if rating == 0 {
		return invalid("rating", "Please select a rating")
	}
	if rating < 1 || rating > 5 {
		return invalid("rating", "Rating must be between 1 and 5")
	}
	if len([]rune(text)) > maxReviewLength {
		return invalid("review_text", "Review is too long")
	}
	return nil
}

// Submit creates the user's review of a tool or replaces the existing one,
// then recomputes the tool's review_count and average_rating.
func (s *ReviewService) Submit(ctx context.Context, userID, toolID string, rating int, text string) (*models.Review, error) {
	if userID == "" {
		return nil, catalog.ErrSignInRequired
	}
	text = strings.TrimSpace(text)
	if err := ValidateReview(rating, text); err != nil {
		return nil, err
	}

	var review models.Review
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireTool(tx, toolID); err != nil {
			return err
		}

		row := models.Review{UserID: userID, ToolID: toolID, Rating: rating, ReviewText: text}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "tool_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"rating", "review_text", "updated_at"}),
		}).Create(&row).Error
		if err != nil {
			return err
		}

		// the upsert may have kept an older row id, read back what is stored
		if err := tx.Where("user_id = ? AND tool_id = ?", userID, toolID).First(&review).Error; err != nil {
			return err
		}
		return refreshReviewStats(tx, toolID)
	})
	if err != nil {
		return nil, err
	}
	s.tools.Invalidate()
	return &review, nil
}

func refreshReviewStats(tx *gorm.DB, toolID string) error {
	var stats struct {
		Count   int64
		Average float64
	}
	err := tx.Model(&models.Review{}).
		Select("COUNT(*) AS count, COALESCE(AVG(rating), 0) AS average").
		Where("tool_id = ?", toolID).
		Scan(&stats).Error
	if err != nil {
		return err
	}
	return tx.Model(&models.Tool{}).Where("id = ?", toolID).Updates(map[string]interface{}{
		"review_count":   stats.Count,
		"average_rating": stats.Average,
	}).Error
}

// ForTool lists a tool's reviews, newest first, with their authors.
func (s *ReviewService) ForTool(ctx context.Context, toolID string) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("tool_id = ?", toolID).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

// ByUser returns the user's review of a tool, or nil if there is none.
func (s *ReviewService) ByUser(ctx context.Context, userID, toolID string) (*models.Review, error) {
	if userID == "" {
		return nil, nil
	}
	var reviews []models.Review
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND tool_id = ?", userID, toolID).
		Limit(1).
		Find(&reviews).Error
	if err != nil || len(reviews) == 0 {
		return nil, err
	}
	return &reviews[0], nil
}
