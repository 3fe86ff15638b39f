package services

import (
	"context"
	"errors"

	"aitools/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BookmarkService is the bookmarks MembershipStore.
type BookmarkService struct {
	db *gorm.DB
}

func NewBookmarkService(db *gorm.DB) *BookmarkService {
	return &BookmarkService{db: db}
}

func (s *BookmarkService) Add(ctx context.Context, userID, toolID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireTool(tx, toolID); err != nil {
			return err
		}
		bookmark := models.Bookmark{UserID: userID, ToolID: toolID}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&bookmark).Error
	})
}

func (s *BookmarkService) Remove(ctx context.Context, userID, toolID string) error {
	return s.db.WithContext(ctx).
		Where("user_id = ? AND tool_id = ?", userID, toolID).
		Delete(&models.Bookmark{}).Error
}

func (s *BookmarkService) ToolIDs(ctx context.Context, userID string) ([]string, error) {
	return toolIDs(s.db.WithContext(ctx).Model(&models.Bookmark{}), userID)
}

// Tools lists the user's bookmarked tools, most recently bookmarked first.
func (s *BookmarkService) Tools(ctx context.Context, userID string) ([]models.Tool, error) {
	var bookmarks []models.Bookmark
	err := s.db.WithContext(ctx).
		Preload("Tool").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&bookmarks).Error
	if err != nil {
		return nil, err
	}

	tools := make([]models.Tool, 0, len(bookmarks))
	for _, b := range bookmarks {
		if b.Tool.ID != "" {
			tools = append(tools, b.Tool)
		}
	}
	return tools, nil
}

// UpvoteService is the upvotes MembershipStore. It keeps tools.upvote_count
// in step with the upvotes table inside the same transaction.
type UpvoteService struct {
	db    *gorm.DB
	tools *ToolService
}

func NewUpvoteService(db *gorm.DB, tools *ToolService) *UpvoteService {
	return &UpvoteService{db: db, tools: tools}
}

func (s *UpvoteService) Add(ctx context.Context, userID, toolID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireTool(tx, toolID); err != nil {
			return err
		}
		upvote := models.Upvote{UserID: userID, ToolID: toolID}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&upvote)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil // already upvoted
		}
		return tx.Model(&models.Tool{}).Where("id = ?", toolID).
			UpdateColumn("upvote_count", gorm.Expr("upvote_count + ?", 1)).Error
	})
	if err != nil {
		return err
	}
	s.tools.Invalidate()
	return nil
}

func (s *UpvoteService) Remove(ctx context.Context, userID, toolID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND tool_id = ?", userID, toolID).Delete(&models.Upvote{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		return tx.Model(&models.Tool{}).Where("id = ? AND upvote_count > 0", toolID).
			UpdateColumn("upvote_count", gorm.Expr("upvote_count - ?", 1)).Error
	})
	if err != nil {
		return err
	}
	s.tools.Invalidate()
	return nil
}

func (s *UpvoteService) ToolIDs(ctx context.Context, userID string) ([]string, error) {
	return toolIDs(s.db.WithContext(ctx).Model(&models.Upvote{}), userID)
}

// Count reads the stored upvote total for one tool.
func (s *UpvoteService) Count(ctx context.Context, toolID string) (int, error) {
	var tool models.Tool
	if err := s.db.WithContext(ctx).Select("upvote_count").First(&tool, "id = ?", toolID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return tool.UpvoteCount, nil
}

func toolIDs(q *gorm.DB, userID string) ([]string, error) {
	var ids []string
	err := q.Where("user_id = ?", userID).Pluck("tool_id", &ids).Error
	return ids, err
}

func requireTool(tx *gorm.DB, toolID string) error {
	var count int64
	if err := tx.Model(&models.Tool{}).Where("id = ?", toolID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}
