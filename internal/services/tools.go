package services

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"aitools/internal/models"
	"aitools/internal/utils"

	"gorm.io/gorm"
)

const toolsCacheKey = "catalog:tools:all"

// ToolService owns the tools table and the cached catalogue list.
type ToolService struct {
	db    *gorm.DB
	cache *utils.Cache[[]models.Tool]
	ttl   time.Duration
}

func NewToolService(db *gorm.DB, cache *utils.Cache[[]models.Tool], ttl time.Duration) *ToolService {
	return &ToolService{db: db, cache: cache, ttl: ttl}
}

// All returns every tool, newest first. The result is shared; callers must
// not modify it.
func (s *ToolService) All(ctx context.Context) ([]models.Tool, error) {
	if tools, ok := s.cache.Get(toolsCacheKey); ok {
		return tools, nil
	}

	var tools []models.Tool
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&tools).Error; err != nil {
		return nil, err
	}
	s.cache.Set(toolsCacheKey, tools, s.ttl)
	return tools, nil
}

// Invalidate drops the cached list after any write that changes what the
// catalogue shows.
func (s *ToolService) Invalidate() {
	s.cache.Delete(toolsCacheKey)
}

func (s *ToolService) Get(ctx context.Context, id string) (*models.Tool, error) {
	var tool models.Tool
	if err := s.db.WithContext(ctx).First(&tool, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &tool, nil
}

func (s *ToolService) ByIDs(ctx context.Context, ids []string) ([]models.Tool, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var tools []models.Tool
	err := s.db.WithContext(ctx).Where("id IN ?", ids).Order("name").Find(&tools).Error
	return tools, err
}

// ToolInput is the admin form for a tool.
type ToolInput struct {
	Name          string
	Description   string
	Category      string
	Link          string
	AffiliateLink string
	LogoURL       string
	Pricing       string
	Features      []string
	Featured      bool
}

func (in *ToolInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.ToLower(strings.TrimSpace(in.Category))
	in.Link = strings.TrimSpace(in.Link)
	in.AffiliateLink = strings.TrimSpace(in.AffiliateLink)
	in.LogoURL = strings.TrimSpace(in.LogoURL)
	in.Pricing = strings.ToLower(strings.TrimSpace(in.Pricing))
}

func (in ToolInput) Validate() error {
	if in.Name == "" {
		return invalid("name", "Name is required")
	}
	if in.Description == "" {
		return invalid("description", "Description is required")
	}
	if !models.ToolCategory(in.Category).Valid() {
		return invalid("category", "Please choose a category")
	}
	if !validURL(in.Link) {
		return invalid("link", "Please enter a valid URL")
	}
	if in.AffiliateLink != "" && !validURL(in.AffiliateLink) {
		return invalid("affiliate_link", "Please enter a valid affiliate URL")
	}
	if in.LogoURL != "" && !validImageURL(in.LogoURL) {
		return invalid("logo_url", "Please enter a valid logo URL")
	}
	return nil
}

func validURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// validImageURL also accepts images served by the local /img proxy
func validImageURL(raw string) bool {
	if strings.HasPrefix(raw, "/img/") {
		return !strings.Contains(raw[len("/img/"):], "/")
	}
	return validURL(raw)
}

func (in ToolInput) apply(tool *models.Tool) {
	tool.Name = in.Name
	tool.Description = in.Description
	tool.Category = models.ToolCategory(in.Category)
	tool.Link = in.Link
	tool.AffiliateLink = in.AffiliateLink
	tool.LogoURL = in.LogoURL
	tool.Pricing = in.Pricing
	tool.Features = in.Features
	tool.Featured = in.Featured
}

func (s *ToolService) Create(ctx context.Context, in ToolInput) (*models.Tool, error) {
	in.normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var tool models.Tool
	in.apply(&tool)
	if err := s.db.WithContext(ctx).Create(&tool).Error; err != nil {
		return nil, err
	}
	s.Invalidate()
	return &tool, nil
}

func (s *ToolService) Update(ctx context.Context, id string, in ToolInput) (*models.Tool, error) {
	in.normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	tool, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(tool)
	// Select("*") so that clearing a field or unsetting featured is written too
	if err := s.db.WithContext(ctx).Model(tool).Select("*").Omit("id", "created_at", "upvote_count", "review_count", "average_rating", "click_count").Updates(tool).Error; err != nil {
		return nil, err
	}
	s.Invalidate()
	return tool, nil
}

// SetFeatured flips the featured flag from the admin table.
func (s *ToolService) SetFeatured(ctx context.Context, id string, featured bool) error {
	res := s.db.WithContext(ctx).Model(&models.Tool{}).Where("id = ?", id).Update("featured", featured)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	s.Invalidate()
	return nil
}

// Delete removes a tool with its bookmarks, upvotes, reviews and clicks.
func (s *ToolService) Delete(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, dependent := range []interface{}{&models.Bookmark{}, &models.Upvote{}, &models.Review{}, &models.ToolClick{}} {
			if err := tx.Where("tool_id = ?", id).Delete(dependent).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&models.Tool{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.Invalidate()
	return nil
}

// CategoryService manages the category display metadata.
type CategoryService struct {
	db *gorm.DB
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{db: db}
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := s.db.WithContext(ctx).Order("name").Find(&categories).Error
	return categories, err
}

type CategoryInput struct {
	Name        string
	Slug        string
	Description string
	Icon        string
}

func (in *CategoryInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Icon = strings.TrimSpace(in.Icon)
	if in.Name == "" {
		return invalid("name", "Name is required")
	}
	in.Slug = utils.Slugify(in.Slug)
	if in.Slug == "" {
		in.Slug = utils.Slugify(in.Name)
	}
	if in.Slug == "" {
		return invalid("slug", "Slug is required")
	}
	return nil
}

func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*models.Category, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	category := models.Category{Name: in.Name, Slug: in.Slug, Description: in.Description, Icon: in.Icon}
	if err := s.db.WithContext(ctx).Create(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, invalid("slug", "A category with this slug already exists")
		}
		return nil, err
	}
	return &category, nil
}

func (s *CategoryService) Update(ctx context.Context, id string, in CategoryInput) error {
	if err := in.normalize(); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Updates(map[string]interface{}{
		"name":        in.Name,
		"slug":        in.Slug,
		"description": in.Description,
		"icon":        in.Icon,
	})
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return invalid("slug", "A category with this slug already exists")
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *CategoryService) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.Category{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
