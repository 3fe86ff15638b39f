package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"aitools/internal/models"
	"aitools/internal/utils"

	"gorm.io/gorm"
)

type BlogService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewBlogService(db *gorm.DB) *BlogService {
	return &BlogService{db: db, now: time.Now}
}

// BlogInput is the admin post editor form.
type BlogInput struct {
	Title         string
	Slug          string
	Excerpt       string
	Content       string
	CoverImageURL string
	Published     bool
}

func (in *BlogInput) normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Excerpt = strings.TrimSpace(in.Excerpt)
	in.CoverImageURL = strings.TrimSpace(in.CoverImageURL)
	if in.Title == "" {
		return invalid("title", "Title is required")
	}
	if strings.TrimSpace(in.Content) == "" {
		return invalid("content", "Content is required")
	}
	in.Slug = utils.Slugify(in.Slug)
	if in.Slug == "" {
		in.Slug = utils.Slugify(in.Title)
	}
	if in.Slug == "" {
		return invalid("slug", "Slug is required")
	}
	if in.Excerpt == "" {
		in.Excerpt = utils.MarkdownExcerpt(in.Content, 200)
	}
	if in.CoverImageURL != "" && !validImageURL(in.CoverImageURL) {
		return invalid("cover_image_url", "Please enter a valid image URL")
	}
	return nil
}

func (s *BlogService) slugTaken(tx *gorm.DB, slug, exceptID string) (bool, error) {
	var count int64
	q := tx.Model(&models.BlogPost{}).Where("slug = ?", slug)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

func (s *BlogService) Create(ctx context.Context, authorID string, in BlogInput) (*models.BlogPost, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	tx := s.db.WithContext(ctx)
	if taken, err := s.slugTaken(tx, in.Slug, ""); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrDuplicateSlug
	}

	post := models.BlogPost{
		Title:         in.Title,
		Slug:          in.Slug,
		Excerpt:       in.Excerpt,
		Content:       in.Content,
		CoverImageURL: in.CoverImageURL,
		Published:     in.Published,
	}
	if authorID != "" {
		post.AuthorID = &authorID
	}
	if in.Published {
		now := s.now()
		post.PublishedAt = &now
	}
	if err := tx.Create(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateSlug
		}
		return nil, err
	}
	return &post, nil
}

// Update saves the editor form. published_at is stamped when a post first
// goes live and cleared when it is unpublished.
func (s *BlogService) Update(ctx context.Context, id string, in BlogInput) (*models.BlogPost, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	tx := s.db.WithContext(ctx)
	if taken, err := s.slugTaken(tx, in.Slug, id); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrDuplicateSlug
	}

	switch {
	case in.Published && post.PublishedAt == nil:
		now := s.now()
		post.PublishedAt = &now
	case !in.Published:
		post.PublishedAt = nil
	}
	post.Title = in.Title
	post.Slug = in.Slug
	post.Excerpt = in.Excerpt
	post.Content = in.Content
	post.CoverImageURL = in.CoverImageURL
	post.Published = in.Published

	if err := tx.Save(post).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateSlug
		}
		return nil, err
	}
	return post, nil
}

func (s *BlogService) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.BlogPost{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *BlogService) Get(ctx context.Context, id string) (*models.BlogPost, error) {
	var post models.BlogPost
	if err := s.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

// All lists every post for the admin, newest first.
func (s *BlogService) All(ctx context.Context) ([]models.BlogPost, error) {
	var posts []models.BlogPost
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&posts).Error
	return posts, err
}

// Published lists live posts, most recently published first.
func (s *BlogService) Published(ctx context.Context, limit int) ([]models.BlogPost, error) {
	var posts []models.BlogPost
	q := s.db.WithContext(ctx).Where("published = ?", true).Order("published_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&posts).Error
	return posts, err
}

// BySlug finds a published post; drafts are not found.
func (s *BlogService) BySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	var post models.BlogPost
	err := s.db.WithContext(ctx).Where("slug = ? AND published = ?", slug, true).First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}
