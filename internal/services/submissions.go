package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"aitools/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubmissionService struct {
	db     *gorm.DB
	tools  *ToolService
	mailer *MailService
	now    func() time.Time
}

func NewSubmissionService(db *gorm.DB, tools *ToolService, mailer *MailService) *SubmissionService {
	return &SubmissionService{db: db, tools: tools, mailer: mailer, now: time.Now}
}

// SubmissionInput is the public "submit a tool" form.
type SubmissionInput struct {
	Name           string
	Description    string
	Category       string
	Link           string
	LogoURL        string
	SubmitterEmail string
}

func (in *SubmissionInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	in.Link = strings.TrimSpace(in.Link)
	in.LogoURL = strings.TrimSpace(in.LogoURL)
	in.SubmitterEmail = strings.TrimSpace(in.SubmitterEmail)
}

func (in SubmissionInput) Validate() error {
	if in.Name == "" {
		return invalid("name", "Tool name is required")
	}
	if in.Description == "" {
		return invalid("description", "Description is required")
	}
	if in.Category == "" {
		return invalid("category", "Please choose a category")
	}
	if !validURL(in.Link) {
		return invalid("link", "Please enter a valid URL")
	}
	if in.LogoURL != "" && !validURL(in.LogoURL) {
		return invalid("logo_url", "Please enter a valid logo URL")
	}
	if in.SubmitterEmail == "" {
		return invalid("submitter_email", "Your email is required")
	}
	if _, err := mail.ParseAddress(in.SubmitterEmail); err != nil {
		return invalid("submitter_email", "Please enter a valid email address")
	}
	return nil
}

// NormalizeCategory maps a free-text category onto a known one, or "other".
func NormalizeCategory(raw string) models.ToolCategory {
	c := models.ToolCategory(strings.ToLower(strings.TrimSpace(raw)))
	if c.Valid() {
		return c
	}
	return models.CategoryOther
}

// Create stores a new pending submission.
func (s *SubmissionService) Create(ctx context.Context, in SubmissionInput) (*models.Submission, error) {
	in.normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	sub := models.Submission{
		Name:           in.Name,
		Description:    in.Description,
		Category:       in.Category,
		Link:           in.Link,
		LogoURL:        in.LogoURL,
		SubmitterEmail: in.SubmitterEmail,
		Status:         models.SubmissionPending,
	}
	if err := s.db.WithContext(ctx).Create(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// List returns submissions newest first; an empty status means all of them.
func (s *SubmissionService) List(ctx context.Context, status models.SubmissionStatus) ([]models.Submission, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var subs []models.Submission
	err := q.Find(&subs).Error
	return subs, err
}

func (s *SubmissionService) CountPending(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Submission{}).Where("status = ?", models.SubmissionPending).Count(&count).Error
	return count, err
}

func (s *SubmissionService) Get(ctx context.Context, id string) (*models.Submission, error) {
	var sub models.Submission
	if err := s.db.WithContext(ctx).First(&sub, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sub, nil
}

// Approve turns a pending submission into a tool. Approving an already
// approved submission returns the tool created the first time.
func (s *SubmissionService) Approve(ctx context.Context, id, reviewerID string) (*models.Tool, error) {
	var (
		tool    models.Tool
		sub     models.Submission
		created bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockSubmission(tx, id, &sub); err != nil {
			return err
		}

		if sub.Status == models.SubmissionApproved && sub.ToolID != nil {
			return tx.First(&tool, "id = ?", *sub.ToolID).Error
		}
		if !sub.Status.CanTransitionTo(models.SubmissionApproved) {
			return ErrInvalidTransition
		}

		tool = models.Tool{
			Name:        sub.Name,
			Description: sub.Description,
			Category:    NormalizeCategory(sub.Category),
			Link:        sub.Link,
			LogoURL:     sub.LogoURL,
		}
		if err := tx.Create(&tool).Error; err != nil {
			return fmt.Errorf("create tool: %w", err)
		}

		now := s.now()
		if err := tx.Model(&sub).Updates(map[string]interface{}{
			"status":      models.SubmissionApproved,
			"reviewed_by": reviewerID,
			"reviewed_at": now,
			"tool_id":     tool.ID,
		}).Error; err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if created {
		s.tools.Invalidate()
		s.mailer.SendSubmissionApproved(sub.SubmitterEmail, sub.Name, tool.ID)
	}
	return &tool, nil
}

// Reject marks a pending submission rejected. Rejecting twice is a no-op.
func (s *SubmissionService) Reject(ctx context.Context, id, reviewerID string) (*models.Submission, error) {
	var (
		sub     models.Submission
		changed bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockSubmission(tx, id, &sub); err != nil {
			return err
		}
		if sub.Status == models.SubmissionRejected {
			return nil
		}
		if !sub.Status.CanTransitionTo(models.SubmissionRejected) {
			return ErrInvalidTransition
		}

		now := s.now()
		if err := tx.Model(&sub).Updates(map[string]interface{}{
			"status":      models.SubmissionRejected,
			"reviewed_by": reviewerID,
			"reviewed_at": now,
		}).Error; err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.mailer.SendSubmissionRejected(sub.SubmitterEmail, sub.Name)
	}
	return &sub, nil
}

func lockSubmission(tx *gorm.DB, id string, sub *models.Submission) error {
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(sub, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
