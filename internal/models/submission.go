package models

import (
	"time"

	"gorm.io/gorm"
)

type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "pending"
	SubmissionApproved SubmissionStatus = "approved"
	SubmissionRejected SubmissionStatus = "rejected"
)

// CanTransitionTo reports whether moving to next is allowed.
// pending may go anywhere final; a final state only "moves" to itself.
func (s SubmissionStatus) CanTransitionTo(next SubmissionStatus) bool {
	if s == SubmissionPending {
		return next == SubmissionApproved || next == SubmissionRejected
	}
	return s == next
}

type Submission struct {
	ID             string           `gorm:"primaryKey;size:36" json:"id"`
	Name           string           `gorm:"not null" json:"name"`
	Description    string           `gorm:"type:text;not null" json:"description"`
	Category       string           `gorm:"size:64" json:"category"` // free text, normalised on approval
	Link           string           `gorm:"not null" json:"link"`
	LogoURL        string           `json:"logo_url"`
	SubmitterEmail string           `json:"submitter_email"`
	Status         SubmissionStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	ReviewedBy     *string          `gorm:"size:36" json:"reviewed_by"`
	ReviewedAt     *time.Time       `json:"reviewed_at"`
	ToolID         *string          `gorm:"size:36" json:"tool_id"` // set once approved
	CreatedAt      time.Time        `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	assignID(&s.ID)
	return nil
}
