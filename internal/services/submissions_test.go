package services

import (
	"testing"

	"aitools/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSubmissionService(t *testing.T) (*SubmissionService, *ToolService) {
	database := setupTestDB(t)
	tools := newToolService(t, database)
	return NewSubmissionService(database, tools, disabledMailer()), tools
}

func validSubmission() SubmissionInput {
	return SubmissionInput{
		Name:           "Summarizer",
		Description:    "Summarizes long documents",
		Category:       "Research",
		Link:           "https://summarizer.example.com",
		SubmitterEmail: "maker@example.com",
	}
}

func TestSubmissionCreateValidates(t *testing.T) {
	subs, _ := newSubmissionService(t)

	in := validSubmission()
	in.Link = "summarizer"
	_, err := subs.Create(ctx, in)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "link", verr.Field)

	in = validSubmission()
	in.SubmitterEmail = "not-an-email"
	_, err = subs.Create(ctx, in)
	require.ErrorAs(t, err, &verr)

	required := map[string]func(*SubmissionInput){
		"category":        func(in *SubmissionInput) { in.Category = "  " },
		"submitter_email": func(in *SubmissionInput) { in.SubmitterEmail = "" },
	}
	for field, clear := range required {
		in = validSubmission()
		clear(&in)
		_, err = subs.Create(ctx, in)
		require.ErrorAs(t, err, &verr, field)
		assert.Equal(t, field, verr.Field)
	}

	var stored int64
	require.NoError(t, subs.db.Model(&models.Submission{}).Count(&stored).Error)
	assert.Zero(t, stored, "invalid submissions are never written")

	sub, err := subs.Create(ctx, validSubmission())
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionPending, sub.Status)

	pending, err := subs.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pending)
}

func TestApproveCreatesToolOnce(t *testing.T) {
	subs, tools := newSubmissionService(t)
	sub, err := subs.Create(ctx, validSubmission())
	require.NoError(t, err)

	tool, err := subs.Approve(ctx, sub.ID, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, "Summarizer", tool.Name)
	assert.Equal(t, models.CategoryResearch, tool.Category)

	again, err := subs.Approve(ctx, sub.ID, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, tool.ID, again.ID)

	all, err := tools.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	stored, err := subs.Get(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionApproved, stored.Status)
	require.NotNil(t, stored.ToolID)
	assert.Equal(t, tool.ID, *stored.ToolID)
	require.NotNil(t, stored.ReviewedBy)
	assert.Equal(t, "admin-1", *stored.ReviewedBy)
	assert.NotNil(t, stored.ReviewedAt)

	_, err = subs.Reject(ctx, sub.ID, "admin-1")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestRejectIsFinal(t *testing.T) {
	subs, tools := newSubmissionService(t)
	sub, err := subs.Create(ctx, validSubmission())
	require.NoError(t, err)

	rejected, err := subs.Reject(ctx, sub.ID, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionRejected, rejected.Status)

	_, err = subs.Reject(ctx, sub.ID, "admin-1")
	require.NoError(t, err)

	_, err = subs.Approve(ctx, sub.ID, "admin-1")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	all, err := tools.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	list, err := subs.List(ctx, models.SubmissionRejected)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	list, err = subs.List(ctx, models.SubmissionPending)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestApproveUnknownSubmission(t *testing.T) {
	subs, _ := newSubmissionService(t)
	_, err := subs.Approve(ctx, "missing", "admin-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNormalizeCategory(t *testing.T) {
	assert.Equal(t, models.CategoryImage, NormalizeCategory(" Image "))
	assert.Equal(t, models.CategoryOther, NormalizeCategory("Spreadsheets"))
	assert.Equal(t, models.CategoryOther, NormalizeCategory(""))
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, models.SubmissionPending.CanTransitionTo(models.SubmissionApproved))
	assert.True(t, models.SubmissionPending.CanTransitionTo(models.SubmissionRejected))
	assert.False(t, models.SubmissionApproved.CanTransitionTo(models.SubmissionRejected))
	assert.False(t, models.SubmissionRejected.CanTransitionTo(models.SubmissionApproved))
	assert.False(t, models.SubmissionPending.CanTransitionTo(models.SubmissionPending))
}
