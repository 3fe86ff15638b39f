package services

import (
	"testing"

	"aitools/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validToolInput() ToolInput {
	return ToolInput{
		Name:        "PromptPilot",
		Description: "Writes prompts",
		Category:    "Writing",
		Link:        "https://promptpilot.example.com",
		Pricing:     "Freemium",
		Features:    []string{"Templates", "API"},
	}
}

func TestToolServiceCRUD(t *testing.T) {
	database := setupTestDB(t)
	tools := newToolService(t, database)

	created, err := tools.Create(ctx, validToolInput())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, models.CategoryWriting, created.Category)
	assert.Equal(t, "freemium", created.Pricing)

	got, err := tools.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Templates", "API"}, []string(got.Features))

	in := validToolInput()
	in.Name = "PromptPilot 2"
	in.Features = nil
	in.Featured = true
	updated, err := tools.Update(ctx, created.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "PromptPilot 2", updated.Name)

	got, err = tools.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, got.Featured)
	assert.Empty(t, got.Features)

	require.NoError(t, tools.SetFeatured(ctx, created.ID, false))
	got, err = tools.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, got.Featured)

	require.NoError(t, tools.Delete(ctx, created.ID))
	_, err = tools.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, tools.Delete(ctx, created.ID), ErrNotFound)
}

func TestToolInputValidation(t *testing.T) {
	database := setupTestDB(t)
	tools := newToolService(t, database)

	cases := map[string]func(*ToolInput){
		"name":        func(in *ToolInput) { in.Name = "  " },
		"description": func(in *ToolInput) { in.Description = "" },
		"category":    func(in *ToolInput) { in.Category = "games" },
		"link":        func(in *ToolInput) { in.Link = "not a url" },
		"logo_url":    func(in *ToolInput) { in.LogoURL = "ftp://x" },
	}
	for field, mutate := range cases {
		t.Run(field, func(t *testing.T) {
			in := validToolInput()
			mutate(&in)
			_, err := tools.Create(ctx, in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, field, verr.Field)
		})
	}
}

func TestToolServiceAllIsCachedUntilWrite(t *testing.T) {
	database := setupTestDB(t)
	tools := newToolService(t, database)
	seedTool(t, database, "alpha")

	all, err := tools.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	// written behind the service's back: still cached
	seedTool(t, database, "beta")
	all, err = tools.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	// a write through the service invalidates
	_, err = tools.Create(ctx, validToolInput())
	require.NoError(t, err)
	all, err = tools.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestToolDeleteRemovesDependents(t *testing.T) {
	database := setupTestDB(t)
	tools := newToolService(t, database)
	tool := seedTool(t, database, "alpha")
	user := seedUser(t, database, "a@example.com")

	require.NoError(t, NewBookmarkService(database).Add(ctx, user.ID, tool.ID))
	require.NoError(t, NewUpvoteService(database, tools).Add(ctx, user.ID, tool.ID))

	require.NoError(t, tools.Delete(ctx, tool.ID))

	var n int64
	database.Model(&models.Bookmark{}).Count(&n)
	assert.Zero(t, n)
	database.Model(&models.Upvote{}).Count(&n)
	assert.Zero(t, n)
}

func TestCategoryService(t *testing.T) {
	database := setupTestDB(t)
	categories := NewCategoryService(database)

	created, err := categories.Create(ctx, CategoryInput{Name: "Data Science", Icon: "📊"})
	require.NoError(t, err)
	assert.Equal(t, "data-science", created.Slug)

	require.NoError(t, categories.Update(ctx, created.ID, CategoryInput{Name: "Data", Slug: "data"}))
	list, err := categories.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "data", list[0].Slug)

	_, err = categories.Create(ctx, CategoryInput{Name: ""})
	assert.Error(t, err)

	require.NoError(t, categories.Delete(ctx, created.ID))
	assert.ErrorIs(t, categories.Delete(ctx, created.ID), ErrNotFound)
}

func TestValidImageURL(t *testing.T) {
	assert.True(t, validImageURL("/img/abc.png"))
	assert.True(t, validImageURL("https://cdn.example.com/logo.svg"))
	assert.False(t, validImageURL("/img/../secret"))
	assert.False(t, validImageURL("/static/logo.png"))
}
