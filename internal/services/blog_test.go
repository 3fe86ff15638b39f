package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBlogService(t *testing.T, now time.Time) *BlogService {
	blog := NewBlogService(setupTestDB(t))
	blog.now = func() time.Time { return now }
	return blog
}

func TestBlogCreateDerivesSlugAndExcerpt(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	blog := newBlogService(t, now)

	post, err := blog.Create(ctx, "author-1", BlogInput{
		Title:   "Best AI Tools of 2025",
		Content: "## Intro\n\nHere are **the** tools.",
	})
	require.NoError(t, err)
	assert.Equal(t, "best-ai-tools-of-2025", post.Slug)
	assert.Equal(t, "Intro Here are the tools.", post.Excerpt)
	assert.False(t, post.Published)
	assert.Nil(t, post.PublishedAt)

	_, err = blog.Create(ctx, "author-1", BlogInput{Title: "Best AI tools of 2025!", Content: "dup"})
	assert.ErrorIs(t, err, ErrDuplicateSlug)

	_, err = blog.BySlug(ctx, post.Slug)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBlogPublishTimestamps(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	blog := newBlogService(t, now)

	post, err := blog.Create(ctx, "", BlogInput{Title: "Hello", Content: "hi", Published: true})
	require.NoError(t, err)
	require.NotNil(t, post.PublishedAt)
	firstPublished := *post.PublishedAt

	// saving again keeps the original publication date
	blog.now = func() time.Time { return now.Add(time.Hour) }
	post, err = blog.Update(ctx, post.ID, BlogInput{Title: "Hello again", Slug: "hello", Content: "hi", Published: true})
	require.NoError(t, err)
	require.NotNil(t, post.PublishedAt)
	assert.True(t, firstPublished.Equal(*post.PublishedAt))

	post, err = blog.Update(ctx, post.ID, BlogInput{Title: "Hello again", Slug: "hello", Content: "hi"})
	require.NoError(t, err)
	assert.Nil(t, post.PublishedAt)

	published, err := blog.Published(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, published)

	_, err = blog.Update(ctx, post.ID, BlogInput{Title: "Hello again", Slug: "hello", Content: "hi", Published: true})
	require.NoError(t, err)
	got, err := blog.BySlug(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, "Hello again", got.Title)

	require.NoError(t, blog.Delete(ctx, post.ID))
	assert.ErrorIs(t, blog.Delete(ctx, post.ID), ErrNotFound)
}

func TestBlogValidation(t *testing.T) {
	blog := newBlogService(t, time.Now())
	_, err := blog.Create(ctx, "", BlogInput{Title: " ", Content: "x"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "title", verr.Field)

	_, err = blog.Create(ctx, "", BlogInput{Title: "x", Content: "  "})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "content", verr.Field)
}
