package handlers

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"aitools/internal/models"
	"aitools/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogIndexFiltersAndPushesURL(t *testing.T) {
	e := newEnv(t)
	e.seedTool(t, "Copilot")
	e.seedTool(t, "Cursor")
	dalle := e.seedTool(t, "DALL-E")
	require.NoError(t, e.db.Model(dalle).Update("category", models.CategoryImage).Error)

	h := NewCatalogHandler(e.tools, services.NewCategoryService(e.db), e.bookmarks, e.upvotes, nil)
	r := newEngine(nil)
	r.GET("/", h.Index)

	w := do(r, http.MethodGet, "/?sort=name", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "index [Copilot] [Cursor] [DALL-E]", w.Body.String())

	w = do(r, http.MethodGet, "/?category=code&q=cur", nil, "HX-Request", "true")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "grid [Cursor]", w.Body.String())
	pushed, err := url.Parse(w.Header().Get("HX-Push-Url"))
	require.NoError(t, err)
	assert.Equal(t, "/", pushed.Path)
	assert.Equal(t, "code", pushed.Query().Get("category"))
	assert.Equal(t, "cur", pushed.Query().Get("q"))
}

func TestToolDetailAndReview(t *testing.T) {
	e := newEnv(t)
	user := e.seedUser(t, "ada@example.com", models.RoleUser)
	tool := e.seedTool(t, "Whisper")
	require.NoError(t, e.bookmarks.Add(context.Background(), user.ID, tool.ID))

	h := NewToolHandler(e.tools, e.reviews, e.bookmarks, e.upvotes, nil, nil)
	r := newEngine(user)
	r.GET("/tool/:id", h.Detail)
	r.POST("/tool/:id/review", h.SubmitReview)

	w := do(r, http.MethodGet, "/tool/"+tool.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Whisper bookmarked=true upvoted=false", w.Body.String())

	w = do(r, http.MethodGet, "/tool/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodPost, "/tool/"+tool.ID+"/review", url.Values{"rating": {"9"}, "review_text": {"great"}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "review-error=")

	w = do(r, http.MethodPost, "/tool/"+tool.ID+"/review", url.Values{"rating": {"4"}, "review_text": {"great"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/tool/"+tool.ID+"?reviewed=1", w.Header().Get("Location"))

	got, err := e.tools.Get(context.Background(), tool.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ReviewCount)
	assert.InDelta(t, 4.0, got.AverageRating, 0.001)
}
