package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"aitools/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore records calls so tests can check nothing reached storage.
type countingStore struct {
	calls int
}

func (s *countingStore) Add(context.Context, string, string) error    { s.calls++; return nil }
func (s *countingStore) Remove(context.Context, string, string) error { s.calls++; return nil }
func (s *countingStore) ToolIDs(context.Context, string) ([]string, error) {
	s.calls++
	return nil, nil
}

// unreadableStore cannot list the user's marks.
type unreadableStore struct {
	countingStore
}

func (s *unreadableStore) ToolIDs(context.Context, string) ([]string, error) {
	return nil, errors.New("connection reset")
}

type zeroCounter struct{}

func (zeroCounter) Count(context.Context, string) (int, error) { return 0, nil }

func TestToggleAnonymousGoesToLogin(t *testing.T) {
	store := &countingStore{}
	h := NewToggleHandler(store, store, zeroCounter{}, nil)
	r := newEngine(nil)
	r.POST("/bookmark/:id", h.Bookmark)
	r.POST("/upvote/:id", h.Upvote)

	w := do(r, http.MethodPost, "/bookmark/t1", nil, "HX-Request", "true")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/login", w.Header().Get("HX-Redirect"))
	level, msg := toast(t, w)
	assert.Equal(t, "error", level)
	assert.Equal(t, "Please sign in to bookmark tools", msg)

	w = do(r, http.MethodPost, "/upvote/t1", nil, "HX-Request", "true")
	assert.Equal(t, "/login", w.Header().Get("HX-Redirect"))
	_, msg = toast(t, w)
	assert.Equal(t, "Please sign in to upvote tools", msg)

	assert.Zero(t, store.calls)
}

func TestBookmarkToggleRoundTrip(t *testing.T) {
	e := newEnv(t)
	user := e.seedUser(t, "ada@example.com", models.RoleUser)
	tool := e.seedTool(t, "Copilot")

	h := NewToggleHandler(e.bookmarks, e.upvotes, e.upvotes, nil)
	r := newEngine(user)
	r.POST("/bookmark/:id", h.Bookmark)

	w := do(r, http.MethodPost, "/bookmark/"+tool.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `aria-pressed="true"`)
	_, msg := toast(t, w)
	assert.Equal(t, "Tool bookmarked", msg)

	ids, err := e.bookmarks.ToolIDs(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{tool.ID}, ids)

	w = do(r, http.MethodPost, "/bookmark/"+tool.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `aria-pressed="false"`)
	_, msg = toast(t, w)
	assert.Equal(t, "Bookmark removed", msg)

	ids, err = e.bookmarks.ToolIDs(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestUpvoteShowsFreshCount(t *testing.T) {
	e := newEnv(t)
	user := e.seedUser(t, "ada@example.com", models.RoleUser)
	tool := e.seedTool(t, "Midjourney")

	h := NewToggleHandler(e.bookmarks, e.upvotes, e.upvotes, nil)
	r := newEngine(user)
	r.POST("/upvote/:id", h.Upvote)

	w := do(r, http.MethodPost, "/upvote/"+tool.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<span>1</span>")

	w = do(r, http.MethodPost, "/upvote/"+tool.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<span>0</span>")
}

func TestToggleUnknownTool(t *testing.T) {
	e := newEnv(t)
	user := e.seedUser(t, "ada@example.com", models.RoleUser)

	h := NewToggleHandler(e.bookmarks, e.upvotes, e.upvotes, nil)
	r := newEngine(user)
	r.POST("/bookmark/:id", h.Bookmark)

	w := do(r, http.MethodPost, "/bookmark/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	level, msg := toast(t, w)
	assert.Equal(t, "error", level)
	assert.Equal(t, "Failed to add bookmark", msg)
}

func TestButtonsEscapeIDs(t *testing.T) {
	out := BookmarkButton(`"><script>`, false)
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, UpvoteButton("t1", true, 7), `class="btn-toggle active"`)
}

func TestToggleLoadFailureUsesNeutralMessage(t *testing.T) {
	store := &unreadableStore{}
	user := &models.User{ID: "u1", Role: models.RoleUser}
	h := NewToggleHandler(store, store, zeroCounter{}, nil)
	r := newEngine(user)
	r.POST("/bookmark/:id", h.Bookmark)
	r.POST("/upvote/:id", h.Upvote)

	w := do(r, http.MethodPost, "/bookmark/t1", nil, "HX-Request", "true")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	level, msg := toast(t, w)
	assert.Equal(t, "error", level)
	assert.Equal(t, "Could not update bookmark, please try again", msg)

	w = do(r, http.MethodPost, "/upvote/t1", nil, "HX-Request", "true")
	_, msg = toast(t, w)
	assert.Equal(t, "Could not update upvote, please try again", msg)

	assert.Zero(t, store.calls, "nothing written when the current state is unknown")
}
