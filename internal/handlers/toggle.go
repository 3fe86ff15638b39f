package handlers

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"net/http"

	"aitools/internal/catalog"
	"aitools/internal/metrics"
	"aitools/internal/middleware"

	"github.com/gin-gonic/gin"
)

// toggleKind holds the per-relation wording and fragment of a toggle button.
type toggleKind struct {
	action     string
	signIn     string
	added      string
	removed    string
	addFail    string
	removeFail string
	unknown    string
}

var (
	bookmarkKind = toggleKind{
		action:     "bookmark",
		signIn:     "Please sign in to bookmark tools",
		added:      "Tool bookmarked",
		removed:    "Bookmark removed",
		addFail:    "Failed to add bookmark",
		removeFail: "Failed to remove bookmark",
		unknown:    "Could not update bookmark, please try again",
	}
	upvoteKind = toggleKind{
		action:     "upvote",
		signIn:     "Please sign in to upvote tools",
		added:      "Upvoted",
		removed:    "Upvote removed",
		addFail:    "Failed to upvote",
		removeFail: "Failed to remove upvote",
		unknown:    "Could not update upvote, please try again",
	}
)

// UpvoteCounter reads a tool's stored upvote total.
type UpvoteCounter interface {
	Count(ctx context.Context, toolID string) (int, error)
}

type ToggleHandler struct {
	bookmarks *catalog.Toggler
	upvotes   *catalog.Toggler
	counter   UpvoteCounter
	metrics   *metrics.Metrics
}

func NewToggleHandler(bookmarks, upvotes catalog.MembershipStore, counter UpvoteCounter, m *metrics.Metrics) *ToggleHandler {
	return &ToggleHandler{
		bookmarks: catalog.NewToggler(bookmarks),
		upvotes:   catalog.NewToggler(upvotes),
		counter:   counter,
		metrics:   m,
	}
}

// Bookmark 切换收藏状态
func (h *ToggleHandler) Bookmark(c *gin.Context) {
	toolID := c.Param("id")
	marked, ok := h.toggle(c, h.bookmarks, bookmarkKind, toolID)
	if !ok {
		return
	}
	c.String(http.StatusOK, BookmarkButton(toolID, marked))
}

// Upvote 切换点赞状态，返回带最新计数的按钮
func (h *ToggleHandler) Upvote(c *gin.Context) {
	toolID := c.Param("id")
	marked, ok := h.toggle(c, h.upvotes, upvoteKind, toolID)
	if !ok {
		return
	}
	count, err := h.counter.Count(c.Request.Context(), toolID)
	if err != nil {
		log.Printf("[toggle] read upvote count for %s: %v", toolID, err)
	}
	c.String(http.StatusOK, UpvoteButton(toolID, marked, count))
}

// toggle runs the shared flow. It writes the response itself on failure
// and reports ok=false.
func (h *ToggleHandler) toggle(c *gin.Context, t *catalog.Toggler, kind toggleKind, toolID string) (bool, bool) {
	userID := middleware.CurrentUserID(c)
	if userID == "" {
		h.metrics.Action(kind.action, "rejected")
		Toast(c, "error", kind.signIn)
		HtmxRedirect(c, "/login")
		return false, false
	}

	marked, err := t.Toggle(c.Request.Context(), userID, toolID)
	if err != nil {
		h.metrics.Action(kind.action, "error")
		msg := kind.addFail
		switch {
		case errors.Is(err, catalog.ErrStateUnknown):
			msg = kind.unknown
		case marked:
			msg = kind.removeFail
		}
		Toast(c, "error", msg)
		c.Status(failWith(c, "toggle", err))
		return marked, false
	}

	h.metrics.Action(kind.action, "success")
	if marked {
		Toast(c, "success", kind.added)
	} else {
		Toast(c, "success", kind.removed)
	}
	return marked, true
}

// BookmarkButton renders the bookmark toggle. hx-disabled-elt keeps a second
// click from firing while the first request is in flight.
func BookmarkButton(toolID string, marked bool) string {
	id := html.EscapeString(toolID)
	label, icon, class := "Bookmark", "☆", "btn-toggle"
	if marked {
		label, icon, class = "Bookmarked", "★", "btn-toggle active"
	}
	return fmt.Sprintf(`<button type="button" class="%s" id="bookmark-%s" hx-post="/bookmark/%s" hx-swap="outerHTML" hx-disabled-elt="this" aria-pressed="%t">%s %s</button>`,
		class, id, id, marked, icon, label)
}

func UpvoteButton(toolID string, marked bool, count int) string {
	id := html.EscapeString(toolID)
	class := "btn-toggle"
	if marked {
		class = "btn-toggle active"
	}
	return fmt.Sprintf(`<button type="button" class="%s" id="upvote-%s" hx-post="/upvote/%s" hx-swap="outerHTML" hx-disabled-elt="this" aria-pressed="%t">▲ <span>%d</span></button>`,
		class, id, id, marked, count)
}
