package handlers

import (
	"log"
	"net/http"

	"aitools/internal/middleware"
	"aitools/internal/services"

	"github.com/gin-gonic/gin"
)

// BookmarksHandler serves the signed-in user's saved tools page.
type BookmarksHandler struct {
	bookmarks *services.BookmarkService
}

func NewBookmarksHandler(bookmarks *services.BookmarkService) *BookmarksHandler {
	return &BookmarksHandler{bookmarks: bookmarks}
}

func (h *BookmarksHandler) List(c *gin.Context) {
	tools, err := h.bookmarks.Tools(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		log.Printf("[bookmarks] list: %v", err)
		RenderError(c, http.StatusInternalServerError, "Could not load bookmarks")
		return
	}
	Render(c, http.StatusOK, "bookmarks/list.html", gin.H{"Tools": tools})
}

// Remove deletes one bookmark; the empty body lets HTMX drop the card.
func (h *BookmarksHandler) Remove(c *gin.Context) {
	err := h.bookmarks.Remove(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		Toast(c, "error", bookmarkKind.removeFail)
		c.Status(failWith(c, "bookmarks", err))
		return
	}
	Toast(c, "success", bookmarkKind.removed)
	c.String(http.StatusOK, "")
}
