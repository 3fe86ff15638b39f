package handlers

import (
	"errors"
	"log"
	"net/http"

	"aitools/internal/services"
	"aitools/internal/utils"

	"github.com/gin-gonic/gin"
)

type BlogHandler struct {
	blog    *services.BlogService
	tracker *services.Tracker
}

func NewBlogHandler(blog *services.BlogService, tracker *services.Tracker) *BlogHandler {
	return &BlogHandler{blog: blog, tracker: tracker}
}

func (h *BlogHandler) List(c *gin.Context) {
	posts, err := h.blog.Published(c.Request.Context(), 0)
	if err != nil {
		log.Printf("[blog] list: %v", err)
		RenderError(c, http.StatusInternalServerError, "Could not load posts")
		return
	}
	trackVisit(h.tracker, c)
	Render(c, http.StatusOK, "blog/list.html", gin.H{"Posts": posts})
}

func (h *BlogHandler) Show(c *gin.Context) {
	post, err := h.blog.BySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			RenderError(c, http.StatusNotFound, "Post not found")
			return
		}
		log.Printf("[blog] show %s: %v", c.Param("slug"), err)
		RenderError(c, http.StatusInternalServerError, "Could not load post")
		return
	}

	body := utils.RenderMarkdown(post.Content)
	trackVisit(h.tracker, c)
	Render(c, http.StatusOK, "blog/show.html", gin.H{
		"Post":     post,
		"Body":     body,
		"Headings": utils.ExtractHeadings(string(body)),
	})
}
