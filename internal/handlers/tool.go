package handlers

import (
	"errors"
	"log"
	"net/http"

	"aitools/internal/catalog"
	"aitools/internal/metrics"
	"aitools/internal/middleware"
	"aitools/internal/services"
	"aitools/internal/utils"

	"github.com/gin-gonic/gin"
)

type ToolHandler struct {
	tools     *services.ToolService
	reviews   *services.ReviewService
	bookmarks catalog.MembershipStore
	upvotes   catalog.MembershipStore
	tracker   *services.Tracker
	metrics   *metrics.Metrics
}

func NewToolHandler(tools *services.ToolService, reviews *services.ReviewService, bookmarks, upvotes catalog.MembershipStore, tracker *services.Tracker, m *metrics.Metrics) *ToolHandler {
	return &ToolHandler{tools: tools, reviews: reviews, bookmarks: bookmarks, upvotes: upvotes, tracker: tracker, metrics: m}
}

// Detail 工具详情页，记录一次点击
func (h *ToolHandler) Detail(c *gin.Context) {
	toolID := c.Param("id")
	if !h.renderDetail(c, http.StatusOK, toolID, gin.H{"Reviewed": c.Query("reviewed") == "1"}) {
		return
	}

	trackVisit(h.tracker, c)
	if h.tracker != nil {
		h.tracker.Enqueue(services.Event{
			Kind:   services.EventClick,
			ToolID: toolID,
			UserID: middleware.CurrentUserID(c),
		})
	}
}

// renderDetail loads everything the detail page shows. It reports false
// when an error page was rendered instead.
func (h *ToolHandler) renderDetail(c *gin.Context, code int, toolID string, extra gin.H) bool {
	ctx := c.Request.Context()
	tool, err := h.tools.Get(ctx, toolID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			RenderError(c, http.StatusNotFound, "Tool not found")
		} else {
			log.Printf("[tool] load %s: %v", toolID, err)
			RenderError(c, http.StatusInternalServerError, "Could not load tool")
		}
		return false
	}

	reviews, err := h.reviews.ForTool(ctx, toolID)
	if err != nil {
		log.Printf("[tool] load reviews for %s: %v", toolID, err)
	}

	userID := middleware.CurrentUserID(c)
	ownReview, err := h.reviews.ByUser(ctx, userID, toolID)
	if err != nil {
		log.Printf("[tool] load own review: %v", err)
	}
	bookmarked, _ := catalog.LoadMembership(ctx, h.bookmarks, userID)
	upvoted, _ := catalog.LoadMembership(ctx, h.upvotes, userID)

	data := gin.H{
		"Tool":       tool,
		"Reviews":    reviews,
		"OwnReview":  ownReview,
		"Bookmarked": bookmarked.Has(toolID),
		"Upvoted":    upvoted.Has(toolID),
	}
	for k, v := range extra {
		data[k] = v
	}
	Render(c, code, "tool/detail.html", data)
	return true
}

// SubmitReview 提交或更新当前用户的评价，成功后重定向回详情页
func (h *ToolHandler) SubmitReview(c *gin.Context) {
	toolID := c.Param("id")
	userID := middleware.CurrentUserID(c)
	if userID == "" {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	rating := utils.StringToInt(c.PostForm("rating"))
	text := c.PostForm("review_text")

	_, err := h.reviews.Submit(c.Request.Context(), userID, toolID, rating, text)
	if err != nil {
		h.metrics.Action("review", "error")
		code := failWith(c, "review", err)
		if code == http.StatusNotFound {
			RenderError(c, code, "Tool not found")
			return
		}
		h.renderDetail(c, code, toolID, gin.H{
			"ReviewError":  services.UserMessage(err),
			"ReviewRating": rating,
			"ReviewText":   text,
		})
		return
	}

	h.metrics.Action("review", "success")
	c.Redirect(http.StatusSeeOther, "/tool/"+toolID+"?reviewed=1")
}
