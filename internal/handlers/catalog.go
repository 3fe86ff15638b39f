package handlers

import (
	"log"
	"net/http"

	"aitools/internal/catalog"
	"aitools/internal/middleware"
	"aitools/internal/models"
	"aitools/internal/services"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	tools      *services.ToolService
	categories *services.CategoryService
	bookmarks  catalog.MembershipStore
	upvotes    catalog.MembershipStore
	tracker    *services.Tracker
}

func NewCatalogHandler(tools *services.ToolService, categories *services.CategoryService, bookmarks, upvotes catalog.MembershipStore, tracker *services.Tracker) *CatalogHandler {
	return &CatalogHandler{tools: tools, categories: categories, bookmarks: bookmarks, upvotes: upvotes, tracker: tracker}
}

// Index 首页：筛选、排序后的工具列表。HTMX 请求只返回列表片段
func (h *CatalogHandler) Index(c *gin.Context) {
	ctx := c.Request.Context()
	filter := catalog.ParseFilter(c.Request.URL.Query())

	tools, err := h.tools.All(ctx)
	if err != nil {
		log.Printf("[catalog] load tools: %v", err)
		RenderError(c, http.StatusInternalServerError, "Could not load tools")
		return
	}
	visible := catalog.Apply(tools, filter)

	userID := middleware.CurrentUserID(c)
	bookmarked, err := catalog.LoadMembership(ctx, h.bookmarks, userID)
	if err != nil {
		log.Printf("[catalog] load bookmarks: %v", err)
	}
	upvoted, err := catalog.LoadMembership(ctx, h.upvotes, userID)
	if err != nil {
		log.Printf("[catalog] load upvotes: %v", err)
	}

	data := gin.H{
		"Tools":       visible,
		"Total":       len(tools),
		"Filter":      filter,
		"FilterQuery": filter.Values().Encode(),
		"Bookmarked":  bookmarked,
		"Upvoted":     upvoted,
		"SortKeys":    catalog.SortKeys,
		"Pricing":     models.PricingOptions,
	}

	if isHTMX(c) {
		c.Header("HX-Push-Url", pushURL(filter))
		Render(c, http.StatusOK, "catalog/grid.html", data)
		return
	}

	categories, err := h.categories.List(ctx)
	if err != nil {
		log.Printf("[catalog] load categories: %v", err)
	}
	data["Categories"] = categories
	trackVisit(h.tracker, c)
	Render(c, http.StatusOK, "catalog/index.html", data)
}

func pushURL(f catalog.Filter) string {
	if q := f.Values().Encode(); q != "" {
		return "/?" + q
	}
	return "/"
}
