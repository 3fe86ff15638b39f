package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"aitools/internal/catalog"
	"aitools/internal/metrics"
	"aitools/internal/models"
	"aitools/internal/services"
	"aitools/internal/utils"

	"github.com/gin-gonic/gin"
)

// AdminServices groups everything the admin area reads or writes.
type AdminServices struct {
	Tools       *services.ToolService
	Categories  *services.CategoryService
	Submissions *services.SubmissionService
	Blog        *services.BlogService
	Newsletter  *services.NewsletterService
	Analytics   *services.AnalyticsService
	Metadata    *services.MetadataFetcher
}

type AdminHandler struct {
	svc     AdminServices
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewAdminHandler(svc AdminServices, m *metrics.Metrics) *AdminHandler {
	return &AdminHandler{svc: svc, metrics: m, now: time.Now}
}

// Dashboard 后台首页：访问统计、热门页面与工具、待审核数量
func (h *AdminHandler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()

	stats, err := h.svc.Analytics.Stats(ctx, h.now())
	if err != nil {
		log.Printf("[admin] stats: %v", err)
		RenderError(c, http.StatusInternalServerError, "Could not load analytics")
		return
	}

	recent, err := h.svc.Analytics.Recent(ctx, 20)
	if err != nil {
		log.Printf("[admin] recent visits: %v", err)
	}
	type recentVisit struct {
		models.PageVisit
		Browser string
	}
	visits := make([]recentVisit, 0, len(recent))
	for _, v := range recent {
		visits = append(visits, recentVisit{PageVisit: v, Browser: services.BrowserFromUserAgent(v.UserAgent)})
	}

	topPages, err := h.svc.Analytics.TopPages(ctx, 10)
	if err != nil {
		log.Printf("[admin] top pages: %v", err)
	}
	topTools, err := h.svc.Analytics.TopTools(ctx, 10)
	if err != nil {
		log.Printf("[admin] top tools: %v", err)
	}
	pending, err := h.svc.Submissions.CountPending(ctx)
	if err != nil {
		log.Printf("[admin] pending count: %v", err)
	}
	subscribers, err := h.svc.Newsletter.Count(ctx)
	if err != nil {
		log.Printf("[admin] subscriber count: %v", err)
	}

	Render(c, http.StatusOK, "admin/dashboard.html", gin.H{
		"Stats":       stats,
		"Recent":      visits,
		"TopPages":    topPages,
		"TopTools":    topTools,
		"Pending":     pending,
		"Subscribers": subscribers,
	})
}

// Tools 工具列表，支持按名称和分类筛选
func (h *AdminHandler) Tools(c *gin.Context) {
	tools, err := h.svc.Tools.All(c.Request.Context())
	if err != nil {
		log.Printf("[admin] tools: %v", err)
		RenderError(c, http.StatusInternalServerError, "Could not load tools")
		return
	}
	query := c.Query("q")
	category := c.DefaultQuery("category", catalog.All)

	Render(c, http.StatusOK, "admin/tools.html", gin.H{
		"Tools":      catalog.ApplyAdmin(tools, query, category),
		"Total":      len(tools),
		"Query":      query,
		"Category":   category,
		"Categories": models.ToolCategories,
	})
}

func toolInputFromForm(c *gin.Context) services.ToolInput {
	return services.ToolInput{
		Name:          c.PostForm("name"),
		Description:   c.PostForm("description"),
		Category:      c.PostForm("category"),
		Link:          c.PostForm("link"),
		AffiliateLink: c.PostForm("affiliate_link"),
		LogoURL:       c.PostForm("logo_url"),
		Pricing:       c.PostForm("pricing"),
		Features:      utils.SplitList(c.PostForm("features")),
		Featured:      c.PostForm("featured") == "on" || c.PostForm("featured") == "true",
	}
}

func toolInputFrom(t *models.Tool) services.ToolInput {
	return services.ToolInput{
		Name:          t.Name,
		Description:   t.Description,
		Category:      string(t.Category),
		Link:          t.Link,
		AffiliateLink: t.AffiliateLink,
		LogoURL:       t.LogoURL,
		Pricing:       t.Pricing,
		Features:      t.Features,
		Featured:      t.Featured,
	}
}

func (h *AdminHandler) renderToolForm(c *gin.Context, code int, toolID string, form services.ToolInput, errMsg string) {
	Render(c, code, "admin/tool_form.html", gin.H{
		"ToolID":     toolID,
		"Form":       form,
		"Features":   strings.Join(form.Features, "\n"),
		"Error":      errMsg,
		"Categories": models.ToolCategories,
		"Pricing":    models.PricingOptions,
	})
}

// NewTool shows an empty form, prefilled from ?url= when given.
func (h *AdminHandler) NewTool(c *gin.Context) {
	form := services.ToolInput{Category: string(models.CategoryOther), Pricing: models.PricingFree}
	if raw := c.Query("url"); raw != "" {
		draft, err := h.svc.Metadata.Fetch(c.Request.Context(), raw)
		if err != nil {
			log.Printf("[admin] prefill %s: %v", raw, err)
			form.Link = raw
			h.renderToolForm(c, http.StatusOK, "", form, "Could not read that page, fill the form by hand.")
			return
		}
		form.Name = draft.Name
		form.Description = draft.Description
		form.LogoURL = draft.LogoURL
		form.Link = draft.Link
	}
	h.renderToolForm(c, http.StatusOK, "", form, "")
}

// Prefill 抓取链接元信息，返回填好的表单片段 (HTMX)
func (h *AdminHandler) Prefill(c *gin.Context) {
	form := toolInputFromForm(c)
	draft, err := h.svc.Metadata.Fetch(c.Request.Context(), form.Link)
	if err != nil {
		Toast(c, "error", services.UserMessage(err))
		c.Status(failWith(c, "admin prefill", err))
		return
	}
	if form.Name == "" {
		form.Name = draft.Name
	}
	if form.Description == "" {
		form.Description = draft.Description
	}
	if form.LogoURL == "" {
		form.LogoURL = draft.LogoURL
	}
	form.Link = draft.Link
	Toast(c, "success", "Details fetched")
	h.renderToolForm(c, http.StatusOK, c.PostForm("tool_id"), form, "")
}

func (h *AdminHandler) CreateTool(c *gin.Context) {
	form := toolInputFromForm(c)
	tool, err := h.svc.Tools.Create(c.Request.Context(), form)
	if err != nil {
		h.metrics.Action("tool_create", "error")
		h.renderToolForm(c, failWith(c, "admin create tool", err), "", form, services.UserMessage(err))
		return
	}
	h.metrics.Action("tool_create", "success")
	log.Printf("[admin] tool created: %s (%s)", tool.Name, tool.ID)
	c.Redirect(http.StatusSeeOther, "/admin/tools")
}

func (h *AdminHandler) EditTool(c *gin.Context) {
	tool, err := h.svc.Tools.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RenderError(c, failWith(c, "admin edit tool", err), "Tool not found")
		return
	}
	h.renderToolForm(c, http.StatusOK, tool.ID, toolInputFrom(tool), "")
}

func (h *AdminHandler) UpdateTool(c *gin.Context) {
	id := c.Param("id")
	form := toolInputFromForm(c)
	if _, err := h.svc.Tools.Update(c.Request.Context(), id, form); err != nil {
		h.metrics.Action("tool_update", "error")
		h.renderToolForm(c, failWith(c, "admin update tool", err), id, form, services.UserMessage(err))
		return
	}
	h.metrics.Action("tool_update", "success")
	c.Redirect(http.StatusSeeOther, "/admin/tools")
}

// DeleteTool 删除工具，HTMX 请求返回空内容以移除所在行
func (h *AdminHandler) DeleteTool(c *gin.Context) {
	if err := h.svc.Tools.Delete(c.Request.Context(), c.Param("id")); err != nil {
		Toast(c, "error", "Failed to delete tool")
		c.Status(failWith(c, "admin delete tool", err))
		return
	}
	h.metrics.Action("tool_delete", "success")
	Toast(c, "success", "Tool deleted")
	c.String(http.StatusOK, "")
}

// ToggleFeatured 推荐/取消推荐
func (h *AdminHandler) ToggleFeatured(c *gin.Context) {
	ctx := c.Request.Context()
	tool, err := h.svc.Tools.Get(ctx, c.Param("id"))
	if err != nil {
		c.Status(failWith(c, "admin featured", err))
		return
	}
	if err := h.svc.Tools.SetFeatured(ctx, tool.ID, !tool.Featured); err != nil {
		c.Status(failWith(c, "admin featured", err))
		return
	}

	// HTMX: 返回按钮新状态
	label := "Feature"
	if !tool.Featured {
		label = "Unfeature"
	}
	c.String(http.StatusOK, label)
}

func (h *AdminHandler) Categories(c *gin.Context) {
	h.renderCategories(c, http.StatusOK, "")
}

func (h *AdminHandler) renderCategories(c *gin.Context, code int, errMsg string) {
	categories, err := h.svc.Categories.List(c.Request.Context())
	if err != nil {
		log.Printf("[admin] categories: %v", err)
		RenderError(c, http.StatusInternalServerError, "Could not load categories")
		return
	}
	Render(c, code, "admin/categories.html", gin.H{"Categories": categories, "Error": errMsg})
}

func categoryInputFromForm(c *gin.Context) services.CategoryInput {
	return services.CategoryInput{
		Name:        c.PostForm("name"),
		Slug:        c.PostForm("slug"),
		Description: c.PostForm("description"),
		Icon:        c.PostForm("icon"),
	}
}

func (h *AdminHandler) CreateCategory(c *gin.Context) {
	if _, err := h.svc.Categories.Create(c.Request.Context(), categoryInputFromForm(c)); err != nil {
		h.renderCategories(c, failWith(c, "admin create category", err), services.UserMessage(err))
		return
	}
	c.Redirect(http.StatusSeeOther, "/admin/categories")
}

func (h *AdminHandler) UpdateCategory(c *gin.Context) {
	if err := h.svc.Categories.Update(c.Request.Context(), c.Param("id"), categoryInputFromForm(c)); err != nil {
		h.renderCategories(c, failWith(c, "admin update category", err), services.UserMessage(err))
		return
	}
	c.Redirect(http.StatusSeeOther, "/admin/categories")
}

func (h *AdminHandler) DeleteCategory(c *gin.Context) {
	if err := h.svc.Categories.Delete(c.Request.Context(), c.Param("id")); err != nil {
		Toast(c, "error", "Failed to delete category")
		c.Status(failWith(c, "admin delete category", err))
		return
	}
	Toast(c, "success", "Category deleted")
	c.String(http.StatusOK, "")
}
