package handlers

import (
	"log"
	"net/http"

	"aitools/internal/middleware"
	"aitools/internal/models"
	"aitools/internal/services"

	"github.com/gin-gonic/gin"
)

// Submissions 待审核列表，?status= 可切换为 approved / rejected
func (h *AdminHandler) Submissions(c *gin.Context) {
	status := models.SubmissionStatus(c.DefaultQuery("status", string(models.SubmissionPending)))
	switch status {
	case models.SubmissionPending, models.SubmissionApproved, models.SubmissionRejected:
	default:
		status = models.SubmissionPending
	}

	subs, err := h.svc.Submissions.List(c.Request.Context(), status)
	if err != nil {
		log.Printf("[admin] submissions: %v", err)
		RenderError(c, http.StatusInternalServerError, "Could not load submissions")
		return
	}
	Render(c, http.StatusOK, "admin/submissions.html", gin.H{
		"Submissions": subs,
		"Status":      status,
	})
}

// ApproveSubmission 审核通过并创建工具，HTMX 返回状态标签替换所在行的操作按钮
func (h *AdminHandler) ApproveSubmission(c *gin.Context) {
	tool, err := h.svc.Submissions.Approve(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c))
	if err != nil {
		h.metrics.Action("approve", "error")
		Toast(c, "error", services.UserMessage(err))
		c.Status(failWith(c, "admin approve", err))
		return
	}
	h.metrics.Action("approve", "success")
	Toast(c, "success", tool.Name+" is now listed")
	c.String(http.StatusOK, `<span class="badge badge-success">approved</span>`)
}

func (h *AdminHandler) RejectSubmission(c *gin.Context) {
	if _, err := h.svc.Submissions.Reject(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c)); err != nil {
		h.metrics.Action("reject", "error")
		Toast(c, "error", services.UserMessage(err))
		c.Status(failWith(c, "admin reject", err))
		return
	}
	h.metrics.Action("reject", "success")
	Toast(c, "success", "Submission rejected")
	c.String(http.StatusOK, `<span class="badge badge-error">rejected</span>`)
}

func (h *AdminHandler) Posts(c *gin.Context) {
	posts, err := h.svc.Blog.All(c.Request.Context())
	if err != nil {
		log.Printf("[admin] posts: %v", err)
		RenderError(c, http.StatusInternalServerError, "Could not load posts")
		return
	}
	Render(c, http.StatusOK, "admin/posts.html", gin.H{"Posts": posts})
}

func blogInputFromForm(c *gin.Context) services.BlogInput {
	return services.BlogInput{
		Title:         c.PostForm("title"),
		Slug:          c.PostForm("slug"),
		Excerpt:       c.PostForm("excerpt"),
		Content:       c.PostForm("content"),
		CoverImageURL: c.PostForm("cover_image_url"),
		Published:     c.PostForm("published") == "on" || c.PostForm("published") == "true",
	}
}

func (h *AdminHandler) renderPostForm(c *gin.Context, code int, postID string, form services.BlogInput, errMsg string) {
	Render(c, code, "admin/post_form.html", gin.H{
		"PostID": postID,
		"Form":   form,
		"Error":  errMsg,
	})
}

func (h *AdminHandler) NewPost(c *gin.Context) {
	h.renderPostForm(c, http.StatusOK, "", services.BlogInput{}, "")
}

func (h *AdminHandler) CreatePost(c *gin.Context) {
	form := blogInputFromForm(c)
	post, err := h.svc.Blog.Create(c.Request.Context(), middleware.CurrentUserID(c), form)
	if err != nil {
		h.renderPostForm(c, failWith(c, "admin create post", err), "", form, services.UserMessage(err))
		return
	}
	log.Printf("[admin] post created: %s", post.Slug)
	c.Redirect(http.StatusSeeOther, "/admin/blog")
}

func (h *AdminHandler) EditPost(c *gin.Context) {
	post, err := h.svc.Blog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RenderError(c, failWith(c, "admin edit post", err), "Post not found")
		return
	}
	h.renderPostForm(c, http.StatusOK, post.ID, services.BlogInput{
		Title:         post.Title,
		Slug:          post.Slug,
		Excerpt:       post.Excerpt,
		Content:       post.Content,
		CoverImageURL: post.CoverImageURL,
		Published:     post.Published,
	}, "")
}

func (h *AdminHandler) UpdatePost(c *gin.Context) {
	id := c.Param("id")
	form := blogInputFromForm(c)
	if _, err := h.svc.Blog.Update(c.Request.Context(), id, form); err != nil {
		h.renderPostForm(c, failWith(c, "admin update post", err), id, form, services.UserMessage(err))
		return
	}
	c.Redirect(http.StatusSeeOther, "/admin/blog")
}

func (h *AdminHandler) DeletePost(c *gin.Context) {
	if err := h.svc.Blog.Delete(c.Request.Context(), c.Param("id")); err != nil {
		Toast(c, "error", "Failed to delete post")
		c.Status(failWith(c, "admin delete post", err))
		return
	}
	Toast(c, "success", "Post deleted")
	c.String(http.StatusOK, "")
}

// Subscribers 订阅者列表
func (h *AdminHandler) Subscribers(c *gin.Context) {
	subs, err := h.svc.Newsletter.List(c.Request.Context())
	if err != nil {
		log.Printf("[admin] subscribers: %v", err)
		RenderError(c, http.StatusInternalServerError, "Could not load subscribers")
		return
	}
	Render(c, http.StatusOK, "admin/subscribers.html", gin.H{"Subscribers": subs})
}
