package handlers

import (
	"fmt"
	"html"
	"net/http"

	"aitools/internal/metrics"
	"aitools/internal/services"

	"github.com/gin-gonic/gin"
)

type NewsletterHandler struct {
	newsletter *services.NewsletterService
	metrics    *metrics.Metrics
}

func NewNewsletterHandler(newsletter *services.NewsletterService, m *metrics.Metrics) *NewsletterHandler {
	return &NewsletterHandler{newsletter: newsletter, metrics: m}
}

// Subscribe returns the footer form's replacement fragment.
func (h *NewsletterHandler) Subscribe(c *gin.Context) {
	_, err := h.newsletter.Subscribe(c.Request.Context(), c.PostForm("email"))
	if err != nil {
		h.metrics.Action("subscribe", "error")
		msg := services.UserMessage(err)
		Toast(c, "error", msg)
		// 200 so HTMX swaps the message in
		failWith(c, "newsletter", err)
		c.String(http.StatusOK, fmt.Sprintf(`<p class="newsletter-msg error">%s</p>`, html.EscapeString(msg)))
		return
	}

	h.metrics.Action("subscribe", "success")
	Toast(c, "success", "Subscribed!")
	c.String(http.StatusOK, `<p class="newsletter-msg success">Thanks for subscribing! Check your inbox.</p>`)
}
