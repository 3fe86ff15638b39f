package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"aitools/internal/middleware"
	"aitools/internal/models"
	"aitools/internal/services"

	"github.com/gin-gonic/gin"
)

// Render helper to inject common variables like 'current user'
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}

	if user := middleware.CurrentUser(c); user != nil {
		obj["CurrentUser"] = user
	}
	obj["CurrentPath"] = c.Request.URL.Path

	c.HTML(code, name, obj)
}

// HTMX Redirect helper
func HtmxRedirect(c *gin.Context, path string) {
	c.Header("HX-Redirect", path)
	c.Status(http.StatusOK)
}

// Error helper
func RenderError(c *gin.Context, code int, message string) {
	Render(c, code, "error.html", gin.H{"Error": message, "Code": code})
}

func isHTMX(c *gin.Context) bool {
	return c.GetHeader("HX-Request") == "true"
}

// Toast asks the page to show a notification via an HX-Trigger event.
func Toast(c *gin.Context, level, message string) {
	payload, err := json.Marshal(map[string]interface{}{
		"showToast": map[string]string{"level": level, "message": message},
	})
	if err != nil {
		return
	}
	c.Header("HX-Trigger", string(payload))
}

// failWith maps a service error to a status and logs the unexpected ones.
func failWith(c *gin.Context, where string, err error) int {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		log.Printf("[%s] %v", where, err)
	}
	return code
}

func statusFor(err error) int {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrAlreadySubscribed), errors.Is(err, services.ErrDuplicateSlug),
		errors.Is(err, services.ErrInvalidTransition), errors.Is(err, services.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, services.ErrInvalidCaptcha):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidLogin):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// trackVisit queues a page visit for the current request.
func trackVisit(tracker *services.Tracker, c *gin.Context) {
	if tracker == nil {
		return
	}
	tracker.Enqueue(services.Event{
		Kind: services.EventVisit,
		Visit: models.PageVisit{
			PagePath:  c.Request.URL.Path,
			VisitorIP: c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			Referrer:  c.Request.Referer(),
		},
	})
}
