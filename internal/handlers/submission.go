package handlers

import (
	"net/http"

	"aitools/internal/metrics"
	"aitools/internal/models"
	"aitools/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const captchaSessionKey = "captcha_answer"

type SubmissionHandler struct {
	submissions *services.SubmissionService
	captcha     *services.CaptchaService
	tracker     *services.Tracker
	metrics     *metrics.Metrics
}

func NewSubmissionHandler(submissions *services.SubmissionService, captcha *services.CaptchaService, tracker *services.Tracker, m *metrics.Metrics) *SubmissionHandler {
	return &SubmissionHandler{submissions: submissions, captcha: captcha, tracker: tracker, metrics: m}
}

// newChallenge stores a fresh captcha answer in the session and returns the question.
func (h *SubmissionHandler) newChallenge(c *gin.Context) string {
	question, answer := h.captcha.Challenge()
	session := sessions.Default(c)
	session.Set(captchaSessionKey, answer)
	_ = session.Save()
	return question
}

func (h *SubmissionHandler) Show(c *gin.Context) {
	trackVisit(h.tracker, c)
	Render(c, http.StatusOK, "submit/form.html", gin.H{
		"Captcha":    h.newChallenge(c),
		"Categories": models.ToolCategories,
	})
}

func (h *SubmissionHandler) Create(c *gin.Context) {
	in := services.SubmissionInput{
		Name:           c.PostForm("name"),
		Description:    c.PostForm("description"),
		Category:       c.PostForm("category"),
		Link:           c.PostForm("link"),
		LogoURL:        c.PostForm("logo_url"),
		SubmitterEmail: c.PostForm("submitter_email"),
	}

	session := sessions.Default(c)
	err := h.captcha.Verify(session.Get(captchaSessionKey), c.PostForm("captcha"))
	session.Delete(captchaSessionKey)
	_ = session.Save()

	if err == nil {
		_, err = h.submissions.Create(c.Request.Context(), in)
	}
	if err != nil {
		h.metrics.Action("submit", "error")
		Render(c, failWith(c, "submit", err), "submit/form.html", gin.H{
			"Error":      services.UserMessage(err),
			"Form":       in,
			"Captcha":    h.newChallenge(c),
			"Categories": models.ToolCategories,
		})
		return
	}

	h.metrics.Action("submit", "success")
	Render(c, http.StatusOK, "submit/form.html", gin.H{
		"Success":    "Thanks! Your tool has been submitted for review.",
		"Captcha":    h.newChallenge(c),
		"Categories": models.ToolCategories,
	})
}
