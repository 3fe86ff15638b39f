package handlers

import (
	"encoding/json"
	"html/template"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"aitools/internal/config"
	"aitools/internal/db"
	"aitools/internal/middleware"
	"aitools/internal/models"
	"aitools/internal/services"
	"aitools/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// pages stand in for the real views; each prints just enough to assert on.
const pages = `
{{define "error.html"}}error {{.Code}}: {{.Error}}{{end}}
{{define "catalog/index.html"}}index{{range .Tools}} [{{.Name}}]{{end}}{{end}}
{{define "catalog/grid.html"}}grid{{range .Tools}} [{{.Name}}]{{end}}{{end}}
{{define "tool/detail.html"}}{{.Tool.Name}} bookmarked={{.Bookmarked}} upvoted={{.Upvoted}}{{with .ReviewError}} review-error={{.}}{{end}}{{end}}
{{define "submit/form.html"}}{{with .Error}}error={{.}}{{end}}{{with .Success}}success={{.}}{{end}}{{end}}
{{define "admin/tools.html"}}{{range .Tools}}[{{.Name}}]{{end}}{{end}}
{{define "admin/tool_form.html"}}name={{.Form.Name}} link={{.Form.Link}}{{with .Error}} error={{.}}{{end}}{{end}}
{{define "admin/submissions.html"}}{{.Status}}{{range .Submissions}} [{{.Name}}]{{end}}{{end}}
{{define "admin/dashboard.html"}}total={{.Stats.Total}} pending={{.Pending}} subscribers={{.Subscribers}}{{end}}
`

// env is a database plus the services the handlers under test share.
type env struct {
	db          *gorm.DB
	tools       *services.ToolService
	bookmarks   *services.BookmarkService
	upvotes     *services.UpvoteService
	reviews     *services.ReviewService
	submissions *services.SubmissionService
	blog        *services.BlogService
	newsletter  *services.NewsletterService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	database, err := db.Open(sqlite.Open(":memory:"), logger.Silent)
	require.NoError(t, err)
	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.Migrate(database))

	cache, err := utils.NewCache[[]models.Tool](16)
	require.NoError(t, err)
	mailer := services.NewMailService(&config.Config{})
	tools := services.NewToolService(database, cache, time.Minute)

	return &env{
		db:          database,
		tools:       tools,
		bookmarks:   services.NewBookmarkService(database),
		upvotes:     services.NewUpvoteService(database, tools),
		reviews:     services.NewReviewService(database, tools),
		submissions: services.NewSubmissionService(database, tools, mailer),
		blog:        services.NewBlogService(database),
		newsletter:  services.NewNewsletterService(database, mailer),
	}
}

func (e *env) seedTool(t *testing.T, name string) *models.Tool {
	t.Helper()
	tool := &models.Tool{
		Name:        name,
		Description: name + " does things",
		Category:    models.CategoryCode,
		Link:        "https://example.com/" + name,
		Pricing:     models.PricingFree,
	}
	require.NoError(t, e.db.Create(tool).Error)
	return tool
}

func (e *env) seedUser(t *testing.T, email, role string) *models.User {
	t.Helper()
	user := &models.User{Username: email, Email: email, Password: "x", Role: role}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

// newEngine returns a router that treats every request as coming from user
// (nil for anonymous).
func newEngine(user *models.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.SetHTMLTemplate(template.Must(template.New("pages").Parse(pages)))
	r.Use(func(c *gin.Context) {
		if user != nil {
			c.Set(middleware.CheckUserKey, user)
		}
		c.Next()
	})
	return r
}

func do(r http.Handler, method, path string, form url.Values, headers ...string) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// toast decodes the showToast event from an HX-Trigger header.
func toast(t *testing.T, w *httptest.ResponseRecorder) (level, message string) {
	t.Helper()
	var payload struct {
		ShowToast struct {
			Level   string `json:"level"`
			Message string `json:"message"`
		} `json:"showToast"`
	}
	require.NoError(t, json.Unmarshal([]byte(w.Header().Get("HX-Trigger")), &payload))
	return payload.ShowToast.Level, payload.ShowToast.Message
}
