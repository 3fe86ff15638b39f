package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"aitools/internal/config"
	"aitools/internal/db"
	"aitools/internal/metrics"
	"aitools/internal/middleware"
	"aitools/internal/models"
	"aitools/internal/services"
	"aitools/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm/logger"
)

func newTestEngine(t *testing.T, user *models.User) *gin.Engine {
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
	m, err := metrics.New(func() int64 { return 0 })
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if user != nil {
			c.Set(middleware.CheckUserKey, user)
		}
	})
	RegisterRoutes(r, Deps{
		SiteURL:     "https://aitools.example",
		SiteName:    "AI Tools",
		Users:       services.NewUserService(database, func(string) bool { return false }),
		Tools:       tools,
		Categories:  services.NewCategoryService(database),
		Bookmarks:   services.NewBookmarkService(database),
		Upvotes:     services.NewUpvoteService(database, tools),
		Reviews:     services.NewReviewService(database, tools),
		Submissions: services.NewSubmissionService(database, tools, mailer),
		Blog:        services.NewBlogService(database),
		Newsletter:  services.NewNewsletterService(database, mailer),
		Analytics:   services.NewAnalyticsService(database),
		Metadata:    services.NewMetadataFetcher(nil),
		Captcha:     services.NewCaptchaService(),
		Images:      services.NewImageStore("", nil),
		Metrics:     m,
	})
	return r
}

func request(r http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestProtectedRoutesNeedLogin(t *testing.T) {
	r := newTestEngine(t, nil)

	for _, path := range []string{"/bookmarks", "/admin", "/admin/tools", "/admin/submissions"} {
		w := request(r, http.MethodGet, path)
		assert.Equal(t, http.StatusFound, w.Code, path)
		assert.Equal(t, "/login", w.Header().Get("Location"), path)
	}
}

func TestAdminRoutesRejectUsers(t *testing.T) {
	r := newTestEngine(t, &models.User{ID: "u1", Role: models.RoleUser})
	assert.Equal(t, http.StatusForbidden, request(r, http.MethodGet, "/admin").Code)
	assert.Equal(t, http.StatusForbidden, request(r, http.MethodPost, "/admin/submissions/x/approve").Code)
	assert.Equal(t, http.StatusForbidden, request(r, http.MethodPost, "/admin/upload").Code)
}

func TestPublicMachineRoutes(t *testing.T) {
	r := newTestEngine(t, nil)

	w := request(r, http.MethodGet, "/robots.txt")
	assert.Equal(t, http.StatusOK, w.Code)

	w = request(r, http.MethodGet, "/sitemap.xml")
	assert.Equal(t, http.StatusOK, w.Code)

	w = request(r, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "tracking_events_dropped_total")

	w = request(r, http.MethodGet, "/img/a.b.png")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTogglesAreNotBehindAuthRedirect(t *testing.T) {
	r := newTestEngine(t, nil)
	w := request(r, http.MethodPost, "/upvote/some-tool")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/login", w.Header().Get("HX-Redirect"))
}
