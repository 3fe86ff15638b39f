package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"aitools/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers map[string]*models.User

func (f fakeUsers) Get(_ context.Context, id string) (*models.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, errors.New("not found")
}

func newRouter(users fakeUsers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-secret"))))
	r.Use(LoadUser(users))

	r.GET("/login-as/:id", func(c *gin.Context) {
		s := sessions.Default(c)
		s.Set(SessionUserKey, c.Param("id"))
		if err := s.Save(); err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusNoContent)
	})
	r.GET("/me", AuthRequired(), func(c *gin.Context) {
		c.String(http.StatusOK, CurrentUserID(c))
	})
	r.GET("/admin", AdminRequired(), func(c *gin.Context) {
		c.String(http.StatusOK, "admin")
	})
	return r
}

func loginCookie(t *testing.T, r *gin.Engine, id string) string {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login-as/"+id, nil))
	require.Equal(t, http.StatusNoContent, w.Code)
	return strings.SplitN(w.Header().Get("Set-Cookie"), ";", 2)[0]
}

func get(r *gin.Engine, path, cookie string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequired(t *testing.T) {
	r := newRouter(fakeUsers{"u1": {ID: "u1", Role: models.RoleUser}})

	w := get(r, "/me", "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = get(r, "/me", "", "HX-Request", "true")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "/login", w.Header().Get("HX-Redirect"))

	w = get(r, "/me", loginCookie(t, r, "u1"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", w.Body.String())
}

func TestStaleSessionIsAnonymous(t *testing.T) {
	r := newRouter(fakeUsers{})
	w := get(r, "/me", loginCookie(t, r, "deleted"))
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestAdminRequired(t *testing.T) {
	r := newRouter(fakeUsers{
		"u1": {ID: "u1", Role: models.RoleUser},
		"a1": {ID: "a1", Role: models.RoleAdmin},
	})

	assert.Equal(t, http.StatusFound, get(r, "/admin", "").Code)
	assert.Equal(t, http.StatusForbidden, get(r, "/admin", loginCookie(t, r, "u1")).Code)

	w := get(r, "/admin", loginCookie(t, r, "a1"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", w.Body.String())
}
