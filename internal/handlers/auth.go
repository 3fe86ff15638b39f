package handlers

import (
	"net/http"

	"aitools/internal/middleware"
	"aitools/internal/models"
	"aitools/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	users   *services.UserService
	captcha *services.CaptchaService
}

func NewAuthHandler(users *services.UserService, captcha *services.CaptchaService) *AuthHandler {
	return &AuthHandler{users: users, captcha: captcha}
}

func (h *AuthHandler) challenge(c *gin.Context) string {
	question, answer := h.captcha.Challenge()
	session := sessions.Default(c)
	session.Set(captchaSessionKey, answer)
	_ = session.Save()
	return question
}

func (h *AuthHandler) ShowRegister(c *gin.Context) {
	Render(c, http.StatusOK, "auth/register.html", gin.H{"Captcha": h.challenge(c)})
}

func (h *AuthHandler) Register(c *gin.Context) {
	username := c.PostForm("username")
	email := c.PostForm("email")
	password := c.PostForm("password")

	session := sessions.Default(c)
	err := h.captcha.Verify(session.Get(captchaSessionKey), c.PostForm("captcha"))
	session.Delete(captchaSessionKey)
	_ = session.Save()

	var user *models.User
	if err == nil {
		user, err = h.users.Register(c.Request.Context(), username, email, password)
	}
	if err != nil {
		Render(c, failWith(c, "auth", err), "auth/register.html", gin.H{
			"Error":    services.UserMessage(err),
			"Username": username,
			"Email":    email,
			"Captcha":  h.challenge(c),
		})
		return
	}

	h.signIn(c, user)
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	Render(c, http.StatusOK, "auth/login.html", nil)
}

func (h *AuthHandler) Login(c *gin.Context) {
	email := c.PostForm("email")
	user, err := h.users.Authenticate(c.Request.Context(), email, c.PostForm("password"))
	if err != nil {
		Render(c, failWith(c, "auth", err), "auth/login.html", gin.H{
			"Error": services.UserMessage(err),
			"Email": email,
		})
		return
	}
	h.signIn(c, user)
}

func (h *AuthHandler) signIn(c *gin.Context, user *models.User) {
	session := sessions.Default(c)
	session.Set(middleware.SessionUserKey, user.ID)
	_ = session.Save()

	if user.IsAdmin() {
		c.Redirect(http.StatusFound, "/admin")
		return
	}
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	_ = session.Save()
	c.Redirect(http.StatusFound, "/")
}
