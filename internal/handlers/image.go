package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"

	"aitools/internal/services"

	"github.com/gin-gonic/gin"
)

// 盗链提醒 SVG 图片
const hotlinkSVG = `<svg width="200" height="200" xmlns="http://www.w3.org/2000/svg">
  <rect width="100%" height="100%" fill="#f8f9fa"/>
  <text x="50%" y="50%" font-family="Arial" font-size="14" fill="#6c757d" text-anchor="middle">
    Hotlinking is not allowed
  </text>
</svg>`

// ImageHandler 图片上传与反代
type ImageHandler struct {
	store *services.ImageStore
}

func NewImageHandler(store *services.ImageStore) *ImageHandler {
	return &ImageHandler{store: store}
}

// Upload 处理后台的 logo / 封面图上传 (POST /admin/upload)
func (h *ImageHandler) Upload(c *gin.Context) {
	if !h.store.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "Image uploads are not configured"})
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Please choose an image to upload"})
		return
	}
	defer file.Close()

	result, err := h.store.Upload(c.Request.Context(), file, header.Filename)
	if err != nil {
		c.JSON(failWith(c, "image upload", err), gin.H{"success": false, "error": services.UserMessage(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"url":     result.URL,
		"id":      result.ID,
	})
}

// Proxy 反代 Imgur 图片 (GET /img/:id)，使用 Sec-Fetch-* 头部检测盗链
func (h *ImageHandler) Proxy(c *gin.Context) {
	if !isAllowedRequest(c) {
		c.Header("Content-Type", "image/svg+xml")
		c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
		c.String(http.StatusOK, hotlinkSVG)
		return
	}

	body, contentType, err := h.store.Fetch(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		log.Printf("[image] proxy %s: %v", c.Param("id"), err)
		c.Status(http.StatusBadGateway)
		return
	}
	defer body.Close()

	if contentType != "" {
		c.Header("Content-Type", contentType)
	}
	// 缓存 7 天
	c.Header("Cache-Control", "public, max-age=604800")
	c.Header("Vary", "Sec-Fetch-Site, Sec-Fetch-Mode")

	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, body); err != nil {
		log.Printf("[image] proxy copy: %v", err)
	}
}

// isAllowedRequest 只放行同源、同站、直接访问和导航请求
func isAllowedRequest(c *gin.Context) bool {
	switch c.GetHeader("Sec-Fetch-Site") {
	case "", "same-origin", "same-site", "none":
		return true
	}
	return c.GetHeader("Sec-Fetch-Mode") == "navigate"
}
