package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"aitools/internal/services"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageUploadDisabled(t *testing.T) {
	h := NewImageHandler(services.NewImageStore("", nil))
	r := newEngine(nil)
	r.POST("/admin/upload", h.Upload)

	w := do(r, http.MethodPost, "/admin/upload", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestImageUploadRejectsNonImage(t *testing.T) {
	h := NewImageHandler(services.NewImageStore("abc", &http.Client{}))
	r := newEngine(nil)
	r.POST("/admin/upload", h.Upload)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", "notes.txt")
	require.NoError(t, err)
	_, _ = part.Write([]byte("plain text, not an image"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Only image files can be uploaded")
}

func TestImageProxy(t *testing.T) {
	client := &http.Client{}
	httpmock.ActivateNonDefault(client)
	defer httpmock.DeactivateAndReset()
	httpmock.RegisterResponder(http.MethodGet, "https://i.imgur.com/abc.png",
		httpmock.NewStringResponder(http.StatusOK, "png-bytes"))

	h := NewImageHandler(services.NewImageStore("id", client))
	r := newEngine(nil)
	r.GET("/img/:id", h.Proxy)

	w := do(r, http.MethodGet, "/img/abc.png", nil, "Sec-Fetch-Site", "same-origin")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "png-bytes", w.Body.String())
	assert.Equal(t, "public, max-age=604800", w.Header().Get("Cache-Control"))

	w = do(r, http.MethodGet, "/img/abc.png", nil, "Sec-Fetch-Site", "cross-site", "Sec-Fetch-Mode", "no-cors")
	assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "Hotlinking")
}
