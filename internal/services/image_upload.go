package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"
)

const (
	imgurUploadURL = "https://api.imgur.com/3/image"
	imgurImageURL  = "https://i.imgur.com/"

	// MaxImageSize is the largest logo or cover image accepted.
	MaxImageSize = 5 << 20
)

var ErrUploadDisabled = errors.New("image uploads are not configured")

// ImgurResponse Imgur API 响应结构
type ImgurResponse struct {
	Data struct {
		ID   string `json:"id"`
		Link string `json:"link"`
		Type string `json:"type"`
	} `json:"data"`
	Success bool `json:"success"`
	Status  int  `json:"status"`
}

// ImageUploadResult 上传结果
type ImageUploadResult struct {
	URL         string `json:"url"`          // 反代链接
	OriginalURL string `json:"original_url"` // 原始 Imgur 链接
	ID          string `json:"id"`
}

// ImageStore uploads tool logos and blog covers to Imgur and fetches them
// back for the /img proxy.
type ImageStore struct {
	clientID string
	client   *http.Client
}

func NewImageStore(clientID string, client *http.Client) *ImageStore {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &ImageStore{clientID: clientID, client: client}
}

func (s *ImageStore) Enabled() bool {
	return s != nil && s.clientID != ""
}

// Upload 上传图片到 Imgur，返回站内反代链接
func (s *ImageStore) Upload(ctx context.Context, file io.Reader, filename string) (*ImageUploadResult, error) {
	if !s.Enabled() {
		return nil, ErrUploadDisabled
	}

	fileBytes, err := io.ReadAll(io.LimitReader(file, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(fileBytes) > MaxImageSize {
		return nil, invalid("image", "Images must be 5 MB or smaller")
	}
	if !strings.HasPrefix(http.DetectContentType(fileBytes), "image/") {
		return nil, invalid("image", "Only image files can be uploaded")
	}

	var requestBody bytes.Buffer
	writer := multipart.NewWriter(&requestBody)
	if err := writer.WriteField("image", base64.StdEncoding.EncodeToString(fileBytes)); err != nil {
		return nil, err
	}
	if err := writer.WriteField("type", "base64"); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, imgurUploadURL, &requestBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Client-ID "+s.clientID)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("imgur upload: %w", err)
	}
	defer resp.Body.Close()

	var imgurResp ImgurResponse
	if err := json.NewDecoder(resp.Body).Decode(&imgurResp); err != nil {
		return nil, fmt.Errorf("decode imgur response: %w", err)
	}
	if !imgurResp.Success || imgurResp.Data.ID == "" {
		return nil, fmt.Errorf("imgur upload failed: status %d", imgurResp.Status)
	}

	return &ImageUploadResult{
		URL:         "/img/" + imgurResp.Data.ID + imageExt(filename, imgurResp.Data.Type),
		OriginalURL: imgurResp.Data.Link,
		ID:          imgurResp.Data.ID,
	}, nil
}

// imageExt 优先使用原文件扩展名，否则根据 MIME 类型推断
func imageExt(filename, mimeType string) string {
	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" {
		return ext
	}
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

// Fetch opens an uploaded image by its proxy name, e.g. "abc123.png".
// The caller closes the body.
func (s *ImageStore) Fetch(ctx context.Context, name string) (io.ReadCloser, string, error) {
	ext := filepath.Ext(name)
	id := strings.TrimSuffix(name, ext)
	if id == "" || strings.ContainsAny(id, "/.") {
		return nil, "", ErrNotFound
	}
	if ext == "" {
		ext = ".jpg"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imgurImageURL+id+ext, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Accept", "image/webp,image/apng,image/*,*/*;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch image: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, "", ErrNotFound
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}
