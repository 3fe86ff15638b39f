package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"aitools/internal/utils"

	readability "github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"
)

const maxPageBytes = 2 << 20

// ToolDraft is what the admin form is prefilled with.
type ToolDraft struct {
	Name        string
	Description string
	LogoURL     string
	Link        string
}

// MetadataFetcher reads a tool's homepage and extracts a draft listing.
type MetadataFetcher struct {
	client    *http.Client
	sanitizer *bluemonday.Policy
}

func NewMetadataFetcher(client *http.Client) *MetadataFetcher {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &MetadataFetcher{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// Fetch downloads rawURL and pulls the site name, description and image.
func (f *MetadataFetcher) Fetch(ctx context.Context, rawURL string) (*ToolDraft, error) {
	rawURL = strings.TrimSpace(rawURL)
	if !validURL(rawURL) {
		return nil, invalid("link", "Please enter a valid URL")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: HTTP %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rawURL, err)
	}

	pageURL, _ := url.Parse(rawURL)
	if resp.Request != nil && resp.Request.URL != nil {
		pageURL = resp.Request.URL
	}

	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", rawURL, err)
	}

	draft := &ToolDraft{
		Name:        f.clean(article.SiteName),
		Description: f.clean(article.Excerpt),
		LogoURL:     strings.TrimSpace(article.Image),
		Link:        pageURL.String(),
	}
	if draft.Name == "" {
		draft.Name = f.clean(article.Title)
	}
	if draft.Description == "" {
		draft.Description = utils.Truncate(f.clean(article.TextContent), 300)
	}
	return draft, nil
}

func (f *MetadataFetcher) clean(s string) string {
	return utils.PlainText(f.sanitizer.Sanitize(s))
}
