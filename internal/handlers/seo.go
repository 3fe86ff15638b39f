package handlers

import (
	"fmt"
	"html"
	"log"
	"net/http"
	"strings"
	"time"

	"aitools/internal/services"
	"aitools/internal/utils"

	"github.com/gin-gonic/gin"
)

type SEOHandler struct {
	siteURL  string
	siteName string
	tools    *services.ToolService
	blog     *services.BlogService
}

func NewSEOHandler(siteURL, siteName string, tools *services.ToolService, blog *services.BlogService) *SEOHandler {
	return &SEOHandler{siteURL: strings.TrimRight(siteURL, "/"), siteName: siteName, tools: tools, blog: blog}
}

// RobotsTxt 返回 robots.txt
func (h *SEOHandler) RobotsTxt(c *gin.Context) {
	content := fmt.Sprintf(`User-agent: *
Allow: /

Disallow: /admin/
Disallow: /bookmarks
Disallow: /login
Disallow: /signup

Disallow: /bookmark/
Disallow: /upvote/

Sitemap: %s/sitemap.xml
`, h.siteURL)

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.String(http.StatusOK, content)
}

func sitemapURL(loc, lastmod, changefreq string, priority float64) string {
	return fmt.Sprintf(`  <url>
    <loc>%s</loc>
    <lastmod>%s</lastmod>
    <changefreq>%s</changefreq>
    <priority>%.1f</priority>
  </url>
`, escapeXML(loc), lastmod, changefreq, priority)
}

// SitemapXML 动态生成 sitemap.xml：首页、博客、所有工具和已发布文章
func (h *SEOHandler) SitemapXML(c *gin.Context) {
	ctx := c.Request.Context()
	now := time.Now().Format("2006-01-02")

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
`)
	b.WriteString(sitemapURL(h.siteURL+"/", now, "daily", 1.0))
	b.WriteString(sitemapURL(h.siteURL+"/blog", now, "weekly", 0.8))
	b.WriteString(sitemapURL(h.siteURL+"/submit", now, "monthly", 0.5))

	tools, err := h.tools.All(ctx)
	if err != nil {
		log.Printf("[seo] sitemap tools: %v", err)
	}
	for _, tool := range tools {
		priority := 0.7
		if tool.Featured {
			priority = 0.9
		}
		b.WriteString(sitemapURL(h.siteURL+"/tool/"+tool.ID, tool.UpdatedAt.Format("2006-01-02"), "weekly", priority))
	}

	posts, err := h.blog.Published(ctx, 500)
	if err != nil {
		log.Printf("[seo] sitemap posts: %v", err)
	}
	for _, post := range posts {
		b.WriteString(sitemapURL(h.siteURL+"/blog/"+post.Slug, post.UpdatedAt.Format("2006-01-02"), "monthly", 0.6))
	}

	b.WriteString(`</urlset>`)

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.String(http.StatusOK, b.String())
}

// RSSFeed 生成博客的 RSS 2.0 feed
func (h *SEOHandler) RSSFeed(c *gin.Context) {
	posts, err := h.blog.Published(c.Request.Context(), 20)
	if err != nil {
		log.Printf("[seo] feed: %v", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">
  <channel>
    <title>` + escapeXML(h.siteName) + `</title>
    <link>` + escapeXML(h.siteURL) + `</link>
    <description>News, guides and reviews of AI tools</description>
    <language>en</language>
    <lastBuildDate>` + time.Now().Format(time.RFC1123Z) + `</lastBuildDate>
    <atom:link href="` + escapeXML(h.siteURL) + `/feed.xml" rel="self" type="application/rss+xml"/>
`)

	for _, post := range posts {
		link := h.siteURL + "/blog/" + post.Slug
		published := post.CreatedAt
		if post.PublishedAt != nil {
			published = *post.PublishedAt
		}
		summary := post.Excerpt
		if summary == "" {
			summary = utils.MarkdownExcerpt(post.Content, 300)
		}

		b.WriteString(`    <item>
      <title>` + escapeXML(post.Title) + `</title>
      <link>` + escapeXML(link) + `</link>
      <description><![CDATA[` + cdata(summary) + `]]></description>
      <pubDate>` + published.Format(time.RFC1123Z) + `</pubDate>
      <guid isPermaLink="true">` + escapeXML(link) + `</guid>
    </item>
`)
	}

	b.WriteString(`  </channel>
</rss>`)

	c.Header("Content-Type", "application/rss+xml; charset=utf-8")
	c.String(http.StatusOK, b.String())
}

// escapeXML 转义 XML 特殊字符
func escapeXML(s string) string {
	return html.EscapeString(s)
}

// cdata keeps a "]]>" in the text from closing the section early.
func cdata(s string) string {
	return strings.ReplaceAll(s, "]]>", "]]]]><![CDATA[>")
}
