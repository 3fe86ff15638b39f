package utils

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Heading is one entry of a post's table of contents.
type Heading struct {
	ID    string
	Text  string
	Level int
}

const embedFrame = `<div class="video-container"><iframe src="%s" frameborder="0" allowfullscreen allow="accelerometer; autoplay; clipboard-write; encrypted-media; gyroscope; picture-in-picture"></iframe></div>`

// EnhanceHTMLContent 为图片增加懒加载等属性，并把单独一行的视频链接转换为嵌入式播放器
func EnhanceHTMLContent(htmlStr string) template.HTML {
	if htmlStr == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return template.HTML(htmlStr)
	}

	doc.Find("img").Each(func(i int, s *goquery.Selection) {
		s.SetAttr("referrerpolicy", "no-referrer")
		s.SetAttr("loading", "lazy")
	})

	doc.Find("p").Each(func(i int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if !strings.HasPrefix(text, "http") || strings.Contains(text, " ") {
			return
		}
		if src := videoEmbedURL(text); src != "" {
			s.ReplaceWithHtml(fmt.Sprintf(embedFrame, src))
		}
	})

	// goquery wraps fragments in html/body, keep only the body content
	html, _ := doc.Find("body").Html()
	if html == "" {
		html, _ = doc.Html()
	}

	return template.HTML(html)
}

func videoEmbedURL(link string) string {
	switch {
	case strings.Contains(link, "youtube.com/watch?v="):
		id := strings.Split(strings.SplitN(link, "v=", 2)[1], "&")[0]
		return "https://www.youtube.com/embed/" + template.URLQueryEscaper(id)
	case strings.Contains(link, "youtu.be/"):
		id := strings.Split(strings.SplitN(link, "youtu.be/", 2)[1], "?")[0]
		return "https://www.youtube.com/embed/" + template.URLQueryEscaper(id)
	case strings.Contains(link, "vimeo.com/"):
		id := strings.Split(strings.SplitN(link, "vimeo.com/", 2)[1], "?")[0]
		id = strings.TrimSuffix(id, "/")
		if id == "" || strings.Contains(id, "/") {
			return ""
		}
		return "https://player.vimeo.com/video/" + template.URLQueryEscaper(id)
	}
	return ""
}

// ExtractHeadings lists the h2/h3 headings that carry an id.
func ExtractHeadings(htmlStr string) []Heading {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return nil
	}

	var headings []Heading
	doc.Find("h2, h3").Each(func(i int, s *goquery.Selection) {
		id, ok := s.Attr("id")
		if !ok || id == "" {
			return
		}
		level := 2
		if goquery.NodeName(s) == "h3" {
			level = 3
		}
		headings = append(headings, Heading{ID: id, Text: strings.TrimSpace(s.Text()), Level: level})
	})
	return headings
}
