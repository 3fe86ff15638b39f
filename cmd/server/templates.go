package main

import (
	"fmt"
	"html/template"
	"net/url"
	"path/filepath"
	"time"

	"aitools/internal/handlers"
	"aitools/internal/utils"

	"github.com/gin-contrib/multitemplate"
)

// pages are full views rendered inside the base layout.
var pages = []string{
	"auth/login.html",
	"auth/register.html",
	"catalog/index.html",
	"tool/detail.html",
	"bookmarks/list.html",
	"submit/form.html",
	"blog/list.html",
	"blog/show.html",
	"error.html",
	"admin/dashboard.html",
	"admin/tools.html",
	"admin/tool_form.html",
	"admin/categories.html",
	"admin/submissions.html",
	"admin/posts.html",
	"admin/post_form.html",
	"admin/subscribers.html",
}

// fragments are HTMX partials: the view itself plus the shared components.
var fragments = []string{
	"catalog/grid.html",
}

func templateFuncs(siteName string) template.FuncMap {
	return template.FuncMap{
		"dict": func(values ...interface{}) (map[string]interface{}, error) {
			if len(values)%2 != 0 {
				return nil, fmt.Errorf("invalid dict call")
			}
			dict := make(map[string]interface{}, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict keys must be strings")
				}
				dict[key] = values[i+1]
			}
			return dict, nil
		},
		"add": func(a, b int) int {
			return a + b
		},
		"timeAgo": timeAgo,
		"date": func(t time.Time) string {
			return t.Format("Jan 2, 2006")
		},
		"eq": func(a, b interface{}) bool {
			return a == b
		},
		"gt": func(a, b int) bool {
			return a > b
		},
		"safeHTML": func(s string) template.HTML {
			return template.HTML(s)
		},
		"plainText": utils.PlainText,
		"truncate": func(n int, s string) string {
			return utils.Truncate(s, n)
		},
		"urlquery": func(s string) string {
			return url.QueryEscape(s)
		},
		"stars": func(rating float64) string {
			return fmt.Sprintf("%.1f", rating)
		},
		"bookmarkButton": func(toolID string, marked bool) template.HTML {
			return template.HTML(handlers.BookmarkButton(toolID, marked))
		},
		"upvoteButton": func(toolID string, marked bool, count int) template.HTML {
			return template.HTML(handlers.UpvoteButton(toolID, marked, count))
		},
		"siteName": func() string {
			return siteName
		},
	}
}

func timeAgo(t interface{}) string {
	var timeVal time.Time
	switch v := t.(type) {
	case time.Time:
		timeVal = v
	case *time.Time:
		if v == nil {
			return ""
		}
		timeVal = *v
	default:
		return ""
	}

	seconds := int(time.Since(timeVal).Seconds())
	plural := func(n int, unit string) string {
		if n == 1 {
			return fmt.Sprintf("1 %s ago", unit)
		}
		return fmt.Sprintf("%d %ss ago", n, unit)
	}

	switch {
	case seconds < 60:
		return "just now"
	case seconds < 3600:
		return plural(seconds/60, "minute")
	case seconds < 86400:
		return plural(seconds/3600, "hour")
	case seconds < 2592000:
		return plural(seconds/86400, "day")
	case seconds < 31536000:
		return plural(seconds/2592000, "month")
	}
	return plural(seconds/31536000, "year")
}

func loadTemplates(templatesDir, siteName string) multitemplate.Renderer {
	r := multitemplate.NewRenderer()

	layouts, err := filepath.Glob(templatesDir + "/layouts/*.html")
	if err != nil {
		panic(err)
	}

	includes, err := filepath.Glob(templatesDir + "/includes/*.html")
	if err != nil {
		panic(err)
	}

	components, err := filepath.Glob(templatesDir + "/components/*.html")
	if err != nil {
		panic(err)
	}

	// "catalog/index.html" -> [base, includes..., components..., view]
	assemble := func(view string) []string {
		files := make([]string, 0, len(layouts)+len(includes)+len(components)+1)
		files = append(files, layouts...)
		files = append(files, includes...)
		files = append(files, components...)
		files = append(files, view)
		return files
	}

	funcMap := templateFuncs(siteName)
	for _, name := range pages {
		r.AddFromFilesFuncs(name, funcMap, assemble(filepath.Join(templatesDir, "views", name))...)
	}
	// 片段：视图文件必须排在第一个，作为执行入口
	for _, name := range fragments {
		files := append([]string{filepath.Join(templatesDir, "views", name)}, components...)
		r.AddFromFilesFuncs(name, funcMap, files...)
	}

	return r
}
