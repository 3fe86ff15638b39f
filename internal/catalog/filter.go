// Package catalog holds the pure parts of the tools directory: the
// filter/sort pipeline over the tool list and the per-user membership sets
// (bookmarks, upvotes) with their toggle semantics.
package catalog

import (
	"net/url"
	"slices"
	"strings"

	"aitools/internal/models"
)

// All is the "no restriction" value for category and pricing filters.
const All = "all"

type SortKey string

const (
	SortPopular SortKey = "popular"
	SortRating  SortKey = "rating"
	SortNewest  SortKey = "newest"
	SortName    SortKey = "name"
)

var SortKeys = []SortKey{SortPopular, SortRating, SortNewest, SortName}

func (k SortKey) Valid() bool {
	return slices.Contains(SortKeys, k)
}

type Filter struct {
	Category string
	Query    string
	Pricing  string
	Sort     SortKey
}

func DefaultFilter() Filter {
	return Filter{Category: All, Pricing: All, Sort: SortPopular}
}

// ParseFilter reads ?category=&q=&pricing=&sort= from a query string.
// Missing or unknown values fall back to the defaults.
func ParseFilter(q url.Values) Filter {
	f := DefaultFilter()
	if v := strings.ToLower(strings.TrimSpace(q.Get("category"))); v != "" {
		f.Category = v
	}
	if v := strings.ToLower(strings.TrimSpace(q.Get("pricing"))); v != "" {
		f.Pricing = v
	}
	f.Query = strings.TrimSpace(q.Get("q"))
	if k := SortKey(strings.ToLower(q.Get("sort"))); k.Valid() {
		f.Sort = k
	}
	return f
}

// Values is the inverse of ParseFilter, omitting defaults.
func (f Filter) Values() url.Values {
	v := url.Values{}
	if f.Category != "" && f.Category != All {
		v.Set("category", f.Category)
	}
	if f.Pricing != "" && f.Pricing != All {
		v.Set("pricing", f.Pricing)
	}
	if f.Query != "" {
		v.Set("q", f.Query)
	}
	if f.Sort != "" && f.Sort != SortPopular {
		v.Set("sort", string(f.Sort))
	}
	return v
}

func (f Filter) matches(t *models.Tool) bool {
	if f.Category != "" && f.Category != All && string(t.Category) != f.Category {
		return false
	}
	if f.Pricing != "" && f.Pricing != All && !strings.EqualFold(t.Pricing, f.Pricing) {
		return false
	}
	if q := strings.ToLower(f.Query); q != "" &&
		!strings.Contains(strings.ToLower(t.Name), q) &&
		!strings.Contains(strings.ToLower(t.Description), q) {
		return false
	}
	return true
}

// Apply filters, sorts and then floats featured tools to the front.
// The input slice is not modified. Ties keep their input order.
func Apply(tools []models.Tool, f Filter) []models.Tool {
	out := make([]models.Tool, 0, len(tools))
	for i := range tools {
		if f.matches(&tools[i]) {
			out = append(out, tools[i])
		}
	}

	slices.SortStableFunc(out, compareBy(f.Sort))

	// featured first; a stable sort on a boolean key is a stable partition
	slices.SortStableFunc(out, func(a, b models.Tool) int {
		switch {
		case a.Featured == b.Featured:
			return 0
		case a.Featured:
			return -1
		default:
			return 1
		}
	})
	return out
}

func compareBy(key SortKey) func(a, b models.Tool) int {
	switch key {
	case SortRating:
		return func(a, b models.Tool) int {
			switch {
			case a.AverageRating > b.AverageRating:
				return -1
			case a.AverageRating < b.AverageRating:
				return 1
			}
			return 0
		}
	case SortNewest:
		// 列表已按创建时间倒序取出，这里保持原顺序
		return func(a, b models.Tool) int { return 0 }
	case SortName:
		return func(a, b models.Tool) int {
			return strings.Compare(a.Name, b.Name)
		}
	default:
		return func(a, b models.Tool) int {
			return b.UpvoteCount - a.UpvoteCount
		}
	}
}

// ApplyAdmin is the admin table's filter: name or description substring
// plus an optional category. Order is preserved.
func ApplyAdmin(tools []models.Tool, query, category string) []models.Tool {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]models.Tool, 0, len(tools))
	for _, t := range tools {
		if category != "" && category != All && string(t.Category) != category {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(t.Name), query) &&
			!strings.Contains(strings.ToLower(t.Description), query) {
			continue
		}
		out = append(out, t)
	}
	return out
}
