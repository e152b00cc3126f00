// Package portfolio turns route configuration into ordered categories of
// portfolio items.
package portfolio

import (
	"strings"

	"github.com/Zachkp/portfolio/internal/content"
)

// AllCategory names the category synthesized when no route configures any.
const AllCategory = "All"

// Item is one work shown on the site.
type Item struct {
	Code     string              `json:"code"`
	Name     string              `json:"name"`
	Category string              `json:"category"`
	Detail   *content.WorkDetail `json:"detail,omitempty"`
}

// Category is a named, ordered group of items.
type Category struct {
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

// Compose builds the categories for key. Unknown keys, and keys whose
// configuration yields no items, fall back to the default route; if that is
// empty too, every known code goes into a single category.
func Compose(key string, routes map[string]content.RouteConfig, codes content.CodeMap, details map[string]content.WorkDetail) []Category {
	if cfg, ok := routes[strings.ToLower(key)]; ok {
		if cats := build(cfg.Categories, codes, details); len(cats) > 0 {
			return cats
		}
	}
	if cfg, ok := routes[content.DefaultRoute]; ok {
		if cats := build(cfg.Categories, codes, details); len(cats) > 0 {
			return cats
		}
	}
	return build([]content.CategoryConfig{{Name: AllCategory, Codes: codes.Codes}}, codes, details)
}

// build resolves each configured code case-insensitively. A code claimed by
// an earlier category is skipped, as is a code the code map does not know.
func build(configs []content.CategoryConfig, codes content.CodeMap, details map[string]content.WorkDetail) []Category {
	used := make(map[string]bool)
	var out []Category

	for _, cc := range configs {
		cat := Category{Name: cc.Name}
		for _, raw := range cc.Codes {
			code := strings.ToLower(strings.TrimSpace(raw))
			if used[code] {
				continue
			}
			name, ok := codes.Name(code)
			if !ok {
				continue
			}
			used[code] = true

			item := Item{Code: code, Name: name, Category: cc.Name}
			if d, ok := details[code]; ok {
				item.Detail = &d
			}
			cat.Items = append(cat.Items, item)
		}
		if len(cat.Items) > 0 {
			out = append(out, cat)
		}
	}

	return out
}

// Lookup finds the item with code in cats.
func Lookup(cats []Category, code string) (Item, bool) {
	code = strings.ToLower(code)
	for _, c := range cats {
		for _, it := range c.Items {
			if it.Code == code {
				return it, true
			}
		}
	}
	return Item{}, false
}

// CV resolves the CV asset for key: the route's own file when it exists,
// else the default route's file, else fallback.
func CV(key string, routes map[string]content.RouteConfig, assets *content.Assets, fallback string) string {
	for _, k := range []string{strings.ToLower(key), content.DefaultRoute} {
		cfg, ok := routes[k]
		if !ok || cfg.CV == "" {
			continue
		}
		if found, ok := assets.PDF(cfg.CV); ok {
			return found
		}
	}
	return fallback
}
