// Package route derives the route key that selects a site variant.
package route

import (
	"net/http"
	"strings"

	"github.com/Zachkp/portfolio/internal/content"
)

// HashParam is the query parameter the page script uses to forward
// location.hash, which browsers never send to the server.
const HashParam = "hash"

// Resolve returns the lowercase first segment of hash, or of path when the
// hash has none. basePath is stripped from path first. An empty result
// becomes content.DefaultRoute.
func Resolve(hash, path, basePath string) string {
	if key := firstSegment(strings.TrimLeft(hash, "#!")); key != "" {
		return key
	}
	if key := firstSegment(stripBase(path, basePath)); key != "" {
		return key
	}
	return content.DefaultRoute
}

// FromRequest resolves the key of an incoming page request.
func FromRequest(r *http.Request, basePath string) string {
	return Resolve(r.URL.Query().Get(HashParam), r.URL.Path, basePath)
}

func stripBase(path, basePath string) string {
	base := strings.Trim(basePath, "/")
	if base == "" {
		return path
	}
	trimmed := strings.TrimLeft(path, "/")
	if trimmed == base {
		return ""
	}
	if strings.HasPrefix(trimmed, base+"/") {
		return trimmed[len(base)+1:]
	}
	return path
}

func firstSegment(s string) string {
	s = strings.TrimLeft(s, "/")
	if i := strings.IndexAny(s, "/?#&"); i >= 0 {
		s = s[:i]
	}
	return strings.ToLower(strings.TrimSpace(s))
}
