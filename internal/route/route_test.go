package route

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		hash     string
		path     string
		basePath string
		want     string
	}{
		{name: "empty", want: "default"},
		{name: "hash route", hash: "#/UX/item", path: "/design", want: "ux"},
		{name: "hashbang", hash: "#!/Design", want: "design"},
		{name: "plain hash", hash: "#motion", want: "motion"},
		{name: "bare hash falls back to path", hash: "#", path: "/Motion/x", want: "motion"},
		{name: "path only", path: "/game", want: "game"},
		{name: "root path", path: "/", want: "default"},
		{name: "base path stripped", path: "/site/ux/", basePath: "/site/", want: "ux"},
		{name: "base path only", path: "/site", basePath: "site", want: "default"},
		{name: "other prefix kept", path: "/sitemap", basePath: "site", want: "sitemap"},
		{name: "query in hash", hash: "#/ux?x=1", want: "ux"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.hash, tt.path, tt.basePath))
		})
	}
}

func TestFromRequest(t *testing.T) {
	req := httptest.NewRequest("GET", "/design?hash=%23%2Fux", nil)
	assert.Equal(t, "ux", FromRequest(req, ""))

	req = httptest.NewRequest("GET", "/design", nil)
	assert.Equal(t, "design", FromRequest(req, ""))
}
