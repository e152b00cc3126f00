package site

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/portfolio/internal/content"
	"github.com/Zachkp/portfolio/internal/visits"
)

const (
	testCodes  = `{"a01": "Poster Series", "a02": "Motion Reel", "b01": "Research Study"}`
	testRoutes = `{
		"default": {"cv": "cv.pdf", "categories": [
			{"name": "Graphic", "codes": ["a01", "A02"]},
			{"name": "Video", "codes": ["a02"]}
		]},
		"ux": {"cv": "ux.pdf", "categories": [{"name": "UX Research", "codes": ["b01"]}]}
	}`
	testDetails = `{
		"a01": {"fullName": "Poster Series 2023", "headPic": "a01.png", "yearBegin": "2023", "tags": ["print"], "content": "Made with **ink**."}
	}`
	testExperience = `{"typeOrder": ["Work"], "entries": [
		{"type": "Work", "organisation": "Old Studio", "role": "Intern", "begin": "2015/01", "end": "2016/01", "showDefault": true},
		{"type": "Work", "organisation": "New Studio", "role": "Lead", "begin": "2020/01", "end": "May 2023", "showDefault": true},
		{"type": "Work", "organisation": "Secret Lab", "role": "UX", "begin": "2019", "end": "2020", "showGroups": ["show_ux"]}
	]}`
)

type fixture struct {
	srv    *Server
	visits *visits.Store
	dir    string
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "data", content.CodeMapFile), testCodes)
	writeFile(t, filepath.Join(dir, "data", content.RoutesFile), testRoutes)
	writeFile(t, filepath.Join(dir, "data", content.DetailsFile), testDetails)
	writeFile(t, filepath.Join(dir, "data", content.ExperienceFile), testExperience)
	writeFile(t, filepath.Join(dir, "images", "a01.png"), "a01-image")
	writeFile(t, filepath.Join(dir, "images", "placeholder.png"), "placeholder-image")
	writeFile(t, filepath.Join(dir, "pdf", "cv.pdf"), "%PDF")

	store, err := content.NewStore(content.Paths{
		DataDir:  filepath.Join(dir, "data"),
		ImageDir: filepath.Join(dir, "images"),
		PDFDir:   filepath.Join(dir, "pdf"),
	}, nil)
	require.NoError(t, err)

	vs, err := visits.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { vs.Close() })

	opts.Mode = gin.TestMode
	opts.ImageDir = filepath.Join(dir, "images")
	opts.PDFDir = filepath.Join(dir, "pdf")
	if opts.PlaceholderImage == "" {
		opts.PlaceholderImage = "placeholder.png"
	}
	if opts.DefaultCV == "" {
		opts.DefaultCV = "fallback.pdf"
	}
	if opts.Title == "" {
		opts.Title = "Test Portfolio"
	}

	srv, err := New(opts, store, vs, nil, prometheus.NewRegistry())
	require.NoError(t, err)
	return &fixture{srv: srv, visits: vs, dir: dir}
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(w, req)
	return w
}

func (f *fixture) get(path string) *httptest.ResponseRecorder {
	return f.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func TestHealthCheck(t *testing.T) {
	f := newFixture(t, Options{})
	w := f.get("/healthz")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestPageDefault(t *testing.T) {
	f := newFixture(t, Options{})
	w := f.get("/")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()

	assert.Contains(t, body, "Graphic")
	assert.NotContains(t, body, "Video", "a02 was claimed by Graphic, so Video is empty")
	assert.Contains(t, body, "Poster Series")
	assert.Contains(t, body, "/images/a01.png")
	assert.Contains(t, body, "/images/placeholder.png", "works without a head picture use the placeholder")
	assert.Contains(t, body, "/cv/default")

	assert.Less(t, strings.Index(body, "New Studio"), strings.Index(body, "Old Studio"))
	assert.NotContains(t, body, "Secret Lab")
	assert.Contains(t, body, "<strong>CV</strong>", "default biography rendered from markdown")
}

func TestPageRoutes(t *testing.T) {
	f := newFixture(t, Options{})

	ux := f.get("/ux").Body.String()
	assert.Contains(t, ux, "UX Research")
	assert.NotContains(t, ux, "Graphic")

	unknown := f.get("/nothing-here")
	require.Equal(t, http.StatusOK, unknown.Code)
	assert.Contains(t, unknown.Body.String(), "Graphic")

	groups := f.get("/ux?group=ux").Body.String()
	assert.Contains(t, groups, "Secret Lab")
	assert.NotContains(t, groups, "New Studio")

	assert.Equal(t, http.StatusNotFound, f.get("/ux/deeper").Code)
	assert.Equal(t, http.StatusNotFound, f.do(httptest.NewRequest(http.MethodPost, "/ux", nil)).Code)
}

func TestWorkPage(t *testing.T) {
	f := newFixture(t, Options{})

	w := f.get("/work/A01")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Poster Series 2023")
	assert.Contains(t, w.Body.String(), "<strong>ink</strong>")

	w = f.get("/work/b01?route=default")
	require.Equal(t, http.StatusOK, w.Code, "known code outside the route still renders")
	assert.Contains(t, w.Body.String(), "Research Study")

	assert.Equal(t, http.StatusNotFound, f.get("/work/zzz").Code)
}

func TestCVRedirect(t *testing.T) {
	f := newFixture(t, Options{})

	w := f.get("/cv/ux")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/pdf/cv.pdf", w.Header().Get("Location"), "ux.pdf is missing, default route's CV is used")

	w = f.get("/pdf/cv.pdf")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestImagePlaceholder(t *testing.T) {
	f := newFixture(t, Options{})

	assert.Equal(t, "a01-image", f.get("/images/a01.png").Body.String())

	w := f.get("/images/missing.png")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "placeholder-image", w.Body.String())

	w = f.get("/images/../data/portfolioMap.json")
	assert.NotContains(t, w.Body.String(), "Poster Series")
}

func TestAPI(t *testing.T) {
	f := newFixture(t, Options{})

	var rt struct{ Route string }
	w := f.get("/api/route?hash=" + url.QueryEscape("#/UX/b01"))
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rt))
	assert.Equal(t, "ux", rt.Route)

	var pf struct {
		CV         string
		Categories []struct {
			Name  string
			Items []struct{ Code string }
		}
	}
	w = f.get("/api/portfolio/unknown")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pf))
	require.Len(t, pf.Categories, 1)
	assert.Equal(t, "Graphic", pf.Categories[0].Name)
	assert.Len(t, pf.Categories[0].Items, 2)
	assert.Equal(t, "/pdf/cv.pdf", pf.CV)

	var ex struct {
		Sections []struct {
			Type    string
			Entries []struct{ Organisation string }
		}
	}
	w = f.get("/api/experience?group=*")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ex))
	require.Len(t, ex.Sections, 1)
	require.Len(t, ex.Sections[0].Entries, 3)
	assert.Equal(t, "New Studio", ex.Sections[0].Entries[0].Organisation)
}

func TestAPIScrollspy(t *testing.T) {
	f := newFixture(t, Options{})

	layout := `{
		"viewport": {"width": 1000, "height": 900},
		"sections": [
			{"id": "home", "kind": "section", "rect": {"top": -800, "bottom": 100}},
			{"id": "cv", "kind": "section", "rect": {"top": 100, "bottom": 1600}},
			{"id": "category-0", "kind": "category", "rect": {"top": 2000, "bottom": 3000}}
		],
		"expanded": "item-a01",
		"detail": {"top": -20, "bottom": 400, "left": 950, "right": 1400},
		"banner": {"width": 200, "margin": 10, "top": 5}
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/scrollspy", strings.NewReader(layout))
	req.Header.Set("Content-Type", "application/json")
	w := f.do(req)
	require.Equal(t, http.StatusOK, w.Code)

	var st struct {
		Section  string
		Category string
		Banner   struct {
			Visible bool
			X, Y    float64
		}
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	assert.Equal(t, "cv", st.Section)
	assert.Empty(t, st.Category)
	assert.True(t, st.Banner.Visible)
	assert.Equal(t, 790.0, st.Banner.X)
	assert.Equal(t, 5.0, st.Banner.Y)

	req = httptest.NewRequest(http.MethodPost, "/api/scrollspy", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusBadRequest, f.do(req).Code)
}

func TestMetrics(t *testing.T) {
	f := newFixture(t, Options{})
	f.get("/ux")

	body := f.get("/metrics").Body.String()
	assert.Contains(t, body, `portfolio_page_renders_total{route_key="ux"} 1`)
	assert.Contains(t, body, "portfolio_content_codes 3")
	assert.Contains(t, body, "portfolio_http_requests_total")
}

func TestNewRejectsDuplicateMetrics(t *testing.T) {
	f := newFixture(t, Options{})
	reg := prometheus.NewRegistry()

	_, err := New(Options{Mode: gin.TestMode}, f.srv.content, nil, nil, reg)
	require.NoError(t, err)

	_, err = New(Options{Mode: gin.TestMode}, f.srv.content, nil, nil, reg)
	assert.ErrorContains(t, err, "registering metrics")
}

func TestMetricsRouteLabelBounded(t *testing.T) {
	f := newFixture(t, Options{})
	for i := 0; i < 20; i++ {
		f.get(fmt.Sprintf("/junk%d", i))
		f.get("/?hash=" + url.QueryEscape(fmt.Sprintf("#/h%d", i)))
	}
	f.get("/ux")

	var series []string
	for _, line := range strings.Split(f.get("/metrics").Body.String(), "\n") {
		if strings.HasPrefix(line, "portfolio_page_renders_total{") {
			series = append(series, line)
		}
	}
	assert.ElementsMatch(t, []string{
		`portfolio_page_renders_total{route_key="default"} 40`,
		`portfolio_page_renders_total{route_key="ux"} 1`,
	}, series)
}

func TestPageScrollspyWiring(t *testing.T) {
	f := newFixture(t, Options{})
	body := f.get("/").Body.String()

	assert.Contains(t, body, `id="item-a01" class="card" data-spy="item"`)
	assert.Contains(t, body, `id="detail-a01" class="card-detail" hidden`)
	assert.Contains(t, body, "print", "tags shown in the expandable detail")
	assert.Contains(t, body, `href="/work/a01?route=default"`)
	assert.Contains(t, body, `id="banner"`)

	// A frame skipped during a request is retried once the request settles.
	assert.Contains(t, body, "if (inflight) { pending = true; return; }")
	assert.Contains(t, body, "if (pending) { pending = false; schedule(); }")
	assert.Contains(t, body, "layout.detail = rect(")
	assert.Contains(t, body, "st.banner.visible")
}

func TestVisitTracking(t *testing.T) {
	f := newFixture(t, Options{})

	f.get("/ux")
	f.get("/work/a01?route=ux")
	f.get("/api/route")
	f.get("/images/a01.png")
	f.get("/work/zzz")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("DNT", "1")
	f.do(req)

	f.srv.Wait()
	stats, err := f.visits.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalVisits)
	assert.Equal(t, []visits.Count{{Key: "ux", Visits: 2}}, stats.TopRoutes)
	assert.Equal(t, []visits.Count{{Key: "a01", Visits: 1}}, stats.TopWorks)
}

func TestBasePath(t *testing.T) {
	f := newFixture(t, Options{BasePath: "/site/"})

	w := f.get("/site/ux")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "UX Research")
	assert.Contains(t, w.Body.String(), `href="/site/cv/ux"`)

	assert.Equal(t, http.StatusOK, f.get("/site/healthz").Code)

	w = f.get("/site/cv/default")
	assert.Equal(t, "/site/pdf/cv.pdf", w.Header().Get("Location"))
}
