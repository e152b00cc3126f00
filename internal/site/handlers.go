package site

import (
	"bytes"
	"html/template"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/content"
	"github.com/Zachkp/portfolio/internal/experience"
	"github.com/Zachkp/portfolio/internal/portfolio"
	"github.com/Zachkp/portfolio/internal/route"
	"github.com/Zachkp/portfolio/internal/scrollspy"
)

// Context keys read by the visit tracking middleware.
const (
	ctxRouteKey = "route_key"
	ctxWorkCode = "work_code"
)

func (s *Server) funcMap() template.FuncMap {
	return template.FuncMap{
		"path":     s.path,
		"image":    s.imageURL,
		"markdown": s.markdown,
		"join":     strings.Join,
		"lower":    strings.ToLower,
	}
}

func (s *Server) markdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(src), &buf); err != nil {
		s.logger.Warn("markdown conversion failed", zap.Error(err))
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}

// imageURL points at name when the image exists and at the placeholder otherwise.
func (s *Server) imageURL(name string) string {
	found := s.content.Current().Assets.Image(name, s.opts.PlaceholderImage)
	return s.path("/images/" + found)
}

func (s *Server) groups(c *gin.Context) []string {
	if g := c.QueryArray("group"); len(g) > 0 {
		return g
	}
	return s.opts.DefaultGroups
}

// relativePath strips the base path from the request path.
func (s *Server) relativePath(p string) string {
	if s.opts.BasePath != "/" {
		p = strings.TrimPrefix(p, s.opts.BasePath)
	}
	return "/" + strings.Trim(p, "/")
}

func (s *Server) notFound(c *gin.Context, what string) {
	c.HTML(http.StatusNotFound, "not-found.html", gin.H{
		"title": s.opts.Title,
		"what":  what,
	})
}

// metricsRouteLabel keeps the route_key label bounded: keys typed into the
// URL that are not configured all count as the default route.
func metricsRouteLabel(key string, routes map[string]content.RouteConfig) string {
	if _, ok := routes[key]; ok {
		return key
	}
	return content.DefaultRoute
}

// handlePage renders the whole site for the route key in the URL.
func (s *Server) handlePage(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	rel := s.relativePath(c.Request.URL.Path)
	if strings.Count(rel, "/") > 1 {
		s.notFound(c, rel)
		return
	}

	key := route.FromRequest(c.Request, s.opts.BasePath)
	d := s.content.Current()

	home := d.Home
	if strings.TrimSpace(home) == "" {
		home = DefaultHome
	}

	c.Set(ctxRouteKey, key)
	if s.metrics != nil {
		s.metrics.renders.WithLabelValues(metricsRouteLabel(key, d.Routes)).Inc()
	}

	c.HTML(http.StatusOK, "index.html", gin.H{
		"title":      s.opts.Title,
		"author":     s.opts.Author,
		"routeKey":   key,
		"routes":     d.RouteKeys(),
		"home":       home,
		"categories": portfolio.Compose(key, d.Routes, d.Codes, d.Details),
		"experience": experience.Compose(d.Experience, s.groups(c)),
		"cvURL":      s.path("/cv/" + key),
		"basePath":   s.opts.BasePath,
	})
}

// handleWork renders the detail page of one work.
func (s *Server) handleWork(c *gin.Context) {
	code := strings.ToLower(c.Param("code"))
	key := c.DefaultQuery("route", content.DefaultRoute)
	d := s.content.Current()

	item, ok := portfolio.Lookup(portfolio.Compose(key, d.Routes, d.Codes, d.Details), code)
	if !ok {
		// Works outside every configured category still have a page.
		name, known := d.Codes.Name(code)
		if !known {
			s.notFound(c, code)
			return
		}
		item = portfolio.Item{Code: code, Name: name}
		if detail, ok := d.Details[code]; ok {
			item.Detail = &detail
		}
	}

	c.Set(ctxRouteKey, strings.ToLower(key))
	c.Set(ctxWorkCode, code)

	c.HTML(http.StatusOK, "work.html", gin.H{
		"title":    s.opts.Title,
		"item":     item,
		"routeKey": strings.ToLower(key),
	})
}

// handleCV redirects to the CV PDF of a route.
func (s *Server) handleCV(c *gin.Context) {
	d := s.content.Current()
	file := portfolio.CV(c.Param("route"), d.Routes, d.Assets, s.opts.DefaultCV)
	c.Redirect(http.StatusFound, s.path("/pdf/"+file))
}

// handleImage serves an indexed image, or the placeholder when the image is missing.
func (s *Server) handleImage(c *gin.Context) {
	name := strings.TrimPrefix(c.Param("filepath"), "/")
	assets := s.content.Current().Assets

	found := assets.Image(name, "")
	if found == "" {
		found = assets.Image(s.opts.PlaceholderImage, "")
	}
	if found == "" {
		c.Status(http.StatusNotFound)
		return
	}
	c.File(filepath.Join(s.opts.ImageDir, filepath.FromSlash(found)))
}

func (s *Server) handleAPIRoute(c *gin.Context) {
	key := route.Resolve(c.Query("hash"), c.Query("path"), s.opts.BasePath)
	c.JSON(http.StatusOK, gin.H{"route": key})
}

func (s *Server) handleAPIPortfolio(c *gin.Context) {
	key := strings.ToLower(c.Param("route"))
	d := s.content.Current()
	c.JSON(http.StatusOK, gin.H{
		"route":      key,
		"cv":         s.path("/pdf/" + portfolio.CV(key, d.Routes, d.Assets, s.opts.DefaultCV)),
		"categories": portfolio.Compose(key, d.Routes, d.Codes, d.Details),
	})
}

func (s *Server) handleAPIExperience(c *gin.Context) {
	d := s.content.Current()
	c.JSON(http.StatusOK, gin.H{
		"sections": experience.Compose(d.Experience, s.groups(c)),
	})
}

func (s *Server) handleAPIScrollspy(c *gin.Context) {
	var layout scrollspy.Layout
	if err := c.ShouldBindJSON(&layout); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid layout: " + err.Error()})
		return
	}
	if s.metrics != nil {
		s.metrics.scrollspy.Inc()
	}
	c.JSON(http.StatusOK, scrollspy.Evaluate(layout))
}
