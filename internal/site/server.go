// Package site serves the portfolio: the single-page CV and showcase,
// work detail pages, the JSON API and the admin dashboard.
package site

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Zachkp/portfolio/internal/content"
	"github.com/Zachkp/portfolio/internal/logging"
	"github.com/Zachkp/portfolio/internal/visits"
)

//go:embed templates/*.html
var templateFS embed.FS

// Options configure a Server.
type Options struct {
	Mode     string
	BasePath string

	ImageDir  string
	PDFDir    string
	StaticDir string

	PlaceholderImage string
	DefaultCV        string
	DefaultGroups    []string

	Title  string
	Author string

	AdminUsername        string
	AdminPassword        string
	AdminLoginsPerMinute int
	VisitRetention       time.Duration
}

// Server wires content, rendering and the visitor log into a gin engine.
type Server struct {
	opts     Options
	content  *content.Store
	visits   *visits.Store
	logger   *zap.Logger
	metrics  *Metrics
	gatherer prometheus.Gatherer

	engine *gin.Engine
	md     goldmark.Markdown

	adminToken   string
	loginLimiter *rate.Limiter

	pending sync.WaitGroup
}

// New builds the server. visitStore may be nil to disable the visitor log
// and admin pages; reg may be nil to disable /metrics.
func New(opts Options, store *content.Store, visitStore *visits.Store, logger *zap.Logger, reg *prometheus.Registry) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}
	opts.BasePath = "/" + strings.Trim(opts.BasePath, "/")

	s := &Server{
		opts:    opts,
		content: store,
		visits:  visitStore,
		logger:  logger,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
	}

	if reg != nil {
		m, err := NewMetrics(reg)
		if err != nil {
			return nil, errors.Wrap(err, "registering metrics")
		}
		s.metrics = m
		s.gatherer = reg
		s.metrics.codes.Set(float64(store.Current().Codes.Len()))
		store.OnReload(func(d *content.Data) {
			s.metrics.reloads.Inc()
			s.metrics.codes.Set(float64(d.Codes.Len()))
		})
	}

	if visitStore != nil {
		token, err := visits.NewToken()
		if err != nil {
			return nil, err
		}
		s.adminToken = token
		perMinute := opts.AdminLoginsPerMinute
		if perMinute <= 0 {
			perMinute = 5
		}
		s.loginLimiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
	}

	if err := s.buildEngine(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Server) buildEngine() error {
	r := gin.New()
	r.Use(logging.Middleware(s.logger), gin.Recovery())
	if s.metrics != nil {
		r.Use(s.metrics.middleware())
	}

	tmpl, err := template.New("").Funcs(s.funcMap()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return errors.Wrap(err, "parsing templates")
	}
	r.SetHTMLTemplate(tmpl)

	if s.visits != nil {
		r.Use(s.visitTrackingMiddleware())
	}
	g := r.Group(s.opts.BasePath)

	g.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if s.gatherer != nil {
		g.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}

	g.GET("/images/*filepath", s.handleImage)
	if s.opts.PDFDir != "" {
		g.Static("/pdf", s.opts.PDFDir)
	}
	if s.opts.StaticDir != "" {
		g.Static("/static", s.opts.StaticDir)
	}

	g.GET("/", s.handlePage)
	g.GET("/work/:code", s.handleWork)
	g.GET("/cv/:route", s.handleCV)

	api := g.Group("/api")
	api.GET("/route", s.handleAPIRoute)
	api.GET("/portfolio/:route", s.handleAPIPortfolio)
	api.GET("/experience", s.handleAPIExperience)
	api.POST("/scrollspy", s.handleAPIScrollspy)

	if s.visits != nil {
		s.setupAdminRoutes(g)
	}

	// Every other single-segment path is a route key.
	r.NoRoute(s.handlePage)

	s.engine = r
	return nil
}

// Handler returns the HTTP handler of the site.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr), zap.String("base_path", s.opts.BasePath))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Wait()
	return err
}

// Wait blocks until background visit writes have finished.
func (s *Server) Wait() {
	s.pending.Wait()
}

// CleanupVisits applies the retention policy to the visitor log.
func (s *Server) CleanupVisits(ctx context.Context) {
	if s.visits == nil || s.opts.VisitRetention <= 0 {
		return
	}
	n, err := s.visits.Cleanup(ctx, s.opts.VisitRetention)
	if err != nil {
		s.logger.Error("visit cleanup failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("visit cleanup", zap.Int64("removed", n), zap.Duration("retention", s.opts.VisitRetention))
	}
}

// path prefixes p with the base path.
func (s *Server) path(p string) string {
	if s.opts.BasePath == "/" {
		return p
	}
	return s.opts.BasePath + p
}
