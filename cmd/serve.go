package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/content"
	"github.com/Zachkp/portfolio/internal/site"
	"github.com/Zachkp/portfolio/internal/visits"
)

//nolint:gochecknoglobals // Cobra boilerplate
var servePort int

//nolint:gochecknoglobals // Cobra boilerplate
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the site",
	Long: `Serve the portfolio site until interrupted.

With watch enabled in the config, edits to the data files, images or PDFs
are picked up without a restart.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (overrides config)")
}

func runServe(cmd *cobra.Command, _ []string) (err error) {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort > 0 {
		cfg.Port = servePort
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := content.NewStore(content.Paths{
		DataDir:  cfg.DataDir,
		ImageDir: cfg.ImageDir,
		PDFDir:   cfg.PDFDir,
	}, logger.Named("content"))
	if err != nil {
		return errors.Wrap(err, "failed to load content")
	}

	if cfg.Watch {
		go func() {
			if err := store.Watch(ctx, cfg.WatchDebounce); err != nil {
				logger.Error("content watcher stopped", zap.Error(err))
			}
		}()
	}

	var vs *visits.Store
	if cfg.Visits.Enabled {
		vs, err = visits.Open(cfg.Visits.DatabasePath)
		if err != nil {
			return errors.Wrap(err, "failed to open visitor log")
		}
		defer vs.Close()
	}

	var reg *prometheus.Registry
	if cfg.Metrics {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	srv, err := site.New(siteOptions(cfg), store, vs, logger.Named("http"), reg)
	if err != nil {
		return err
	}

	if vs != nil {
		srv.CleanupVisits(ctx)
		go cleanupLoop(ctx, srv)
	}

	return srv.Run(ctx, fmt.Sprintf(":%d", cfg.Port))
}

func siteOptions(cfg *config.Config) site.Options {
	return site.Options{
		Mode:                 cfg.Mode,
		BasePath:             cfg.BasePath,
		ImageDir:             cfg.ImageDir,
		PDFDir:               cfg.PDFDir,
		StaticDir:            cfg.StaticDir,
		PlaceholderImage:     cfg.PlaceholderImage,
		DefaultCV:            cfg.DefaultCV,
		DefaultGroups:        cfg.DefaultGroups,
		Title:                cfg.Site.Title,
		Author:               cfg.Site.Author,
		AdminUsername:        cfg.Admin.Username,
		AdminPassword:        cfg.Admin.Password,
		AdminLoginsPerMinute: cfg.Admin.LoginsPerMinute,
		VisitRetention:       cfg.Visits.Retention,
	}
}

// cleanupLoop applies the retention policy once a day.
func cleanupLoop(ctx context.Context, srv *site.Server) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			srv.CleanupVisits(ctx)
		}
	}
}
