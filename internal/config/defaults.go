package config

import (
	"time"

	"github.com/Zachkp/portfolio/internal/logging"
)

// DefaultPath is the config file read when none is given.
const DefaultPath = "portfolio.yml"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:             8080,
		Mode:             "release",
		DataDir:          "data",
		ImageDir:         "images",
		PDFDir:           "pdf",
		StaticDir:        "static",
		PlaceholderImage: "placeholder.png",
		DefaultCV:        "cv.pdf",
		DefaultGroups:    []string{"show_default"},
		WatchDebounce:    250 * time.Millisecond,
		Site: SiteConfig{
			Title: "Portfolio",
		},
		Visits: VisitsConfig{
			Enabled:      true,
			DatabasePath: "portfolio.db",
			Retention:    365 * 24 * time.Hour,
		},
		Admin: AdminConfig{
			Username:        "admin",
			LoginsPerMinute: 5,
		},
		Log: logging.Config{
			Level:  "info",
			Format: "json",
		},
		Build: BuildConfig{
			BaseEnv: "PUBLIC_URL",
		},
		Metrics: true,
	}
}
