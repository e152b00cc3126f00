package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/logging"
)

//nolint:gochecknoglobals // Cobra boilerplate
var verbose bool

//nolint:gochecknoglobals // Cobra boilerplate
var configFile string

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Serve a portfolio and CV site",
	Long: `portfolio serves a single-page CV and work showcase. The route key in the
URL selects which categories, works and CV variant a visitor sees.

Content lives in JSON data files that can be generated from spreadsheet
exports with "portfolio generate".`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", config.DefaultPath, "config file")
}

// loadConfig reads the config file named by --config.
func loadConfig() (*config.Config, error) {
	return config.Load(configFile)
}

// newLogger builds the logger from cfg; --verbose forces debug level.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	lc := cfg.Log
	if verbose {
		lc.Level = "debug"
	}
	return logging.New(lc)
}
