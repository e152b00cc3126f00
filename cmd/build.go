package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Zachkp/portfolio/internal/build"
)

//nolint:gochecknoglobals // Cobra boilerplate
var buildBasePath string

//nolint:gochecknoglobals // Cobra boilerplate
var buildCmd = &cobra.Command{
	Use:   "build -- <tool> [args...]",
	Short: "Run a front-end build with the base path exported",
	Long: `Run an external build tool with the site's base path exported in the
environment variable named by build.base_env (PUBLIC_URL by default).

The command exits with the tool's exit status.

Example:
  portfolio build --base-path /portfolio/ -- npm run build`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBuild,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().SetInterspersed(false)
	buildCmd.Flags().StringVar(&buildBasePath, "base-path", "", "Base path (default is base_path from config)")
}

func runBuild(cmd *cobra.Command, args []string) (err error) {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	base := buildBasePath
	if base == "" {
		base = cfg.BasePath
	}

	code, err := build.Run(cmd.Context(), build.Command{
		BaseEnv:  cfg.Build.BaseEnv,
		BasePath: base,
		Name:     args[0],
		Args:     args[1:],
		Stdout:   cmd.OutOrStdout(),
		Stderr:   cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	if code != 0 {
		os.Exit(code)
	}
	return nil
}
