package cmd

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Zachkp/portfolio/internal/config"
)

//nolint:gochecknoglobals // Cobra boilerplate
var forceInit bool

//nolint:gochecknoglobals // Cobra boilerplate
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite an existing config file")
}

func runInit(cmd *cobra.Command, _ []string) (err error) {
	if _, statErr := os.Stat(configFile); statErr == nil && !forceInit {
		return errors.Errorf("%s already exists, use --force to overwrite", configFile)
	}

	err = config.DefaultConfig().Save(configFile)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", configFile)
	return nil
}
