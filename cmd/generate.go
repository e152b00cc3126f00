package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Zachkp/portfolio/internal/ingest"
)

//nolint:gochecknoglobals // Cobra boilerplate
var worksXLSX string

//nolint:gochecknoglobals // Cobra boilerplate
var worksCSV string

//nolint:gochecknoglobals // Cobra boilerplate
var experienceCSV string

//nolint:gochecknoglobals // Cobra boilerplate
var generateOutDir string

//nolint:gochecknoglobals // Cobra boilerplate
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the data files from spreadsheet exports",
	Long: `Generate portfolioMap.json, allWorkData.json and experienceData.json from
the works sheet and a CSV export of the CV sheet.

The works sheet is read from the first sheet of the workbook. When the
workbook is missing or holds no codes, the CSV export is used instead.

Example:
  portfolio generate --workbook sheets/portfolio_list.xlsx --works sheets/all_work_list.csv`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVar(&worksXLSX, "workbook", ingest.WorksXLSX, "Works sheet (XLSX), preferred when present")
	generateCmd.Flags().StringVar(&worksCSV, "works", ingest.WorksCSV, "Works sheet (CSV)")
	generateCmd.Flags().StringVar(&experienceCSV, "experience", ingest.ExperienceCSV, "CV sheet (CSV), skipped when missing")
	generateCmd.Flags().StringVarP(&generateOutDir, "output-dir", "o", "", "Output directory (default is data_dir from config)")
}

func runGenerate(cmd *cobra.Command, _ []string) (err error) {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	out := generateOutDir
	if out == "" {
		out = cfg.DataDir
	}

	report, err := ingest.Generate(ingest.Options{
		WorksXLSX:     worksXLSX,
		WorksCSV:      worksCSV,
		ExperienceCSV: experienceCSV,
		OutDir:        out,
	}, logger.Named("generate"))
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Read works from %s\n", report.Source)
	fmt.Fprintf(w, "Wrote %d codes and %d work details to %s\n", report.Codes, report.Details, filepath.Clean(out))
	if report.Experiences > 0 {
		fmt.Fprintf(w, "Wrote %d experience entries across %d types\n", report.Experiences, report.Types)
	}
	if len(report.Unmatched) > 0 {
		fmt.Fprintf(w, "Unmatched rows: %s\n", strings.Join(report.Unmatched, ", "))
	}
	return nil
}
