package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/content"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, version+"\n", out)
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portfolio.yml")
	forceInit = false

	out, err := execute(t, "init", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().Port, cfg.Port)

	_, err = execute(t, "init", "--config", path)
	assert.ErrorContains(t, err, "already exists")

	_, err = execute(t, "init", "--config", path, "--force")
	assert.NoError(t, err)
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	works := filepath.Join(dir, "works.csv")
	require.NoError(t, os.WriteFile(works, []byte("index,tableName\nA1,First\nb2,Second\n,Stray\n"), 0o600))
	out := filepath.Join(dir, "data")

	stdout, err := execute(t, "generate",
		"--config", filepath.Join(dir, "none.yml"),
		"--workbook", filepath.Join(dir, "missing.xlsx"),
		"--works", works,
		"--experience", filepath.Join(dir, "missing.csv"),
		"--output-dir", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Read works from "+works)
	assert.Contains(t, stdout, "Wrote 2 codes")
	assert.Contains(t, stdout, "Unmatched rows: Stray")

	data, err := content.Load(content.Paths{DataDir: out})
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "b2"}, data.Codes.Codes)
}
