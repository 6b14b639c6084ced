package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "greenstar.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "greenstar", cfg.Workbook.Password)
	assert.True(t, cfg.Workbook.Macros)
	assert.Equal(t, "index.html", cfg.Outputs.Site)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_RequiresEnv(t *testing.T) {
	t.Setenv(EnvVar, "")

	_, err := Load()
	assert.ErrorIs(t, err, ErrNoConfig)
}

func TestLoad_WithEnv(t *testing.T) {
	path := writeConfig(t, `
inputs:
  catalog: catalog.yaml
  guidelines: guidelines.docx
workbook:
  password: s3cret
  macros: false
log:
  level: debug
  format: json
`)
	t.Setenv(EnvVar, path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "catalog.yaml", cfg.Inputs.Catalog)
	assert.Equal(t, "guidelines.docx", cfg.Inputs.Guidelines)
	assert.Equal(t, "s3cret", cfg.Workbook.Password)
	assert.False(t, cfg.Workbook.Macros)
	assert.Equal(t, slog.LevelDebug, cfg.Log.SlogLevel())

	// Untouched sections keep their defaults.
	assert.Equal(t, "index.html", cfg.Outputs.Site)
	assert.True(t, cfg.Workbook.ExportVBA)
	assert.Equal(t, "Green_Star_Buildings_v1.1_Submission_Questions.xlsx", cfg.Inputs.Questions)
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadFile(writeConfig(t, "inputs: [not, a, map]\n"))
	assert.Error(t, err)
}

func TestExpandVariables(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	t.Setenv("GS_SOURCE", "")

	path := writeConfig(t, `
inputs:
  questions: ${GS_SOURCE:-/data}/questions.xlsx
outputs:
  dir: ${HOME}/out
  site: ${GREENSTAR_OUT}/web/index.html
`)
	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/questions.xlsx", cfg.Inputs.Questions)
	assert.Equal(t, "/home/tester/out", cfg.Outputs.Dir)
	assert.Equal(t, "/home/tester/out/web/index.html", cfg.Outputs.Site)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Inputs.Questions = ""
	cfg.Workbook.Password = ""
	cfg.Log.Format = "xml"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inputs.questions or inputs.catalog is required")
	assert.Contains(t, err.Error(), "workbook.password is required")
	assert.Contains(t, err.Error(), "log.format must be one of")
}

func TestPath(t *testing.T) {
	cfg := Default()
	cfg.Outputs.Dir = "out"

	assert.Equal(t, filepath.Join("out", "index.html"), cfg.Path("index.html"))
	assert.Equal(t, "/abs/index.html", cfg.Path("/abs/index.html"))

	cfg.Outputs.Dir = filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, cfg.EnsureOutputDir())
	assert.DirExists(t, cfg.Outputs.Dir)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf).Info("hidden")
	assert.Empty(t, buf.String())

	LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf).Warn("shown", "k", "v")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"k":"v"`)

	buf.Reset()
	LogConfig{Level: "bogus"}.NewLogger(&buf).Info("text")
	assert.Contains(t, buf.String(), "msg=text")
}
