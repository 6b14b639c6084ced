// Package config loads the generator configuration from a YAML file.
//
// The file is named by the GREENSTAR_CONFIG environment variable (via
// [Load]) or a --config flag (via [LoadFile]). Values missing from the file
// keep their [Default]. ${HOME} and ${VAR:-default} patterns are expanded
// in path fields after loading.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable read by Load.
const EnvVar = "GREENSTAR_CONFIG"

// ErrNoConfig is returned by Load when EnvVar is unset.
var ErrNoConfig = errors.New(EnvVar + " environment variable not set")

// Config is the complete generator configuration.
type Config struct {
	Inputs   InputsConfig   `yaml:"inputs"`
	Outputs  OutputsConfig  `yaml:"outputs"`
	Workbook WorkbookConfig `yaml:"workbook"`
	Log      LogConfig      `yaml:"log"`
}

// InputsConfig names the source documents.
type InputsConfig struct {
	// Questions is the source questions workbook (.xlsx).
	Questions string `yaml:"questions"`

	// Catalog is a YAML catalog. When set it is used instead of Questions.
	Catalog string `yaml:"catalog"`

	// Guidelines is the submission guidelines document (.docx). Optional.
	Guidelines string `yaml:"guidelines"`
}

// OutputsConfig names the generated files. Relative names are resolved
// against Dir.
type OutputsConfig struct {
	Dir string `yaml:"dir"`

	// Workbook is the workbook file name without extension; .xlsm or .xlsx
	// is chosen by whether macros were embedded.
	Workbook string `yaml:"workbook"`

	Site       string `yaml:"site"`
	VBAProject string `yaml:"vba_project"`
	Catalog    string `yaml:"catalog"`
}

// WorkbookConfig controls the spreadsheet output.
type WorkbookConfig struct {
	// Password protects every sheet. Default: greenstar
	Password string `yaml:"password"`

	// Macros embeds the generated VBA project. Default: true
	Macros bool `yaml:"macros"`

	// ExportVBA also writes the modules as importable .bas/.cls files.
	ExportVBA bool `yaml:"export_vba"`

	// ProjectName is the VBA project name. Default: VBAProject
	ProjectName string `yaml:"project_name"`
}

// LogConfig controls the CLI logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error. Default: info
	Level string `yaml:"level"`

	// Format is text or json. Default: text
	Format string `yaml:"format"`
}

// Default returns the configuration used before a file is applied.
func Default() *Config {
	return &Config{
		Inputs: InputsConfig{
			Questions:  "Green_Star_Buildings_v1.1_Submission_Questions.xlsx",
			Guidelines: "",
		},
		Outputs: OutputsConfig{
			Dir:        ".",
			Workbook:   "Green_Star_Buildings_v1.1_Interactive",
			Site:       "index.html",
			VBAProject: "vbaProject.bin",
			Catalog:    "catalog.yaml",
		},
		Workbook: WorkbookConfig{
			Password:    "greenstar",
			Macros:      true,
			ExportVBA:   true,
			ProjectName: "VBAProject",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads the file named by GREENSTAR_CONFIG.
func Load() (*Config, error) {
	path := os.Getenv(EnvVar)
	if path == "" {
		return nil, ErrNoConfig
	}
	return LoadFile(path)
}

// LoadFile loads configuration from path over the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.expandVariables()
	return cfg, nil
}

func (c *Config) expandVariables() {
	vars := map[string]string{"HOME": os.Getenv("HOME")}

	c.Outputs.Dir = expandVars(c.Outputs.Dir, vars)
	vars["GREENSTAR_OUT"] = c.Outputs.Dir

	for _, p := range []*string{
		&c.Inputs.Questions, &c.Inputs.Catalog, &c.Inputs.Guidelines,
		&c.Outputs.Workbook, &c.Outputs.Site, &c.Outputs.VBAProject, &c.Outputs.Catalog,
	} {
		*p = expandVars(*p, vars)
	}
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default}, preferring vars over the
// environment.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		name, def := parts[1], parts[2]
		if v, ok := vars[name]; ok && v != "" {
			return v
		}
		if v := os.Getenv(name); v != "" {
			return v
		}
		return def
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Inputs.Questions == "" && c.Inputs.Catalog == "" {
		errs = append(errs, errors.New("inputs.questions or inputs.catalog is required"))
	}
	if c.Outputs.Workbook == "" {
		errs = append(errs, errors.New("outputs.workbook is required"))
	}
	if c.Outputs.Site == "" {
		errs = append(errs, errors.New("outputs.site is required"))
	}
	if c.Workbook.Password == "" {
		errs = append(errs, errors.New("workbook.password is required"))
	}
	if levels := []string{"debug", "info", "warn", "error"}; !slices.Contains(levels, strings.ToLower(c.Log.Level)) {
		errs = append(errs, fmt.Errorf("log.level must be one of: %v", levels))
	}
	if formats := []string{"text", "json"}; !slices.Contains(formats, c.Log.Format) {
		errs = append(errs, fmt.Errorf("log.format must be one of: %v", formats))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Path resolves an output file name against Outputs.Dir.
func (c *Config) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Outputs.Dir, name)
}

// EnsureOutputDir creates Outputs.Dir if it does not exist.
func (c *Config) EnsureOutputDir() error {
	if err := os.MkdirAll(c.Outputs.Dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", c.Outputs.Dir, err)
	}
	return nil
}

// SlogLevel parses Level, defaulting to info.
func (l LogConfig) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// NewLogger builds the logger described by l, writing to w.
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: l.SlogLevel()}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
