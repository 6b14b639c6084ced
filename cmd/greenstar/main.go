// greenstar generates Green Star Buildings submission artefacts: the
// interactive workbook, its VBA project and the single-page form site.
//
// Usage:
//
//	greenstar workbook [flags]
//	greenstar site [flags]
//	greenstar vba [flags]
//	greenstar catalog [flags]
//	greenstar inspect [flags] <file>
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/aerissecure/greenstar"
	"github.com/aerissecure/greenstar/config"
	"github.com/aerissecure/greenstar/generate"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		printUsage(stderr)
		return errors.New("no command given")
	}

	cmd, args := args[0], args[1:]
	switch cmd {
	case "workbook":
		return workbookCmd(ctx, args, stderr)
	case "site":
		return siteCmd(ctx, args, stderr)
	case "vba":
		return vbaCmd(ctx, args, stderr)
	case "catalog":
		return catalogCmd(ctx, args, stdout, stderr)
	case "inspect":
		return inspectCmd(args, stdout, stderr)
	case "help", "--help", "-h":
		printUsage(stdout)
		return nil
	default:
		printUsage(stderr)
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `greenstar - Green Star Buildings submission generator

USAGE
    greenstar <command> [flags]

COMMANDS
    workbook   Build the submission workbook (.xlsm, or .xlsx if macros fail)
    site       Build the single-page submission site
    vba        Build vbaProject.bin on its own
    catalog    Convert the questions workbook to a YAML catalog
    inspect    Describe a vbaProject.bin or macro-enabled workbook as JSON

EXAMPLES
    greenstar workbook --questions Submission_Questions.xlsx --guidelines Guidelines.docx
    greenstar site --catalog catalog.yaml --out dist
    greenstar inspect --pretty Green_Star_Buildings_v1.1_Interactive.xlsm

ENVIRONMENT
    GREENSTAR_CONFIG   Path to a greenstar.yaml config file (overridden by --config)
`)
}

// commonFlags are shared by the generating commands. Set flags override the
// config file.
type commonFlags struct {
	configPath string
	catalog    string
	questions  string
	guidelines string
	outDir     string
	logLevel   string
	logFormat  string
}

func newFlagSet(name string, stderr io.Writer, common *commonFlags) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	if common != nil {
		fs.StringVar(&common.configPath, "config", "", "config file (default: $GREENSTAR_CONFIG)")
		fs.StringVar(&common.catalog, "catalog", "", "YAML catalog (takes precedence over --questions)")
		fs.StringVar(&common.questions, "questions", "", "source questions workbook (.xlsx)")
		fs.StringVar(&common.guidelines, "guidelines", "", "submission guidelines (.docx)")
		fs.StringVarP(&common.outDir, "out", "o", "", "output directory")
		fs.StringVar(&common.logLevel, "log-level", "", "debug, info, warn or error")
		fs.StringVar(&common.logFormat, "log-format", "", "text or json")
	}
	return fs
}

func (c *commonFlags) load() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if c.configPath != "" {
		cfg, err = config.LoadFile(c.configPath)
	} else {
		cfg, err = config.Load()
		if errors.Is(err, config.ErrNoConfig) {
			cfg, err = config.Default(), nil
		}
	}
	if err != nil {
		return nil, err
	}

	if c.catalog != "" {
		cfg.Inputs.Catalog = c.catalog
	}
	if c.questions != "" {
		cfg.Inputs.Questions = c.questions
		if c.catalog == "" {
			cfg.Inputs.Catalog = ""
		}
	}
	if c.guidelines != "" {
		cfg.Inputs.Guidelines = c.guidelines
	}
	if c.outDir != "" {
		cfg.Outputs.Dir = c.outDir
	}
	if c.logLevel != "" {
		cfg.Log.Level = c.logLevel
	}
	if c.logFormat != "" {
		cfg.Log.Format = c.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setup parses args, loads configuration and builds the logger.
func setup(fs *pflag.FlagSet, common *commonFlags, args []string, stderr io.Writer) (*config.Config, *slog.Logger, error) {
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if fs.NArg() > 0 {
		return nil, nil, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}
	cfg, err := common.load()
	if err != nil {
		return nil, nil, err
	}
	return cfg, cfg.Log.NewLogger(stderr), nil
}

func writeOutput(cfg *config.Config, name string, data []byte, logger *slog.Logger) error {
	path := cfg.Path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	logger.Info("wrote file", "path", path, "bytes", len(data))
	return nil
}

func workbookCmd(ctx context.Context, args []string, stderr io.Writer) error {
	var common commonFlags
	var password, projectName string
	var noMacros, noExport bool

	fs := newFlagSet("workbook", stderr, &common)
	fs.StringVar(&password, "password", "", "sheet protection password")
	fs.BoolVar(&noMacros, "no-macros", false, "write a plain .xlsx without the VBA project")
	fs.BoolVar(&noExport, "no-export-vba", false, "do not write .bas/.cls files")
	fs.StringVar(&projectName, "project-name", "", "VBA project name")

	cfg, logger, err := setup(fs, &common, args, stderr)
	if err != nil {
		return err
	}
	if password != "" {
		cfg.Workbook.Password = password
	}
	if noMacros {
		cfg.Workbook.Macros = false
	}
	if noExport {
		cfg.Workbook.ExportVBA = false
	}
	if projectName != "" {
		cfg.Workbook.ProjectName = projectName
	}

	in, err := generate.LoadInputs(ctx, cfg.Inputs, logger)
	if err != nil {
		return err
	}
	res, err := generate.Workbook(ctx, in, generate.WorkbookOptions{
		Password:    cfg.Workbook.Password,
		Macros:      cfg.Workbook.Macros,
		ProjectName: cfg.Workbook.ProjectName,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	target := cfg.Path(cfg.Outputs.Workbook)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	paths, err := res.Save(filepath.Dir(target), filepath.Base(target), cfg.Workbook.ExportVBA)
	if err != nil {
		return err
	}
	for _, p := range paths {
		logger.Info("wrote file", "path", p)
	}
	if !res.MacroEnabled && cfg.Workbook.Macros {
		logger.Warn("workbook has no macros; import the exported .bas/.cls files manually")
	}
	return nil
}

func siteCmd(ctx context.Context, args []string, stderr io.Writer) error {
	var common commonFlags
	var output string

	fs := newFlagSet("site", stderr, &common)
	fs.StringVar(&output, "output", "", "site file name (default: index.html)")

	cfg, logger, err := setup(fs, &common, args, stderr)
	if err != nil {
		return err
	}
	if output != "" {
		cfg.Outputs.Site = output
	}

	in, err := generate.LoadInputs(ctx, cfg.Inputs, logger)
	if err != nil {
		return err
	}
	page, err := generate.Site(ctx, in)
	if err != nil {
		return err
	}
	return writeOutput(cfg, cfg.Outputs.Site, page, logger)
}

func vbaCmd(ctx context.Context, args []string, stderr io.Writer) error {
	var common commonFlags
	var projectName string

	fs := newFlagSet("vba", stderr, &common)
	fs.StringVar(&projectName, "project-name", "", "VBA project name")

	cfg, logger, err := setup(fs, &common, args, stderr)
	if err != nil {
		return err
	}
	if projectName != "" {
		cfg.Workbook.ProjectName = projectName
	}

	in, err := generate.LoadInputs(ctx, cfg.Inputs, logger)
	if err != nil {
		return err
	}
	bin, err := generate.VBAProject(ctx, in, cfg.Workbook.ProjectName)
	if err != nil {
		return err
	}
	return writeOutput(cfg, cfg.Outputs.VBAProject, bin, logger)
}

func catalogCmd(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var common commonFlags
	var toStdout, withRules bool

	fs := newFlagSet("catalog", stderr, &common)
	fs.BoolVar(&toStdout, "stdout", false, "write the catalog to stdout")
	fs.BoolVar(&withRules, "with-rules", false, "include the conditional rule table")

	cfg, logger, err := setup(fs, &common, args, stderr)
	if err != nil {
		return err
	}

	in, err := generate.LoadInputs(ctx, cfg.Inputs, logger)
	if err != nil {
		return err
	}
	cat := in.Catalog
	if withRules {
		cat.Rules = cat.RuleGroups()
	}

	if toStdout {
		return greenstar.WriteCatalog(stdout, cat)
	}
	path := cfg.Path(cfg.Outputs.Catalog)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := greenstar.WriteCatalog(f, cat); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	logger.Info("wrote file", "path", path)
	return nil
}
