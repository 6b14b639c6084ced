// Package generate ties the readers and writers together: it loads the
// catalog and guidelines, then produces the workbook, the VBA project and
// the site.
//
// Macro embedding is best effort. When the VBA project cannot be built or
// injected the failure is logged and the plain workbook is returned.
package generate

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aerissecure/greenstar"
	"github.com/aerissecure/greenstar/config"
	"github.com/aerissecure/greenstar/docx"
	"github.com/aerissecure/greenstar/macros"
	"github.com/aerissecure/greenstar/site"
	"github.com/aerissecure/greenstar/vbaproject"
	"github.com/aerissecure/greenstar/xlsm"
	"github.com/aerissecure/greenstar/xlsx"
)

// File extensions of the two workbook variants.
const (
	ExtMacroEnabled = ".xlsm"
	ExtPlain        = ".xlsx"
)

// Inputs are the loaded source documents.
type Inputs struct {
	Catalog *greenstar.Catalog
	// Guidance is nil when no guidelines document was given.
	Guidance *docx.Guidance
}

// Rules builds the conditional rule set of the catalog.
func (in Inputs) Rules() *greenstar.RuleSet {
	return greenstar.BuildRules(in.Catalog.Credits, in.Catalog.RuleGroups())
}

// note composes the guidance for one question; without guidelines it is
// just the question's data note.
func (in Inputs) note(sheet, criterion string, q greenstar.Question) docx.Note {
	var g docx.Guidance
	if in.Guidance != nil {
		g = *in.Guidance
	}
	return g.Note(sheet, criterion, q.DataNote)
}

// LoadInputs reads the catalog (YAML when configured, else the questions
// workbook) and the optional guidelines document.
func LoadInputs(ctx context.Context, cfg config.InputsConfig, logger *slog.Logger) (Inputs, error) {
	var in Inputs
	if err := ctx.Err(); err != nil {
		return in, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	var err error
	switch {
	case cfg.Catalog != "":
		in.Catalog, err = greenstar.LoadCatalogFile(cfg.Catalog)
		if err != nil {
			return in, fmt.Errorf("loading catalog %s: %w", cfg.Catalog, err)
		}
	case cfg.Questions != "":
		in.Catalog, err = xlsx.ParseCatalogFile(cfg.Questions)
		if err != nil {
			return in, fmt.Errorf("loading questions %s: %w", cfg.Questions, err)
		}
	default:
		return in, fmt.Errorf("no catalog or questions workbook configured")
	}
	logger.Info("catalog loaded",
		"credits", len(in.Catalog.Credits),
		"questions", in.Catalog.NumQuestions())

	if cfg.Guidelines != "" {
		if err := ctx.Err(); err != nil {
			return in, err
		}
		g, err := docx.ReadGuidanceFile(cfg.Guidelines)
		if err != nil {
			return in, err
		}
		in.Guidance = &g
		logger.Info("guidelines loaded", "credits", len(g.Credits))
	}
	return in, nil
}

// WorkbookOptions controls Workbook.
type WorkbookOptions struct {
	Password    string
	Macros      bool
	ProjectName string
	Logger      *slog.Logger
}

func (o WorkbookOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// Export is one importable VBA source file.
type Export struct {
	Name string
	Data []byte
}

// WorkbookResult is the generated workbook and its VBA sources.
type WorkbookResult struct {
	Data []byte
	// MacroEnabled reports whether Data carries a VBA project.
	MacroEnabled bool
	// MacroErr is why macros were requested but not embedded.
	MacroErr error
	// Exports holds the .bas/.cls files for manual import.
	Exports []Export
}

// Ext is the file extension matching the workbook variant.
func (r *WorkbookResult) Ext() string {
	if r.MacroEnabled {
		return ExtMacroEnabled
	}
	return ExtPlain
}

// Save writes the workbook as dir/base plus Ext, and the exports beside it.
// A trailing .xlsx or .xlsm on base is replaced. It returns the written
// paths.
func (r *WorkbookResult) Save(dir, base string, exports bool) ([]string, error) {
	files := []Export{{Name: workbookName(base) + r.Ext(), Data: r.Data}}
	if exports {
		files = append(files, r.Exports...)
	}
	var paths []string
	for _, f := range files {
		path := filepath.Join(dir, f.Name)
		if err := os.WriteFile(path, f.Data, 0o644); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// workbookName strips a workbook extension from base. Other dots are part
// of the name, as in "Buildings_v1.1_Interactive".
func workbookName(base string) string {
	switch ext := filepath.Ext(base); strings.ToLower(ext) {
	case ExtMacroEnabled, ExtPlain:
		return strings.TrimSuffix(base, ext)
	}
	return base
}

// inject is replaced in tests to exercise the fallback.
var inject = xlsm.Inject

// Workbook builds the submission workbook. When macros are requested the
// VBA project is embedded; if that fails the plain workbook is returned with
// MacroErr set. Only errors building the plain workbook are returned.
func Workbook(ctx context.Context, in Inputs, opts WorkbookOptions) (*WorkbookResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger := opts.logger()
	res := &WorkbookResult{}

	xopts := xlsx.Options{Password: opts.Password}
	if in.Guidance != nil {
		xopts.Guidance = func(sheet, criterion string, q greenstar.Question) string {
			return in.note(sheet, criterion, q).String()
		}
	}

	mods, err := macros.Modules(in.Catalog, in.Rules())
	if err != nil {
		res.MacroErr = err
	}
	for _, m := range mods {
		name, data := macros.Export(m)
		res.Exports = append(res.Exports, Export{Name: name, Data: data})
	}

	if opts.Macros && res.MacroErr == nil {
		data, err := macroWorkbook(in.Catalog, mods, xopts, opts.ProjectName)
		if err == nil {
			res.Data = data
			res.MacroEnabled = true
			logger.Info("workbook built", "macros", true, "bytes", len(data))
			return res, nil
		}
		res.MacroErr = err
	}
	if opts.Macros {
		logger.Warn("macro embedding failed, writing plain workbook", "error", res.MacroErr)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	xopts.MacroEnabled = false
	res.Data, err = xlsx.Bytes(in.Catalog, xopts)
	if err != nil {
		return nil, err
	}
	logger.Info("workbook built", "macros", false, "bytes", len(res.Data))
	return res, nil
}

func macroWorkbook(cat *greenstar.Catalog, mods []vbaproject.Module, xopts xlsx.Options, projectName string) ([]byte, error) {
	bin, err := vbaproject.Build(mods, projectOptions(projectName)...)
	if err != nil {
		return nil, err
	}
	xopts.MacroEnabled = true
	plain, err := xlsx.Bytes(cat, xopts)
	if err != nil {
		return nil, err
	}
	return inject(plain, bin)
}

// VBAProject returns the raw vbaProject.bin for the catalog.
func VBAProject(ctx context.Context, in Inputs, projectName string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	mods, err := macros.Modules(in.Catalog, in.Rules())
	if err != nil {
		return nil, err
	}
	return vbaproject.Build(mods, projectOptions(projectName)...)
}

func projectOptions(name string) []vbaproject.Option {
	if name == "" {
		return nil
	}
	return []vbaproject.Option{vbaproject.WithProjectName(name)}
}

// Site renders the single-page form application.
func Site(ctx context.Context, in Inputs) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	page, err := site.Render(in.Catalog, site.Options{
		Rules: in.Rules(),
		Notes: in.note,
	})
	if err != nil {
		return nil, err
	}
	return []byte(page), nil
}
