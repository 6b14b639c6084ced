package xlsx

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/unidoc/unioffice"
	"github.com/unidoc/unioffice/schema/soo/sml"
	"github.com/unidoc/unioffice/spreadsheet"

	"github.com/aerissecure/greenstar"
)

// DefaultPassword protects the generated sheets when Options.Password is
// empty.
const DefaultPassword = "greenstar"

// WorkbookCodeName is the VBA code name given to the workbook object, which
// the ThisWorkbook module binds to.
const WorkbookCodeName = "ThisWorkbook"

// GuidanceFunc returns the guidance cell text for a question.
type GuidanceFunc func(sheet, criterion string, q greenstar.Question) string

// Options controls workbook generation.
type Options struct {
	Password string
	// Guidance fills column H. When nil the question's data note is used.
	Guidance GuidanceFunc
	// MacroEnabled switches the dashboard instructions to describe the
	// embedded macros instead of the manual import steps.
	MacroEnabled bool
}

func (o Options) password() string {
	if o.Password != "" {
		return o.Password
	}
	return DefaultPassword
}

func (o Options) guidance(sheet, criterion string, q greenstar.Question) string {
	if o.Guidance != nil {
		return o.Guidance(sheet, criterion, q)
	}
	return q.DataNote
}

// Build lays out the submission workbook: a Dashboard, one protected sheet
// per credit and a hidden History sheet.
func Build(cat *greenstar.Catalog, opts Options) (*spreadsheet.Workbook, error) {
	if cat == nil || len(cat.Credits) == 0 {
		return nil, greenstar.ErrEmptyCatalog
	}
	seen := make(map[string]bool)
	for _, c := range cat.Credits {
		key := strings.ToLower(c.Sheet())
		if seen[key] {
			return nil, fmt.Errorf("xlsx: duplicate sheet name %q", c.Sheet())
		}
		if isSystemSheet(c.Sheet()) {
			return nil, fmt.Errorf("xlsx: credit sheet name %q is reserved", c.Sheet())
		}
		seen[key] = true
	}

	wb := spreadsheet.New()
	wb.X().WorkbookPr = sml.NewCT_WorkbookPr()
	wb.X().WorkbookPr.CodeNameAttr = unioffice.String(WorkbookCodeName)

	st := newPalette(wb)

	// The dashboard comes first but needs the question rows of every credit
	// sheet, so it is filled in last.
	dash := wb.AddSheet()
	dash.SetName(DashboardSheet)

	ranges := make([]questionRange, len(cat.Credits))
	for i, c := range cat.Credits {
		b := newSheetBuilder(wb, st, c)
		b.build(opts)
		ranges[i] = b.questionRange()
	}

	addHistory(wb, st)
	fillDashboard(dash, st, cat, ranges, opts)
	protect(dash, opts.password())

	return wb, nil
}

// Bytes builds the workbook and serialises it as XLSX.
func Bytes(cat *greenstar.Catalog, opts Options) ([]byte, error) {
	wb, err := Build(cat, opts)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := wb.Save(&buf); err != nil {
		return nil, fmt.Errorf("xlsx: save: %w", err)
	}
	return buf.Bytes(), nil
}

// ---- sheet helpers ----

func cellRef(col string, row uint32) string {
	return fmt.Sprintf("%s%d", col, row)
}

// quoteSheet quotes a sheet name for use in a formula or link location.
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

func setColumnWidths(sheet spreadsheet.Sheet, widths []float64) {
	for i, w := range widths {
		col := sheet.Column(uint32(i + 1))
		col.X().WidthAttr = unioffice.Float64(w)
		col.X().CustomWidthAttr = unioffice.Bool(true)
	}
}

func setRowHeight(sheet spreadsheet.Sheet, row uint32, pt float64) {
	r := sheet.Row(row)
	r.X().HtAttr = unioffice.Float64(pt)
	r.X().CustomHeightAttr = unioffice.Bool(true)
}

func setTabColor(sheet spreadsheet.Sheet, hex string) {
	if sheet.X().SheetPr == nil {
		sheet.X().SheetPr = sml.NewCT_SheetPr()
	}
	sheet.X().SheetPr.TabColor = sml.NewCT_Color()
	sheet.X().SheetPr.TabColor.RgbAttr = unioffice.String("FF" + normalizeColor(hex))
}

// freezeRows keeps the first n rows in view while scrolling.
func freezeRows(sheet spreadsheet.Sheet, n uint32) {
	pane := sml.NewCT_Pane()
	pane.YSplitAttr = unioffice.Float64(float64(n))
	pane.TopLeftCellAttr = unioffice.String(cellRef("A", n+1))
	pane.ActivePaneAttr = sml.ST_PaneBottomLeft
	pane.StateAttr = sml.ST_PaneStateFrozen

	view := sml.NewCT_SheetView()
	view.Pane = pane
	sheet.X().SheetViews = sml.NewCT_SheetViews()
	sheet.X().SheetViews.SheetView = []*sml.CT_SheetView{view}
}

// linkTo adds an in-workbook hyperlink on ref pointing at A1 of target.
func linkTo(sheet spreadsheet.Sheet, ref, target string) {
	if sheet.X().Hyperlinks == nil {
		sheet.X().Hyperlinks = sml.NewCT_Hyperlinks()
	}
	hl := sml.NewCT_Hyperlink()
	hl.RefAttr = ref
	hl.LocationAttr = unioffice.String(quoteSheet(target) + "!A1")
	hl.DisplayAttr = unioffice.String(target)
	sheet.X().Hyperlinks.Hyperlink = append(sheet.X().Hyperlinks.Hyperlink, hl)
}

func protect(sheet spreadsheet.Sheet, password string) {
	p := sheet.Protection()
	p.LockSheet(true)
	p.SetPassword(password)
}
