package xlsx

import (
	"fmt"

	"github.com/unidoc/unioffice/schema/soo/sml"
	"github.com/unidoc/unioffice/spreadsheet"

	"github.com/aerissecure/greenstar"
)

// Dashboard layout.
const (
	dashTotalsRow  = 2
	dashHeaderRow  = 4
	dashFirstRow   = 5
	dashLastColumn = "F"
)

var (
	dashHeaders = []string{"Credit", "Category", "Colour", "Answered", "Total Visible", "Progress"}
	dashColumns = []string{"A", "B", "C", "D", "E", "F"}
	dashWidths  = []float64{30, 15, 8, 12, 14, 12}
	dashActions = []string{"Review Mode", "Search", "Dark Mode", "History", "Refresh All"}
)

func dashInstructions(opts Options) []string {
	lines := []string{
		"HOW TO USE:",
		"• Click any credit name above to navigate to its questions",
		"• Fill in the Response column (G) for each question",
		"• Y/N questions use dropdown validation",
		"• Progress updates automatically via formulas (Answered / Total / %)",
		"• The Guidance column (H) shows submission guidelines, tips, and evidence requirements",
		fmt.Sprintf("• Sheets are protected, only the Response column is editable (password: %s)", opts.password()),
		"",
	}
	if opts.MacroEnabled {
		return append(lines,
			"MACROS:",
			"• Enable macros when prompted to turn on the advanced features",
			"• Adds: conditional row visibility, search, review mode, dark mode, version history",
		)
	}
	return append(lines,
		"OPTIONAL VBA MACROS (for advanced features):",
		"• Save as .xlsm, then import GreenStarMacros.bas via Developer > Visual Basic > File > Import",
		"• Adds: conditional row visibility, search, review mode, dark mode, version history",
	)
}

// DashboardRow is the dashboard row holding the i-th credit.
func DashboardRow(i int) uint32 {
	return uint32(dashFirstRow + i)
}

func fillDashboard(sheet spreadsheet.Sheet, st *palette, cat *greenstar.Catalog, ranges []questionRange, opts Options) {
	n := len(cat.Credits)
	setTabColor(sheet, darkGreen)
	setColumnWidths(sheet, dashWidths)

	// ---- title ----
	title := sheet.Cell("A1")
	title.SetString(cat.DisplayTitle() + " — Submission Dashboard")
	title.SetStyle(st.dashTitle)
	sheet.AddMergedCells("A1", cellRef(dashLastColumn, 1))
	setRowHeight(sheet, 1, 45)

	// ---- totals ----
	lastRow := DashboardRow(n - 1)
	total := sheet.Cell(cellRef("A", dashTotalsRow))
	total.SetString("TOTAL")
	total.SetStyle(st.dashTotal)
	setFormula(sheet, cellRef("D", dashTotalsRow), fmt.Sprintf("SUM(D%d:D%d)", dashFirstRow, lastRow), st.dashNumber)
	setFormula(sheet, cellRef("E", dashTotalsRow), fmt.Sprintf("SUM(E%d:E%d)", dashFirstRow, lastRow), st.dashNumber)
	setFormula(sheet, cellRef("F", dashTotalsRow), progressFormula(dashTotalsRow), st.dashPercent)
	setRowHeight(sheet, dashTotalsRow, 30)
	setRowHeight(sheet, dashTotalsRow+1, 10)

	// ---- credit list ----
	for i, h := range dashHeaders {
		c := sheet.Cell(cellRef(dashColumns[i], dashHeaderRow))
		c.SetString(h)
		c.SetStyle(st.dashHeader)
	}
	setRowHeight(sheet, dashHeaderRow, 25)

	for i, credit := range cat.Credits {
		r := DashboardRow(i)
		name := credit.Sheet()

		link := sheet.Cell(cellRef("A", r))
		link.SetString(name)
		link.SetStyle(st.dashLink)
		linkTo(sheet, cellRef("A", r), name)

		category := sheet.Cell(cellRef("B", r))
		category.SetString(credit.Category)
		category.SetStyle(st.dashText)

		sheet.Cell(cellRef("C", r)).SetStyle(st.swatch(greenstar.CategoryColor(credit.Category)))

		qr := ranges[i]
		if qr.empty() {
			setNumber(sheet, cellRef("D", r), 0, st.dashNumber)
			setNumber(sheet, cellRef("E", r), float64(len(credit.Questions())), st.dashNumber)
			setNumber(sheet, cellRef("F", r), 0, st.dashPercent)
		} else {
			setFormula(sheet, cellRef("D", r), answeredFormula(name, qr), st.dashNumber)
			setFormula(sheet, cellRef("E", r), totalFormula(name, qr), st.dashNumber)
			setFormula(sheet, cellRef("F", r), progressFormula(r), st.dashPercent)
		}
		setRowHeight(sheet, r, 22)
	}

	// ---- actions and instructions ----
	actionRow := uint32(n + dashFirstRow + 1)
	action := sheet.Cell(cellRef("A", actionRow))
	action.SetString("Actions:")
	action.SetStyle(st.dashAction)
	for i, label := range dashActions {
		c := sheet.Cell(cellRef(dashColumns[i+1], actionRow))
		c.SetString("[ " + label + " ]")
		c.SetStyle(st.dashButton)
	}

	howTo := actionRow + 2
	for i, line := range dashInstructions(opts) {
		if line == "" {
			continue
		}
		c := sheet.Cell(cellRef("A", howTo+uint32(i)))
		c.SetString(line)
		if i == 0 || line[len(line)-1] == ':' {
			c.SetStyle(st.dashHowTo)
		} else {
			c.SetStyle(st.dashNote)
		}
	}

	freezeRows(sheet, dashHeaderRow)
}

// answeredFormula counts question rows with a response.
func answeredFormula(sheet string, qr questionRange) string {
	s := quoteSheet(sheet)
	return fmt.Sprintf(`SUMPRODUCT((%s!E%d:E%d<>"")*(%s!G%d:G%d<>""))`, s, qr.first, qr.last, s, qr.first, qr.last)
}

// totalFormula counts question rows.
func totalFormula(sheet string, qr questionRange) string {
	return fmt.Sprintf("COUNTA(%s!E%d:E%d)", quoteSheet(sheet), qr.first, qr.last)
}

func progressFormula(row uint32) string {
	return fmt.Sprintf("IF(E%d>0,D%d/E%d,0)", row, row, row)
}

func setFormula(sheet spreadsheet.Sheet, ref, formula string, style spreadsheet.CellStyle) {
	c := sheet.Cell(ref)
	c.SetFormulaRaw(formula)
	c.SetStyle(style)
}

func setNumber(sheet spreadsheet.Sheet, ref string, v float64, style spreadsheet.CellStyle) {
	c := sheet.Cell(ref)
	c.SetNumber(v)
	c.SetStyle(style)
}

// ---- history ----

var (
	historyHeaders = []string{"Timestamp", "Sheet", "Location", "New Value"}
	historyWidths  = []float64{20, 25, 12, 50}
)

// addHistory appends the hidden change log sheet the macros write to.
func addHistory(wb *spreadsheet.Workbook, st *palette) {
	sheet := wb.AddSheet()
	sheet.SetName(HistorySheet)
	setColumnWidths(sheet, historyWidths)

	title := sheet.Cell("A1")
	title.SetString("Version History")
	title.SetStyle(st.historyTitle)

	for i, h := range historyHeaders {
		c := sheet.Cell(cellRef(dashColumns[i], 2))
		c.SetString(h)
		c.SetStyle(st.historyHeader)
	}
	freezeRows(sheet, 2)

	sheets := wb.X().Sheets.Sheet
	sheets[len(sheets)-1].StateAttr = sml.ST_SheetStateHidden
}
