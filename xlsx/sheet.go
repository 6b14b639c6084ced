package xlsx

import (
	"github.com/unidoc/unioffice"
	"github.com/unidoc/unioffice/spreadsheet"

	"github.com/aerissecure/greenstar"
)

// Credit sheet columns: A Ref, B Credit, C Performance Level, D Criteria,
// E Question Type, F Question, G Response, H Guidance.
var (
	creditHeaders = []string{"Ref", "Credit", "Performance Level", "Criteria", "Question Type", "Question", "Response", "Guidance"}
	creditColumns = []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	creditWidths  = []float64{8, 20, 22, 28, 16, 55, 50, 45}
)

const (
	responseColumn = "G"
	lastColumn     = "H"
)

// Row heights in points.
const (
	headerHeight   = 35
	titleHeight    = 30
	backLinkHeight = 18
	levelHeight    = 22
	criteriaHeight = 20
	questionHeight = 60
)

const (
	yesNoPrompt     = "Select Yes or No"
	yesNoError      = "Please select Yes or No"
	yesNoErrorTitle = "Invalid entry"
)

// questionRange is the first and last question row of a credit sheet; both
// are zero when the sheet has no questions.
type questionRange struct {
	first, last uint32
}

func (q questionRange) empty() bool {
	return q.first == 0
}

// sheetBuilder writes one credit sheet top to bottom. It owns the list of
// Yes/No response cells, which become a single list validation when the
// sheet is finished.
type sheetBuilder struct {
	sheet  spreadsheet.Sheet
	st     *palette
	credit greenstar.Credit
	name   string

	row    uint32
	yesNo  []string
	qrange questionRange
}

func newSheetBuilder(wb *spreadsheet.Workbook, st *palette, c greenstar.Credit) *sheetBuilder {
	sheet := wb.AddSheet()
	sheet.SetName(c.Sheet())
	return &sheetBuilder{sheet: sheet, st: st, credit: c, name: c.Sheet(), row: 1}
}

func (b *sheetBuilder) build(opts Options) {
	setTabColor(b.sheet, greenstar.CategoryColor(b.credit.Category))
	setColumnWidths(b.sheet, creditWidths)

	b.headerRow()
	b.titleRow()
	b.backLinkRow()

	for _, q := range b.credit.Loose {
		b.questionRow(q, opts.guidance(b.credit.SheetName, "", q))
	}
	for _, s := range b.credit.Sections {
		b.mergedRow(s.Title, b.st.level, levelHeight)
		for _, cr := range s.Criteria {
			b.mergedRow(cr.Name, b.st.criteria, criteriaHeight)
			for _, q := range cr.Questions {
				b.questionRow(q, opts.guidance(b.credit.SheetName, cr.Name, q))
			}
		}
	}

	b.finish(opts.password())
}

func (b *sheetBuilder) next() uint32 {
	r := b.row
	b.row++
	return r
}

func (b *sheetBuilder) headerRow() {
	r := b.next()
	for i, h := range creditHeaders {
		c := b.sheet.Cell(cellRef(creditColumns[i], r))
		c.SetString(h)
		c.SetStyle(b.st.header)
	}
	setRowHeight(b.sheet, r, headerHeight)
	freezeRows(b.sheet, 1)
}

func (b *sheetBuilder) titleRow() {
	b.mergedRow(b.credit.DisplayTitle(), b.st.title, titleHeight)
}

func (b *sheetBuilder) backLinkRow() {
	r := b.next()
	ref := cellRef("A", r)
	c := b.sheet.Cell(ref)
	c.SetString("<< " + DashboardSheet)
	c.SetStyle(b.st.backLink)
	linkTo(b.sheet, ref, DashboardSheet)
	setRowHeight(b.sheet, r, backLinkHeight)
}

// mergedRow writes text across columns A to H.
func (b *sheetBuilder) mergedRow(text string, style spreadsheet.CellStyle, height float64) {
	r := b.next()
	c := b.sheet.Cell(cellRef("A", r))
	c.SetString(text)
	c.SetStyle(style)
	b.sheet.AddMergedCells(cellRef("A", r), cellRef(lastColumn, r))
	setRowHeight(b.sheet, r, height)
}

func (b *sheetBuilder) questionRow(q greenstar.Question, guidance string) {
	r := b.next()
	values := []string{q.Ref, q.Credit, q.Level, q.Criteria, q.Type, q.Text, "", guidance}

	for i, v := range values {
		col := creditColumns[i]
		c := b.sheet.Cell(cellRef(col, r))
		if v != "" {
			c.SetString(v)
		}
		c.SetStyle(b.questionStyle(q, col))
	}

	if q.IsCondition() {
		b.yesNo = append(b.yesNo, cellRef(responseColumn, r))
	}
	if b.qrange.first == 0 {
		b.qrange.first = r
	}
	b.qrange.last = r
	setRowHeight(b.sheet, r, questionHeight)
}

func (b *sheetBuilder) questionStyle(q greenstar.Question, col string) spreadsheet.CellStyle {
	switch {
	case col == responseColumn:
		return b.st.response
	case col == lastColumn:
		return b.st.guidance
	case q.IsCondition() && col == "E":
		return b.st.conditionType
	case q.IsCondition():
		return b.st.condition
	case q.IsData() && col == "E":
		return b.st.dataType
	}
	return b.st.question
}

// finish emits the Yes/No validation and locks the sheet. Only response
// cells carry an unlocked style.
func (b *sheetBuilder) finish(password string) {
	if len(b.yesNo) > 0 {
		dv := b.sheet.AddDataValidation()
		dv.SetList().SetValues([]string{"Yes", "No"})
		x := dv.X()
		x.SqrefAttr = b.yesNo
		x.AllowBlankAttr = unioffice.Bool(true)
		x.ShowInputMessageAttr = unioffice.Bool(true)
		x.ShowErrorMessageAttr = unioffice.Bool(true)
		x.PromptTitleAttr = unioffice.String("Condition")
		x.PromptAttr = unioffice.String(yesNoPrompt)
		x.ErrorTitleAttr = unioffice.String(yesNoErrorTitle)
		x.ErrorAttr = unioffice.String(yesNoError)
	}
	protect(b.sheet, password)
}

func (b *sheetBuilder) questionRange() questionRange {
	return b.qrange
}
