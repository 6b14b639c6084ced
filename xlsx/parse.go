package xlsx

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/unidoc/unioffice/spreadsheet"
	"github.com/unidoc/unioffice/spreadsheet/reference"

	"github.com/aerissecure/greenstar"
)

// Sheets that are part of the generated workbook rather than credits.
const (
	DashboardSheet = "Dashboard"
	HistorySheet   = "History"
	SearchSheet    = "SearchResults"
)

// ErrNoCredits is returned when a workbook has no credit sheets.
var ErrNoCredits = errors.New("xlsx: workbook has no credit sheets")

func isSystemSheet(name string) bool {
	return name == DashboardSheet || name == HistorySheet || name == SearchSheet
}

// ParseCatalog reads a questions workbook from r/size. Every sheet other
// than the dashboard, history and search sheets is one credit.
func ParseCatalog(r io.ReaderAt, size int64) (*greenstar.Catalog, error) {
	wb, err := spreadsheet.Read(r, size)
	if err != nil {
		return nil, err
	}

	cat := &greenstar.Catalog{}
	for _, sheet := range wb.Sheets() {
		if isSystemSheet(sheet.Name()) {
			continue
		}
		cat.Credits = append(cat.Credits, parseCredit(wb, sheet))
	}
	if len(cat.Credits) == 0 {
		return nil, ErrNoCredits
	}
	cat.AssignCategories()
	return cat, nil
}

// ParseCatalogFile is a convenience wrapper around ParseCatalog.
func ParseCatalogFile(path string) (*greenstar.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	cat, err := ParseCatalog(f, fi.Size())
	if err != nil {
		return nil, fmt.Errorf("questions %s: %w", path, err)
	}
	return cat, nil
}

// sourceRow is the text of columns A to H of one row plus the style of A.
type sourceRow struct {
	cols  [8]string
	style CellStyle
}

func (r sourceRow) col(letter byte) string {
	return r.cols[letter-'A']
}

func readRow(wb *spreadsheet.Workbook, row spreadsheet.Row) sourceRow {
	var sr sourceRow
	for _, cell := range row.Cells() {
		colName, err := cell.Column()
		if err != nil {
			continue
		}
		colIdx := int(reference.ColumnToIndex(colName))
		if colIdx >= len(sr.cols) {
			continue
		}
		sr.cols[colIdx] = strings.TrimSpace(cell.GetString())
		if colIdx == 0 && cell.X().SAttr != nil {
			sr.style = resolveStyle(wb, *cell.X().SAttr)
		}
	}
	return sr
}

func parseCredit(wb *spreadsheet.Workbook, sheet spreadsheet.Sheet) greenstar.Credit {
	credit := greenstar.Credit{SheetName: sheet.Name()}
	var section *greenstar.Section

	for _, row := range sheet.Rows() {
		if row.RowNumber() < 2 {
			continue
		}
		sr := readRow(wb, row)
		a, b, e, f := sr.col('A'), sr.col('B'), sr.col('E'), sr.col('F')

		if a != "" && b == "" && e == "" {
			switch classify(sr.style) {
			case rowTitle:
				credit.Title = a
				continue
			case rowLevel:
				credit.Sections = append(credit.Sections, greenstar.Section{Title: a})
				section = &credit.Sections[len(credit.Sections)-1]
				continue
			case rowCriterion:
				if section != nil {
					section.Criteria = append(section.Criteria, greenstar.Criterion{Name: a})
				}
				continue
			}
		}

		if e == "" || f == "" {
			continue
		}
		q := greenstar.Question{
			Ref:      a,
			Credit:   b,
			Level:    sr.col('C'),
			Criteria: sr.col('D'),
			Type:     e,
			Text:     f,
			DataNote: sr.col('H'),
		}
		if section == nil {
			credit.Loose = append(credit.Loose, q)
			continue
		}
		if len(section.Criteria) == 0 {
			section.Criteria = append(section.Criteria, greenstar.Criterion{Name: "General"})
		}
		last := &section.Criteria[len(section.Criteria)-1]
		last.Questions = append(last.Questions, q)
	}
	return credit
}
