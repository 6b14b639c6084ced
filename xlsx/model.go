package xlsx

import (
	"fmt"
)

// CellStyle captures the parts of a cell style used to classify rows of a
// questions workbook.
type CellStyle struct {
	FontColor  string // "RRGGBB"
	FontSizePt float64
	Bold       bool
	Italic     bool
	FillColor  string // "RRGGBB"
}

func (s CellStyle) String() string {
	return fmt.Sprintf("FontColor: %s, FontSizePt: %.1f, Bold: %t, Italic: %t, FillColor: %s", s.FontColor, s.FontSizePt, s.Bold, s.Italic, s.FillColor)
}

// rowKind is what a header row of a credit sheet introduces.
type rowKind int

const (
	rowOther rowKind = iota
	rowTitle
	rowLevel
	rowCriterion
)

func (k rowKind) String() string {
	switch k {
	case rowTitle:
		return "title"
	case rowLevel:
		return "level"
	case rowCriterion:
		return "criterion"
	}
	return "other"
}

// classify decides what a column-A header cell introduces from its style.
// Font colour and size are tried first, then fill, then bold size.
func classify(s CellStyle) rowKind {
	switch {
	case s.FontColor == white && s.FontSizePt == 12:
		return rowTitle
	case s.FontColor == white && s.FontSizePt == 11:
		return rowLevel
	case s.FontColor == darkGreen:
		return rowCriterion
	case s.FillColor == levelGreen:
		return rowLevel
	case s.FillColor == criteriaGreen:
		return rowCriterion
	case s.Bold && s.FontSizePt >= 12:
		return rowTitle
	case s.Bold && s.FontSizePt >= 11:
		return rowLevel
	}
	return rowOther
}
