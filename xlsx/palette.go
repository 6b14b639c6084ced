package xlsx

import (
	"strconv"

	"github.com/unidoc/unioffice"
	"github.com/unidoc/unioffice/color"
	"github.com/unidoc/unioffice/schema/soo/sml"
	"github.com/unidoc/unioffice/spreadsheet"
)

// Workbook colours, "RRGGBB".
const (
	white         = "FFFFFF"
	darkGreen     = "1F4E28"
	deepGreen     = "0D3318"
	levelGreen    = "2E7D32"
	criteriaGreen = "C8E6C9"
	questionTint  = "F1F8E9"
	conditionTint = "EDE7F6"
	conditionInk  = "7030A0"
	dataTint      = "E3F2FD"
	dataInk       = "2E75B6"
	guidanceTint  = "FFFDE7"
	guidanceInk   = "666666"
	borderGrey    = "CCCCCC"
	noteInk       = "555555"
)

const fontName = "Calibri"

// hexColor parses "RRGGBB"; anything unparsable is black.
func hexColor(hex string) color.Color {
	v, err := strconv.ParseUint(normalizeColor(hex), 16, 32)
	if err != nil {
		return color.RGB(0, 0, 0)
	}
	return color.RGB(uint8(v>>16), uint8(v>>8), uint8(v))
}

// styleSpec describes one cell style of the generated workbook.
type styleSpec struct {
	size      float64
	ink       string
	bold      bool
	italic    bool
	underline bool
	fill      string
	border    bool
	halign    sml.ST_HorizontalAlignment
	valign    sml.ST_VerticalAlignment
	wrap      bool
	unlocked  bool
	percent   bool
}

func (s styleSpec) add(wb *spreadsheet.Workbook) spreadsheet.CellStyle {
	cs := wb.StyleSheet.AddCellStyle()

	font := wb.StyleSheet.AddFont()
	font.SetName(fontName)
	if s.size > 0 {
		font.SetSize(s.size)
	}
	if s.ink != "" {
		font.X().Color = []*sml.CT_Color{{RgbAttr: unioffice.String("FF" + normalizeColor(s.ink))}}
	}
	if s.bold {
		font.SetBold(true)
	}
	if s.italic {
		font.SetItalic(true)
	}
	if s.underline {
		font.X().U = []*sml.CT_UnderlineProperty{{ValAttr: sml.ST_UnderlineValuesSingle}}
	}
	cs.SetFont(font)

	if s.fill != "" {
		fill := wb.StyleSheet.Fills().AddFill()
		pf := fill.SetPatternFill()
		pf.SetPattern(sml.ST_PatternTypeSolid)
		pf.SetFgColor(hexColor(s.fill))
		cs.SetFill(fill)
	}

	if s.border {
		b := wb.StyleSheet.AddBorder()
		c := hexColor(borderGrey)
		b.SetLeft(sml.ST_BorderStyleThin, c)
		b.SetRight(sml.ST_BorderStyleThin, c)
		b.SetTop(sml.ST_BorderStyleThin, c)
		b.SetBottom(sml.ST_BorderStyleThin, c)
		cs.SetBorder(b)
	}

	if s.halign != sml.ST_HorizontalAlignmentUnset {
		cs.SetHorizontalAlignment(s.halign)
	}
	if s.valign != sml.ST_VerticalAlignmentUnset {
		cs.SetVerticalAlignment(s.valign)
	}
	if s.wrap {
		cs.SetWrapped(true)
	}

	xf := wb.StyleSheet.X().CellXfs.Xf[cs.Index()]
	if s.unlocked {
		xf.Protection = sml.NewCT_CellProtection()
		xf.Protection.LockedAttr = unioffice.Bool(false)
		xf.ApplyProtectionAttr = unioffice.Bool(true)
	}
	if s.percent {
		xf.NumFmtIdAttr = unioffice.Uint32(9) // built-in "0%"
		xf.ApplyNumberFormatAttr = unioffice.Bool(true)
	}
	return cs
}

// palette holds every cell style used by the generated workbook.
type palette struct {
	wb *spreadsheet.Workbook

	// credit sheets
	header        spreadsheet.CellStyle
	title         spreadsheet.CellStyle
	backLink      spreadsheet.CellStyle
	level         spreadsheet.CellStyle
	criteria      spreadsheet.CellStyle
	question      spreadsheet.CellStyle
	condition     spreadsheet.CellStyle
	conditionType spreadsheet.CellStyle
	dataType      spreadsheet.CellStyle
	response      spreadsheet.CellStyle
	guidance      spreadsheet.CellStyle

	// dashboard
	dashTitle   spreadsheet.CellStyle
	dashTotal   spreadsheet.CellStyle
	dashHeader  spreadsheet.CellStyle
	dashLink    spreadsheet.CellStyle
	dashText    spreadsheet.CellStyle
	dashNumber  spreadsheet.CellStyle
	dashPercent spreadsheet.CellStyle
	dashAction  spreadsheet.CellStyle
	dashButton  spreadsheet.CellStyle
	dashHowTo   spreadsheet.CellStyle
	dashNote    spreadsheet.CellStyle

	// history
	historyTitle  spreadsheet.CellStyle
	historyHeader spreadsheet.CellStyle

	swatches map[string]spreadsheet.CellStyle
}

func newPalette(wb *spreadsheet.Workbook) *palette {
	top := sml.ST_VerticalAlignmentTop
	mid := sml.ST_VerticalAlignmentCenter
	center := sml.ST_HorizontalAlignmentCenter

	return &palette{
		wb: wb,

		header:        styleSpec{size: 14, ink: white, bold: true, fill: deepGreen, border: true, halign: center, valign: mid, wrap: true}.add(wb),
		title:         styleSpec{size: 12, ink: white, bold: true, fill: darkGreen, border: true, valign: top, wrap: true}.add(wb),
		backLink:      styleSpec{size: 9, ink: darkGreen, underline: true}.add(wb),
		level:         styleSpec{size: 11, ink: white, bold: true, fill: levelGreen, border: true, valign: top, wrap: true}.add(wb),
		criteria:      styleSpec{size: 11, ink: darkGreen, bold: true, fill: criteriaGreen, border: true, valign: top, wrap: true}.add(wb),
		question:      styleSpec{size: 10, fill: questionTint, border: true, valign: top, wrap: true}.add(wb),
		condition:     styleSpec{size: 10, fill: conditionTint, border: true, valign: top, wrap: true}.add(wb),
		conditionType: styleSpec{size: 10, ink: conditionInk, bold: true, fill: conditionTint, border: true, valign: top, wrap: true}.add(wb),
		dataType:      styleSpec{size: 10, ink: dataInk, italic: true, fill: dataTint, border: true, valign: top, wrap: true}.add(wb),
		response:      styleSpec{size: 10, fill: white, border: true, valign: top, wrap: true, unlocked: true}.add(wb),
		guidance:      styleSpec{size: 9, ink: guidanceInk, italic: true, fill: guidanceTint, border: true, valign: top, wrap: true}.add(wb),

		dashTitle:   styleSpec{size: 18, ink: white, bold: true, fill: darkGreen, valign: mid}.add(wb),
		dashTotal:   styleSpec{size: 12, ink: darkGreen, bold: true}.add(wb),
		dashHeader:  styleSpec{size: 10, ink: white, bold: true, fill: deepGreen, border: true, halign: center, valign: mid, wrap: true}.add(wb),
		dashLink:    styleSpec{size: 10, ink: darkGreen, underline: true, border: true}.add(wb),
		dashText:    styleSpec{size: 10, border: true}.add(wb),
		dashNumber:  styleSpec{size: 10, border: true, halign: center}.add(wb),
		dashPercent: styleSpec{size: 10, border: true, halign: center, percent: true}.add(wb),
		dashAction:  styleSpec{size: 11, bold: true}.add(wb),
		dashButton:  styleSpec{size: 10, ink: darkGreen, bold: true, border: true, halign: center}.add(wb),
		dashHowTo:   styleSpec{size: 11, ink: darkGreen, bold: true}.add(wb),
		dashNote:    styleSpec{size: 10, ink: noteInk, italic: true}.add(wb),

		historyTitle:  styleSpec{size: 14, ink: darkGreen, bold: true}.add(wb),
		historyHeader: styleSpec{ink: white, bold: true, fill: deepGreen, border: true}.add(wb),

		swatches: make(map[string]spreadsheet.CellStyle),
	}
}

// swatch returns a bordered solid-fill style in the given colour.
func (p *palette) swatch(hex string) spreadsheet.CellStyle {
	if cs, ok := p.swatches[hex]; ok {
		return cs
	}
	cs := styleSpec{fill: hex, border: true}.add(p.wb)
	p.swatches[hex] = cs
	return cs
}
