package xlsx

import (
	"strings"

	"github.com/unidoc/unioffice/schema/soo/dml"
	"github.com/unidoc/unioffice/schema/soo/sml"
	"github.com/unidoc/unioffice/spreadsheet"
)

// GetFontProps returns the font record behind a cell style index.
func GetFontProps(ss spreadsheet.StyleSheet, styleID uint32) *sml.CT_Font {
	xf := cellXf(ss, styleID)
	if xf == nil || xf.FontIdAttr == nil || ss.X().Fonts == nil {
		return nil
	}
	fontIdx := int(*xf.FontIdAttr)
	if fontIdx >= len(ss.X().Fonts.Font) {
		return nil
	}
	return ss.X().Fonts.Font[fontIdx]
}

// GetFillProps returns the fill record behind a cell style index.
func GetFillProps(ss spreadsheet.StyleSheet, styleID uint32) *sml.CT_Fill {
	xf := cellXf(ss, styleID)
	if xf == nil || xf.FillIdAttr == nil || ss.X().Fills == nil {
		return nil
	}
	fillIdx := int(*xf.FillIdAttr)
	if fillIdx >= len(ss.X().Fills.Fill) {
		return nil
	}
	return ss.X().Fills.Fill[fillIdx]
}

func cellXf(ss spreadsheet.StyleSheet, styleID uint32) *sml.CT_Xf {
	if ss.X().CellXfs == nil || int(styleID) >= len(ss.X().CellXfs.Xf) {
		return nil
	}
	return ss.X().CellXfs.Xf[styleID]
}

// ThemeColorToRGB resolves a theme color index to an RGB hex string (e.g.
// "FFFFFF"). Tint is not applied. Returns false if the index is invalid or
// the color cannot be resolved.
func ThemeColorToRGB(wb *spreadsheet.Workbook, themeIdx int) (string, bool) {
	themes := wb.Themes()
	if len(themes) == 0 || themes[0] == nil {
		return "", false
	}
	clrScheme := themes[0].ThemeElements.ClrScheme

	// Cell colours index the scheme with the light and dark pairs swapped.
	var clr *dml.CT_Color
	switch themeIdx {
	case 0:
		clr = clrScheme.Lt1
	case 1:
		clr = clrScheme.Dk1
	case 2:
		clr = clrScheme.Lt2
	case 3:
		clr = clrScheme.Dk2
	case 4:
		clr = clrScheme.Accent1
	case 5:
		clr = clrScheme.Accent2
	case 6:
		clr = clrScheme.Accent3
	case 7:
		clr = clrScheme.Accent4
	case 8:
		clr = clrScheme.Accent5
	case 9:
		clr = clrScheme.Accent6
	case 10:
		clr = clrScheme.Hlink
	case 11:
		clr = clrScheme.FolHlink
	default:
		return "", false
	}

	if clr == nil {
		return "", false
	}

	if clr.SrgbClr != nil && clr.SrgbClr.ValAttr != "" {
		return normalizeColor(clr.SrgbClr.ValAttr), true
	} else if clr.SysClr != nil && clr.SysClr.LastClrAttr != nil {
		return normalizeColor(*clr.SysClr.LastClrAttr), true
	}
	return "", false
}

// resolveColor turns a spreadsheet colour into "RRGGBB", following theme
// references through the workbook theme.
func resolveColor(wb *spreadsheet.Workbook, c *sml.CT_Color) string {
	if c == nil {
		return ""
	}
	if c.RgbAttr != nil {
		return normalizeColor(*c.RgbAttr)
	}
	if c.ThemeAttr != nil {
		if hex, ok := ThemeColorToRGB(wb, int(*c.ThemeAttr)); ok {
			return hex
		}
	}
	return ""
}

// resolveStyle reads the font and fill of a cell style index.
func resolveStyle(wb *spreadsheet.Workbook, styleID uint32) CellStyle {
	var st CellStyle
	if font := GetFontProps(wb.StyleSheet, styleID); font != nil {
		if len(font.Sz) > 0 {
			st.FontSizePt = font.Sz[0].ValAttr
		}
		if len(font.Color) > 0 {
			st.FontColor = resolveColor(wb, font.Color[0])
		}
		st.Bold = boolProp(font.B)
		st.Italic = boolProp(font.I)
	}
	if fill := GetFillProps(wb.StyleSheet, styleID); fill != nil && fill.PatternFill != nil {
		st.FillColor = resolveColor(wb, fill.PatternFill.FgColor)
	}
	return st
}

// boolProp reads a <b/>-style toggle: present means on unless val="0".
func boolProp(p []*sml.CT_BooleanProperty) bool {
	if len(p) == 0 || p[0] == nil {
		return false
	}
	return p[0].ValAttr == nil || *p[0].ValAttr
}

// normalizeColor converts an 8-digit ARGB hex (as used in XLSX) to an
// upper-case 6-digit RGB string. Other lengths are returned upper-cased.
func normalizeColor(hex string) string {
	hex = strings.ToUpper(strings.TrimPrefix(hex, "#"))
	if len(hex) == 8 {
		return hex[2:]
	}
	return hex
}
