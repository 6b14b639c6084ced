// Package macros renders the VBA modules that drive the interactive
// workbook: conditional rows, dashboard progress, search, review mode, dark
// mode and the change history.
package macros

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/aerissecure/greenstar"
	"github.com/aerissecure/greenstar/vbaproject"
	"github.com/aerissecure/greenstar/xlsx"
)

// Module names inside the VBA project.
const (
	WorkbookModule = xlsx.WorkbookCodeName
	MacrosModule   = "GreenStarMacros"
)

const (
	historyLimit = 500
	historyTrim  = 103
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"vbaString": vbaString,
}).ParseFS(templateFS, "templates/*.tmpl"))

// vbaString quotes s as a VBA string literal.
func vbaString(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

type templateData struct {
	Title             string
	Module            string
	ResponseColumn    int
	TypeColumn        int
	FirstDashboardRow uint32
	Dashboard         string
	History           string
	Search            string
	HistoryLimit      int
	HistoryTrim       int
	Rules             []string
	Meta              []string
}

// RuleLines formats rules as Sheet|FollowerRef|GatewayRef|ShowWhen.
func RuleLines(rules *greenstar.RuleSet) []string {
	var out []string
	for _, r := range rules.Rules() {
		out = append(out, strings.Join([]string{r.Sheet, r.Follower, r.Gateway, r.ShowWhen}, "|"))
	}
	return out
}

// MetaLines formats credits as Sheet|Category|Colour|QuestionCount in
// dashboard order.
func MetaLines(cat *greenstar.Catalog) []string {
	out := make([]string, 0, len(cat.Credits))
	for _, c := range cat.Credits {
		out = append(out, fmt.Sprintf("%s|%s|%s|%d", c.Sheet(), c.Category, greenstar.CategoryColor(c.Category), len(c.Questions())))
	}
	return out
}

func newTemplateData(cat *greenstar.Catalog, rules *greenstar.RuleSet) templateData {
	return templateData{
		Title:             cat.DisplayTitle(),
		Module:            MacrosModule,
		ResponseColumn:    7,
		TypeColumn:        5,
		FirstDashboardRow: xlsx.DashboardRow(0),
		Dashboard:         xlsx.DashboardSheet,
		History:           xlsx.HistorySheet,
		Search:            xlsx.SearchSheet,
		HistoryLimit:      historyLimit,
		HistoryTrim:       historyTrim,
		Rules:             RuleLines(rules),
		Meta:              MetaLines(cat),
	}
}

func render(name string, data templateData) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("macros: render %s: %w", name, err)
	}
	return buf.String(), nil
}

// Modules renders the workbook document module and the macros module.
func Modules(cat *greenstar.Catalog, rules *greenstar.RuleSet) ([]vbaproject.Module, error) {
	data := newTemplateData(cat, rules)

	wb, err := render("ThisWorkbook.cls.tmpl", data)
	if err != nil {
		return nil, err
	}
	mods, err := render("GreenStarMacros.bas.tmpl", data)
	if err != nil {
		return nil, err
	}
	return []vbaproject.Module{
		{Name: WorkbookModule, Document: true, Source: wb},
		{Name: MacrosModule, Source: mods},
	}, nil
}

// classHeader leads an exported document module so the editor imports it
// as a class.
const classHeader = "VERSION 1.0 CLASS\r\nBEGIN\r\n  MultiUse = -1  'True\r\nEND\r\n"

// Export returns the file name and contents for importing m through the
// VBA editor: .cls for document modules, .bas otherwise.
func Export(m vbaproject.Module) (string, []byte) {
	if m.Document {
		return m.Name + ".cls", []byte(classHeader + m.Code())
	}
	return m.Name + ".bas", []byte(m.Code())
}
