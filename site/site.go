// Package site renders the submission forms as one self-contained HTML page.
// Responses live in the browser's localStorage and can be exported as JSON;
// nothing is served.
package site

import (
	_ "embed"
	"io"
	"strings"

	"github.com/aerissecure/greenstar"
	"github.com/aerissecure/greenstar/docx"
)

//go:embed assets/site.css
var siteCSS string

//go:embed assets/site.js
var siteJS string

// NoteFunc returns the guidance note shown in a question's drawer.
type NoteFunc func(sheet, criterion string, q greenstar.Question) docx.Note

// Options controls Render.
type Options struct {
	// Rules overrides the rule set built from the catalog's rule groups.
	Rules *greenstar.RuleSet
	// Notes supplies guidance drawers. When nil only the question's own
	// data note is shown.
	Notes NoteFunc
}

func (o Options) rules(cat *greenstar.Catalog) *greenstar.RuleSet {
	if o.Rules != nil {
		return o.Rules
	}
	return greenstar.BuildRules(cat.Credits, cat.RuleGroups())
}

func (o Options) note(sheet, criterion string, q greenstar.Question) docx.Note {
	if o.Notes != nil {
		return o.Notes(sheet, criterion, q)
	}
	var n docx.Note
	if q.DataNote != "" {
		n.Parts = append(n.Parts, docx.NotePart{Label: "NOTE", Text: q.DataNote})
	}
	return n
}

// Render returns the complete page for cat.
func Render(cat *greenstar.Catalog, opts Options) (string, error) {
	if cat == nil || len(cat.Credits) == 0 {
		return "", greenstar.ErrEmptyCatalog
	}
	rules := opts.rules(cat)
	data, err := newPageData(cat, rules).script()
	if err != nil {
		return "", err
	}
	r := &renderer{cat: cat, rules: rules, opts: opts}
	var b strings.Builder
	r.page(&b, data)
	return b.String(), nil
}

// Write renders cat to w.
func Write(w io.Writer, cat *greenstar.Catalog, opts Options) error {
	page, err := Render(cat, opts)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, page)
	return err
}
