package site

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/aerissecure/greenstar"
)

// CreditID is the element id of a credit page.
func CreditID(i int) string {
	return "credit-" + strconv.Itoa(i)
}

// InputID is the element id of a question's response field.
func InputID(i int, ref string) string {
	return CreditID(i) + "-" + strings.ReplaceAll(ref, ".", "-")
}

// CardID is the element id of a question card.
func CardID(i int, ref string) string {
	return "card-" + InputID(i, ref)
}

// ruleJSON is one entry of the client-side rule map, keyed by the
// follower's input id.
type ruleJSON struct {
	DependsOn string `json:"depends_on"`
	ShowWhen  string `json:"show_when"`
}

// searchEntry is one question in the client-side search index.
type searchEntry struct {
	Ref      string `json:"ref"`
	Credit   string `json:"credit"`
	CreditID string `json:"creditId"`
	CardID   string `json:"cardId"`
	Type     string `json:"type"`
	Question string `json:"question"`
	Note     string `json:"note,omitempty"`
}

// exportQuestion and exportCredit describe the catalog for the JSON
// export of responses.
type exportQuestion struct {
	Ref      string `json:"ref"`
	InputID  string `json:"input_id"`
	Type     string `json:"type"`
	Level    string `json:"level,omitempty"`
	Criteria string `json:"criteria,omitempty"`
	Question string `json:"question"`
}

type exportCredit struct {
	ID        string           `json:"id"`
	Sheet     string           `json:"sheet_name"`
	Title     string           `json:"title"`
	Category  string           `json:"category"`
	Questions []exportQuestion `json:"questions"`
}

// pageData is everything the script needs besides the markup.
type pageData struct {
	Title      string
	Rules      map[string]ruleJSON
	Search     []searchEntry
	Credits    []exportCredit
	Categories map[string][]string
}

func newPageData(cat *greenstar.Catalog, rules *greenstar.RuleSet) pageData {
	d := pageData{
		Title:      cat.DisplayTitle(),
		Rules:      make(map[string]ruleJSON),
		Categories: make(map[string][]string),
	}
	sheets := make(map[string]int, len(cat.Credits))
	for i, c := range cat.Credits {
		sheets[c.Sheet()] = i
		id := CreditID(i)
		ec := exportCredit{ID: id, Sheet: c.SheetName, Title: c.DisplayTitle(), Category: c.Category, Questions: []exportQuestion{}}
		for _, q := range c.Questions() {
			ec.Questions = append(ec.Questions, exportQuestion{
				Ref:      q.Ref,
				InputID:  InputID(i, q.Ref),
				Type:     q.Type,
				Level:    q.Level,
				Criteria: q.Criteria,
				Question: q.Text,
			})
			d.Search = append(d.Search, searchEntry{
				Ref:      q.Ref,
				Credit:   c.SheetName,
				CreditID: id,
				CardID:   CardID(i, q.Ref),
				Type:     q.Type,
				Question: q.Text,
				Note:     q.DataNote,
			})
		}
		d.Credits = append(d.Credits, ec)
		d.Categories[c.Category] = append(d.Categories[c.Category], id)
	}
	for _, r := range rules.Rules() {
		i, ok := sheets[r.Sheet]
		if !ok {
			continue
		}
		d.Rules[InputID(i, r.Follower)] = ruleJSON{
			DependsOn: InputID(i, r.Gateway),
			ShowWhen:  r.ShowWhen,
		}
	}
	return d
}

// script returns the data declarations that precede the page script.
// json.Marshal escapes <, > and &, so the output is safe inside a script
// element.
func (d pageData) script() (string, error) {
	var b strings.Builder
	decls := []struct {
		name string
		v    any
	}{
		{"CONDITIONAL_RULES", d.Rules},
		{"SEARCH_INDEX", d.Search},
		{"CREDITS", d.Credits},
		{"CATEGORY_MAP", d.Categories},
		{"SITE_TITLE", d.Title},
	}
	for _, decl := range decls {
		raw, err := json.Marshal(decl.v)
		if err != nil {
			return "", err
		}
		b.WriteString("const " + decl.name + " = ")
		b.Write(raw)
		b.WriteString(";\n")
	}
	return b.String(), nil
}
