// Package greenstar holds the Green Star Buildings submission catalog: the
// credits, their performance levels, criteria and questions, the category
// table and the conditional visibility rules between questions.
package greenstar

import (
	"fmt"
	"strings"
)

// Question types as written in column E of the questions workbook.
const (
	TypeDescriptive = "Descriptive"
	TypeData        = "Data"
	TypeCondition   = "Condition (Y/N)"
)

// MaxSheetName is the longest worksheet name a spreadsheet accepts.
const MaxSheetName = 31

// Question is one submission question.
type Question struct {
	Ref      string `yaml:"ref"`                // e.g. "RC.1"
	Credit   string `yaml:"credit,omitempty"`   // credit label from column B
	Level    string `yaml:"level,omitempty"`    // performance level label
	Criteria string `yaml:"criteria,omitempty"` // criterion label
	Type     string `yaml:"type"`               // Descriptive|Data|Condition (Y/N)
	Text     string `yaml:"question"`
	DataNote string `yaml:"data_note,omitempty"` // column H note
}

func (q Question) String() string {
	return fmt.Sprintf("Ref: %s, Type: %s, Level: %s, Criteria: %s, Question: %s", q.Ref, q.Type, q.Level, q.Criteria, q.Text)
}

// IsCondition reports whether the question takes a Yes/No answer.
func (q Question) IsCondition() bool {
	return q.Type == TypeCondition
}

// IsData reports whether the question asks for data.
func (q Question) IsData() bool {
	return q.Type == TypeData
}

// Criterion groups the questions of one criterion within a level.
type Criterion struct {
	Name      string     `yaml:"name"`
	Questions []Question `yaml:"questions,omitempty"`
}

// Section is a performance level header and the criteria below it.
type Section struct {
	Title    string      `yaml:"title"`
	Criteria []Criterion `yaml:"criteria,omitempty"`
}

// Credit is one worksheet of the questions workbook.
type Credit struct {
	SheetName string    `yaml:"sheet"`
	Title     string    `yaml:"title,omitempty"`
	Category  string    `yaml:"category,omitempty"`
	Sections  []Section `yaml:"sections,omitempty"`

	// Loose holds questions that appeared before any level header.
	Loose []Question `yaml:"loose,omitempty"`
}

func (c Credit) String() string {
	return fmt.Sprintf("Sheet: %s, Title: %s, Category: %s, Sections: %d, Questions: %d", c.SheetName, c.Title, c.Category, len(c.Sections), len(c.Questions()))
}

// Sheet returns the worksheet name, truncated to the spreadsheet limit.
func (c Credit) Sheet() string {
	r := []rune(c.SheetName)
	if len(r) > MaxSheetName {
		return string(r[:MaxSheetName])
	}
	return c.SheetName
}

// DisplayTitle falls back to the sheet name when no title row was found.
func (c Credit) DisplayTitle() string {
	if strings.TrimSpace(c.Title) != "" {
		return c.Title
	}
	return c.SheetName
}

// Questions returns every question of the credit in document order.
func (c Credit) Questions() []Question {
	var out []Question
	out = append(out, c.Loose...)
	for _, s := range c.Sections {
		for _, cr := range s.Criteria {
			out = append(out, cr.Questions...)
		}
	}
	return out
}

// Refs returns the set of question refs in the credit.
func (c Credit) Refs() map[string]bool {
	refs := make(map[string]bool)
	for _, q := range c.Questions() {
		refs[q.Ref] = true
	}
	return refs
}

// Catalog is the full set of credits plus the rule table applied to them.
type Catalog struct {
	Title   string      `yaml:"title,omitempty"`
	Credits []Credit    `yaml:"credits"`
	Rules   []RuleGroup `yaml:"rules,omitempty"`
}

// NumQuestions counts the questions of every credit.
func (c Catalog) NumQuestions() int {
	n := 0
	for _, cr := range c.Credits {
		n += len(cr.Questions())
	}
	return n
}

// RuleGroups returns the catalog's own rule table, or the built-in Green
// Star table when it has none.
func (c Catalog) RuleGroups() []RuleGroup {
	if len(c.Rules) > 0 {
		return c.Rules
	}
	return DefaultRuleGroups()
}

// DisplayTitle returns the catalog title or the default product name.
func (c Catalog) DisplayTitle() string {
	if c.Title != "" {
		return c.Title
	}
	return "Green Star Buildings v1.1"
}
