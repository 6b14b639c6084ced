package docx

import (
	"fmt"
	"strings"
)

// Intermediate representation of the submission guidelines document.
//
// Headings drive the structure: Heading 1 names a credit, Heading 2 names a
// part of the credit (Outcome, Requirements, Guidance, Submission content,
// Definitions), Heading 3 and 4 name requirement levels and criteria, and
// Headings 5 to 7 name guidance and evidence topics. Slices keep document
// order because matching takes the first hit.

// -----------------------------------------------------------------------------
// Credit-level information
// -----------------------------------------------------------------------------

// Topic is a titled block of prose.
type Topic struct {
	Name string
	Text string
}

func (t Topic) String() string {
	return fmt.Sprintf("Name: %q, Text: %d chars", t.Name, len(t.Text))
}

// Requirement is one performance level and its criteria.
type Requirement struct {
	Level    string
	Criteria []Topic
}

func (r Requirement) String() string {
	return fmt.Sprintf("Level: %q, Criteria: %d", r.Level, len(r.Criteria))
}

// Evidence lists the submission items of one topic.
type Evidence struct {
	Topic string
	Items []string
}

func (e Evidence) String() string {
	return fmt.Sprintf("Topic: %q, Items: %d", e.Topic, len(e.Items))
}

// CreditGuidance is everything the guidelines say about one credit.
type CreditGuidance struct {
	Name         string
	Outcome      string
	Requirements []Requirement
	Guidance     []Topic
	General      string // guidance prose before the first topic heading
	Evidence     []Evidence
	Definitions  []string
}

func (c CreditGuidance) String() string {
	return fmt.Sprintf("Name: %q, Outcome: %d chars, Requirements: %d, Guidance: %d, Evidence: %d, Definitions: %d",
		c.Name, len(c.Outcome), len(c.Requirements), len(c.Guidance), len(c.Evidence), len(c.Definitions))
}

func (c *CreditGuidance) requirement(level string) *Requirement {
	for i := range c.Requirements {
		if c.Requirements[i].Level == level {
			return &c.Requirements[i]
		}
	}
	return nil
}

func (c *CreditGuidance) topic(name string) *Topic {
	for i := range c.Guidance {
		if c.Guidance[i].Name == name {
			return &c.Guidance[i]
		}
	}
	return nil
}

func (c *CreditGuidance) evidence(name string) *Evidence {
	for i := range c.Evidence {
		if c.Evidence[i].Topic == name {
			return &c.Evidence[i]
		}
	}
	return nil
}

func (r *Requirement) criterion(name string) *Topic {
	for i := range r.Criteria {
		if r.Criteria[i].Name == name {
			return &r.Criteria[i]
		}
	}
	return nil
}

// Guidance is the parsed guidelines document.
type Guidance struct {
	Credits []CreditGuidance
}

func (g Guidance) String() string {
	return fmt.Sprintf("Credits: %d", len(g.Credits))
}

// -----------------------------------------------------------------------------
// Per-question notes
// -----------------------------------------------------------------------------

// NotePart is one labelled paragraph of a question note.
type NotePart struct {
	Label string // e.g. "OUTCOME", "REQUIREMENT (Level - Criterion)"
	Text  string
}

func (p NotePart) String() string {
	return p.Label + ": " + p.Text
}

// Note is the guidance shown next to one question.
type Note struct {
	Parts []NotePart
}

// String joins the parts with blank lines, the form used in spreadsheet
// cells.
func (n Note) String() string {
	parts := make([]string, 0, len(n.Parts))
	for _, p := range n.Parts {
		parts = append(parts, p.String())
	}
	return strings.Join(parts, "\n\n")
}

// Empty reports whether the note has nothing to show.
func (n Note) Empty() bool {
	return len(n.Parts) == 0
}
