package docx

import (
	"fmt"
	"strings"
)

// Truncation limits for note parts, in characters.
const (
	outcomeLimit     = 250
	requirementLimit = 350
	watchOutLimit    = 350
	evidenceLimit    = 100
	evidenceItems    = 4
	definitionLimit  = 100
	definitionItems  = 2
)

func squash(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), " ", "")
}

// fold lowercases s and drops spaces and hyphens.
func fold(s string) string {
	return strings.ReplaceAll(squash(s), "-", "")
}

func overlaps(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Find returns the guidance for a workbook sheet, or nil. A credit matches
// when either name contains the other once both are lowercased and stripped
// of spaces; the first match in document order wins.
func (g Guidance) Find(sheet string) *CreditGuidance {
	sn := squash(sheet)
	for i := range g.Credits {
		if overlaps(sn, squash(g.Credits[i].Name)) {
			return &g.Credits[i]
		}
	}
	return nil
}

// RequirementMatch is a matched requirement criterion.
type RequirementMatch struct {
	Level     string
	Criterion string
	Text      string
}

// Match finds the requirement, guidance topic and evidence topic that go
// with a criterion name. "General" and empty names match nothing.
func (c *CreditGuidance) Match(criterion string) (req *RequirementMatch, watchOut string, evidence []string) {
	cn := strings.ReplaceAll(fold(criterion), "–", "")
	if cn == "" || cn == "general" {
		return nil, "", nil
	}

	// The last level with a hit wins; within a level the first criterion does.
	for _, r := range c.Requirements {
		for _, t := range r.Criteria {
			if overlaps(cn, fold(t.Name)) {
				req = &RequirementMatch{Level: r.Level, Criterion: t.Name, Text: strings.TrimSpace(t.Text)}
				break
			}
		}
	}
	for _, t := range c.Guidance {
		if overlaps(cn, fold(t.Name)) {
			watchOut = strings.TrimSpace(t.Text)
			break
		}
	}
	for _, e := range c.Evidence {
		if overlaps(cn, fold(e.Topic)) {
			evidence = e.Items
			break
		}
	}
	return req, watchOut, evidence
}

// Note builds the guidance note for one question. dataNote is the
// question's own note and always comes last.
func (g Guidance) Note(sheet, criterion, dataNote string) Note {
	var n Note
	if c := g.Find(sheet); c != nil {
		if out := strings.TrimSpace(c.Outcome); out != "" {
			n.Parts = append(n.Parts, NotePart{Label: "OUTCOME", Text: truncate(out, outcomeLimit)})
		}
		req, watch, ev := c.Match(criterion)
		if req != nil {
			n.Parts = append(n.Parts, NotePart{
				Label: fmt.Sprintf("REQUIREMENT (%s - %s)", req.Level, req.Criterion),
				Text:  truncate(req.Text, requirementLimit),
			})
		}
		if watch != "" {
			n.Parts = append(n.Parts, NotePart{Label: "WATCH OUT", Text: truncate(watch, watchOutLimit)})
		}
		if len(ev) > 0 {
			n.Parts = append(n.Parts, NotePart{Label: "EVIDENCE NEEDED", Text: joinTruncated(ev, evidenceItems, evidenceLimit)})
		}
		if len(c.Definitions) > 0 {
			n.Parts = append(n.Parts, NotePart{Label: "DEFINITIONS", Text: joinTruncated(c.Definitions, definitionItems, definitionLimit)})
		}
	}
	if dataNote != "" {
		n.Parts = append(n.Parts, NotePart{Label: "NOTE", Text: dataNote})
	}
	return n
}

func joinTruncated(items []string, count, limit int) string {
	if len(items) > count {
		items = items[:count]
	}
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = truncate(s, limit)
	}
	return strings.Join(out, "; ")
}
