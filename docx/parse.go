package docx

import (
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/unidoc/unioffice/document"
	"github.com/unidoc/unioffice/schema/soo/wml"
)

// Heading 1 texts that are front matter or category dividers rather than
// credits.
var skipCredits = map[string]bool{
	"Version control":   true,
	"Table of contents": true,
	"Introduction":      true,
	"Responsible":       true,
	"Healthy":           true,
	"Resilient":         true,
	"Positive":          true,
	"Places":            true,
	"People":            true,
	"Nature":            true,
	"Leadership":        true,
}

// Heading 2 texts that select a part of a credit.
const (
	partOutcome      = "Outcome"
	partRequirements = "Requirements"
	partGuidance     = "Guidance"
	partSubmission   = "Submission content"
	partDefinitions  = "Definitions"
)

var headingRe = regexp.MustCompile(`(?i)^heading\s*([1-9])$`)

// ParseGuidance reads a guidelines DOCX from r/size.
func ParseGuidance(r io.ReaderAt, size int64) (Guidance, error) {
	doc, err := document.Read(r, size)
	if err != nil {
		return Guidance{}, err
	}

	// ---- style ID -> display name ----
	names := make(map[string]string)
	for _, s := range doc.Styles.Styles() {
		names[s.StyleID()] = s.Name()
	}

	// ---- Build lookup map from underlying XML ptr -> high-level wrapper ----
	pMap := make(map[*wml.CT_P]document.Paragraph)
	for _, p := range doc.Paragraphs() {
		pMap[p.X()] = p
	}

	var w walker
	body := doc.X().Body
	if body == nil {
		return Guidance{}, nil
	}
	for _, bl := range body.EG_BlockLevelElts {
		for _, c := range bl.EG_ContentBlockContent {
			for _, cp := range c.P {
				par, ok := pMap[cp]
				if !ok {
					continue
				}
				w.paragraph(headingLevel(par.Style(), names), paragraphText(par))
			}
		}
	}
	return w.g, nil
}

// headingLevel resolves a paragraph style to a heading level, 0 for body
// text. Both the style ID ("Heading1") and its name ("heading 1") are tried.
func headingLevel(styleID string, names map[string]string) int {
	for _, s := range []string{names[styleID], styleID} {
		if m := headingRe.FindStringSubmatch(strings.TrimSpace(s)); m != nil {
			n, _ := strconv.Atoi(m[1])
			return n
		}
	}
	return 0
}

func paragraphText(p document.Paragraph) string {
	var b strings.Builder
	for _, run := range p.Runs() {
		b.WriteString(run.Text())
	}
	return strings.TrimSpace(b.String())
}

// walker tracks the current heading path while paragraphs stream past.
type walker struct {
	g Guidance

	credit *CreditGuidance
	h2     string
	h3     string
	h4     string
	topic  string
}

func (w *walker) paragraph(level int, text string) {
	if text == "" {
		return
	}

	if level == 1 {
		w.h2, w.h3, w.h4, w.topic = "", "", "", ""
		if skipCredits[text] || strings.HasPrefix(text, "Appendix") {
			w.credit = nil
			return
		}
		// A repeated heading starts the credit over in its original slot.
		for i := range w.g.Credits {
			if w.g.Credits[i].Name == text {
				w.g.Credits[i] = CreditGuidance{Name: text}
				w.credit = &w.g.Credits[i]
				return
			}
		}
		w.g.Credits = append(w.g.Credits, CreditGuidance{Name: text})
		w.credit = &w.g.Credits[len(w.g.Credits)-1]
		return
	}
	if w.credit == nil {
		return
	}
	c := w.credit

	switch {
	case level == 2:
		w.h2, w.h3, w.h4, w.topic = text, "", "", ""
	case level == 3:
		w.h3, w.h4, w.topic = text, "", ""
		if w.h2 == partRequirements && c.requirement(text) == nil {
			c.Requirements = append(c.Requirements, Requirement{Level: text})
		}
	case level == 4:
		w.h4, w.topic = text, ""
		if w.h2 == partRequirements && w.h3 != "" {
			if req := c.requirement(w.h3); req != nil {
				if crit := req.criterion(text); crit != nil {
					crit.Text = ""
				} else {
					req.Criteria = append(req.Criteria, Topic{Name: text})
				}
			}
		}
	case level >= 5 && level <= 7:
		w.topic = text
		switch w.h2 {
		case partGuidance:
			if t := c.topic(text); t != nil {
				t.Text = ""
			} else {
				c.Guidance = append(c.Guidance, Topic{Name: text})
			}
		case partSubmission:
			if e := c.evidence(text); e != nil {
				e.Items = nil
			} else {
				c.Evidence = append(c.Evidence, Evidence{Topic: text})
			}
		}
	default:
		w.body(text)
	}
}

// joinText appends a body paragraph to prose collected so far.
func joinText(prose, text string) string {
	if prose == "" {
		return text
	}
	return prose + " " + text
}

func (w *walker) body(text string) {
	c := w.credit
	switch w.h2 {
	case partOutcome:
		c.Outcome = joinText(c.Outcome, text)
	case partRequirements:
		if w.h3 == "" || w.h4 == "" {
			return
		}
		if req := c.requirement(w.h3); req != nil {
			if crit := req.criterion(w.h4); crit != nil {
				crit.Text = joinText(crit.Text, text)
			}
		}
	case partGuidance:
		if t := c.topic(w.topic); w.topic != "" && t != nil {
			t.Text = joinText(t.Text, text)
		} else {
			c.General = joinText(c.General, text)
		}
	case partSubmission:
		if e := c.evidence(w.topic); w.topic != "" && e != nil {
			e.Items = append(e.Items, text)
		}
	case partDefinitions:
		c.Definitions = append(c.Definitions, text)
	}
}
