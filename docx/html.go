package docx

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

var hexColorRe = regexp.MustCompile(`^[0-9a-fA-F]{3}([0-9a-fA-F]{3})?$`)

// sanitizeColor ensures the value is a valid 3- or 6-digit hexadecimal string.
// Any invalid input results in an empty string.
func sanitizeColor(s string) string {
	s = strings.TrimPrefix(s, "#")
	if hexColorRe.MatchString(s) {
		return s
	}
	return ""
}

// RenderNoteHTML renders a note as the body of a collapsible guidance panel.
// accent is a hex colour for the part labels; an invalid value is ignored.
func RenderNoteHTML(n Note, accent string) string {
	if n.Empty() {
		return ""
	}
	labelStyle := ""
	if c := sanitizeColor(accent); c != "" {
		labelStyle = fmt.Sprintf(" style=\"color:#%s;\"", c)
	}

	var b strings.Builder
	for _, p := range n.Parts {
		b.WriteString(fmt.Sprintf("<p class=\"note-part\"><strong%s>%s:</strong> %s</p>\n",
			labelStyle, html.EscapeString(p.Label), html.EscapeString(p.Text)))
	}
	return b.String()
}
