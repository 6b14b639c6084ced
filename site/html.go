package site

import (
	"fmt"
	"html"
	"strings"

	"github.com/aerissecure/greenstar"
	"github.com/aerissecure/greenstar/docx"
)

type renderer struct {
	cat   *greenstar.Catalog
	rules *greenstar.RuleSet
	opts  Options
}

func esc(s string) string {
	return html.EscapeString(s)
}

// -----------------------------------------------------------------------------
// Page skeleton
// -----------------------------------------------------------------------------

func (r *renderer) page(b *strings.Builder, data string) {
	title := esc(r.cat.DisplayTitle())
	groups := r.cat.ByCategory()

	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	b.WriteString("<meta charset=\"UTF-8\">\n")
	b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	fmt.Fprintf(b, "<title>%s — Submission Forms</title>\n", title)
	b.WriteString("<style>\n")
	b.WriteString(siteCSS)
	b.WriteString("</style>\n</head>\n<body>\n")

	r.topbar(b, title)
	b.WriteString("<div class=\"layout\">\n")
	r.sidebar(b, groups)
	b.WriteString("<main id=\"main-content\">\n")
	b.WriteString("<div id=\"search-results\" class=\"search-results\" style=\"display:none\"></div>\n")
	r.dashboard(b, groups)
	for _, g := range groups {
		for _, i := range g.Indexes {
			r.creditPage(b, i, g.Category)
		}
	}
	b.WriteString("</main>\n</div>\n")
	r.overlays(b)

	b.WriteString("<script>\n")
	b.WriteString(data)
	b.WriteString(siteJS)
	b.WriteString("</script>\n</body>\n</html>\n")
}

func (r *renderer) topbar(b *strings.Builder, title string) {
	b.WriteString("<header class=\"topbar\">\n")
	b.WriteString("  <button class=\"menu-btn\" onclick=\"toggleSidebar()\" title=\"Menu\">&#9776;</button>\n")
	fmt.Fprintf(b, "  <h1 class=\"topbar-title\">%s</h1>\n", title)
	b.WriteString("  <input type=\"search\" id=\"search-input\" class=\"search-input\" placeholder=\"Search questions...\" oninput=\"onSearch(this.value)\">\n")
	b.WriteString("  <div class=\"topbar-actions\">\n")
	b.WriteString("    <span id=\"autosave-indicator\" class=\"autosave\">Saved</span>\n")
	b.WriteString("    <button id=\"review-btn\" onclick=\"toggleReview()\">Review</button>\n")
	b.WriteString("    <button onclick=\"showHistory()\">History</button>\n")
	b.WriteString("    <button onclick=\"exportJSON()\">Export JSON</button>\n")
	b.WriteString("    <label class=\"import-btn\">Import<input type=\"file\" accept=\".json\" onchange=\"importJSON(this)\" hidden></label>\n")
	b.WriteString("    <button onclick=\"toggleDark()\" title=\"Dark mode\">&#9788;</button>\n")
	b.WriteString("  </div>\n</header>\n")
}

func (r *renderer) sidebar(b *strings.Builder, groups []greenstar.CategoryCredits) {
	b.WriteString("<nav id=\"sidebar\">\n")
	b.WriteString("  <div class=\"sidebar-item active\" data-credit=\"dashboard\" onclick=\"showDashboard()\"><span class=\"sidebar-item-name\">Dashboard</span></div>\n")
	for _, g := range groups {
		cat := g.Category
		b.WriteString("  <div class=\"sidebar-category\">\n")
		fmt.Fprintf(b, "    <div class=\"sidebar-category-header\" style=\"background:#%s\" onclick=\"toggleCategory(this)\"><span>%s %s</span><span class=\"arrow\">&#9662;</span></div>\n",
			cat.Color, cat.Icon, esc(cat.Name))
		b.WriteString("    <div class=\"sidebar-category-items\">\n")
		for _, i := range g.Indexes {
			c := r.cat.Credits[i]
			id := CreditID(i)
			fmt.Fprintf(b, "      <div class=\"sidebar-item\" data-credit=\"%s\" id=\"sidebar-%s\">", id, id)
			fmt.Fprintf(b, "<span class=\"sidebar-item-name\" onclick=\"showCredit('%s')\">%s</span>", id, esc(c.SheetName))
			fmt.Fprintf(b, "<span class=\"sidebar-progress-ring\" id=\"ring-%s\"><svg width=\"18\" height=\"18\" viewBox=\"0 0 18 18\">", id)
			b.WriteString("<circle cx=\"9\" cy=\"9\" r=\"7\" fill=\"none\" stroke=\"#e0e0e0\" stroke-width=\"2\"/>")
			fmt.Fprintf(b, "<circle cx=\"9\" cy=\"9\" r=\"7\" fill=\"none\" stroke=\"#%s\" stroke-width=\"2\" stroke-dasharray=\"44\" stroke-dashoffset=\"44\" stroke-linecap=\"round\" transform=\"rotate(-90 9 9)\" class=\"ring-fill\"/></svg></span>", cat.Color)
			fmt.Fprintf(b, "<button class=\"na-toggle\" onclick=\"toggleNA('%s', event)\" title=\"Mark as Not Applicable\">N/A</button></div>\n", id)
		}
		b.WriteString("    </div>\n  </div>\n")
	}
	b.WriteString("</nav>\n")
}

func (r *renderer) dashboard(b *strings.Builder, groups []greenstar.CategoryCredits) {
	b.WriteString("<section id=\"dashboard\">\n")
	fmt.Fprintf(b, "  <h2>%s</h2>\n", esc(r.cat.DisplayTitle()))
	b.WriteString("  <div class=\"dash-stats\">\n")
	fmt.Fprintf(b, "    <div class=\"dash-stat\"><span class=\"dash-stat-num\">%d</span><span>credits</span></div>\n", len(r.cat.Credits))
	fmt.Fprintf(b, "    <div class=\"dash-stat\"><span class=\"dash-stat-num\">%d</span><span>questions</span></div>\n", r.cat.NumQuestions())
	b.WriteString("    <div class=\"dash-stat\"><span class=\"dash-stat-num\" id=\"dash-answered\">0</span><span>answered</span></div>\n")
	b.WriteString("    <div class=\"dash-stat\"><span class=\"dash-stat-num\" id=\"dash-pct\">0%</span><span>complete</span></div>\n")
	b.WriteString("  </div>\n  <div class=\"dash-cards\">\n")
	for _, g := range groups {
		cat := g.Category
		questions := 0
		for _, i := range g.Indexes {
			questions += len(r.cat.Credits[i].Questions())
		}
		key := strings.ToLower(cat.Name)
		fmt.Fprintf(b, "    <div class=\"dash-card\" style=\"border-top:4px solid #%s\">\n", cat.Color)
		fmt.Fprintf(b, "      <div class=\"dash-card-icon\" style=\"color:#%s\">%s</div>\n", cat.Color, cat.Icon)
		fmt.Fprintf(b, "      <div class=\"dash-card-title\">%s</div>\n", esc(cat.Name))
		fmt.Fprintf(b, "      <div class=\"dash-card-stats\"><span>%d credits</span><span>%d questions</span></div>\n", len(g.Indexes), questions)
		fmt.Fprintf(b, "      <div class=\"dash-card-bar\"><div class=\"dash-card-bar-fill\" id=\"dash-%s-bar\" style=\"background:#%s\"></div></div>\n", key, cat.Color)
		fmt.Fprintf(b, "      <div class=\"dash-card-pct\" id=\"dash-%s-pct\">0%% complete</div>\n", key)
		b.WriteString("    </div>\n")
	}
	b.WriteString("  </div>\n</section>\n")
}

func (r *renderer) overlays(b *strings.Builder) {
	b.WriteString("<div class=\"history-overlay\" id=\"history-overlay\" onclick=\"if(event.target===this)closeHistory()\">\n")
	b.WriteString("  <div class=\"history-panel\">\n")
	b.WriteString("    <div class=\"history-header\"><h3>Change history</h3><button onclick=\"closeHistory()\">&#10005;</button></div>\n")
	b.WriteString("    <div class=\"history-body\" id=\"history-body\"><div class=\"history-empty\">No history yet. Changes are tracked as you work.</div></div>\n")
	b.WriteString("  </div>\n</div>\n")
	b.WriteString("<div class=\"save-toast\" id=\"save-toast\">Saved</div>\n")
}

// -----------------------------------------------------------------------------
// Credit pages
// -----------------------------------------------------------------------------

func (r *renderer) creditPage(b *strings.Builder, i int, cat greenstar.Category) {
	c := r.cat.Credits[i]
	id := CreditID(i)
	n := len(c.Questions())

	fmt.Fprintf(b, "<div class=\"credit-page\" id=\"%s\" style=\"display:none\">\n", id)
	fmt.Fprintf(b, "  <div class=\"credit-header\" style=\"background:#%s\">\n", cat.Color)
	b.WriteString("    <div class=\"credit-header-top\">\n")
	fmt.Fprintf(b, "      <span class=\"credit-category-tag\" style=\"background:#%s;color:#%s\">%s</span>\n", cat.Mid, cat.Color, esc(cat.Name))
	fmt.Fprintf(b, "      <div class=\"credit-header-right\"><button class=\"wizard-toggle\" onclick=\"toggleWizard('%s')\">Step-by-step</button><button class=\"na-btn-header\" onclick=\"toggleNA('%s', event)\">Mark N/A</button></div>\n", id, id)
	b.WriteString("    </div>\n")
	fmt.Fprintf(b, "    <h2>%s</h2>\n", esc(c.DisplayTitle()))
	b.WriteString("  </div>\n")
	fmt.Fprintf(b, "  <div class=\"credit-progress-bar\"><div class=\"credit-progress-fill\" id=\"%s-progress\" style=\"background:#%s\"></div></div>\n", id, cat.Color)
	fmt.Fprintf(b, "  <div class=\"credit-progress-text\"><span id=\"%s-progress-text\">0 of %d answered</span></div>\n", id, n)
	fmt.Fprintf(b, "  <div class=\"wizard-nav\" id=\"%s-wizard-nav\" style=\"display:none\">", id)
	fmt.Fprintf(b, "<button class=\"wizard-btn\" onclick=\"wizardPrev('%s')\">&#8592; Back</button>", id)
	fmt.Fprintf(b, "<span class=\"wizard-step-text\" id=\"%s-wizard-step\">1 / %d</span>", id, n)
	fmt.Fprintf(b, "<button class=\"wizard-btn wizard-btn-next\" onclick=\"wizardNext('%s')\">Next &#8594;</button></div>\n", id)
	b.WriteString("  <div class=\"credit-body\">\n")
	fmt.Fprintf(b, "    <div class=\"gaps-panel\" id=\"%s-gaps\"><h3>Unanswered Questions</h3><div class=\"gaps-count\" id=\"%s-gaps-count\"></div><ul class=\"gaps-list\" id=\"%s-gaps-list\"></ul></div>\n", id, id, id)

	for _, q := range c.Loose {
		r.questionCard(b, i, c, "", q, cat)
	}
	for _, s := range c.Sections {
		fmt.Fprintf(b, "    <div class=\"level-header\" style=\"background:#%s\">%s</div>\n", cat.Color, esc(s.Title))
		for _, cr := range s.Criteria {
			fmt.Fprintf(b, "    <div class=\"criteria-header\" style=\"border-left-color:#%s;background:#%s\">%s</div>\n", cat.Color, cat.Light, esc(cr.Name))
			for _, q := range cr.Questions {
				r.questionCard(b, i, c, cr.Name, q, cat)
			}
		}
	}
	b.WriteString("  </div>\n</div>\n")
}

// typeClass maps a question type to its card class.
func typeClass(q greenstar.Question) string {
	switch {
	case q.IsCondition():
		return "q-condition"
	case q.IsData():
		return "q-data"
	default:
		return "q-descriptive"
	}
}

func (r *renderer) questionCard(b *strings.Builder, i int, c greenstar.Credit, criterion string, q greenstar.Question, cat greenstar.Category) {
	creditID := CreditID(i)
	inputID := InputID(i, q.Ref)
	class := typeClass(q)

	deps := ""
	hidden := ""
	if rule, ok := r.rules.Lookup(c.Sheet(), q.Ref); ok {
		deps = fmt.Sprintf(" data-depends-on=\"%s\" data-show-when=\"%s\"", InputID(i, rule.Gateway), esc(rule.ShowWhen))
		hidden = " q-hidden"
	}

	fmt.Fprintf(b, "    <div class=\"question-card %s%s\" id=\"%s\"%s>\n", class, hidden, CardID(i, q.Ref), deps)
	fmt.Fprintf(b, "      <div class=\"question-header\"><span class=\"question-ref\">%s</span><span class=\"question-type-badge %s-badge\">%s</span></div>\n",
		esc(q.Ref), class, esc(q.Type))
	fmt.Fprintf(b, "      <div class=\"question-text\">%s</div>\n", esc(q.Text))
	b.WriteString("      <div class=\"response-field\">")
	switch class {
	case "q-condition":
		fmt.Fprintf(b, "<select id=\"%s\" class=\"yn-select\" onchange=\"onAnswer('%s')\" data-credit=\"%s\">", inputID, creditID, creditID)
		b.WriteString("<option value=\"\">-- Select --</option><option value=\"Yes\">Yes</option><option value=\"No\">No</option></select>")
	case "q-data":
		fmt.Fprintf(b, "<textarea id=\"%s\" class=\"data-input\" rows=\"3\" placeholder=\"Enter data...\" oninput=\"onAnswer('%s')\" data-credit=\"%s\"></textarea>", inputID, creditID, creditID)
	default:
		fmt.Fprintf(b, "<textarea id=\"%s\" class=\"desc-input\" rows=\"4\" placeholder=\"Describe...\" oninput=\"onAnswer('%s')\" data-credit=\"%s\"></textarea>", inputID, creditID, creditID)
	}
	b.WriteString("</div>\n")

	if note := docx.RenderNoteHTML(r.opts.note(c.Sheet(), criterion, q), cat.Color); note != "" {
		b.WriteString("      <div class=\"guidance-wrapper\">\n")
		b.WriteString("        <button class=\"guidance-toggle\" onclick=\"this.parentElement.classList.toggle('open')\"><span class=\"guidance-icon\">?</span> Guidance <span class=\"guidance-arrow\">&#9662;</span></button>\n")
		b.WriteString("        <div class=\"guidance-content\">\n")
		b.WriteString(note)
		b.WriteString("        </div>\n      </div>\n")
	}
	b.WriteString("    </div>\n")
}
