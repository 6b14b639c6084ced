package site

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerissecure/greenstar"
	"github.com/aerissecure/greenstar/docx"
)

func loadCatalog(t *testing.T) *greenstar.Catalog {
	t.Helper()
	cat, err := greenstar.LoadCatalogFile("../testdata/catalog.yaml")
	require.NoError(t, err)
	return cat
}

func render(t *testing.T, cat *greenstar.Catalog, opts Options) string {
	t.Helper()
	page, err := Render(cat, opts)
	require.NoError(t, err)
	return page
}

func TestIDs(t *testing.T) {
	assert.Equal(t, "credit-3", CreditID(3))
	assert.Equal(t, "credit-3-ID2-5", InputID(3, "ID2.5"))
	assert.Equal(t, "card-credit-0-RC-1", CardID(0, "RC.1"))
}

func TestRenderSkeleton(t *testing.T) {
	page := render(t, loadCatalog(t), Options{})

	assert.True(t, strings.HasPrefix(page, "<!DOCTYPE html>"))
	assert.Contains(t, page, "<title>Green Star Buildings v1.1 — Submission Forms</title>")
	assert.Equal(t, 1, strings.Count(page, "<style>"))
	assert.Equal(t, 1, strings.Count(page, "</script>"))

	for _, id := range []string{"credit-0", "credit-1", "credit-2"} {
		assert.Contains(t, page, `<div class="credit-page" id="`+id+`"`)
		assert.Contains(t, page, `id="sidebar-`+id+`"`)
	}
	for _, key := range []string{"responsible", "healthy", "other"} {
		assert.Contains(t, page, `id="dash-`+key+`-bar"`)
	}
	assert.NotContains(t, page, `id="dash-nature-bar"`)

	// Categories in display order, Other last.
	resp := strings.Index(page, "&#9878; Responsible")
	healthy := strings.Index(page, "&#9829; Healthy")
	other := strings.Index(page, "&#9679; Other")
	require.True(t, resp > 0 && healthy > 0 && other > 0)
	assert.Less(t, resp, healthy)
	assert.Less(t, healthy, other)

	assert.Contains(t, page, `<span id="credit-0-progress-text">0 of 5 answered</span>`)
	assert.Contains(t, page, `<div class="level-header" style="background:#1F4E28">Minimum Expectation</div>`)
	assert.Contains(t, page, `<div class="criteria-header" style="border-left-color:#1565C0;background:#E3F2FD">Glare</div>`)
}

func TestRenderInputs(t *testing.T) {
	page := render(t, loadCatalog(t), Options{})

	assert.Contains(t, page, `<select id="credit-0-RC-1" class="yn-select" onchange="onAnswer('credit-0')" data-credit="credit-0">`)
	assert.Contains(t, page, `<textarea id="credit-0-RC-2" class="desc-input"`)
	assert.Contains(t, page, `<textarea id="credit-0-RC-3" class="data-input"`)
	assert.Contains(t, page, `<textarea id="credit-2-BI-1" class="desc-input"`)
}

func TestRenderConditionalCards(t *testing.T) {
	page := render(t, loadCatalog(t), Options{})

	assert.Contains(t, page, `<div class="question-card q-condition" id="card-credit-0-RC-1">`)
	assert.Contains(t, page, `<div class="question-card q-descriptive q-hidden" id="card-credit-0-RC-2" data-depends-on="credit-0-RC-1" data-show-when="No">`)
	assert.Contains(t, page, `<div class="question-card q-data q-hidden" id="card-credit-0-RC-3" data-depends-on="credit-0-RC-1" data-show-when="Yes">`)
	assert.Contains(t, page, `<div class="question-card q-descriptive q-hidden" id="card-credit-1-LQ-9" data-depends-on="credit-1-LQ-7" data-show-when="No">`)

	none := render(t, loadCatalog(t), Options{Rules: greenstar.BuildRules(nil, nil)})
	assert.NotContains(t, none, "data-depends-on")
	assert.NotContains(t, none, "q-hidden\"")
}

func TestPageData(t *testing.T) {
	cat := loadCatalog(t)
	d := newPageData(cat, greenstar.BuildRules(cat.Credits, cat.RuleGroups()))

	assert.Equal(t, "Green Star Buildings v1.1", d.Title)
	assert.Len(t, d.Search, cat.NumQuestions())
	assert.Len(t, d.Rules, 6)
	assert.Equal(t, ruleJSON{DependsOn: "credit-0-RC-1", ShowWhen: "Yes"}, d.Rules["credit-0-RC-3"])
	assert.Equal(t, ruleJSON{DependsOn: "credit-0-RC-4", ShowWhen: "Yes"}, d.Rules["credit-0-RC-5"])
	assert.Equal(t, ruleJSON{DependsOn: "credit-1-LQ-7", ShowWhen: "No"}, d.Rules["credit-1-LQ-10"])

	assert.Equal(t, []string{"credit-0"}, d.Categories["Responsible"])
	assert.Equal(t, []string{"credit-2"}, d.Categories["Other"])

	first := d.Search[0]
	assert.Equal(t, "RC.1", first.Ref)
	assert.Equal(t, "card-credit-0-RC-1", first.CardID)
	assert.Equal(t, "Certificate must be current at practical completion.", d.Search[2].Note)

	require.Len(t, d.Credits, 3)
	assert.Equal(t, "credit-1-LQ-8", d.Credits[1].Questions[1].InputID)

	js, err := d.script()
	require.NoError(t, err)
	assert.Contains(t, js, `const CONDITIONAL_RULES = {"credit-0-RC-2":{"depends_on":"credit-0-RC-1","show_when":"No"}`)
	assert.Contains(t, js, `const SITE_TITLE = "Green Star Buildings v1.1";`)
}

func TestRenderEscapes(t *testing.T) {
	cat := &greenstar.Catalog{Credits: []greenstar.Credit{{
		SheetName: "Clean Air",
		Category:  "Healthy",
		Sections: []greenstar.Section{{
			Title: "Credit <Achievement>",
			Criteria: []greenstar.Criterion{{
				Name: "Ventilation",
				Questions: []greenstar.Question{
					{Ref: "CA.1", Type: greenstar.TypeDescriptive, Text: `Is "fresh" air </script><b>provided</b>?`},
				},
			}},
		}},
	}}}
	page := render(t, cat, Options{})

	assert.Equal(t, 1, strings.Count(page, "</script>"))
	assert.Contains(t, page, `Is &#34;fresh&#34; air &lt;/script&gt;&lt;b&gt;provided&lt;/b&gt;?`)
	assert.Contains(t, page, `Credit &lt;Achievement&gt;`)
}

func TestRenderGuidance(t *testing.T) {
	cat := loadCatalog(t)

	page := render(t, cat, Options{})
	assert.Equal(t, 1, strings.Count(page, `<div class="guidance-wrapper">`))
	assert.Contains(t, page, `<strong style="color:#1F4E28;">NOTE:</strong> Certificate must be current at practical completion.`)

	var calls []string
	page = render(t, cat, Options{Notes: func(sheet, criterion string, q greenstar.Question) docx.Note {
		calls = append(calls, sheet+"/"+criterion+"/"+q.Ref)
		if q.Ref != "LQ.7" {
			return docx.Note{}
		}
		return docx.Note{Parts: []docx.NotePart{{Label: "OUTCOME", Text: "glare & comfort"}}}
	}})
	assert.Equal(t, 1, strings.Count(page, `<div class="guidance-wrapper">`))
	assert.Contains(t, page, `<strong style="color:#1565C0;">OUTCOME:</strong> glare &amp; comfort`)
	assert.Contains(t, calls, "Light Quality/Glare/LQ.7")
	assert.Contains(t, calls, "Bespoke Innovation/General/BI.1")
	assert.Len(t, calls, cat.NumQuestions())
}

func TestRenderEmpty(t *testing.T) {
	_, err := Render(&greenstar.Catalog{}, Options{})
	assert.ErrorIs(t, err, greenstar.ErrEmptyCatalog)

	_, err = Render(nil, Options{})
	assert.ErrorIs(t, err, greenstar.ErrEmptyCatalog)
}

func TestWrite(t *testing.T) {
	cat := loadCatalog(t)
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, cat, Options{}))
	assert.Equal(t, render(t, cat, Options{}), buf.String())
}
