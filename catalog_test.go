package greenstar

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	cat, err := LoadCatalogFile("testdata/catalog.yaml")
	require.NoError(t, err)
	return cat
}

func TestLoadCatalog(t *testing.T) {
	t.Parallel()
	cat := loadTestCatalog(t)

	require.Len(t, cat.Credits, 3)
	assert.Equal(t, "Responsible", cat.Credits[0].Category)
	assert.Equal(t, "Healthy", cat.Credits[1].Category)
	assert.Equal(t, "Other", cat.Credits[2].Category)
	assert.Equal(t, 10, cat.NumQuestions())

	rc := cat.Credits[0]
	qs := rc.Questions()
	require.Len(t, qs, 5)
	assert.Equal(t, "RC.1", qs[0].Ref)
	assert.True(t, qs[0].IsCondition())
	assert.True(t, qs[2].IsData())
	assert.Equal(t, "Certificate must be current at practical completion.", qs[2].DataNote)

	assert.Equal(t, "Light Quality", cat.Credits[1].DisplayTitle())
}

func TestLoadCatalogRejectsUnknownFields(t *testing.T) {
	t.Parallel()
	_, err := LoadCatalog(strings.NewReader("credits:\n  - sheet: A\n    bogus: 1\n"))
	require.Error(t, err)
}

func TestLoadCatalogEmpty(t *testing.T) {
	t.Parallel()
	_, err := LoadCatalog(strings.NewReader(""))
	require.ErrorIs(t, err, ErrEmptyCatalog)

	_, err = LoadCatalog(strings.NewReader("title: x\n"))
	require.ErrorIs(t, err, ErrEmptyCatalog)
}

func TestWriteCatalogRoundTrip(t *testing.T) {
	t.Parallel()
	cat := loadTestCatalog(t)

	var buf bytes.Buffer
	require.NoError(t, WriteCatalog(&buf, cat))

	again, err := LoadCatalog(&buf)
	require.NoError(t, err)
	assert.Equal(t, cat, again)
}

func TestCreditSheetTruncated(t *testing.T) {
	t.Parallel()
	c := Credit{SheetName: "Procurement Workforce Inclusion Extended"}
	assert.Equal(t, "Procurement Workforce Inclusion", c.Sheet())
	assert.Len(t, []rune(c.Sheet()), MaxSheetName)
}

func TestByCategory(t *testing.T) {
	t.Parallel()
	cat := loadTestCatalog(t)
	groups := cat.ByCategory()
	require.Len(t, groups, 3)
	assert.Equal(t, "Responsible", groups[0].Category.Name)
	assert.Equal(t, []int{0}, groups[0].Indexes)
	assert.Equal(t, "Healthy", groups[1].Category.Name)
	assert.Equal(t, "Other", groups[2].Category.Name)
}

func TestFindCategory(t *testing.T) {
	t.Parallel()
	tests := []struct {
		sheet string
		want  string
	}{
		{"Responsible Construction", "Responsible"},
		{"RESPONSIBLE  construction", "Responsible"},
		{"ResponsibleResourceMgmt", "Responsible"},
		{"Light Quality", "Healthy"},
		{"Grid Resilience", "Resilient"},
		{"Low-Emissions Transport", "Positive"},
		{"Leadership Challenges", "Leadership"},
		{"Something Else", "Other"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, FindCategory(tc.sheet).Name, tc.sheet)
	}
	assert.Equal(t, "1565C0", CategoryColor("Healthy"))
	assert.Equal(t, "333333", CategoryColor("nope"))
}
