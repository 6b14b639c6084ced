package greenstar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRulesDefaultTable(t *testing.T) {
	t.Parallel()
	cat := loadTestCatalog(t)
	rs := BuildRules(cat.Credits, cat.RuleGroups())

	// LQ.11 is missing from the sheet, so only three Light Quality rules apply.
	assert.Equal(t, 3+3, rs.Len())

	r, ok := rs.Lookup("Responsible Construction", "RC.2")
	require.True(t, ok)
	assert.Equal(t, Rule{Sheet: "Responsible Construction", Follower: "RC.2", Gateway: "RC.1", ShowWhen: "No"}, r)

	r, ok = rs.Lookup("Light Quality", "LQ.9")
	require.True(t, ok)
	assert.Equal(t, "LQ.7", r.Gateway)
	assert.Equal(t, "No", r.ShowWhen)

	_, ok = rs.Lookup("Light Quality", "LQ.11")
	assert.False(t, ok)
	_, ok = rs.Lookup("Responsible Construction", "RC.1")
	assert.False(t, ok)
}

func TestBuildRulesOrder(t *testing.T) {
	t.Parallel()
	cat := loadTestCatalog(t)
	rs := BuildRules(cat.Credits, cat.RuleGroups())

	var followers []string
	for _, r := range rs.ForSheet("Responsible Construction") {
		followers = append(followers, r.Follower)
	}
	assert.Equal(t, []string{"RC.3", "RC.2", "RC.5"}, followers)
}

func TestBuildRulesFirstMatchingGroupOnly(t *testing.T) {
	t.Parallel()
	credits := []Credit{{
		SheetName: "Amenity and Comfort",
		Loose: []Question{
			{Ref: "A.1"}, {Ref: "A.2"}, {Ref: "B.1"}, {Ref: "B.2"},
		},
	}}
	groups := []RuleGroup{
		{Match: []string{"amenity"}, Links: []RuleLink{{Gateway: "A.1", Followers: []string{"A.2"}}}},
		{Match: []string{"amenityandcomfort"}, Links: []RuleLink{{Gateway: "B.1", Followers: []string{"B.2"}}}},
	}
	rs := BuildRules(credits, groups)
	require.Equal(t, 1, rs.Len())
	r := rs.Rules()[0]
	assert.Equal(t, "A.2", r.Follower)
	assert.Equal(t, "Yes", r.ShowWhen)
}

func TestBuildRulesLaterRuleReplaces(t *testing.T) {
	t.Parallel()
	credits := []Credit{{SheetName: "X", Loose: []Question{{Ref: "G1"}, {Ref: "G2"}, {Ref: "F"}}}}
	groups := []RuleGroup{{Match: []string{"x"}, Links: []RuleLink{
		{Gateway: "G1", Followers: []string{"F"}, ShowWhen: "Yes"},
		{Gateway: "G2", Followers: []string{"F"}, ShowWhen: "No"},
	}}}
	rs := BuildRules(credits, groups)
	require.Equal(t, 1, rs.Len())
	r, ok := rs.Lookup("X", "F")
	require.True(t, ok)
	assert.Equal(t, "G2", r.Gateway)
}

func TestNilRuleSet(t *testing.T) {
	t.Parallel()
	var rs *RuleSet
	assert.Zero(t, rs.Len())
	assert.Empty(t, rs.Rules())
	_, ok := rs.Lookup("a", "b")
	assert.False(t, ok)
}
