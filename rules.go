package greenstar

import "strings"

// Rule shows Follower only while Gateway holds ShowWhen. Rules are scoped to
// a single credit sheet.
type Rule struct {
	Sheet    string `yaml:"sheet"`
	Follower string `yaml:"follower"`
	Gateway  string `yaml:"gateway"`
	ShowWhen string `yaml:"show_when"`
}

// RuleKey identifies the rule governing one follower question.
type RuleKey struct {
	Sheet    string
	Follower string
}

// RuleLink ties one gateway question to the questions it reveals.
type RuleLink struct {
	Gateway   string   `yaml:"gateway"`
	Followers []string `yaml:"followers"`
	ShowWhen  string   `yaml:"show_when,omitempty"`
}

// RuleGroup applies Links to the first credit sheet whose squashed name
// contains any of Match.
type RuleGroup struct {
	Match []string   `yaml:"match"`
	Links []RuleLink `yaml:"links"`
}

// RuleSet is an immutable table of rules keyed by (sheet, follower).
type RuleSet struct {
	rules map[RuleKey]Rule
	order []RuleKey
}

// BuildRules evaluates groups against each credit. For each credit only the
// first matching group applies, and a rule is kept only when both its
// gateway and follower exist in that credit.
func BuildRules(credits []Credit, groups []RuleGroup) *RuleSet {
	rs := &RuleSet{rules: make(map[RuleKey]Rule)}
	for _, c := range credits {
		g, ok := matchGroup(c.SheetName, groups)
		if !ok {
			continue
		}
		refs := c.Refs()
		for _, l := range g.Links {
			show := l.ShowWhen
			if show == "" {
				show = "Yes"
			}
			if !refs[l.Gateway] {
				continue
			}
			for _, f := range l.Followers {
				if !refs[f] {
					continue
				}
				rs.add(Rule{Sheet: c.Sheet(), Follower: f, Gateway: l.Gateway, ShowWhen: show})
			}
		}
	}
	return rs
}

func matchGroup(sheet string, groups []RuleGroup) (RuleGroup, bool) {
	sn := Squash(sheet)
	for _, g := range groups {
		for _, m := range g.Match {
			if strings.Contains(sn, Squash(m)) {
				return g, true
			}
		}
	}
	return RuleGroup{}, false
}

// add stores r; a later rule for the same follower replaces the earlier one.
func (rs *RuleSet) add(r Rule) {
	k := RuleKey{Sheet: r.Sheet, Follower: r.Follower}
	if _, ok := rs.rules[k]; !ok {
		rs.order = append(rs.order, k)
	}
	rs.rules[k] = r
}

// Lookup returns the rule for follower on sheet.
func (rs *RuleSet) Lookup(sheet, follower string) (Rule, bool) {
	if rs == nil {
		return Rule{}, false
	}
	r, ok := rs.rules[RuleKey{Sheet: sheet, Follower: follower}]
	return r, ok
}

// Rules returns all rules in the order they were first added.
func (rs *RuleSet) Rules() []Rule {
	if rs == nil {
		return nil
	}
	out := make([]Rule, 0, len(rs.order))
	for _, k := range rs.order {
		out = append(out, rs.rules[k])
	}
	return out
}

// ForSheet returns the rules of one sheet in insertion order.
func (rs *RuleSet) ForSheet(sheet string) []Rule {
	var out []Rule
	for _, r := range rs.Rules() {
		if r.Sheet == sheet {
			out = append(out, r)
		}
	}
	return out
}

// Len is the number of rules.
func (rs *RuleSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.order)
}

func yes(gateway string, followers ...string) RuleLink {
	return RuleLink{Gateway: gateway, Followers: followers, ShowWhen: "Yes"}
}

func no(gateway string, followers ...string) RuleLink {
	return RuleLink{Gateway: gateway, Followers: followers, ShowWhen: "No"}
}

func group(match string, links ...RuleLink) RuleGroup {
	return RuleGroup{Match: []string{match}, Links: links}
}

// DefaultRuleGroups is the Green Star Buildings v1.1 gateway table.
func DefaultRuleGroups() []RuleGroup {
	return []RuleGroup{
		group("industrydevelopment", yes("ID.5", "ID.6")),
		group("responsibleconstruction", yes("RC.1", "RC.3"), no("RC.1", "RC.2"), yes("RC.4", "RC.5")),
		group("verificationandhandover", yes("VH.5", "VH.6"), yes("VH.7", "VH.8"), yes("VH.26", "VH.27")),
		group("responsibleresource", yes("RRM.2", "RRM.3"), yes("RRM.5", "RRM.6"), yes("RRM.7", "RRM.8"), yes("RRM.12", "RRM.13")),
		group("responsibleprocurement", yes("RP.12", "RP.13")),
		group("cleanair", yes("CA.9", "CA.10")),
		group("lightquality", yes("LQ.7", "LQ.8"), no("LQ.7", "LQ.9", "LQ.10", "LQ.11")),
		group("exposuretotoxins", yes("ET.1", "ET.2", "ET.3")),
		{Match: []string{"amenityandcomfort", "amenity"}, Links: []RuleLink{yes("AmC.3", "AmC.4")}},
		group("connectiontonature", yes("CN.4", "CN.5", "CN.6")),
		group("climateresilience", yes("CR.1", "CR.2", "CR.3", "CR.4")),
		group("operationsresilience", yes("OR.4", "OR.5"), yes("OR.6", "OR.7")),
		group("communityresilience", yes("CoR.1", "CoR.2", "CoR.3", "CoR.4")),
		group("gridresilience", yes("GR.1", "GR.2", "GR.3"), yes("GR.4", "GR.5", "GR.6"), yes("GR.7", "GR.8")),
		group("energysource", yes("ES.5", "ES.6")),
		group("upfrontcarbonreduction", yes("UCR.2", "UCR.3", "UCR.4", "UCR.5")),
		group("wateruse", yes("WU.3", "WU.4"), yes("WU.5", "WU.6")),
		group("contributiontoplace", yes("CP.1", "CP.2")),
		group("cultureheritage", yes("CHI.1", "CHI.2")),
		group("firstnations", yes("FNI.1", "FNI.2", "FNI.3")),
		group("designforequity", yes("DE.4", "DE.5")),
		group("impactstonature", yes("IN.1", "IN.2", "IN.3"), yes("IN.7", "IN.8")),
		group("natureconnectivity", yes("NC.1", "NC.2"), yes("NC.5", "NC.6")),
		group("naturestewardship", yes("NS.1", "NS.2", "NS.3")),
		group("markettransformation", yes("MT.4", "MT.5")),
		group("waterwayprotection", yes("WP.5", "WP.6")),
		group("impactsdisclosure", yes("ID2.5", "ID2.6")),
	}
}
