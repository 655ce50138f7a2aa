package interpret

import (
	"math"

	"github.com/mind-engage/langinsight/internal/scoring"
)

// Matcher filters a rule table against computed scores. All matches are
// returned in table order.
type Matcher struct {
	table *Table
}

func NewMatcher(t *Table) *Matcher { return &Matcher{table: t} }

func (m *Matcher) Table() *Table {
	if m == nil {
		return nil
	}
	return m.table
}

// Match returns the single-score rules for a test whose z range contains the
// z-value of standardScore. A nil or NaN score matches nothing.
func (m *Matcher) Match(testName, testAbbrev string, standardScore *float64, audience Audience) []Rule {
	z, ok := scoring.ZScore(standardScore, scoring.Standard)
	if !ok || m == nil || m.table == nil {
		return nil
	}
	var out []Rule
	for _, r := range m.table.rules {
		if r.IsComparison() || r.Audience != audience {
			continue
		}
		if !sameTest(r, testName, testAbbrev) {
			continue
		}
		if within(z, r.ScoreRange.MinZ, r.ScoreRange.MaxZ) {
			out = append(out, r.clone())
		}
	}
	return out
}

func sameTest(r Rule, name, abbrev string) bool {
	return (name != "" && r.TestType == name) || (abbrev != "" && r.TestAbbreviation == abbrev)
}

// MatchComparison returns the composite comparison rules whose z-difference
// range contains receptiveZ - expressiveZ.
func (m *Matcher) MatchComparison(receptiveZ, expressiveZ float64, audience Audience) []Rule {
	diff := receptiveZ - expressiveZ
	if math.IsNaN(diff) || m == nil || m.table == nil {
		return nil
	}
	var out []Rule
	for _, r := range m.table.rules {
		if !r.IsComparison() || r.Audience != audience {
			continue
		}
		if within(diff, r.ScoreRange.MinZDiff, r.ScoreRange.MaxZDiff) {
			out = append(out, r.clone())
		}
	}
	return out
}

// ForAudience lists every rule written for audience.
func (m *Matcher) ForAudience(audience Audience) []Rule {
	var out []Rule
	for _, r := range m.Table().Rules() {
		if r.Audience == audience {
			out = append(out, r)
		}
	}
	return out
}
