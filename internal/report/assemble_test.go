package report

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/langinsight/internal/assessment"
	"github.com/mind-engage/langinsight/internal/interpret"
)

func ptr(v float64) *float64 { return &v }

func fixtureMatcher(t *testing.T) *interpret.Matcher {
	t.Helper()
	tbl, err := interpret.NewTable([]interpret.Rule{
		{ID: "rli-low", TestType: "Receptive Language Index", TestAbbreviation: "RLI",
			Audience: interpret.Clinician, ScoreRange: interpret.ScoreRange{MaxZ: ptr(-1)}},
		{ID: "rli-low-2", TestAbbreviation: "RLI",
			Audience: interpret.Clinician, ScoreRange: interpret.ScoreRange{MaxZ: ptr(-0.5)}},
		{ID: "rli-low-fam", TestType: "Receptive Language Index",
			Audience: interpret.Family, ScoreRange: interpret.ScoreRange{MaxZ: ptr(-1)}},
		{ID: "eli-avg", TestType: "Expressive Language Index", TestAbbreviation: "ELI",
			Audience: interpret.Clinician, ScoreRange: interpret.ScoreRange{MinZ: ptr(-1), MaxZ: ptr(1)}},
		{ID: "sc-any", TestAbbreviation: "SC", Audience: interpret.Clinician},
		{ID: "cmp-exp", TestType: interpret.CompositeComparison,
			Audience: interpret.Clinician, ScoreRange: interpret.ScoreRange{MaxZDiff: ptr(-0.67)}},
	})
	require.NoError(t, err)
	return interpret.NewMatcher(tbl)
}

func rec(idx int, date time.Time, scores map[assessment.TestCode]float64) assessment.Record {
	tests := map[assessment.TestCode]assessment.TestResult{}
	for c, v := range scores {
		tests[c] = assessment.TestResult{TestName: c.Name(), StandardScore: ptr(v)}
	}
	return assessment.Record{StudentID: "s1", StudentName: "Ada", Date: date, Tests: tests, Index: idx}
}

var student = assessment.Student{ID: "s1", Name: "Ada"}

func TestAssembleLatestAssessment(t *testing.T) {
	a := NewAssembler(fixtureMatcher(t))
	older := rec(0, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), map[assessment.TestCode]float64{assessment.RLI: 120})
	newer := rec(1, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), map[assessment.TestCode]float64{
		assessment.RLI: 80, assessment.ELI: 100, assessment.SC: 90, assessment.CLS: 100,
	})
	newer.Tests[assessment.WS] = assessment.TestResult{TestName: "Word Structure", ScaledScore: ptr(4)}

	rep := a.Assemble(student, []assessment.Record{newer, older}, interpret.Clinician)

	require.NotNil(t, rep.AssessmentDate)
	assert.Equal(t, newer.Date, *rep.AssessmentDate)
	require.Len(t, rep.TestInsights, 3)

	rli := rep.TestInsights[0]
	assert.Equal(t, assessment.RLI, rli.TestCode)
	assert.Equal(t, 80.0, rli.Score)
	assert.InDelta(t, -1.3333, rli.ZScore, 1e-4)
	assert.Equal(t, "Below Average", rli.Band)
	assert.Equal(t, 9.1, rli.Percentile)
	assert.Equal(t, []string{"rli-low", "rli-low-2"}, ruleIDs(rli.Rules))

	assert.Equal(t, assessment.ELI, rep.TestInsights[1].TestCode)
	assert.Equal(t, assessment.SC, rep.TestInsights[2].TestCode)

	require.Len(t, rep.Comparisons, 1)
	c := rep.Comparisons[0]
	assert.Equal(t, ComparisonReceptiveExpressive, c.Type)
	assert.InDelta(t, -1.3333, c.Difference, 1e-4)
	assert.Equal(t, []string{"cmp-exp"}, ruleIDs(c.Rules))

	assert.Equal(t, 2+1+1+1, rep.TotalRetrieved)
}

func TestAssembleFamilyAudience(t *testing.T) {
	a := NewAssembler(fixtureMatcher(t))
	r := rec(0, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), map[assessment.TestCode]float64{
		assessment.RLI: 80, assessment.ELI: 100,
	})
	rep := a.Assemble(student, []assessment.Record{r}, interpret.Family)
	require.Len(t, rep.TestInsights, 1)
	assert.Equal(t, []string{"rli-low-fam"}, ruleIDs(rep.TestInsights[0].Rules))
	assert.Empty(t, rep.Comparisons)
	assert.Equal(t, 1, rep.TotalRetrieved)
	for _, ti := range rep.TestInsights {
		for _, rule := range ti.Rules {
			assert.Equal(t, interpret.Family, rule.Audience)
		}
	}
}

func TestAssembleComparisonNeedsBothIndexes(t *testing.T) {
	a := NewAssembler(fixtureMatcher(t))
	r := rec(0, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), map[assessment.TestCode]float64{assessment.RLI: 70})
	rep := a.Assemble(student, []assessment.Record{r}, interpret.Clinician)
	assert.Empty(t, rep.Comparisons)
}

func TestAssembleEmpty(t *testing.T) {
	a := NewAssembler(fixtureMatcher(t))
	rep := a.Assemble(student, nil, interpret.Clinician)
	assert.NotNil(t, rep.TestInsights)
	assert.Empty(t, rep.TestInsights)
	assert.NotNil(t, rep.Comparisons)
	assert.Empty(t, rep.Comparisons)
	assert.Zero(t, rep.TotalRetrieved)
	assert.Nil(t, rep.AssessmentDate)
}

func TestAssembleTieBreakPrefersFirstIngested(t *testing.T) {
	a := NewAssembler(fixtureMatcher(t))
	day := time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC)
	first := rec(3, day, map[assessment.TestCode]float64{assessment.SC: 90})
	second := rec(7, day, map[assessment.TestCode]float64{assessment.RLI: 70})
	rep := a.Assemble(student, []assessment.Record{second, first}, interpret.Clinician)
	require.Len(t, rep.TestInsights, 1)
	assert.Equal(t, assessment.SC, rep.TestInsights[0].TestCode)
}

func TestAssembleIsDeterministic(t *testing.T) {
	a := NewAssembler(fixtureMatcher(t))
	recs := []assessment.Record{
		rec(0, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), map[assessment.TestCode]float64{assessment.RLI: 75}),
		rec(1, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), map[assessment.TestCode]float64{
			assessment.RLI: 78, assessment.ELI: 95, assessment.SC: 101,
		}),
	}
	first := a.Assemble(student, recs, interpret.Clinician)
	second := a.Assemble(student, recs, interpret.Clinician)
	if diff := cmp.Diff(first, second, cmpopts.IgnoreFields(Report{}, "Timestamp")); diff != "" {
		t.Fatalf("reports differ (-first +second):\n%s", diff)
	}
}

func ruleIDs(rules []interpret.Rule) []string {
	out := make([]string, 0, len(rules))
	for _, r := range rules {
		out = append(out, r.ID)
	}
	return out
}
