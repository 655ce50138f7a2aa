package insights

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/langinsight/internal/assessment"
)

func rec(idx int, year int, scores map[assessment.TestCode]float64) assessment.Record {
	tests := map[assessment.TestCode]assessment.TestResult{}
	for c, v := range scores {
		v := v
		tests[c] = assessment.TestResult{TestName: c.Name(), StandardScore: &v}
	}
	return assessment.Record{
		StudentID: "s1",
		Date:      time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC),
		Tests:     tests,
		Index:     idx,
	}
}

func byType(ins []Insight, typ string) (Insight, bool) {
	for _, in := range ins {
		if in.Type == typ {
			return in, true
		}
	}
	return Insight{}, false
}

func TestBelowAndAboveAverage(t *testing.T) {
	r := rec(0, 2024, map[assessment.TestCode]float64{
		assessment.SC: 84, assessment.WS: 70, assessment.EV: 85,
		assessment.RS: 116, assessment.BC: 130, assessment.FD: 115,
	})
	got := Heuristics([]assessment.Record{r})

	below, ok := byType(got, TypeBelowAverage)
	require.True(t, ok)
	assert.Equal(t, "Areas of Concern", below.Title)
	assert.Equal(t, []string{"Word Structure (WS): 70", "Sentence Comprehension (SC): 84"}, below.Items)

	above, ok := byType(got, TypeAboveAverage)
	require.True(t, ok)
	assert.Equal(t, []string{"Basic Concepts (BC): 130", "Recalling Sentences (RS): 116"}, above.Items)
}

func TestReceptiveExpressiveGap(t *testing.T) {
	r := rec(0, 2024, map[assessment.TestCode]float64{assessment.RLI: 110, assessment.ELI: 95})
	ins, ok := byType(Heuristics([]assessment.Record{r}), TypeReceptiveExpressive)
	require.True(t, ok)
	require.Len(t, ins.Items, 1)
	assert.Contains(t, ins.Items[0], "Receptive language skills (average 110.0)")
	assert.Contains(t, ins.Items[0], "by 15.0 points")

	r = rec(0, 2024, map[assessment.TestCode]float64{assessment.RLI: 105, assessment.ELI: 98})
	_, ok = byType(Heuristics([]assessment.Record{r}), TypeReceptiveExpressive)
	assert.False(t, ok)

	// Averages across each code set; expressive stronger.
	r = rec(0, 2024, map[assessment.TestCode]float64{
		assessment.SC: 80, assessment.WC: 90, assessment.EV: 100, assessment.FD: 100,
	})
	ins, ok = byType(Heuristics([]assessment.Record{r}), TypeReceptiveExpressive)
	require.True(t, ok)
	assert.Contains(t, ins.Items[0], "Expressive language skills (average 100.0)")
	assert.Contains(t, ins.Items[0], "receptive skills (average 85.0)")

	// Exactly ten points is enough.
	r = rec(0, 2024, map[assessment.TestCode]float64{assessment.RLI: 100, assessment.ELI: 90})
	_, ok = byType(Heuristics([]assessment.Record{r}), TypeReceptiveExpressive)
	assert.True(t, ok)

	// One side missing.
	r = rec(0, 2024, map[assessment.TestCode]float64{assessment.RLI: 130})
	_, ok = byType(Heuristics([]assessment.Record{r}), TypeReceptiveExpressive)
	assert.False(t, ok)
}

func TestProgress(t *testing.T) {
	early := rec(0, 2022, map[assessment.TestCode]float64{assessment.SC: 80, assessment.WS: 100, assessment.RS: 95})
	mid := rec(1, 2023, map[assessment.TestCode]float64{assessment.SC: 60})
	late := rec(2, 2024, map[assessment.TestCode]float64{assessment.SC: 90, assessment.WS: 103, assessment.EV: 99})

	ins, ok := byType(Heuristics([]assessment.Record{late, mid, early}), TypeProgress)
	require.True(t, ok)
	assert.Equal(t, "Progress Over Time", ins.Title)
	assert.Equal(t, []string{"Sentence Comprehension improved by 10 points (80 → 90)"}, ins.Items)

	decline := rec(3, 2025, map[assessment.TestCode]float64{assessment.SC: 72})
	ins, ok = byType(Heuristics([]assessment.Record{early, decline}), TypeProgress)
	require.True(t, ok)
	assert.Equal(t, []string{"Sentence Comprehension declined by 8 points (80 → 72)"}, ins.Items)
}

func TestProgressRequiresTwoAssessments(t *testing.T) {
	r := rec(0, 2024, map[assessment.TestCode]float64{assessment.SC: 100})
	_, ok := byType(Heuristics([]assessment.Record{r}), TypeProgress)
	assert.False(t, ok)
}

func TestNoInsights(t *testing.T) {
	assert.Empty(t, Heuristics(nil))

	r := rec(0, 2024, map[assessment.TestCode]float64{assessment.RLI: 100, assessment.ELI: 100})
	assert.Empty(t, Heuristics([]assessment.Record{r}))
}

func TestCategoriesAreAdditive(t *testing.T) {
	early := rec(0, 2022, map[assessment.TestCode]float64{assessment.RLI: 70, assessment.ELI: 100})
	late := rec(1, 2024, map[assessment.TestCode]float64{assessment.RLI: 80, assessment.ELI: 120})
	got := Heuristics([]assessment.Record{early, late})
	types := make([]string, 0, len(got))
	for _, in := range got {
		types = append(types, in.Type)
		assert.NotEmpty(t, in.Items)
	}
	assert.Equal(t, []string{TypeBelowAverage, TypeAboveAverage, TypeReceptiveExpressive, TypeProgress}, types)
}
