package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/langinsight/internal/assessment"
	"github.com/mind-engage/langinsight/internal/insights"
)

func ptr(v float64) *float64 { return &v }

var gen = time.Date(2025, 6, 9, 15, 0, 0, 0, time.UTC)

func TestWriteText(t *testing.T) {
	student := assessment.Student{ID: "s-1", Name: "Ada Lovelace"}
	recs := []assessment.Record{
		{StudentID: "s-1", Date: time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC), Index: 0,
			Tests: map[assessment.TestCode]assessment.TestResult{
				assessment.RLI: {TestName: "Receptive Language Index", StandardScore: ptr(60)},
			}},
		{StudentID: "s-1", Date: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), Index: 1,
			Tests: map[assessment.TestCode]assessment.TestResult{
				assessment.RLI: {TestName: "Receptive Language Index", StandardScore: ptr(82), Percentile: ptr(12)},
				assessment.SC:  {TestName: "Sentence Comprehension", ScaledScore: ptr(6)},
			}},
	}
	ins := []insights.Insight{{Type: insights.TypeBelowAverage, Title: "Areas of Concern",
		Items: []string{"Receptive Language Index (RLI): 82"}}}

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, student, recs, ins, gen))
	out := buf.String()

	assert.Contains(t, out, "Student: Ada Lovelace (ID: s-1)")
	assert.Contains(t, out, "Generated: June 9, 2025")
	assert.Contains(t, out, "Most Recent Assessment (March 4, 2024)")
	assert.NotContains(t, out, "60")

	var rli, sc string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "Receptive Language Index") {
			rli = line
		}
		if strings.HasPrefix(line, "Sentence Comprehension") {
			sc = line
		}
	}
	assert.Equal(t, []string{"Receptive", "Language", "Index", "82", "12", "-"}, strings.Fields(rli))
	assert.Equal(t, []string{"Sentence", "Comprehension", "-", "-", "6"}, strings.Fields(sc))

	assert.Contains(t, out, "Areas of Concern:\n  • Receptive Language Index (RLI): 82\n")
}

func TestWriteTextNoData(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, assessment.Student{ID: "x", Name: "X"}, nil, nil, gen))
	assert.Contains(t, buf.String(), "No assessment data available.")
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "report_a_b_c_2025-06-09.txt", Filename(assessment.Student{ID: "a/b c"}, gen))
}
