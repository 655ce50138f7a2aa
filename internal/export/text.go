package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mind-engage/langinsight/internal/assessment"
	"github.com/mind-engage/langinsight/internal/insights"
)

const dateLayout = "January 2, 2006"

// WriteText renders the printable plain-text report: a header block, the
// most recent assessment as a table, and the heuristic insights as bullets.
func WriteText(w io.Writer, student assessment.Student, assessments []assessment.Record, ins []insights.Insight, generatedAt time.Time) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "LANGUAGE ASSESSMENT REPORT")
	fmt.Fprintln(bw, strings.Repeat("=", 26))
	fmt.Fprintf(bw, "Student: %s (ID: %s)\n", student.Name, student.ID)
	fmt.Fprintf(bw, "Generated: %s\n\n", generatedAt.Format(dateLayout))

	latest, ok := assessment.Latest(assessments)
	if !ok {
		fmt.Fprintln(bw, "No assessment data available.")
		return bw.Flush()
	}

	fmt.Fprintf(bw, "Most Recent Assessment (%s)\n", latest.Date.Format(dateLayout))
	fmt.Fprintln(bw, strings.Repeat("-", 26))
	tw := tabwriter.NewWriter(bw, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Test\tStandard Score\tPercentile\tScaled Score")
	for _, code := range assessment.Codes {
		tr, ok := latest.Tests[code]
		if !ok {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", tr.TestName, num(tr.StandardScore), num(tr.Percentile), num(tr.ScaledScore))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "Key Insights")
	fmt.Fprintln(bw, strings.Repeat("-", 26))
	if len(ins) == 0 {
		fmt.Fprintln(bw, "No notable findings.")
	}
	for _, in := range ins {
		fmt.Fprintf(bw, "%s:\n", in.Title)
		for _, item := range in.Items {
			fmt.Fprintf(bw, "  • %s\n", item)
		}
	}
	return bw.Flush()
}

func num(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%g", *v)
}

// Filename is the suggested attachment name for a student's export.
func Filename(student assessment.Student, generatedAt time.Time) string {
	id := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, student.ID)
	return fmt.Sprintf("report_%s_%s.txt", id, generatedAt.Format("2006-01-02"))
}
