package assessment

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Column names of the input file. Test columns follow {code}_{suffix}.
const (
	ColStudentID   = "StudentID"
	ColStudentName = "StudentName"
	ColDate        = "TestDate"
	ColAgeMonths   = "AgeMonths"

	SuffixStandard   = "StandardScore"
	SuffixScaled     = "ScaledScore"
	SuffixPercentile = "PctRank"
	SuffixRaw        = "RawScore"
)

const sentinelNA = "#N/A"

var dateLayouts = []string{"1/2/2006", "2006-1-2"}

// Row is one raw line of the input file keyed by header name.
type Row map[string]string

// Options tunes Normalize.
type Options struct {
	// Now is the fallback date for rows whose date cannot be parsed.
	Now time.Time
	// OnSkip, if set, is told about every dropped row.
	OnSkip func(index int, reason string)
}

// Normalize converts raw rows into typed records. Malformed rows are skipped,
// never reported as errors.
func Normalize(rows []Row, opts Options) []Record {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	skip := opts.OnSkip
	if skip == nil {
		skip = func(int, string) {}
	}

	out := make([]Record, 0, len(rows))
	for i, row := range rows {
		id := strings.TrimSpace(row[ColStudentID])
		if id == "" || id == sentinelNA {
			skip(i, "missing student id")
			continue
		}

		tests := map[TestCode]TestResult{}
		for _, code := range Codes {
			tr := TestResult{
				TestName:      code.Name(),
				StandardScore: ParseScore(row[column(code, SuffixStandard)]),
				ScaledScore:   ParseScore(row[column(code, SuffixScaled)]),
				Percentile:    ParseScore(row[column(code, SuffixPercentile)]),
				RawScore:      ParseScore(row[column(code, SuffixRaw)]),
			}
			if tr.StandardScore == nil && tr.ScaledScore == nil {
				continue
			}
			tests[code] = tr
		}
		if len(tests) == 0 {
			skip(i, "no test scores")
			continue
		}

		name := strings.TrimSpace(row[ColStudentName])
		if name == "" || name == sentinelNA {
			name = "Student " + id
		}
		date, ok := ParseDate(row[ColDate])
		if !ok {
			date = now
		}

		out = append(out, Record{
			StudentID:   id,
			StudentName: name,
			Date:        date,
			AgeMonths:   ParseScore(row[ColAgeMonths]),
			Tests:       tests,
			Index:       i,
		})
	}
	return out
}

func column(code TestCode, suffix string) string { return string(code) + "_" + suffix }

// ParseScore returns nil for empty cells, the #N/A and -1 sentinels, and
// anything that is not a finite number.
func ParseScore(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == sentinelNA || s == "-1" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// ParseDate accepts M/D/YYYY then YYYY-M-D.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
