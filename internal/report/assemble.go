package report

import (
	"time"

	"github.com/mind-engage/langinsight/internal/assessment"
	"github.com/mind-engage/langinsight/internal/interpret"
	"github.com/mind-engage/langinsight/internal/scoring"
)

const ComparisonReceptiveExpressive = "receptive_expressive"

// TestInsight groups every rule matched for one test of the latest assessment.
type TestInsight struct {
	TestCode   assessment.TestCode `json:"test_code"`
	TestName   string              `json:"test_name"`
	Score      float64             `json:"score"`
	ZScore     float64             `json:"z_score"`
	Band       string              `json:"band"`
	Percentile float64             `json:"percentile"`
	Rules      []interpret.Rule    `json:"rules"`
}

type Comparison struct {
	Type            string           `json:"type"`
	ReceptiveScore  float64          `json:"receptive_score"`
	ExpressiveScore float64          `json:"expressive_score"`
	ReceptiveZ      float64          `json:"receptive_z"`
	ExpressiveZ     float64          `json:"expressive_z"`
	Difference      float64          `json:"difference"`
	Rules           []interpret.Rule `json:"rules"`
}

type Report struct {
	Student        assessment.Student `json:"student"`
	Audience       interpret.Audience `json:"audience"`
	AssessmentDate *time.Time         `json:"assessment_date,omitempty"`
	TestInsights   []TestInsight      `json:"test_insights"`
	Comparisons    []Comparison       `json:"comparisons"`
	TotalRetrieved int                `json:"total_retrieved"`

	// Timestamp is diagnostic only.
	Timestamp time.Time `json:"timestamp"`
}

// Assembler builds one consolidated report per student.
type Assembler struct {
	Matcher *interpret.Matcher
	Now     func() time.Time
}

func NewAssembler(m *interpret.Matcher) *Assembler {
	return &Assembler{Matcher: m, Now: time.Now}
}

// Assemble is a pure function of its inputs apart from Timestamp.
func (a *Assembler) Assemble(student assessment.Student, assessments []assessment.Record, audience interpret.Audience) Report {
	rep := Report{
		Student:      student,
		Audience:     audience,
		TestInsights: []TestInsight{},
		Comparisons:  []Comparison{},
		Timestamp:    a.now(),
	}
	latest, ok := assessment.Latest(assessments)
	if !ok {
		return rep
	}
	date := latest.Date
	rep.AssessmentDate = &date

	// Codes is duplicate-free, so each test gets at most one entry.
	for _, code := range assessment.Codes {
		tr, ok := latest.Tests[code]
		if !ok || tr.StandardScore == nil {
			continue
		}
		rules := a.Matcher.Match(tr.TestName, string(code), tr.StandardScore, audience)
		if len(rules) == 0 {
			continue
		}
		rep.TotalRetrieved += len(rules)
		z, _ := scoring.ZScore(tr.StandardScore, scoring.Standard)
		rep.TestInsights = append(rep.TestInsights, TestInsight{
			TestCode:   code,
			TestName:   tr.TestName,
			Score:      *tr.StandardScore,
			ZScore:     z,
			Band:       scoring.Band(z),
			Percentile: scoring.PercentileFromZ(z),
			Rules:      rules,
		})
	}

	rli, eli := latest.Standard(assessment.RLI), latest.Standard(assessment.ELI)
	if rli != nil && eli != nil {
		rz, _ := scoring.ZScore(rli, scoring.Standard)
		ez, _ := scoring.ZScore(eli, scoring.Standard)
		if rules := a.Matcher.MatchComparison(rz, ez, audience); len(rules) > 0 {
			rep.TotalRetrieved += len(rules)
			rep.Comparisons = append(rep.Comparisons, Comparison{
				Type:            ComparisonReceptiveExpressive,
				ReceptiveScore:  *rli,
				ExpressiveScore: *eli,
				ReceptiveZ:      rz,
				ExpressiveZ:     ez,
				Difference:      rz - ez,
				Rules:           rules,
			})
		}
	}
	return rep
}

func (a *Assembler) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}
