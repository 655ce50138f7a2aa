package assessment

import "time"

// TestCode identifies one subtest or composite index of the instrument.
type TestCode string

const (
	CLS TestCode = "CLS"
	RLI TestCode = "RLI"
	ELI TestCode = "ELI"
	LCI TestCode = "LCI"
	LSI TestCode = "LSI"
	LMI TestCode = "LMI"
	SC  TestCode = "SC"
	WS  TestCode = "WS"
	EV  TestCode = "EV"
	FD  TestCode = "FD"
	RS  TestCode = "RS"
	BC  TestCode = "BC"
	WC  TestCode = "WC"
	USP TestCode = "USP"
	PA  TestCode = "PA"
	PRS TestCode = "PRS"
	DPP TestCode = "DPP"
)

// Codes is the fixed code table in canonical display order.
var Codes = []TestCode{CLS, RLI, ELI, LCI, LSI, LMI, SC, WS, EV, FD, RS, BC, WC, USP, PA, PRS, DPP}

var testNames = map[TestCode]string{
	CLS: "Core Language Score",
	RLI: "Receptive Language Index",
	ELI: "Expressive Language Index",
	LCI: "Language Content Index",
	LSI: "Language Structure Index",
	LMI: "Language Memory Index",
	SC:  "Sentence Comprehension",
	WS:  "Word Structure",
	EV:  "Expressive Vocabulary",
	FD:  "Following Directions",
	RS:  "Recalling Sentences",
	BC:  "Basic Concepts",
	WC:  "Word Classes",
	USP: "Understanding Spoken Paragraphs",
	PA:  "Phonological Awareness",
	PRS: "Pre-Literacy Rating Scale",
	DPP: "Descriptive Pragmatics Profile",
}

// Name returns the display name for a code, or the code itself when unknown.
func (c TestCode) Name() string {
	if n, ok := testNames[c]; ok {
		return n
	}
	return string(c)
}

// TestResult holds the scores reported for one test. Nil means absent.
type TestResult struct {
	TestName      string   `json:"test_name"`
	StandardScore *float64 `json:"standard_score,omitempty"`
	ScaledScore   *float64 `json:"scaled_score,omitempty"`
	Percentile    *float64 `json:"percentile,omitempty"`
	RawScore      *float64 `json:"raw_score,omitempty"`
}

// Record is one administration of the instrument to one student.
type Record struct {
	StudentID   string                  `json:"student_id"`
	StudentName string                  `json:"student_name"`
	Date        time.Time               `json:"date"`
	AgeMonths   *float64                `json:"age_months,omitempty"`
	Tests       map[TestCode]TestResult `json:"tests"`

	// Index is the zero-based ingestion order of the source row.
	Index int `json:"-"`
}

// Standard returns the standard score for code, or nil.
func (r Record) Standard(code TestCode) *float64 {
	if t, ok := r.Tests[code]; ok {
		return t.StandardScore
	}
	return nil
}

type Student struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
