package insights

import (
	"fmt"
	"math"
	"sort"

	"github.com/mind-engage/langinsight/internal/assessment"
	"github.com/mind-engage/langinsight/internal/scoring"
)

const (
	TypeBelowAverage        = "below_average"
	TypeAboveAverage        = "above_average"
	TypeReceptiveExpressive = "receptive_expressive"
	TypeProgress            = "progress"
)

// Thresholds of the heuristic layer, in standard-score points.
const (
	GapThreshold    = 10.0
	ChangeThreshold = 5.0
)

var (
	ReceptiveCodes  = []assessment.TestCode{assessment.RLI, assessment.SC, assessment.BC, assessment.WC, assessment.DPP, assessment.PRS}
	ExpressiveCodes = []assessment.TestCode{assessment.ELI, assessment.WS, assessment.EV, assessment.FD, assessment.RS}
)

type Insight struct {
	Type  string   `json:"type"`
	Title string   `json:"title"`
	Items []string `json:"items"`
}

type scored struct {
	code  assessment.TestCode
	name  string
	score float64
}

// Heuristics derives plain-language insights from the most recent assessment
// and, for progress, the earliest one. Categories with nothing to say are
// omitted.
func Heuristics(assessments []assessment.Record) []Insight {
	latest, ok := assessment.Latest(assessments)
	if !ok {
		return []Insight{}
	}
	norm, _ := scoring.NormFor(scoring.Standard)

	var below, above []scored
	for _, code := range assessment.Codes {
		s := latest.Standard(code)
		if s == nil {
			continue
		}
		e := scored{code: code, name: latest.Tests[code].TestName, score: *s}
		switch {
		case norm.Below(*s):
			below = append(below, e)
		case norm.Above(*s):
			above = append(above, e)
		}
	}

	out := []Insight{}
	if len(below) > 0 {
		sort.SliceStable(below, func(i, j int) bool { return below[i].score < below[j].score })
		out = append(out, Insight{Type: TypeBelowAverage, Title: "Areas of Concern", Items: scoreItems(below)})
	}
	if len(above) > 0 {
		sort.SliceStable(above, func(i, j int) bool { return above[i].score > above[j].score })
		out = append(out, Insight{Type: TypeAboveAverage, Title: "Areas of Strength", Items: scoreItems(above)})
	}
	if in, ok := receptiveExpressive(latest); ok {
		out = append(out, in)
	}
	if len(assessments) >= 2 {
		earliest, _ := assessment.Earliest(assessments)
		if in, ok := progress(earliest, latest); ok {
			out = append(out, in)
		}
	}
	return out
}

func scoreItems(s []scored) []string {
	items := make([]string, 0, len(s))
	for _, e := range s {
		items = append(items, fmt.Sprintf("%s (%s): %s", e.name, e.code, formatScore(e.score)))
	}
	return items
}

func average(r assessment.Record, codes []assessment.TestCode) (float64, bool) {
	sum, n := 0.0, 0
	for _, c := range codes {
		if s := r.Standard(c); s != nil {
			sum += *s
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

func receptiveExpressive(r assessment.Record) (Insight, bool) {
	rec, okR := average(r, ReceptiveCodes)
	exp, okE := average(r, ExpressiveCodes)
	if !okR || !okE {
		return Insight{}, false
	}
	diff := rec - exp
	if math.Abs(diff) < GapThreshold {
		return Insight{}, false
	}
	stronger, weaker := "Receptive", "expressive"
	if diff < 0 {
		stronger, weaker = "Expressive", "receptive"
	}
	item := fmt.Sprintf("%s language skills (average %.1f) are stronger than %s skills (average %.1f) by %.1f points.",
		stronger, math.Max(rec, exp), weaker, math.Min(rec, exp), math.Abs(diff))
	return Insight{
		Type:  TypeReceptiveExpressive,
		Title: "Receptive vs. Expressive Language",
		Items: []string{item},
	}, true
}

func progress(earliest, latest assessment.Record) (Insight, bool) {
	var items []string
	for _, code := range assessment.Codes {
		_, inE := earliest.Tests[code]
		_, inL := latest.Tests[code]
		if !inE && !inL {
			continue
		}
		from, to := earliest.Standard(code), latest.Standard(code)
		if from == nil || to == nil {
			continue
		}
		change := *to - *from
		if math.Abs(change) < ChangeThreshold {
			continue
		}
		dir := "improved"
		if change < 0 {
			dir = "declined"
		}
		items = append(items, fmt.Sprintf("%s %s by %s points (%s → %s)",
			code.Name(), dir, formatScore(math.Abs(change)), formatScore(*from), formatScore(*to)))
	}
	if len(items) == 0 {
		return Insight{}, false
	}
	return Insight{Type: TypeProgress, Title: "Progress Over Time", Items: items}, true
}

func formatScore(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}
