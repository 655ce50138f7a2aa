package interpret

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// CompositeComparison marks rules matched on the difference of two z-scores.
const CompositeComparison = "Composite Comparison"

type Audience string

const (
	Clinician Audience = "clinician"
	Family    Audience = "family"
)

var ErrBadAudience = errors.New("audience must be clinician or family")

func ParseAudience(s string) (Audience, error) {
	switch Audience(strings.ToLower(strings.TrimSpace(s))) {
	case Clinician:
		return Clinician, nil
	case Family:
		return Family, nil
	}
	return "", fmt.Errorf("%w: %q", ErrBadAudience, s)
}

// ScoreRange bounds are inclusive; a nil bound is unconstrained.
// Comparison rules use the ZDiff pair instead of the Z pair.
type ScoreRange struct {
	MinZ     *float64 `json:"minZ,omitempty" yaml:"minZ,omitempty"`
	MaxZ     *float64 `json:"maxZ,omitempty" yaml:"maxZ,omitempty"`
	MinZDiff *float64 `json:"minZDiff,omitempty" yaml:"minZDiff,omitempty"`
	MaxZDiff *float64 `json:"maxZDiff,omitempty" yaml:"maxZDiff,omitempty"`
}

func within(v float64, lo, hi *float64) bool {
	if lo != nil && v < *lo {
		return false
	}
	if hi != nil && v > *hi {
		return false
	}
	return true
}

// Rule is one entry of the static interpretive table.
type Rule struct {
	ID               string     `json:"id" yaml:"id"`
	TestType         string     `json:"testType" yaml:"testType"`
	TestAbbreviation string     `json:"testAbbreviation" yaml:"testAbbreviation"`
	ScoreRange       ScoreRange `json:"scoreRange" yaml:"scoreRange"`
	Audience         Audience   `json:"audience" yaml:"audience"`
	Title            string     `json:"title" yaml:"title"`
	Summary          string     `json:"summary" yaml:"summary"`
	Details          string     `json:"details,omitempty" yaml:"details,omitempty"`
	Source           string     `json:"source" yaml:"source"`
	Recommendations  []string   `json:"recommendations" yaml:"recommendations"`
}

func (r Rule) IsComparison() bool { return r.TestType == CompositeComparison }

func clonePtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// clone returns r with no storage shared with the receiver.
func (r Rule) clone() Rule {
	r.ScoreRange = ScoreRange{
		MinZ:     clonePtr(r.ScoreRange.MinZ),
		MaxZ:     clonePtr(r.ScoreRange.MaxZ),
		MinZDiff: clonePtr(r.ScoreRange.MinZDiff),
		MaxZDiff: clonePtr(r.ScoreRange.MaxZDiff),
	}
	r.Recommendations = append([]string(nil), r.Recommendations...)
	return r
}

// Table is an immutable, ordered rule set.
type Table struct {
	rules []Rule
}

// NewTable validates rules and copies them into a Table.
func NewTable(rules []Rule) (*Table, error) {
	seen := make(map[string]bool, len(rules))
	cp := make([]Rule, 0, len(rules))
	for i, r := range rules {
		if strings.TrimSpace(r.ID) == "" {
			return nil, fmt.Errorf("rule %d: id is required", i)
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("duplicate rule id: %s", r.ID)
		}
		seen[r.ID] = true
		if r.TestType == "" && r.TestAbbreviation == "" {
			return nil, fmt.Errorf("rule %s: testType or testAbbreviation is required", r.ID)
		}
		if _, err := ParseAudience(string(r.Audience)); err != nil {
			return nil, fmt.Errorf("rule %s: %w", r.ID, err)
		}
		cp = append(cp, r.clone())
	}
	return &Table{rules: cp}, nil
}

// Rules returns a copy of the table in insertion order.
func (t *Table) Rules() []Rule {
	if t == nil {
		return nil
	}
	out := make([]Rule, len(t.rules))
	for i, r := range t.rules {
		out[i] = r.clone()
	}
	return out
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rules)
}

// LoadTable decodes a YAML (or JSON) sequence of rules.
func LoadTable(r io.Reader) (*Table, error) {
	var rules []Rule
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&rules); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode rules: %w", err)
	}
	return NewTable(rules)
}

func LoadTableFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadTable(f)
}
