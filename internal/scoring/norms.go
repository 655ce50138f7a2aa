package scoring

import "sync"

// InstrumentType selects the normative scale a score is reported on.
type InstrumentType string

const (
	Standard InstrumentType = "standard" // composite / index scores
	Scaled   InstrumentType = "scaled"   // subtest scores
)

// Norm holds the population parameters of a score scale.
type Norm struct {
	Mean float64
	SD   float64
}

var (
	normMu       sync.RWMutex
	normRegistry = map[InstrumentType]Norm{
		Standard: {Mean: 100, SD: 15},
		Scaled:   {Mean: 10, SD: 3},
	}
)

// RegisterNorm binds population parameters to an instrument type.
// A non-positive SD is ignored.
func RegisterNorm(typ InstrumentType, n Norm) {
	if typ == "" || n.SD <= 0 {
		return
	}
	normMu.Lock()
	defer normMu.Unlock()
	normRegistry[typ] = n
}

// NormFor returns the registered parameters for typ.
func NormFor(typ InstrumentType) (Norm, bool) {
	normMu.RLock()
	defer normMu.RUnlock()
	n, ok := normRegistry[typ]
	return n, ok
}

// Below reports whether score falls strictly under one SD below the mean.
func (n Norm) Below(score float64) bool { return score < n.Mean-n.SD }

// Above reports whether score falls strictly over one SD above the mean.
func (n Norm) Above(score float64) bool { return score > n.Mean+n.SD }
