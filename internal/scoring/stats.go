package scoring

import "math"

// Normative band labels, lowest first.
const (
	BandSignificantlyBelow = "Significantly Below Average"
	BandBelow              = "Below Average"
	BandAverage            = "Average"
	BandAbove              = "Above Average"
	BandSignificantlyAbove = "Significantly Above Average"
)

// Bands lists every label Band can return, in ascending order.
var Bands = []string{
	BandSignificantlyBelow,
	BandBelow,
	BandAverage,
	BandAbove,
	BandSignificantlyAbove,
}

// ZScore converts score to a z-value on the scale of typ.
// ok is false for a nil or NaN score, or an unregistered type.
func ZScore(score *float64, typ InstrumentType) (z float64, ok bool) {
	if score == nil || math.IsNaN(*score) {
		return 0, false
	}
	n, found := NormFor(typ)
	if !found {
		return 0, false
	}
	return (*score - n.Mean) / n.SD, true
}

// Band classifies z into one of five buckets. Boundary values belong to the
// lower bucket.
func Band(z float64) string {
	switch {
	case z <= -2:
		return BandSignificantlyBelow
	case z <= -1:
		return BandBelow
	case z <= 1:
		return BandAverage
	case z <= 2:
		return BandAbove
	default:
		return BandSignificantlyAbove
	}
}

// Abramowitz & Stegun 7.1.26 coefficients. Max absolute error 1.5e-7.
const (
	erfA1 = 0.254829592
	erfA2 = -0.284496736
	erfA3 = 1.421413741
	erfA4 = -1.453152027
	erfA5 = 1.061405429
	erfP  = 0.3275911
)

func erf(x float64) float64 {
	sign := 1.0
	if x < 0 {
		sign = -1
	}
	x = math.Abs(x)
	t := 1 / (1 + erfP*x)
	y := 1 - (((((erfA5*t+erfA4)*t)+erfA3)*t+erfA2)*t+erfA1)*t*math.Exp(-x*x)
	return sign * y
}

// PercentileFromZ returns the standard normal CDF at z on a 0..100 scale,
// rounded to one decimal.
func PercentileFromZ(z float64) float64 {
	cdf := 0.5 * (1 + erf(z/math.Sqrt2))
	return math.Round(cdf*1000) / 10
}
