package assess

import "github.com/emergent-company/compliance-mcp/internal/status"

// Weighted is the default scoring rule: 100 × (S + 0.5·P + 0.75·R) / D,
// or 100 when D <= 0 (nothing assessable).
func Weighted(counts map[status.Status]int, denominator int) float64 {
	if denominator <= 0 {
		return 100
	}
	s := float64(counts[status.Satisfied])
	p := float64(counts[status.PartiallySatisfied])
	r := float64(counts[status.RiskAccepted])
	return 100 * (s + 0.5*p + 0.75*r) / float64(denominator)
}

// CMMCScore is the met/partially_met variant: 100 × (met + 0.5·partially_met) / assessable.
// counts is still expressed in the canonical Status enum — Satisfied maps
// to "met", PartiallySatisfied to "partially_met" at the display layer
// (see internal/status), the arithmetic is identical to Weighted without
// the risk_accepted term.
func CMMCScore(counts map[status.Status]int, denominator int) float64 {
	if denominator <= 0 {
		return 100
	}
	met := float64(counts[status.Satisfied])
	partial := float64(counts[status.PartiallySatisfied])
	return 100 * (met + 0.5*partial) / float64(denominator)
}

// AreaPassRate computes the IEEE 1012 IV&V pass rate for one verification
// or validation area: 100 × (pass + 0.5·partial) / scoreable.
func AreaPassRate(counts map[status.Status]int, scoreable int) float64 {
	if scoreable <= 0 {
		return 100
	}
	pass := float64(counts[status.Satisfied])
	partial := float64(counts[status.PartiallySatisfied])
	return 100 * (pass + 0.5*partial) / float64(scoreable)
}

// IVVOverall combines verification and validation area pass rates:
// 0.6·V + 0.4·VAL. V and VAL are each the unweighted mean of their
// areas' AreaPassRate values.
func IVVOverall(verificationAreaRates, validationAreaRates []float64) float64 {
	v := mean(verificationAreaRates)
	val := mean(validationAreaRates)
	return 0.6*v + 0.4*val
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 100
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// PostureLabel maps an overall score to the standard posture band.
func PostureLabel(score float64) string {
	switch {
	case score >= 90:
		return "Strong"
	case score >= 70:
		return "Moderate"
	case score >= 50:
		return "Developing"
	default:
		return "Weak"
	}
}
