package assess_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/emergent-company/compliance-mcp/internal/assess"
	"github.com/emergent-company/compliance-mcp/internal/status"
)

func TestWeightedScore(t *testing.T) {
	counts := map[status.Status]int{
		status.Satisfied:          2,
		status.PartiallySatisfied: 2,
		status.RiskAccepted:       1,
		status.NotSatisfied:       1,
	}
	// D = 6 (total minus NA, none here); (2 + 1 + 0.75) / 6 * 100
	assert.InDelta(t, 62.5, assess.Weighted(counts, 6), 0.01)
}

func TestWeightedScoreZeroDenominatorYields100(t *testing.T) {
	assert.Equal(t, float64(100), assess.Weighted(map[status.Status]int{}, 0))
}

func TestCMMCScore(t *testing.T) {
	counts := map[status.Status]int{status.Satisfied: 3, status.PartiallySatisfied: 2}
	assert.InDelta(t, 80, assess.CMMCScore(counts, 5), 0.01)
}

func TestIVVOverallWeighting(t *testing.T) {
	v := []float64{100, 100}
	val := []float64{0, 0}
	assert.InDelta(t, 60, assess.IVVOverall(v, val), 0.01)
}

func TestPostureLabel(t *testing.T) {
	assert.Equal(t, "Strong", assess.PostureLabel(95))
	assert.Equal(t, "Moderate", assess.PostureLabel(75))
	assert.Equal(t, "Developing", assess.PostureLabel(55))
	assert.Equal(t, "Weak", assess.PostureLabel(20))
}
