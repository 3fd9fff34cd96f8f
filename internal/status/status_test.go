package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValid(t *testing.T) {
	assert.True(t, Valid(Satisfied))
	assert.False(t, Valid(Status("bogus")))
}

func TestDisplayNameCMMCRoundTrip(t *testing.T) {
	display := DisplayName("cmmc", Satisfied)
	assert.Equal(t, "met", display)
	assert.Equal(t, Satisfied, FromDisplayName("cmmc", display))
}

func TestDisplayNameFallsBackToCanonical(t *testing.T) {
	assert.Equal(t, "satisfied", DisplayName("unknown_framework", Satisfied))
}
