package telemetry

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArgsHashIsSixteenHexChars(t *testing.T) {
	h := ArgsHash(json.RawMessage(`{"msg":"hi"}`))
	assert.Len(t, h, 16)
	for _, c := range h {
		assert.True(t, (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f'))
	}
}

func TestArgsHashStableUnderKeyOrder(t *testing.T) {
	a := ArgsHash(json.RawMessage(`{"a":1,"b":2}`))
	b := ArgsHash(json.RawMessage(`{"b":2,"a":1}`))
	assert.Equal(t, a, b)
}

func TestArgsHashDiffersOnDifferentContent(t *testing.T) {
	a := ArgsHash(json.RawMessage(`{"msg":"hi"}`))
	b := ArgsHash(json.RawMessage(`{"msg":"bye"}`))
	assert.NotEqual(t, a, b)
}

func TestResultHashUsesSameConstruction(t *testing.T) {
	a := ResultHash(`{"echo":"hi"}`)
	b := ArgsHash(json.RawMessage(`{"echo":"hi"}`))
	assert.Equal(t, a, b)
}

func TestGetReturnsNoOpWithoutInit(t *testing.T) {
	Reset()
	tr := Get()
	assert.NotNil(t, tr)
}
