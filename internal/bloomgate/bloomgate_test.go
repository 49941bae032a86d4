package bloomgate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGate_AddAndMightContain(t *testing.T) {
	g := NewFactory().New(100, 0.01)

	key := []byte("com\x00example\x00www")
	assert.False(t, g.MightContain(key))

	g.Add(key)
	assert.True(t, g.MightContain(key))
}

func TestGate_NilGateAlwaysFallsThrough(t *testing.T) {
	var g *Gate
	assert.True(t, g.MightContain([]byte("anything")))
	g.Add([]byte("anything")) // must not panic
}

func TestFactory_DefaultsAppliedOnZeroValues(t *testing.T) {
	g := NewFactory().New(0, 0)
	assert.NotNil(t, g)
}
