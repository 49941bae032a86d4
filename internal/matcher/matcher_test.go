package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func domains(ss ...string) [][]byte {
	out := make([][]byte, len(ss))
	for i, s := range ss {
		out[i] = []byte(s)
	}
	return out
}

func TestIsBlocked_ExactMatch(t *testing.T) {
	m := Build(domains("example.com", "other.net"), nil)

	matched, blocked := m.IsBlocked([]byte("example.com"))
	assert.True(t, blocked)
	assert.Equal(t, "example.com", matched)
}

func TestIsBlocked_AncestorMatch(t *testing.T) {
	m := Build(domains("example.com"), nil)

	matched, blocked := m.IsBlocked([]byte("www.ads.example.com"))
	assert.True(t, blocked)
	assert.Equal(t, "example.com", matched)
}

func TestIsBlocked_NoMatch(t *testing.T) {
	m := Build(domains("example.com"), nil)

	_, blocked := m.IsBlocked([]byte("totally-unrelated.net"))
	assert.False(t, blocked)
}

func TestIsBlocked_InvalidDomainNeverMatches(t *testing.T) {
	m := Build(domains("example.com"), nil)

	_, blocked := m.IsBlocked([]byte("not a domain"))
	assert.False(t, blocked)
}

func TestIsBlocked_MostSpecificAnchorWinsOverLessSpecific(t *testing.T) {
	m := Build(domains("example.com", "ads.example.com"), nil)

	matched, blocked := m.IsBlocked([]byte("tracker.ads.example.com"))
	assert.True(t, blocked)
	assert.Equal(t, "ads.example.com", matched)
}
