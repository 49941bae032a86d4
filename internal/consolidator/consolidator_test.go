package consolidator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blockfold/internal/domaintree"
	"blockfold/internal/ruleline"
	"blockfold/internal/tldindex"
)

func insert(t *testing.T, idx tldindex.Index, domain string, strength ruleline.MatchStrength) {
	t.Helper()
	// domain given in normal dotted form, most-specific first; split and
	// reverse to get TLD-first labels the way the real pipeline would.
	labels := splitDotted(domain)
	tld := labels[len(labels)-1]
	rest := make([][]byte, 0, len(labels)-1)
	for i := len(labels) - 2; i >= 0; i-- {
		rest = append(rest, labels[i])
	}
	root := idx.InsertOrGet(tld)
	domaintree.Insert(root, tld, rest, strength, ruleline.Info{}, "test")
}

func splitDotted(domain string) [][]byte {
	var out [][]byte
	start := 0
	for i := 0; i <= len(domain); i++ {
		if i == len(domain) || domain[i] == '.' {
			out = append(out, []byte(domain[start:i]))
			start = i + 1
		}
	}
	return out
}

func TestConsolidate_EmitsInPostOrderWithinTLD(t *testing.T) {
	idx := tldindex.New()
	insert(t, idx, "zzz.com", ruleline.Full)
	insert(t, idx, "example.com", ruleline.Full)
	insert(t, idx, "abc.example.net", ruleline.Full)
	insert(t, idx, "example.net", ruleline.Weak) // ancestor of abc.example.net, not dominated (weak)

	var got []string
	Consolidate(idx, func(domain []byte, info *domaintree.Info) {
		got = append(got, string(domain))
	})

	require.Len(t, got, 4)
	// com before net (TLD lexicographic); within a TLD, a child (more
	// specific domain) is emitted before its ancestor (post-order).
	assert.Equal(t, []string{"example.com", "zzz.com", "abc.example.net", "example.net"}, got)
}

func TestConsolidate_ScenarioC_MultiTLDOrdering(t *testing.T) {
	idx := tldindex.New()
	insert(t, idx, "z.com", ruleline.Full)
	insert(t, idx, "a.net", ruleline.Full)
	insert(t, idx, "a.com", ruleline.Full)

	var got []string
	Consolidate(idx, func(domain []byte, info *domaintree.Info) {
		got = append(got, string(domain))
	})

	assert.Equal(t, []string{"a.com", "z.com", "a.net"}, got)
}

func TestConsolidate_FreesIndexWithoutPanic(t *testing.T) {
	idx := tldindex.New()
	insert(t, idx, "example.com", ruleline.Full)
	insert(t, idx, "www.example.com", ruleline.Full) // dominated, pruned before consolidation

	var got []string
	Consolidate(idx, func(domain []byte, info *domaintree.Info) {
		got = append(got, string(domain))
	})

	assert.Equal(t, []string{"example.com"}, got)
	assert.Equal(t, 0, idx.Len(), "Free must clear the index")
}

func TestSynthesizeHeader(t *testing.T) {
	assert.Equal(t, "! Consolidated blocklist", string(SynthesizeHeader(1)))
	assert.Equal(t, "! Consolidated blocklist (merged from multiple sources)", string(SynthesizeHeader(2)))
}
