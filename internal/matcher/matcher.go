// Package matcher answers "is this domain blocked" against an already
// consolidated, immutable rule set. It is deliberately NOT part of the
// insert-time DomainTree path: a Bloom filter's false negatives are only
// safe to trust once the full key space is frozen and every ancestor
// suffix has a known, fixed membership answer. Gating DomainTree.Insert
// itself on a Bloom pre-check would let a negative on the exact insert
// key bypass the descend-and-compare walk even when an unrelated
// sibling domain already populated an intermediate node — corrupting an
// existing subtree. Here there is no insertion, only read-only
// membership queries over a set that will not change again, which is
// exactly the condition haukened-rr-dns's blocklist.Store interface
// documents: prefer an exact match, else walk suffix anchors from
// most-specific to least, short-circuiting on first hit.
package matcher

import (
	"blockfold/internal/bloomgate"
	"blockfold/internal/domainview"
)

// Matcher answers membership queries over a fixed set of domains
// produced by a prior consolidation pass.
type Matcher struct {
	gate  *bloomgate.Gate
	exact map[string]struct{}
}

// Build indexes domains (full domain strings, e.g. "ads.example.com")
// for lookup. The Bloom gate is sized for the exact element count so
// its false-positive rate matches the factory's configured default.
func Build(domains [][]byte, factory bloomgate.Factory) *Matcher {
	if factory == nil {
		factory = bloomgate.NewFactory()
	}
	gate := factory.New(uint64(len(domains)), bloomgate.DefaultFalsePositiveRate)

	exact := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		key := string(d)
		exact[key] = struct{}{}
		gate.Add(d)
	}

	return &Matcher{gate: gate, exact: exact}
}

// IsBlocked reports whether domain is blocked: either it exactly matches
// a rule, or one of its ancestor domains (at a label boundary) does.
// Anchors are tried most-specific first (the full domain) down to the
// shortest two-label ancestor, short-circuiting on the first hit, since
// that hit names the rule responsible for the decision.
func (m *Matcher) IsBlocked(domain []byte) (matchedRule string, blocked bool) {
	view, err := domainview.Parse(domain)
	if err != nil {
		return "", false
	}

	n := view.NumLabels()
	for labels := n; labels >= domainview.MinLabels; labels-- {
		candidate := suffixWithLabels(view, labels)
		if !m.gate.MightContain(candidate) {
			continue // Bloom says definitely absent; skip the map lookup.
		}
		if _, ok := m.exact[string(candidate)]; ok {
			return string(candidate), true
		}
	}
	return "", false
}

// suffixWithLabels rebuilds the dotted domain formed by the rightmost
// `labels` labels of view (labels == view.NumLabels() returns the full
// domain).
func suffixWithLabels(view *domainview.View, labels int) []byte {
	out := make([]byte, 0, len(view.Bytes()))
	for i := labels - 1; i >= 0; i-- {
		out = append(out, view.LabelAt(i)...)
		if i > 0 {
			out = append(out, '.')
		}
	}
	return out
}
