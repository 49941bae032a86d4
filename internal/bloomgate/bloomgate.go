// Package bloomgate provides a fast-reject approximate membership
// filter: a miss is authoritative ("definitely not present"), a hit
// requires falling back to an exact check. It is deliberately generic
// and holds no reference to DomainTree — the only safe consumer is
// internal/matcher, which queries a frozen, already-consolidated
// domain set. Gating DomainTree.Insert itself on a Bloom pre-check
// would be unsafe: a miss on the exact insert key says nothing about
// whether an unrelated domain already populated an intermediate
// ancestor node in the mutable trie.
package bloomgate

import (
	bloom "github.com/bits-and-blooms/bloom/v3"
)

// DefaultFalsePositiveRate matches the rate haukened-rr-dns's
// blocklist/bloom factory defaults to for decision caching.
const DefaultFalsePositiveRate = 0.01

// Factory constructs Gates sized for an expected element count, mirroring
// haukened-rr-dns's BloomFactory interface (New(capacity, fpRate)).
type Factory interface {
	New(expectedElements uint64, falsePositiveRate float64) *Gate
}

// Gate wraps a Bloom filter keyed by whatever bytes the caller adds;
// internal/matcher adds each domain in its dotted form
// ("ads.example.com").
type Gate struct {
	filter *bloom.BloomFilter
}

type stdFactory struct{}

// NewFactory returns the default Gate factory.
func NewFactory() Factory { return stdFactory{} }

func (stdFactory) New(expectedElements uint64, falsePositiveRate float64) *Gate {
	if falsePositiveRate <= 0 {
		falsePositiveRate = DefaultFalsePositiveRate
	}
	if expectedElements == 0 {
		expectedElements = 1024
	}
	return &Gate{filter: bloom.NewWithEstimates(uint(expectedElements), falsePositiveRate)}
}

// MightContain reports whether key has possibly been added before. false
// is authoritative ("definitely not present"); true requires the caller
// to fall back to an exact check.
func (g *Gate) MightContain(key []byte) bool {
	if g == nil {
		return true // no gate configured: always fall through to the exact walk.
	}
	return g.filter.Test(key)
}

// Add records key as present.
func (g *Gate) Add(key []byte) {
	if g == nil {
		return
	}
	g.filter.Add(key)
}
