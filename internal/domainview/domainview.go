// Package domainview splits a domain byte slice into labels and iterates
// them from the public suffix inward (right-to-left), the canonical order
// the domain pruning tree and diff engine both walk in.
package domainview

import (
	"bytes"
	"fmt"

	"github.com/miekg/dns"
)

// MaxDomainLength and MaxLabelLength mirror the DNS presentation-format
// limits spec.md §3 requires of a DomainView.
const (
	MaxDomainLength = 253
	MaxLabelLength  = 63
	MinLabels       = 2
)

// label is a borrowed (offset, length) pair into the owning domain slice.
type label struct {
	offset int
	length int
}

// View is a borrowed reference to a domain byte slice plus its label
// offsets, indexed left-to-right as the labels appear in the source bytes
// ("www.example.com" -> [www, example, com]).
type View struct {
	domain []byte
	labels []label
}

// Parse validates domain against spec.md §3's DomainView invariants and
// builds a View over it. domain must not be mutated while the View is
// live; View borrows it.
func Parse(domain []byte) (*View, error) {
	if len(domain) == 0 || len(domain) > MaxDomainLength {
		return nil, fmt.Errorf("domainview: length %d outside [1, %d]", len(domain), MaxDomainLength)
	}

	var labels []label
	start := 0
	for i := 0; i <= len(domain); i++ {
		if i == len(domain) || domain[i] == '.' {
			l := i - start
			if l < 1 || l > MaxLabelLength {
				return nil, fmt.Errorf("domainview: label length %d outside [1, %d]", l, MaxLabelLength)
			}
			labels = append(labels, label{offset: start, length: l})
			start = i + 1
		}
	}
	if len(labels) < MinLabels {
		return nil, fmt.Errorf("domainview: domain %q has fewer than %d labels", domain, MinLabels)
	}
	if !dns.IsDomainName(string(domain)) {
		return nil, fmt.Errorf("domainview: %q is not a syntactically valid domain name", domain)
	}

	return &View{domain: domain, labels: labels}, nil
}

// NumLabels returns the number of dot-separated labels.
func (v *View) NumLabels() int { return len(v.labels) }

// Bytes returns the full borrowed domain slice.
func (v *View) Bytes() []byte { return v.domain }

// LabelAt returns the label at right-to-left index i (0 is the TLD, the
// rightmost label).
func (v *View) LabelAt(i int) []byte {
	l := v.labels[len(v.labels)-1-i]
	return v.domain[l.offset : l.offset+l.length]
}

// TLD returns the rightmost (top) label, the key TLDIndex looks entries
// up by.
func (v *View) TLD() []byte { return v.LabelAt(0) }

// Iterator walks a View's labels right-to-left (TLD first).
type Iterator struct {
	view *View
	next int
}

// Iterate begins a right-to-left walk of v's labels.
func (v *View) Iterate() *Iterator { return &Iterator{view: v} }

// Next returns the next label in right-to-left order, or ok=false once
// exhausted.
func (it *Iterator) Next() (label []byte, ok bool) {
	if it.next >= it.view.NumLabels() {
		return nil, false
	}
	l := it.view.LabelAt(it.next)
	it.next++
	return l, true
}

// Result classifies a label-reversed comparison between two domains, per
// spec.md §4.7's comparison algorithm.
type Result int

const (
	// Equal means both domains are identical.
	Equal Result = iota
	// Less means A sorts strictly before B under the label-reversed
	// comparator, and neither is a suffix of the other.
	Less
	// Greater is the converse of Less.
	Greater
	// ASuffixOfB means A is a proper suffix of B at a label boundary
	// ("A blk B" in spec.md §4.7's notation).
	ASuffixOfB
	// BSuffixOfA means B is a proper suffix of A at a label boundary.
	BSuffixOfA
)

// compareLabels implements spec.md §4.7 step 2: memcmp over the shorter
// length, then shorter < longer on a matching common prefix.
func compareLabels(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if c := bytes.Compare(a[:n], b[:n]); c != 0 {
		return c
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// Compare implements spec.md §4.7's comparison algorithm: iterate labels
// right-to-left in lock step, comparing label bytes; the first
// non-matching label decides Less/Greater, and an early exhaustion on one
// side (with all compared labels equal so far) decides the suffix cases.
func Compare(a, b *View) Result {
	ia, ib := a.Iterate(), b.Iterate()
	for {
		la, aok := ia.Next()
		lb, bok := ib.Next()
		switch {
		case !aok && !bok:
			return Equal
		case !aok:
			return ASuffixOfB
		case !bok:
			return BSuffixOfA
		}
		switch c := compareLabels(la, lb); {
		case c < 0:
			return Less
		case c > 0:
			return Greater
		}
	}
}

// CompareTLDLabels orders two TLD labels the way TLDIndex.sort_entries
// does: lexicographic by bytes, shorter first on a matching prefix.
func CompareTLDLabels(a, b []byte) int {
	return compareLabels(a, b)
}
