// Package tldindex implements the first-level lookup from a TLD label to
// its DomainTree subtree root. The storage representation is hidden
// behind the Index interface (spec.md §4.3, Design Note "Polymorphic TLD
// backend") so a sorted-array or B-tree backend could be substituted
// without touching callers; the hash-map implementation below is the
// default, matching spec.md §9's "hash variant is the default".
package tldindex

import (
	"sort"

	"blockfold/internal/domaintree"
	"blockfold/internal/domainview"
	"blockfold/internal/invariant"
)

// Index is the capability abstraction spec.md §4.3 asks for: insert-or-get
// a subtree slot, sort entries once before consolidation, and iterate them
// in sorted order.
type Index interface {
	// InsertOrGet returns the subtree root for tld, creating an empty one
	// if this is the first rule seen under that TLD.
	InsertOrGet(tld []byte) *domaintree.Node

	// SortEntries sorts entries by label bytes (tie-break by length), to
	// be called once immediately before consolidation.
	SortEntries()

	// Entries returns (label, root) pairs in the order established by the
	// last SortEntries call, sorting first if no sorted order is current.
	Entries() []Entry

	// Len reports how many distinct TLD labels have been seen.
	Len() int

	// Free releases the index after consolidation has transferred every
	// subtree's info out and freed its nodes. It panics if any subtree
	// still has children or a terminal, since that means consolidation
	// did not actually drain it (spec.md §4.3's "asserts all child
	// subtrees already released").
	Free()
}

// Entry pairs a TLD label with its subtree root.
type Entry struct {
	Label []byte
	Root  *domaintree.Node
}

// hashIndex is the default Index: a Go map keyed by label bytes, with a
// deferred sort applied to a flat slice of Entry when SortEntries is
// called, or when Entries finds no current sorted order (map iteration
// order is never relied on directly).
type hashIndex struct {
	byLabel map[string]*domaintree.Node
	order   []string // insertion order of labels; Entries does not read it
	sorted  []Entry
}

// New returns the default hash-map-backed Index.
func New() Index {
	return &hashIndex{byLabel: make(map[string]*domaintree.Node)}
}

func (h *hashIndex) InsertOrGet(tld []byte) *domaintree.Node {
	key := string(tld)
	if root, ok := h.byLabel[key]; ok {
		return root
	}
	root := domaintree.NewNode()
	h.byLabel[key] = root
	h.order = append(h.order, key)
	h.sorted = nil
	return root
}

func (h *hashIndex) Len() int { return len(h.byLabel) }

func (h *hashIndex) SortEntries() {
	entries := make([]Entry, 0, len(h.byLabel))
	for key, root := range h.byLabel {
		entries = append(entries, Entry{Label: []byte(key), Root: root})
	}
	sort.Slice(entries, func(i, j int) bool {
		return domainview.CompareTLDLabels(entries[i].Label, entries[j].Label) < 0
	})
	h.sorted = entries
}

func (h *hashIndex) Entries() []Entry {
	if h.sorted == nil {
		h.SortEntries()
	}
	return h.sorted
}

func (h *hashIndex) Free() {
	for key, root := range h.byLabel {
		invariant.Check(root.IsLeaf() && !root.IsTerminal(),
			"tldindex: Free called before consolidation drained subtree for %s", key)
	}
	h.byLabel = nil
	h.order = nil
	h.sorted = nil
}
