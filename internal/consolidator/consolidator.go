// Package consolidator performs the final sorted walk over a populated
// TLDIndex/DomainTree pair: for every surviving (already domination
// pruned) terminal node it reconstructs the full domain, hands the rule
// to an emit callback in sorted order, and frees the node immediately
// afterward so the whole structure can be garbage collected as it is
// drained (spec.md §4.5, §4.6).
package consolidator

import (
	"bytes"
	"sort"

	"blockfold/internal/domaintree"
	"blockfold/internal/domainview"
	"blockfold/internal/tldindex"
)

// Emit receives one surviving rule at a time, in the sorted depth-first
// post-order Consolidate walks: a longer domain before any surviving
// shorter domain that is its suffix.
type Emit func(domain []byte, info *domaintree.Info)

// Consolidate sorts idx's TLD entries, walks each subtree in sorted
// depth-first post-order (a node's children before the node itself — see
// walkAndFree), calls emit for every terminal node, and frees the index
// once every subtree has been fully drained.
func Consolidate(idx tldindex.Index, emit Emit) {
	idx.SortEntries()
	for _, entry := range idx.Entries() {
		walkAndFree(entry.Root, [][]byte{entry.Label}, emit)
	}
	idx.Free()
}

// walkAndFree visits node's children, in sorted label order, before
// emitting node itself if terminal — depth-first post-order within a
// TLD, per spec.md §4.5. A node's descendants (longer, more specific
// domains) are emitted before the node's own (shorter, more general)
// domain. It then releases node's child map so the caller's
// tldindex.Free check sees a drained subtree.
func walkAndFree(node *domaintree.Node, pathTLDFirst [][]byte, emit Emit) {
	for _, key := range sortedChildKeys(node.Children) {
		child := node.Children[key]
		childPath := make([][]byte, len(pathTLDFirst)+1)
		copy(childPath, pathTLDFirst)
		childPath[len(pathTLDFirst)] = []byte(key)
		walkAndFree(child, childPath, emit)
	}

	if node.IsTerminal() {
		emit(reconstructDomain(pathTLDFirst), node.Info)
		node.Info = nil
	}

	node.Children = nil
}

func sortedChildKeys(children map[string]*domaintree.Node) []string {
	keys := make([]string, 0, len(children))
	for k := range children {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return domainview.CompareTLDLabels([]byte(keys[i]), []byte(keys[j])) < 0
	})
	return keys
}

// reconstructDomain turns a TLD-first label path (e.g. ["com", "example",
// "www"]) back into dotted form most-specific-label-first
// ("www.example.com").
func reconstructDomain(pathTLDFirst [][]byte) []byte {
	var buf bytes.Buffer
	for i := len(pathTLDFirst) - 1; i >= 0; i-- {
		buf.Write(pathTLDFirst[i])
		if i > 0 {
			buf.WriteByte('.')
		}
	}
	return buf.Bytes()
}

// SynthesizeHeader builds the generic replacement header spec.md §4.6
// calls for when consolidation merges rules carried over from more than
// one source list, so the output never claims a single source's
// provenance it no longer has.
func SynthesizeHeader(sourceCount int) []byte {
	if sourceCount <= 1 {
		return []byte("! Consolidated blocklist")
	}
	return []byte("! Consolidated blocklist (merged from multiple sources)")
}
