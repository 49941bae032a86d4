// Package domaintree implements the label-reversed trie that absorbs
// parsed block rules and enforces domination: a Full-strength rule on a
// shorter domain prunes every rule on a longer domain sharing its suffix.
// Nodes are owned exclusively by their parent; consolidation transfers
// DomainInfo out of the tree and frees nodes as it walks (see
// internal/consolidator).
package domaintree

import (
	"bytes"

	"github.com/sirupsen/logrus"

	"blockfold/internal/ruleline"
)

// Info is the payload a terminal node carries: which rule produced it,
// how strongly it matches, and where to find its original bytes.
type Info struct {
	SourceContext string
	Strength      ruleline.MatchStrength
	Line          ruleline.Info
}

// Node owns its children map exclusively; a Node is a leaf iff Children
// is empty, and terminal iff Info is non-nil. Invariant: a terminal node
// with Info.Strength == Full is always a leaf (pruning removes
// descendants at the moment the Full rule wins).
type Node struct {
	Children map[string]*Node
	Info     *Info
}

// NewNode returns an empty, non-terminal node.
func NewNode() *Node {
	return &Node{Children: make(map[string]*Node)}
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// IsTerminal reports whether n carries rule info.
func (n *Node) IsTerminal() bool { return n.Info != nil }

// Domination records one rule Insert pruned in favor of a shorter,
// stronger rule already (or newly) in the tree, for the audit/progress
// reporting spec.md's RULE_DOMINATED event calls for. Dominated and
// Dominator are full dotted domains, reconstructed TLD-first-label path
// back to normal order, so a caller never needs to re-walk the tree to
// learn what happened.
type Domination struct {
	Dominated       string
	DominatedSource string
	Dominator       string
	DominatorSource string
}

// Insert absorbs one rule into the subtree rooted at root. tld is the
// rule's top-level label (already consumed by the caller's TLDIndex
// lookup to find root); labels are the remaining labels in
// right-to-left order (spec.md §4.4 step 1). It returns every
// domination the insert caused — either this rule losing to an
// existing Full ancestor, or this rule winning as a new Full ancestor
// and pruning descendants already in the tree.
//
// Rejections (spec.md §4.4, §7): strength NotSet or Bogus reaching here
// is a programmer error — LineParser never produces those for a rule
// that made it this far — so it is logged and dropped rather than
// inserted.
func Insert(root *Node, tld []byte, labels [][]byte, strength ruleline.MatchStrength, line ruleline.Info, source string) []Domination {
	if strength == ruleline.NotSet || strength == ruleline.Bogus {
		logrus.WithFields(logrus.Fields{"strength": strength.String(), "source": source}).
			Error("domaintree: rejecting insert with NotSet/Bogus strength")
		return nil
	}
	if len(labels) == 0 {
		logrus.WithField("source", source).Warn("domaintree: rejecting insert with no labels below TLD")
		return nil
	}

	info := Info{SourceContext: source, Strength: strength, Line: line}

	incomingPath := make([][]byte, 0, len(labels)+1)
	incomingPath = append(incomingPath, tld)
	incomingPath = append(incomingPath, labels...)

	cur := root
	ancestorPath := [][]byte{tld}
	for i, label := range labels {
		key := string(label)
		child, exists := cur.Children[key]
		if !exists {
			cur.Children[key] = buildChain(labels[i:], info)
			return nil
		}
		ancestorPath = append(ancestorPath, label)
		if child.IsLeaf() && child.IsTerminal() && child.Info.Strength == ruleline.Full {
			// An existing broader Full rule already blocks this domain.
			return []Domination{{
				Dominated:       reconstructDomain(incomingPath),
				DominatedSource: source,
				Dominator:       reconstructDomain(ancestorPath),
				DominatorSource: child.Info.SourceContext,
			}}
		}
		cur = child
	}

	return replaceIfStronger(cur, info, incomingPath)
}

// buildChain creates a linear chain of fresh nodes for labels (the first
// entry becomes the returned node, representing labels[0]), attaching
// info to the last node in the chain.
func buildChain(labels [][]byte, info Info) *Node {
	root := NewNode()
	cur := root
	for i := 1; i < len(labels); i++ {
		child := NewNode()
		cur.Children[string(labels[i])] = child
		cur = child
	}
	cur.Info = &info
	return root
}

// replaceIfStronger implements spec.md §4.4's replace_if_stronger: a new
// rule only wins over an existing terminal if it is strictly stronger (or
// the node was not terminal at all). A Full win prunes descendants since
// they are now dominated. nodePath is node's own TLD-first label path,
// used to reconstruct domains for the returned Dominations.
func replaceIfStronger(node *Node, newInfo Info, nodePath [][]byte) []Domination {
	if node.Info != nil && newInfo.Strength <= node.Info.Strength {
		return nil
	}

	var doms []Domination
	if node.Info != nil {
		domain := reconstructDomain(nodePath)
		doms = append(doms, Domination{
			Dominated:       domain,
			DominatedSource: node.Info.SourceContext,
			Dominator:       domain,
			DominatorSource: newInfo.SourceContext,
		})
	}

	node.Info = &newInfo
	if newInfo.Strength == ruleline.Full {
		doms = append(doms, collectTerminalDominations(node.Children, nodePath, newInfo.SourceContext)...)
		node.Children = make(map[string]*Node)
	}
	return doms
}

// collectTerminalDominations walks children (about to be discarded by a
// Full win at basePath) and reports every terminal found as dominated by
// dominatorSource at basePath.
func collectTerminalDominations(children map[string]*Node, basePath [][]byte, dominatorSource string) []Domination {
	var doms []Domination
	for label, child := range children {
		path := make([][]byte, len(basePath)+1)
		copy(path, basePath)
		path[len(basePath)] = []byte(label)

		if child.IsTerminal() {
			doms = append(doms, Domination{
				Dominated:       reconstructDomain(path),
				DominatedSource: child.Info.SourceContext,
				Dominator:       reconstructDomain(basePath),
				DominatorSource: dominatorSource,
			})
		}
		doms = append(doms, collectTerminalDominations(child.Children, path, dominatorSource)...)
	}
	return doms
}

// reconstructDomain turns a TLD-first label path back into dotted form,
// most-specific-label-first, the same transform consolidator.Consolidate
// applies when emitting surviving rules.
func reconstructDomain(pathTLDFirst [][]byte) string {
	var buf bytes.Buffer
	for i := len(pathTLDFirst) - 1; i >= 0; i-- {
		buf.Write(pathTLDFirst[i])
		if i > 0 {
			buf.WriteByte('.')
		}
	}
	return buf.String()
}
