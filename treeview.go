package packedtrie

import (
	"iter"

	"github.com/tamirms/packedtrie/internal/encoding"
)

// NodeView is a read-only handle on one node, for generic tree walkers.
// Edge keys are raw byte strings: a non-ASCII character spans several
// levels, and the key of a folded node's single child carries the whole
// folded string followed by the edge byte.
type NodeView struct {
	t    *Trie
	addr uint32
}

// Root returns a view of the root node.
func (t *Trie) Root() NodeView { return NodeView{t: t, addr: rootNode} }

// ID returns the node's offset in the packed array. Shared nodes have one
// ID whichever path reached them.
func (n NodeView) ID() uint32 { return n.addr }

// IsEOW reports whether a word ends at this node.
func (n NodeView) IsEOW() bool { return encoding.IsEOW(n.t.nodes[n.addr]) }

// NumChildren returns the node's fan-out.
func (n NodeView) NumChildren() int { return encoding.NumChildren(n.t.nodes[n.addr]) }

// Key returns the label of the i-th child edge.
func (n NodeView) Key(i int) string {
	c := n.t.children(n.addr)[i]
	s := n.t.fold(n.addr)
	key := make([]byte, 0, len(s)+1)
	key = append(key, s...)
	return string(append(key, encoding.EdgeByte(c)))
}

// Keys returns the labels of all child edges in ascending order.
func (n NodeView) Keys() []string {
	keys := make([]string, n.NumChildren())
	for i := range keys {
		keys[i] = n.Key(i)
	}
	return keys
}

// Child returns the i-th child.
func (n NodeView) Child(i int) NodeView {
	c := n.t.children(n.addr)[i]
	return NodeView{t: n.t, addr: encoding.Target(c)}
}

// Get follows key, which may span several edges.
func (n NodeView) Get(key string) (NodeView, bool) {
	addr, ok := n.t.walk(n.addr, []byte(key))
	if !ok {
		return NodeView{}, false
	}
	return NodeView{t: n.t, addr: addr}, true
}

// Entries returns the child edges as key/child pairs.
func (n NodeView) Entries() iter.Seq2[string, NodeView] {
	return func(yield func(string, NodeView) bool) {
		for i := range n.NumChildren() {
			if !yield(n.Key(i), n.Child(i)) {
				return
			}
		}
	}
}
