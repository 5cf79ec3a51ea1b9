package packedtrie

import (
	"fmt"

	streamerrors "github.com/tamirms/packedtrie/errors"
	"github.com/tamirms/packedtrie/internal/encoding"
	"github.com/tamirms/packedtrie/internal/strpool"
)

// fold collapses unbranching chains into string pool references. A node
// is foldable when it is neither the root nor an end of word, carries no
// fold yet and has exactly one child. A foldable node absorbs its child
// when the child is foldable too and has no other parent; the absorbed
// bytes are the node's own edge byte followed by the child's string, and
// the node's single edge becomes the child's edge.
//
// Chain heads whose string reaches the configured minimum are rewritten
// as [header(foldRef), edge]. The builder must be compacted, so every
// node is reachable and parents precede their single-parent children in
// index order. The returned pool is finalized.
func (b *Builder) fold() (*strpool.Pool, error) {
	pool := strpool.New(b.cfg.foldMaxLength)
	n := len(b.nodes)

	parents := make([]uint32, n)
	for _, words := range b.nodes {
		for _, w := range words[1:] {
			parents[encoding.Target(w)]++
		}
	}

	foldable := func(node int) bool {
		h := b.nodes[node][0]
		return node != int(rootNode) &&
			!encoding.IsEOW(h) &&
			encoding.FoldRef(h) == 0 &&
			encoding.NumChildren(h) == 1
	}

	strs := make([][]byte, n)
	edges := make([]uint32, n)
	absorbed := make([]bool, n)

	// Children with a single parent sit after that parent, so walking
	// backwards finishes every absorbable child before its parent.
	for v := n - 1; v >= 0; v-- {
		if !foldable(v) {
			continue
		}
		edge := b.nodes[v][1]
		child := int(encoding.Target(edge))
		if child > v && foldable(child) && parents[child] == 1 && len(strs[child])+1 <= pool.MaxLength() {
			s := make([]byte, 0, len(strs[child])+1)
			s = append(s, encoding.EdgeByte(edge))
			strs[v] = append(s, strs[child]...)
			edges[v] = edges[child]
			absorbed[child] = true
			strs[child] = nil
			continue
		}
		edges[v] = edge
	}

	for v := range n {
		if absorbed[v] || len(strs[v]) < b.cfg.foldMinLength {
			continue
		}
		id, err := pool.Add(strs[v])
		if err != nil {
			return nil, err
		}
		if id+1 > encoding.MaxFoldRef {
			return nil, fmt.Errorf("%w: %d folded strings", streamerrors.ErrPoolOverflow, id+1)
		}
		b.nodes[v] = []uint32{encoding.Header(1, false, id+1), edges[v]}
		b.stats.FoldedChains++
	}

	if err := pool.Finalize(); err != nil {
		return nil, err
	}
	return pool, nil
}
