package packedtrie

import (
	"fmt"

	streamerrors "github.com/tamirms/packedtrie/errors"
	"github.com/tamirms/packedtrie/internal/charindex"
	"github.com/tamirms/packedtrie/internal/encoding"
	"github.com/tamirms/packedtrie/internal/strpool"
)

// Trie is an immutable packed trie. All nodes live in one []uint32: each
// record is a header word followed by one word per child, and child words
// hold the absolute offset of their target. The root is at offset 0.
//
// Thread Safety:
//   - All methods are safe for concurrent use
//   - A WordIterator belongs to one goroutine
type Trie struct {
	nodes   []uint32
	chars   *charindex.Index
	pool    *strpool.Pool // nil when nothing was folded
	markers Markers
	usage   MarkerUsage

	numNodes int
	size     int

	compoundSeq []byte   // nil when the compound marker is unknown
	forbiddenAt position // after the forbidden marker, valid when usage.Forbidden
	strippedAt  position // after the strip marker, valid when usage.Strip
}

// Stats holds trie statistics.
type Stats struct {
	Words       int
	Nodes       int
	PackedWords int
	Characters  int
	PoolStrings int
	PoolBytes   int
}

// newTrie wraps a packed node array. The array is validated first, so
// queries never index out of range even on decoded input.
func newTrie(nodes []uint32, chars *charindex.Index, pool *strpool.Pool, markers Markers) (*Trie, error) {
	t := &Trie{
		nodes:   nodes,
		chars:   chars,
		pool:    pool,
		markers: markers,
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	size, err := t.countWords()
	if err != nil {
		return nil, err
	}
	t.size = size

	t.compoundSeq = t.markerSeq(markers.Compound)
	t.forbiddenAt, t.usage.Forbidden = t.markerPosition(markers.Forbidden)
	t.strippedAt, t.usage.Strip = t.markerPosition(markers.Strip)
	t.usage.Compound = t.compoundSeq != nil
	t.usage.Suggest = t.markerSeq(markers.Suggest) != nil
	return t, nil
}

func (t *Trie) markerSeq(marker string) []byte {
	if marker == "" {
		return nil
	}
	seq, ok := t.chars.Lookup(marker, nil)
	if !ok || len(seq) == 0 {
		return nil
	}
	return seq
}

// markerPosition returns the position after marker at the root, if any
// stored word starts with it.
func (t *Trie) markerPosition(marker string) (position, bool) {
	seq := t.markerSeq(marker)
	if seq == nil {
		return position{}, false
	}
	return t.advance(position{addr: rootNode}, seq)
}

// validate checks record bounds, fold references, child ordering and that
// every child targets the start of a record.
func (t *Trie) validate() error {
	nodes := t.nodes
	if len(nodes) == 0 {
		return fmt.Errorf("%w: empty node array", streamerrors.ErrCorruptedTrie)
	}
	if len(nodes) > encoding.MaxTarget+1 {
		return fmt.Errorf("%w: node array of %d words", streamerrors.ErrCorruptedTrie, len(nodes))
	}

	starts := make([]bool, len(nodes))
	count := 0
	for addr := 0; addr < len(nodes); {
		h := nodes[addr]
		n := encoding.NumChildren(h)
		if addr+1+n > len(nodes) {
			return fmt.Errorf("%w: node %d overruns the array", streamerrors.ErrCorruptedTrie, addr)
		}
		if ref := encoding.FoldRef(h); ref != 0 {
			if t.pool == nil || int(ref) > t.pool.Len() || n != 1 || encoding.IsEOW(h) {
				return fmt.Errorf("%w: node %d has an invalid fold", streamerrors.ErrCorruptedTrie, addr)
			}
		}
		starts[addr] = true
		count++
		addr += 1 + n
	}

	for addr := 0; addr < len(nodes); {
		n := encoding.NumChildren(nodes[addr])
		for i, c := range nodes[addr+1 : addr+1+n] {
			tgt := encoding.Target(c)
			if int(tgt) >= len(nodes) || !starts[tgt] {
				return fmt.Errorf("%w: node %d has a dangling child", streamerrors.ErrCorruptedTrie, addr)
			}
			if i > 0 && encoding.EdgeByte(c) <= encoding.EdgeByte(nodes[addr+i]) {
				return fmt.Errorf("%w: node %d children are not sorted", streamerrors.ErrCorruptedTrie, addr)
			}
		}
		addr += 1 + n
	}
	t.numNodes = count
	return nil
}

// countWords counts end-of-word paths with one visit per shared node. A
// cycle means the array is corrupt.
func (t *Trie) countWords() (int, error) {
	const (
		unseen = iota
		active
		done
	)
	state := make([]uint8, len(t.nodes))
	counts := make([]int, len(t.nodes))

	type frame struct {
		addr uint32
		next int
	}
	stack := []frame{{addr: rootNode}}
	state[rootNode] = active
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		children := t.children(top.addr)
		if top.next < len(children) {
			tgt := encoding.Target(children[top.next])
			top.next++
			switch state[tgt] {
			case unseen:
				state[tgt] = active
				stack = append(stack, frame{addr: tgt})
			case active:
				return 0, fmt.Errorf("%w: cycle through node %d", streamerrors.ErrCorruptedTrie, tgt)
			}
			continue
		}

		total := 0
		if encoding.IsEOW(t.nodes[top.addr]) {
			total = 1
		}
		for _, c := range children {
			total += counts[encoding.Target(c)]
		}
		counts[top.addr] = total
		state[top.addr] = done
		stack = stack[:len(stack)-1]
	}
	return counts[rootNode], nil
}

func (t *Trie) children(addr uint32) []uint32 {
	n := uint32(encoding.NumChildren(t.nodes[addr]))
	return t.nodes[addr+1 : addr+1+n]
}

// fold returns the folded string of the node at addr, or nil.
func (t *Trie) fold(addr uint32) []byte {
	ref := encoding.FoldRef(t.nodes[addr])
	if ref == 0 {
		return nil
	}
	return t.pool.Get(ref - 1)
}

// position is a point on a trie path: the node at addr with the first
// off bytes of its folded string consumed.
type position struct {
	addr uint32
	off  int
}

// advance consumes seq one byte at a time. Unlike walk it may stop inside
// a folded string.
func (t *Trie) advance(p position, seq []byte) (position, bool) {
	for _, c := range seq {
		if s := t.fold(p.addr); p.off < len(s) {
			if s[p.off] != c {
				return position{}, false
			}
			p.off++
			continue
		}
		children := t.children(p.addr)
		i, ok := encoding.FindChild(children, c)
		if !ok {
			return position{}, false
		}
		p = position{addr: encoding.Target(children[i])}
	}
	return p, true
}

// isEOW reports whether a word ends at p. Folded nodes never end a word,
// so a position inside a fold never does either.
func (t *Trie) isEOW(p position) bool {
	return p.off == 0 && encoding.IsEOW(t.nodes[p.addr])
}

// walk follows seq from addr. It fails when an edge is missing or seq
// ends inside a folded string.
func (t *Trie) walk(addr uint32, seq []byte) (uint32, bool) {
	p, ok := t.advance(position{addr: addr}, seq)
	return p.addr, ok && p.off == 0
}

// Size returns the number of stored words, marker-prefixed entries
// included.
func (t *Trie) Size() int { return t.size }

// NumNodes returns the number of node records.
func (t *Trie) NumNodes() int { return t.numNodes }

// Markers returns the marker characters of the trie.
func (t *Trie) Markers() Markers { return t.markers }

// MarkerUsage reports which markers occur in the trie.
func (t *Trie) MarkerUsage() MarkerUsage { return t.usage }

// Characters returns the distinct characters of all stored words in
// first-seen order.
func (t *Trie) Characters() []string {
	return append([]string(nil), t.chars.Chars()...)
}

// Stats returns trie statistics.
func (t *Trie) Stats() Stats {
	s := Stats{
		Words:       t.size,
		Nodes:       t.numNodes,
		PackedWords: len(t.nodes),
		Characters:  t.chars.Len(),
	}
	if t.pool != nil {
		s.PoolStrings = t.pool.Len()
		s.PoolBytes = len(t.pool.Buffer())
	}
	return s
}
