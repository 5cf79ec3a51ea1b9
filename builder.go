package packedtrie

import (
	"fmt"
	"iter"
	"strings"

	streamerrors "github.com/tamirms/packedtrie/errors"
	"github.com/tamirms/packedtrie/internal/charindex"
	"github.com/tamirms/packedtrie/internal/encoding"
	"github.com/tamirms/packedtrie/internal/strpool"
)

const (
	rootNode     uint32 = 0
	terminalNode uint32 = 1 // shared end-of-word leaf, always frozen
)

// Builder accumulates words into a mutable trie and freezes it into a
// Trie.
//
// Usage:
//
//	b := packedtrie.NewBuilder(packedtrie.WithOptimize(true))
//	for _, w := range words {
//	    if err := b.Insert(w); err != nil { return err }
//	}
//	trie, err := b.Build()
//
// Nodes live in an arena of raw record words ([header, child...]). Nodes
// that may be reachable along more than one path are frozen; extending
// through a frozen node copies it first and patches the single parent
// edge that was followed.
//
// A Builder is not safe for concurrent use.
type Builder struct {
	cfg    *buildConfig
	chars  *charindex.Index
	nodes  [][]uint32
	frozen []bool

	err    error // first structural error; Build returns it
	closed bool

	cursorGen uint64 // bumped to invalidate outstanding cursors

	// scratch path for Insert
	path  []uint32
	slots []int

	stats BuildStats
}

// BuildStats describes one build. Node counts are zero for phases that
// did not run.
type BuildStats struct {
	Words        int // non-empty words passed to Insert
	Nodes        int // reachable nodes before minimization
	MergedNodes  int // nodes after the structural merge
	FoldedChains int // chains rewritten into pool references
	PoolBytes    int // size of the finalized string pool buffer
	FinalNodes   int // nodes in the built trie
	PackedWords  int // length of the packed node array
}

// NewBuilder creates an empty builder.
func NewBuilder(opts ...BuildOption) *Builder {
	cfg := defaultBuildConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return &Builder{
		cfg:   cfg,
		chars: charindex.New(),
		nodes: [][]uint32{
			{encoding.Header(0, false, 0)},
			{encoding.Header(0, true, 0)},
		},
		frozen: []bool{false, true},
	}
}

// Insert adds word. Surrounding white space is trimmed and empty words
// are ignored. Insert invalidates any outstanding cursor.
func (b *Builder) Insert(word string) error {
	if err := b.usable(); err != nil {
		return err
	}
	b.cursorGen++

	word = strings.TrimSpace(word)
	if word == "" {
		return nil
	}
	seq := b.chars.Sequence(word)
	if len(seq) == 0 {
		return nil
	}
	if err := b.insertSeq(seq); err != nil {
		return b.fail(err)
	}
	b.stats.Words++
	return nil
}

// InsertAll inserts every word of words, stopping at the first error.
func (b *Builder) InsertAll(words iter.Seq[string]) error {
	for w := range words {
		if err := b.Insert(w); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) insertSeq(seq []byte) error {
	b.path = append(b.path[:0], rootNode)
	b.slots = append(b.slots[:0], -1)

	for i, c := range seq {
		last := i == len(seq)-1
		node := b.path[len(b.path)-1]

		pos, ok := b.findChild(node, c)
		if ok {
			child := encoding.Target(b.nodes[node][1+pos])
			b.path = append(b.path, child)
			b.slots = append(b.slots, pos)
			if last && !encoding.IsEOW(b.nodes[child][0]) {
				if err := b.thaw(b.path, b.slots); err != nil {
					return err
				}
				child = b.path[len(b.path)-1]
				b.nodes[child][0] = encoding.SetEOW(b.nodes[child][0], true)
			}
			continue
		}

		// A new last byte points at the shared terminal.
		target := terminalNode
		if !last {
			n, err := b.newNode(encoding.Header(0, false, 0))
			if err != nil {
				return err
			}
			target = n
		}
		if err := b.thaw(b.path, b.slots); err != nil {
			return err
		}
		pos, err := b.appendChild(b.path[len(b.path)-1], c, target)
		if err != nil {
			return err
		}
		b.path = append(b.path, target)
		b.slots = append(b.slots, pos)
	}
	return nil
}

// Stats returns statistics of the build so far.
func (b *Builder) Stats() BuildStats { return b.stats }

// Build finalizes the trie. The builder cannot be used afterwards.
func (b *Builder) Build() (*Trie, error) {
	if b.closed {
		return nil, streamerrors.ErrBuilderClosed
	}
	b.closed = true
	b.cursorGen++
	if b.err != nil {
		return nil, b.err
	}

	b.compact()
	b.stats.Nodes = len(b.nodes)
	for _, words := range b.nodes {
		encoding.SortChildren(words[1:])
	}

	if b.cfg.optimize || len(b.nodes) < smallTrieNodes {
		b.merge()
		b.stats.MergedNodes = len(b.nodes)
	}

	var pool *strpool.Pool
	if b.cfg.stringPool {
		p, err := b.fold()
		if err != nil {
			return nil, fmt.Errorf("fold suffixes: %w", err)
		}
		if p.Len() > 0 {
			pool = p
			b.stats.PoolBytes = len(p.Buffer())
		}
		b.merge()
	}
	b.stats.FinalNodes = len(b.nodes)

	packed, err := b.pack()
	if err != nil {
		return nil, err
	}
	b.stats.PackedWords = len(packed)

	t, err := newTrie(packed, b.chars, pool, b.cfg.markers)
	if err != nil {
		return nil, fmt.Errorf("wrap built trie: %w", err)
	}

	b.cfg.logger.Debug().
		Int("words", b.stats.Words).
		Int("nodes", b.stats.Nodes).
		Int("merged_nodes", b.stats.MergedNodes).
		Int("folded_chains", b.stats.FoldedChains).
		Int("pool_bytes", b.stats.PoolBytes).
		Int("final_nodes", b.stats.FinalNodes).
		Int("packed_words", b.stats.PackedWords).
		Msg("trie built")

	b.nodes = nil
	b.frozen = nil
	return t, nil
}

func (b *Builder) usable() error {
	if b.closed {
		return streamerrors.ErrBuilderClosed
	}
	return b.err
}

// fail records the first structural error. Every later operation, and
// Build, returns it.
func (b *Builder) fail(err error) error {
	if b.err == nil {
		b.err = err
	}
	return err
}

// findChild scans the children of node. Children are unsorted until
// Build, so this is always linear.
func (b *Builder) findChild(node uint32, c byte) (int, bool) {
	for i, w := range b.nodes[node][1:] {
		if encoding.EdgeByte(w) == c {
			return i, true
		}
	}
	return 0, false
}

func (b *Builder) newNode(header uint32) (uint32, error) {
	if len(b.nodes) > encoding.MaxTarget {
		return 0, streamerrors.ErrTooManyNodes
	}
	b.nodes = append(b.nodes, []uint32{header})
	b.frozen = append(b.frozen, false)
	return uint32(len(b.nodes) - 1), nil
}

func (b *Builder) appendChild(node uint32, c byte, target uint32) (int, error) {
	words := b.nodes[node]
	n := encoding.NumChildren(words[0])
	if n >= encoding.MaxChildren {
		return 0, streamerrors.ErrTooManyChildren
	}
	words[0] = encoding.SetCount(words[0], n+1)
	b.nodes[node] = append(words, encoding.Child(target, c))
	return n, nil
}

// thaw makes every node on path mutable. path[i] is reached from
// path[i-1] through child slot slots[i]. A frozen node is replaced by an
// unfrozen copy and the edge that led to it is patched; path is updated
// in place. The descendants of a frozen node are frozen too, so the copy
// still shares them.
func (b *Builder) thaw(path []uint32, slots []int) error {
	for i := 1; i < len(path); i++ {
		if !b.frozen[path[i]] {
			continue
		}
		cp, err := b.newNode(0)
		if err != nil {
			return err
		}
		b.nodes[cp] = append(b.nodes[cp][:0], b.nodes[path[i]]...)
		parent := b.nodes[path[i-1]]
		parent[1+slots[i]] = encoding.SetTarget(parent[1+slots[i]], cp)
		path[i] = cp
	}
	return nil
}

// freeze marks node and everything reachable from it as frozen.
func (b *Builder) freeze(node uint32) {
	if b.frozen[node] {
		return
	}
	stack := []uint32{node}
	b.frozen[node] = true
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, w := range b.nodes[n][1:] {
			t := encoding.Target(w)
			if !b.frozen[t] {
				b.frozen[t] = true
				stack = append(stack, t)
			}
		}
	}
}

// pack lays the arena out as one flat array. Child targets become
// absolute word offsets computed from a prefix sum of record sizes.
func (b *Builder) pack() ([]uint32, error) {
	offsets := make([]uint32, len(b.nodes))
	total := 0
	for i, words := range b.nodes {
		if total > encoding.MaxTarget {
			return nil, fmt.Errorf("%w: %d packed words", streamerrors.ErrTooManyNodes, total)
		}
		offsets[i] = uint32(total)
		total += len(words)
	}

	packed := make([]uint32, 0, total)
	for _, words := range b.nodes {
		packed = append(packed, words[0])
		for _, c := range words[1:] {
			packed = append(packed, encoding.SetTarget(c, offsets[encoding.Target(c)]))
		}
	}
	return packed, nil
}
