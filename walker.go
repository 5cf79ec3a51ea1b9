package packedtrie

import (
	"iter"
	"unicode/utf8"

	"github.com/tamirms/packedtrie/internal/encoding"
)

// WordIterator enumerates stored words in ascending byte order. It keeps
// an explicit stack, so depth is bounded only by memory. An iterator is
// one-shot and must not be shared between goroutines.
//
//	it := trie.Words("wal")
//	for it.Next() {
//	    fmt.Println(it.Word())
//	}
type WordIterator struct {
	t     *Trie
	stack []iterFrame
	dec   utf8Decoder
	word  string
}

type iterFrame struct {
	addr    uint32
	next    int
	visited bool
	state   decoderState // decoder state after entering the node
}

// Words returns an iterator over the stored words starting with prefix.
// prefix may end in the middle of a folded chain.
func (t *Trie) Words(prefix string) *WordIterator {
	it := &WordIterator{t: t}
	var buf [lookupBufSize]byte
	seq, ok := t.chars.Lookup(prefix, buf[:0])
	if !ok {
		return it
	}
	p, ok := t.advance(position{addr: rootNode}, seq)
	if !ok {
		return it
	}
	for _, c := range seq {
		it.dec.push(c)
	}
	it.enter(p.addr, p.off)
	return it
}

// Seq returns a sequence of the words starting with prefix. Every range
// over it starts a fresh iterator.
func (t *Trie) Seq(prefix string) iter.Seq[string] {
	return func(yield func(string) bool) {
		it := t.Words(prefix)
		for it.Next() {
			if !yield(it.Word()) {
				return
			}
		}
	}
}

// All returns a sequence of every stored word.
func (t *Trie) All() iter.Seq[string] { return t.Seq("") }

func (it *WordIterator) enter(addr uint32, skip int) {
	if s := it.t.fold(addr); s != nil {
		for _, c := range s[skip:] {
			it.dec.push(c)
		}
	}
	it.stack = append(it.stack, iterFrame{addr: addr, state: it.dec.save()})
}

// Next advances to the next word and reports whether there is one.
func (it *WordIterator) Next() bool {
	nodes := it.t.nodes
	for len(it.stack) > 0 {
		top := &it.stack[len(it.stack)-1]
		h := nodes[top.addr]
		if !top.visited {
			top.visited = true
			if encoding.IsEOW(h) {
				it.word = it.dec.String()
				return true
			}
		}
		if top.next >= encoding.NumChildren(h) {
			it.stack = it.stack[:len(it.stack)-1]
			continue
		}
		c := nodes[top.addr+1+uint32(top.next)]
		top.next++
		it.dec.restore(top.state)
		it.dec.push(encoding.EdgeByte(c))
		it.enter(encoding.Target(c), 0)
	}
	it.word = ""
	it.stack = nil
	return false
}

// Word returns the current word.
func (it *WordIterator) Word() string { return it.word }

// All returns the remaining words as a sequence. Ranging over it
// consumes the iterator.
func (it *WordIterator) All() iter.Seq[string] {
	return func(yield func(string) bool) {
		for it.Next() {
			if !yield(it.word) {
				return
			}
		}
	}
}

// utf8Decoder assembles text from edge bytes. Bytes of an incomplete
// UTF-8 sequence are held until the sequence is complete.
type utf8Decoder struct {
	text    []byte
	pending [utf8.UTFMax]byte
	n       int
}

type decoderState struct {
	textLen int
	pending [utf8.UTFMax]byte
	n       int
}

func (d *utf8Decoder) push(c byte) {
	d.pending[d.n] = c
	d.n++
	for d.n > 0 && utf8.FullRune(d.pending[:d.n]) {
		r, size := utf8.DecodeRune(d.pending[:d.n])
		d.text = utf8.AppendRune(d.text, r)
		copy(d.pending[:], d.pending[size:d.n])
		d.n -= size
	}
}

func (d *utf8Decoder) save() decoderState {
	return decoderState{textLen: len(d.text), pending: d.pending, n: d.n}
}

func (d *utf8Decoder) restore(s decoderState) {
	d.text = d.text[:s.textLen]
	d.pending = s.pending
	d.n = s.n
}

// String returns the decoded text. A dangling partial sequence decodes
// as U+FFFD.
func (d *utf8Decoder) String() string {
	if d.n == 0 {
		return string(d.text)
	}
	return string(utf8.AppendRune(d.text[:len(d.text):len(d.text)], utf8.RuneError))
}
