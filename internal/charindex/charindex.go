// Package charindex maps characters to the packed UTF-8 values that label
// trie edges.
//
// Every character is stored as the big-endian packing of its UTF-8 bytes
// (at most four). A word becomes the concatenation of those bytes, so a
// non-ASCII character occupies a chain of single-byte edges. Composed
// (NFC) and decomposed (NFD) spellings of a character resolve to the same
// index entry. Index 0 is reserved for empty or unrecognized input.
package charindex

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Index is the character table of one trie. It grows while a builder
// inserts words and is read-only once the trie is frozen.
//
// Value and Sequence mutate the index and are not safe for concurrent use.
// Lookup, Len, Chars and Text only read and may be called concurrently once
// no writer remains.
type Index struct {
	chars  []string          // index -> canonical character
	values []uint32          // index -> packed UTF-8 value
	byChar map[string]uint32 // canonical spellings and aliases -> index

	// single-entry cache of the most recent Sequence call
	lastWord string
	lastSeq  []byte
}

// New returns an index holding only the reserved empty entry.
func New() *Index {
	return &Index{
		chars:  []string{""},
		values: []uint32{0},
		byChar: map[string]uint32{"": 0},
	}
}

// FromText rebuilds an index from the output of Text. Characters are
// registered in order, so indexes match the original table.
func FromText(text string) *Index {
	x := New()
	for _, r := range text {
		x.Value(string(r))
	}
	return x
}

// Pack packs up to four bytes big-endian into a uint32.
func Pack(b []byte) uint32 {
	var v uint32
	for _, c := range b {
		v = v<<8 | uint32(c)
	}
	return v
}

// Unpack appends the bytes of a packed value to dst. Leading zero bytes
// are not emitted, so Unpack(0) appends nothing.
func Unpack(v uint32, dst []byte) []byte {
	switch {
	case v == 0:
		return dst
	case v <= 0xff:
		return append(dst, byte(v))
	case v <= 0xffff:
		return append(dst, byte(v>>8), byte(v))
	case v <= 0xffffff:
		return append(dst, byte(v>>16), byte(v>>8), byte(v))
	default:
		return append(dst, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
	}
}

// canonical returns the lowest code point among the single-code-point
// canonical spellings of r.
func canonical(r rune) rune {
	var buf [utf8.UTFMax]byte
	n := utf8.EncodeRune(buf[:], r)
	if norm.NFC.IsNormal(buf[:n]) {
		return r
	}
	composed := norm.NFC.Bytes(buf[:n])
	if c, size := utf8.DecodeRune(composed); size == len(composed) && c < r {
		return c
	}
	return r
}

// Value returns the packed value of char, registering it on first sight.
// char may be a single code point or any canonically equivalent spelling
// of one (for example "é" for "é"). Anything else, and U+0000,
// yields 0.
func (x *Index) Value(char string) uint32 {
	if idx, ok := x.byChar[char]; ok {
		return x.values[idx]
	}
	var r rune
	if c, size := utf8.DecodeRuneInString(char); size > 0 && size == len(char) {
		r = canonical(c)
	} else {
		composed := norm.NFC.String(char)
		c, size := utf8.DecodeRuneInString(composed)
		if size == 0 || size != len(composed) {
			return 0
		}
		r = c
	}
	if r == 0 {
		return 0
	}
	primary := string(r)
	idx, ok := x.byChar[primary]
	if !ok {
		idx = uint32(len(x.chars))
		x.chars = append(x.chars, primary)
		x.values = append(x.values, Pack([]byte(primary)))
		x.byChar[primary] = idx
		x.byChar[norm.NFD.String(primary)] = idx
	}
	x.byChar[char] = idx
	return x.values[idx]
}

// IndexOf returns the index entry of char without registering it.
func (x *Index) IndexOf(char string) (uint32, bool) {
	idx, ok := x.byChar[char]
	return idx, ok
}

// Sequence converts word into its edge byte sequence, registering any new
// characters. The most recent result is cached; the returned slice is
// owned by the index and valid until the next call.
func (x *Index) Sequence(word string) []byte {
	if word == x.lastWord && x.lastSeq != nil {
		return x.lastSeq
	}
	seq := x.lastSeq[:0]
	var buf [utf8.UTFMax]byte
	for _, r := range word {
		n := utf8.EncodeRune(buf[:], r)
		v := x.Value(string(buf[:n]))
		seq = Unpack(v, seq)
	}
	x.lastWord = strings.Clone(word)
	x.lastSeq = seq
	return seq
}

// Lookup appends the edge byte sequence of word to dst without modifying
// the index. ok is false when word contains a character the index has
// never seen; such a word cannot be stored in the trie.
func (x *Index) Lookup(word string, dst []byte) (seq []byte, ok bool) {
	var buf [utf8.UTFMax]byte
	for _, r := range word {
		n := utf8.EncodeRune(buf[:], canonical(r))
		idx, found := x.byChar[string(buf[:n])]
		if !found || idx == 0 {
			return dst, false
		}
		dst = Unpack(x.values[idx], dst)
	}
	return dst, true
}

// Len returns the number of registered characters, excluding the reserved
// entry.
func (x *Index) Len() int { return len(x.chars) - 1 }

// Chars returns the registered characters in index order, excluding the
// reserved entry.
func (x *Index) Chars() []string { return x.chars[1:] }

// Text returns all registered characters concatenated in index order.
func (x *Index) Text() string { return strings.Join(x.chars[1:], "") }
