// Package strpool implements the deduplicated byte-string pool used by
// suffix folding.
//
// Strings are accumulated with Add, then Finalize lays them out in one
// shared buffer. Longer strings are placed first so shorter ones can be
// served from sub-ranges of what is already there. Every entry is
// addressed by a single uint32 reference packing offset and length:
//
//	ref = offset<<lenBits | length
//
// where lenBits is the minimum width that holds the longest string.
package strpool

import (
	"bytes"
	"cmp"
	"fmt"
	"slices"

	"github.com/spaolacci/murmur3"
	streamerrors "github.com/tamirms/packedtrie/errors"
	intbits "github.com/tamirms/packedtrie/internal/bits"
)

// DefaultMaxLength is the longest string a pool accepts unless configured
// otherwise.
const DefaultMaxLength = 255

// Pool is a string pool. It is not safe for concurrent mutation; a
// finalized pool may be read concurrently.
type Pool struct {
	maxLen  int
	entries [][]byte
	exact   map[uint64][]uint32 // murmur3 hash -> ids with that hash

	finalized bool
	buf       []byte
	refs      []uint32
	lenBits   uint
}

// New returns an empty pool accepting strings up to maxLen bytes.
// maxLen <= 0 selects DefaultMaxLength.
func New(maxLen int) *Pool {
	if maxLen <= 0 {
		maxLen = DefaultMaxLength
	}
	return &Pool{
		maxLen: maxLen,
		exact:  make(map[uint64][]uint32),
	}
}

// FromParts restores a finalized pool from its serialized buffer and
// reference table.
func FromParts(buf []byte, refs []uint32, lenBits uint) (*Pool, error) {
	if lenBits > 32 {
		return nil, fmt.Errorf("%w: pool length width %d", streamerrors.ErrCorruptedTrie, lenBits)
	}
	p := &Pool{
		finalized: true,
		buf:       buf,
		refs:      refs,
		lenBits:   lenBits,
	}
	for id, ref := range refs {
		off, n := intbits.Unpack32(ref, lenBits)
		if uint64(off)+uint64(n) > uint64(len(buf)) {
			return nil, fmt.Errorf("%w: pool entry %d out of range", streamerrors.ErrCorruptedTrie, id)
		}
		if int(n) > p.maxLen {
			p.maxLen = int(n)
		}
	}
	return p, nil
}

// MaxLength returns the longest string the pool accepts.
func (p *Pool) MaxLength() int { return p.maxLen }

// Add registers b and returns its id. Adding an identical string returns
// the existing id. The pool keeps its own copy of b.
func (p *Pool) Add(b []byte) (uint32, error) {
	if p.finalized {
		return 0, streamerrors.ErrPoolFinalized
	}
	if len(b) > p.maxLen {
		return 0, fmt.Errorf("%w: %d bytes, limit %d", streamerrors.ErrStringTooLong, len(b), p.maxLen)
	}
	h := murmur3.Sum64(b)
	for _, id := range p.exact[h] {
		if bytes.Equal(p.entries[id], b) {
			return id, nil
		}
	}
	id := uint32(len(p.entries))
	p.entries = append(p.entries, bytes.Clone(b))
	p.exact[h] = append(p.exact[h], id)
	return id, nil
}

// Len returns the number of distinct entries.
func (p *Pool) Len() int {
	if p.finalized {
		return len(p.refs)
	}
	return len(p.entries)
}

// Finalize lays out all entries and locks the pool. Calling it again is a
// no-op.
func (p *Pool) Finalize() error {
	if p.finalized {
		return nil
	}
	p.finalized = true

	longest := 0
	order := make([]uint32, len(p.entries))
	for i, e := range p.entries {
		order[i] = uint32(i)
		longest = max(longest, len(e))
	}
	slices.SortStableFunc(order, func(a, b uint32) int {
		return cmp.Compare(len(p.entries[b]), len(p.entries[a]))
	})

	p.lenBits = intbits.Width(uint64(longest))
	p.refs = make([]uint32, len(p.entries))
	for _, id := range order {
		e := p.entries[id]
		off := bytes.Index(p.buf, e)
		if off < 0 {
			off = len(p.buf)
			p.buf = append(p.buf, e...)
		}
		ref, ok := intbits.Pack32(uint64(off), uint64(len(e)), p.lenBits)
		if !ok {
			return fmt.Errorf("%w: offset %d with %d length bits", streamerrors.ErrPoolOverflow, off, p.lenBits)
		}
		p.refs[id] = ref
	}

	p.entries = nil
	p.exact = nil
	return nil
}

// Get returns the bytes of entry id. The pool must be finalized. The
// result aliases the pool buffer and must not be modified.
func (p *Pool) Get(id uint32) []byte {
	off, n := intbits.Unpack32(p.refs[id], p.lenBits)
	return p.buf[off : off+n]
}

// Buffer returns the assembled byte buffer.
func (p *Pool) Buffer() []byte { return p.buf }

// Refs returns the packed reference of every entry, indexed by id.
func (p *Pool) Refs() []uint32 { return p.refs }

// LenBits returns the width of the length field in each reference.
func (p *Pool) LenBits() uint { return p.lenBits }
