package packedtrie

// lookupBufSize covers the edge sequence of typical words without a heap
// allocation.
const lookupBufSize = 64

// FindResult is the outcome of Find.
type FindResult struct {
	Found        bool
	Forbidden    bool // the word is stored under the forbidden marker
	CompoundUsed bool // the word was assembled from compound parts
	CaseMatched  bool // false when found only in the stripped subtree
}

func (t *Trie) lookup(word string, buf []byte) ([]byte, bool) {
	seq, ok := t.chars.Lookup(word, buf)
	return seq, ok && len(seq) > 0
}

func (t *Trie) hasSeq(from position, seq []byte) bool {
	p, ok := t.advance(from, seq)
	return ok && t.isEOW(p)
}

// Has reports whether word is stored exactly.
func (t *Trie) Has(word string) bool {
	var buf [lookupBufSize]byte
	seq, ok := t.lookup(word, buf[:0])
	return ok && t.hasSeq(position{addr: rootNode}, seq)
}

// IsForbidden reports whether word is stored with the forbidden marker.
func (t *Trie) IsForbidden(word string) bool {
	var buf [lookupBufSize]byte
	seq, ok := t.lookup(word, buf[:0])
	return ok && t.forbidden(seq)
}

func (t *Trie) forbidden(seq []byte) bool {
	return t.usage.Forbidden && t.hasSeq(t.forbiddenAt, seq)
}

// Find looks word up. Direct matches are tried first, then compounds when
// the compound marker is in use. Unless strict, the stripped subtree is
// searched next, directly and then as a compound; matches there report
// CaseMatched false.
func (t *Trie) Find(word string, strict bool) FindResult {
	var buf [lookupBufSize]byte
	seq, ok := t.lookup(word, buf[:0])
	if !ok {
		return FindResult{}
	}

	root := position{addr: rootNode}
	res := FindResult{Forbidden: t.forbidden(seq)}
	if t.hasSeq(root, seq) {
		res.Found, res.CaseMatched = true, true
		return res
	}
	if t.usage.Compound && t.compound(root, seq) {
		res.Found, res.CaseMatched, res.CompoundUsed = true, true, true
		return res
	}
	if strict || !t.usage.Strip {
		return res
	}

	if t.hasSeq(t.strippedAt, seq) {
		res.Found = true
		return res
	}
	if t.usage.Compound && t.compound(t.strippedAt, seq) {
		res.Found, res.CompoundUsed = true, true
	}
	return res
}

// compound reports whether seq splits into two or more parts stored under
// base as "p1+", "+p+" for every middle part and "+pk" for the last.
// Parts after the first all start at the same position, so failures are
// memoized by offset. Splits are tried at every byte; a split inside a
// character never matches since markers follow whole characters.
func (t *Trie) compound(base position, seq []byte) bool {
	next, ok := t.advance(base, t.compoundSeq)
	if !ok {
		return false
	}
	failed := make(map[int]bool)

	var parts func(start int, from position, first bool) bool
	parts = func(start int, from position, first bool) bool {
		if !first && failed[start] {
			return false
		}
		p := from
		for i := start; i < len(seq); i++ {
			var ok bool
			if p, ok = t.advance(p, seq[i:i+1]); !ok {
				break
			}
			if i+1 == len(seq) {
				if !first && t.isEOW(p) {
					return true
				}
				break
			}
			if t.hasSeq(p, t.compoundSeq) && parts(i+1, next, false) {
				return true
			}
		}
		if !first {
			failed[start] = true
		}
		return false
	}
	return parts(0, base, true)
}
