// Package encoding packs trie node records into fixed-width uint32 words.
//
// A node record is one header word followed by one word per child edge:
//
//	header: foldRef (23 bits) | eow (1 bit) | numChildren (8 bits)
//	child:  target  (24 bits) | edgeByte (8 bits)
//
// foldRef is zero for ordinary nodes and pool id + 1 for folded nodes.
// The same layout is used by the mutable builder (target = node index)
// and by the packed array (target = absolute word offset).
package encoding

import "slices"

const (
	countMask   = 0xff
	eowFlag     = 1 << 8
	foldShift   = 9
	edgeMask    = 0xff
	targetShift = 8

	// MaxChildren is the largest fan-out a header can describe.
	MaxChildren = countMask

	// MaxFoldRef is the largest fold reference a header can hold.
	MaxFoldRef = 1<<23 - 1

	// MaxTarget is the largest node index or word offset a child word can hold.
	MaxTarget = 1<<24 - 1

	// LinearScanLimit is the fan-out up to which children are scanned
	// linearly. Larger nodes are binary searched and must be sorted.
	LinearScanLimit = 8
)

// Header builds a node header word.
func Header(numChildren int, eow bool, foldRef uint32) uint32 {
	h := uint32(numChildren)&countMask | foldRef<<foldShift
	if eow {
		h |= eowFlag
	}
	return h
}

// NumChildren returns the child count stored in a header.
func NumChildren(h uint32) int { return int(h & countMask) }

// IsEOW reports whether the header marks an end of word.
func IsEOW(h uint32) bool { return h&eowFlag != 0 }

// FoldRef returns the fold reference (pool id + 1), or 0.
func FoldRef(h uint32) uint32 { return h >> foldShift }

// SetEOW returns h with the end-of-word flag set to eow.
func SetEOW(h uint32, eow bool) uint32 {
	if eow {
		return h | eowFlag
	}
	return h &^ eowFlag
}

// SetCount returns h with its child count replaced.
func SetCount(h uint32, n int) uint32 {
	return h&^countMask | uint32(n)&countMask
}

// SetFoldRef returns h with its fold reference replaced.
func SetFoldRef(h uint32, ref uint32) uint32 {
	return h&(eowFlag|countMask) | ref<<foldShift
}

// Child builds a child edge word.
func Child(target uint32, b byte) uint32 {
	return target<<targetShift | uint32(b)
}

// Target returns the node index or offset a child word points to.
func Target(c uint32) uint32 { return c >> targetShift }

// EdgeByte returns the byte labelling a child word.
func EdgeByte(c uint32) byte { return byte(c & edgeMask) }

// SetTarget returns c pointing at target, keeping its edge byte.
func SetTarget(c uint32, target uint32) uint32 {
	return target<<targetShift | c&edgeMask
}

// FindChild returns the position of the child labelled b within children.
// Children above LinearScanLimit must be sorted by edge byte.
func FindChild(children []uint32, b byte) (int, bool) {
	if len(children) <= LinearScanLimit {
		for i, c := range children {
			if EdgeByte(c) == b {
				return i, true
			}
		}
		return 0, false
	}
	lo, hi := 0, len(children)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if EdgeByte(children[mid]) < b {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(children) && EdgeByte(children[lo]) == b {
		return lo, true
	}
	return 0, false
}

// SortChildren orders child words ascending by edge byte.
func SortChildren(children []uint32) {
	slices.SortFunc(children, func(a, b uint32) int {
		return int(EdgeByte(a)) - int(EdgeByte(b))
	})
}
