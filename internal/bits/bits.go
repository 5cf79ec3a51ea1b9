// Package bits provides low-level bit manipulation primitives.
package bits

import "math/bits"

// Width returns the minimum number of bits needed to represent v.
// Width(0) is 0.
func Width(v uint64) uint {
	return uint(bits.Len64(v))
}

// Mask32 returns a mask of the low n bits. n must be <= 32.
func Mask32(n uint) uint32 {
	if n >= 32 {
		return ^uint32(0)
	}
	return uint32(1)<<n - 1
}

// Pack32 packs hi and lo into one uint32 with lo occupying the low loBits bits.
// ok is false when either value does not fit.
func Pack32(hi, lo uint64, loBits uint) (v uint32, ok bool) {
	if loBits > 32 || lo > uint64(Mask32(loBits)) {
		return 0, false
	}
	hiBits := 32 - loBits
	if hiBits == 0 {
		if hi != 0 {
			return 0, false
		}
		return uint32(lo), true
	}
	if hi > uint64(Mask32(hiBits)) {
		return 0, false
	}
	return uint32(hi)<<loBits | uint32(lo), true
}

// Unpack32 reverses Pack32.
func Unpack32(v uint32, loBits uint) (hi, lo uint32) {
	if loBits >= 32 {
		return 0, v
	}
	return v >> loBits, v & Mask32(loBits)
}
