package bits

import (
	"encoding/binary"
	"hash/fnv"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Named seeds for deterministic reproduction.
const (
	testSeed1 = 0x1234567890ABCDEF
	testSeed2 = 0xFEDCBA9876543210
)

func newTestRNG(t testing.TB) *rand.Rand {
	t.Helper()
	h := fnv.New128a()
	h.Write([]byte(t.Name()))
	sum := h.Sum(nil)
	s1 := binary.LittleEndian.Uint64(sum[:8])
	s2 := binary.LittleEndian.Uint64(sum[8:])
	return rand.New(rand.NewPCG(testSeed1^s1, testSeed2^s2))
}

func TestWidth(t *testing.T) {
	assert.Equal(t, uint(0), Width(0))
	assert.Equal(t, uint(1), Width(1))
	assert.Equal(t, uint(8), Width(255))
	assert.Equal(t, uint(9), Width(256))
	assert.Equal(t, uint(64), Width(^uint64(0)))
}

func TestMask32(t *testing.T) {
	assert.Equal(t, uint32(0), Mask32(0))
	assert.Equal(t, uint32(0xff), Mask32(8))
	assert.Equal(t, ^uint32(0), Mask32(32))
	assert.Equal(t, ^uint32(0), Mask32(40))
}

// TestPack32Roundtrip verifies that every value pair that fits survives
// a pack/unpack cycle for random widths.
func TestPack32Roundtrip(t *testing.T) {
	rng := newTestRNG(t)
	for i := 0; i < 10000; i++ {
		loBits := uint(rng.IntN(33))
		lo := uint64(rng.Uint32() & Mask32(loBits))
		hi := uint64(0)
		if loBits < 32 {
			hi = uint64(rng.Uint32() & Mask32(32-loBits))
		}
		v, ok := Pack32(hi, lo, loBits)
		require.True(t, ok, "iter %d: hi=%d lo=%d loBits=%d", i, hi, lo, loBits)
		gotHi, gotLo := Unpack32(v, loBits)
		require.Equal(t, uint32(hi), gotHi)
		require.Equal(t, uint32(lo), gotLo)
	}
}

func TestPack32Overflow(t *testing.T) {
	_, ok := Pack32(0, 256, 8)
	assert.False(t, ok, "lo overflow must be rejected")
	_, ok = Pack32(1<<24, 0, 8)
	assert.False(t, ok, "hi overflow must be rejected")
	_, ok = Pack32(1, 0, 32)
	assert.False(t, ok, "no room for hi")
	v, ok := Pack32(0, 7, 32)
	assert.True(t, ok)
	assert.Equal(t, uint32(7), v)
}
