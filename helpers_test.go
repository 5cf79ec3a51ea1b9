package packedtrie

import (
	"encoding/binary"
	"hash/fnv"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Named seeds for deterministic reproduction.
const (
	testSeed1 = 0x1234567890ABCDEF
	testSeed2 = 0xFEDCBA9876543210
)

// newTestRNG returns a generator seeded from the test name, so every test
// sees its own reproducible stream.
func newTestRNG(t testing.TB) *rand.Rand {
	t.Helper()
	h := fnv.New128a()
	h.Write([]byte(t.Name()))
	sum := h.Sum(nil)
	s1 := binary.LittleEndian.Uint64(sum[:8])
	s2 := binary.LittleEndian.Uint64(sum[8:])
	return rand.New(rand.NewPCG(testSeed1^s1, testSeed2^s2))
}

var scenarioWords = []string{"walk", "walked", "walker", "walking", "walks", "talk"}

func buildTrie(t testing.TB, words []string, opts ...BuildOption) *Trie {
	t.Helper()
	b := NewBuilder(opts...)
	require.NoError(t, b.InsertAll(slices.Values(words)))
	trie, err := b.Build()
	require.NoError(t, err)
	return trie
}

// randomCorpus draws n words of 1 to maxLen characters from alphabet.
// Words repeat and share prefixes and suffixes.
func randomCorpus(rng *rand.Rand, alphabet []string, n, maxLen int) []string {
	words := make([]string, n)
	var sb strings.Builder
	for i := range words {
		sb.Reset()
		for range 1 + rng.IntN(maxLen) {
			sb.WriteString(alphabet[rng.IntN(len(alphabet))])
		}
		words[i] = sb.String()
	}
	return words
}

// sortedSet returns the distinct words in byte order.
func sortedSet(words []string) []string {
	out := slices.Clone(words)
	slices.Sort(out)
	return slices.Compact(out)
}

func withPrefix(words []string, prefix string) []string {
	var out []string
	for _, w := range words {
		if strings.HasPrefix(w, prefix) {
			out = append(out, w)
		}
	}
	return out
}

// foreignByteOrder returns the byte order this machine does not use.
func foreignByteOrder() binary.ByteOrder {
	var probe [2]byte
	binary.NativeEndian.PutUint16(probe[:], 1)
	if probe[0] == 1 {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// buildConfigs are the option sets every structural property must hold
// under.
var buildConfigs = []struct {
	name string
	opts []BuildOption
}{
	{"Plain", nil},
	{"Optimize", []BuildOption{WithOptimize(true)}},
	{"Pool", []BuildOption{WithStringPool(true)}},
	{"OptimizePool", []BuildOption{WithOptimize(true), WithStringPool(true)}},
	{"PoolShortChains", []BuildOption{WithStringPool(true), WithFoldMinLength(3), WithFoldMaxLength(4)}},
}
