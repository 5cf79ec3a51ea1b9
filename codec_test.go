package packedtrie

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	streamerrors "github.com/tamirms/packedtrie/errors"
	"github.com/tamirms/packedtrie/internal/encoding"
	"golang.org/x/sync/errgroup"
)

// ---------------------------------------------------------------------------
// EncodeBin / DecodeBin
// ---------------------------------------------------------------------------

func TestEncodeDecodeRoundTrip(t *testing.T) {
	rng := newTestRNG(t)
	words := randomCorpus(rng, []string{"a", "b", "c", "é", "字", "!", "+", "~"}, 1000, 8)

	for _, cfg := range buildConfigs {
		t.Run(cfg.name, func(t *testing.T) {
			trie := buildTrie(t, words, cfg.opts...)
			data, err := trie.EncodeBin()
			require.NoError(t, err)

			got, err := DecodeBin(data)
			require.NoError(t, err)

			assert.Equal(t, trie.nodes, got.nodes)
			assert.Equal(t, trie.Size(), got.Size())
			assert.Equal(t, trie.NumNodes(), got.NumNodes())
			assert.Equal(t, trie.Markers(), got.Markers())
			assert.Equal(t, trie.MarkerUsage(), got.MarkerUsage())
			assert.Equal(t, trie.Characters(), got.Characters())
			assert.Equal(t, trie.Stats(), got.Stats())
			assert.Equal(t, slices.Collect(trie.All()), slices.Collect(got.All()))
			for _, w := range words[:100] {
				assert.Equal(t, trie.Find(w, false), got.Find(w, false), w)
			}

			again, err := got.EncodeBin()
			require.NoError(t, err)
			assert.Equal(t, data, again)
		})
	}
}

func TestDecodeDoesNotRetainInput(t *testing.T) {
	trie := buildTrie(t, scenarioWords, WithStringPool(true))
	data, err := trie.EncodeBin()
	require.NoError(t, err)

	got, err := DecodeBin(data)
	require.NoError(t, err)
	clear(data)

	assert.True(t, got.Has("walking"))
	assert.Equal(t, 6, got.Size())
}

func TestDecodeRejectsCorruption(t *testing.T) {
	trie := buildTrie(t, scenarioWords, WithStringPool(true))
	valid, err := trie.EncodeBin()
	require.NoError(t, err)

	tests := []struct {
		name   string
		offset int
		want   error
	}{
		{"Signature", 0, streamerrors.ErrInvalidMagic},
		{"Version", 8, streamerrors.ErrInvalidVersion},
		{"EndianMarker", 16, streamerrors.ErrEndianMismatch},
		{"Checksum", 24, streamerrors.ErrChecksumFailed},
		{"Payload", len(valid) - 1, streamerrors.ErrChecksumFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := slices.Clone(valid)
			data[tt.offset] ^= 0xFF
			_, err := DecodeBin(data)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("Truncated", func(t *testing.T) {
		for _, n := range []int{0, 7, 32, len(valid) - 1} {
			_, err := DecodeBin(valid[:n])
			assert.ErrorIs(t, err, streamerrors.ErrTruncatedFile, n)
		}
	})

	t.Run("ForeignByteOrder", func(t *testing.T) {
		data, err := trie.EncodeBin(WithByteOrder(foreignByteOrder()))
		require.NoError(t, err)
		_, err = DecodeBin(data)
		assert.ErrorIs(t, err, streamerrors.ErrEndianMismatch)
	})
}

// encodeRaw writes a container around an arbitrary node array so that the
// checksum is valid and only the trie checks can reject it.
func encodeRaw(t *testing.T, nodes []uint32, numNodes, size uint64) []byte {
	t.Helper()
	w := trieSchema.NewWriter(binary.NativeEndian)
	require.NoError(t, w.SetUint(fieldNumNodes, numNodes))
	require.NoError(t, w.SetUint(fieldSize, size))
	require.NoError(t, w.SetWords(fieldNodes, nodes))
	require.NoError(t, w.SetString(fieldCharacters, "ab"))
	return w.Bytes()
}

func TestDecodeRejectsInvalidNodes(t *testing.T) {
	h := encoding.Header
	c := encoding.Child

	valid := []uint32{h(1, false, 0), c(2, 'a'), h(0, true, 0)}
	_, err := DecodeBin(encodeRaw(t, valid, 2, 1))
	require.NoError(t, err)

	tests := []struct {
		name  string
		nodes []uint32
	}{
		{"Empty", nil},
		{"Overrun", []uint32{h(3, false, 0), c(0, 'a')}},
		{"DanglingChild", []uint32{h(1, false, 0), c(9, 'a'), h(0, true, 0)}},
		{"ChildIntoRecord", []uint32{h(1, false, 0), c(1, 'a'), h(0, true, 0)}},
		{"Unsorted", []uint32{h(2, false, 0), c(3, 'b'), c(3, 'a'), h(0, true, 0)}},
		{"Cycle", []uint32{h(1, false, 0), c(2, 'a'), h(1, true, 0), c(0, 'b')}},
		{"FoldWithoutPool", []uint32{h(1, false, 1), c(2, 'a'), h(0, true, 0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeBin(encodeRaw(t, tt.nodes, 2, 1))
			assert.ErrorIs(t, err, streamerrors.ErrCorruptedTrie)
		})
	}

	t.Run("CountMismatch", func(t *testing.T) {
		_, err := DecodeBin(encodeRaw(t, valid, 2, 5))
		assert.ErrorIs(t, err, streamerrors.ErrCorruptedTrie)
	})
}

// ---------------------------------------------------------------------------
// Save / Open
// ---------------------------------------------------------------------------

func TestSaveOpenRoundTrip(t *testing.T) {
	rng := newTestRNG(t)
	words := randomCorpus(rng, []string{"w", "a", "l", "k", "ä", "ж"}, 2000, 9)
	trie := buildTrie(t, words, WithOptimize(true), WithStringPool(true))

	path := filepath.Join(t.TempDir(), "words.trie")
	require.NoError(t, trie.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	encoded, err := trie.EncodeBin()
	require.NoError(t, err)
	assert.Equal(t, encoded, data)

	got, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, slices.Collect(trie.All()), slices.Collect(got.All()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	viaFile, err := OpenFile(f)
	require.NoError(t, err)
	assert.Equal(t, got.nodes, viaFile.nodes)
}

func TestSaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.trie")
	big := buildTrie(t, randomCorpus(newTestRNG(t), []string{"a", "b", "c"}, 500, 8))
	require.NoError(t, big.Save(path))

	small := buildTrie(t, scenarioWords)
	require.NoError(t, small.Save(path))

	got, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, 6, got.Size())
}

func TestSaveFailureKeepsExistingData(t *testing.T) {
	dir := t.TempDir()
	trie := buildTrie(t, scenarioWords)

	// A non-empty directory cannot be replaced, so the final rename fails
	// after the data has been written.
	blocked := filepath.Join(dir, "words.trie")
	require.NoError(t, os.Mkdir(blocked, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(blocked, "keep"), []byte("x"), 0o644))

	require.Error(t, trie.Save(blocked))
	info, err := os.Stat(blocked)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary file left behind")
	assert.Equal(t, "words.trie", entries[0].Name())

	// A successful save leaves only the target behind.
	path := filepath.Join(dir, "saved.trie")
	require.NoError(t, trie.Save(path))
	entries, err = os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	got, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, 6, got.Size())
}

func TestOpenErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Open(filepath.Join(dir, "missing.trie"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	empty := filepath.Join(dir, "empty.trie")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = Open(empty)
	assert.ErrorIs(t, err, streamerrors.ErrTruncatedFile)

	data, err := buildTrie(t, scenarioWords).EncodeBin()
	require.NoError(t, err)
	data[0] = 'X'
	bad := filepath.Join(dir, "bad.trie")
	require.NoError(t, os.WriteFile(bad, data, 0o644))
	_, err = Open(bad)
	assert.ErrorIs(t, err, streamerrors.ErrInvalidMagic)
}

// ---------------------------------------------------------------------------
// Concurrency
// ---------------------------------------------------------------------------

func TestConcurrentReaders(t *testing.T) {
	rng := newTestRNG(t)
	words := randomCorpus(rng, []string{"a", "b", "c", "d", "é"}, 3000, 8)
	trie := buildTrie(t, words, WithOptimize(true), WithStringPool(true))
	want := sortedSet(words)

	var g errgroup.Group
	for range 8 {
		g.Go(func() error {
			for _, w := range want {
				if !trie.Has(w) || !trie.Find(w, false).Found {
					t.Errorf("lost %q", w)
				}
			}
			if got := slices.Collect(trie.All()); !slices.Equal(got, want) {
				t.Errorf("enumerated %d words, want %d", len(got), len(want))
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}
