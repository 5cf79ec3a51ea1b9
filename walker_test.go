package packedtrie

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWordsPrefix(t *testing.T) {
	rng := newTestRNG(t)
	words := randomCorpus(rng, []string{"a", "b", "c", "é", "ж"}, 1500, 7)
	want := sortedSet(words)

	for _, cfg := range buildConfigs {
		t.Run(cfg.name, func(t *testing.T) {
			trie := buildTrie(t, words, cfg.opts...)
			for _, w := range want[:200] {
				for _, r := range []int{1, 2, 3} {
					prefix := string([]rune(w)[:min(r, len([]rune(w)))])
					assert.Equal(t, withPrefix(want, prefix), slices.Collect(trie.Seq(prefix)), prefix)
				}
			}
			assert.Empty(t, slices.Collect(trie.Seq("zzz")))
		})
	}
}

func TestWordsPrefixInsideFold(t *testing.T) {
	trie := buildTrie(t, []string{"abcdefg", "abcdefgh", "xyz"}, WithStringPool(true))
	require.NotNil(t, trie.pool)

	for _, prefix := range []string{"a", "ab", "abc", "abcde", "abcdefg"} {
		assert.Equal(t, []string{"abcdefg", "abcdefgh"}, slices.Collect(trie.Seq(prefix)), prefix)
	}
	assert.Equal(t, []string{"abcdefgh"}, slices.Collect(trie.Seq("abcdefgh")))
	assert.Empty(t, slices.Collect(trie.Seq("abd")))
	assert.Empty(t, slices.Collect(trie.Seq("abcdefghi")))
}

func TestWordsMultiByte(t *testing.T) {
	words := []string{"日本語", "日本", "naïve", "straße", "😀smile", "smile", "ğ"}
	for _, cfg := range buildConfigs {
		t.Run(cfg.name, func(t *testing.T) {
			trie := buildTrie(t, words, cfg.opts...)
			assert.Equal(t, sortedSet(words), slices.Collect(trie.All()))
			assert.Equal(t, []string{"日本", "日本語"}, slices.Collect(trie.Seq("日")))
			assert.Equal(t, []string{"😀smile"}, slices.Collect(trie.Seq("😀")))
			for _, w := range words {
				assert.True(t, trie.Has(w), w)
			}
		})
	}
}

func TestWordIteratorOneShot(t *testing.T) {
	trie := buildTrie(t, scenarioWords)

	it := trie.Words("wal")
	require.True(t, it.Next())
	assert.Equal(t, "walk", it.Word())

	rest := slices.Collect(it.All())
	assert.Equal(t, []string{"walked", "walker", "walking", "walks"}, rest)
	assert.False(t, it.Next())
	assert.Empty(t, it.Word())
	assert.Empty(t, slices.Collect(it.All()))

	// Seq restarts on every range.
	seq := trie.Seq("t")
	assert.Equal(t, []string{"talk"}, slices.Collect(seq))
	assert.Equal(t, []string{"talk"}, slices.Collect(seq))
}

func TestWordIteratorEarlyStop(t *testing.T) {
	trie := buildTrie(t, scenarioWords)
	var got []string
	for w := range trie.All() {
		got = append(got, w)
		if len(got) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"talk", "walk"}, got)
}

func TestWordsDeepChain(t *testing.T) {
	// Depth is limited by memory only.
	long := make([]byte, 20000)
	for i := range long {
		long[i] = 'a' + byte(i%26)
	}
	for _, cfg := range buildConfigs {
		t.Run(cfg.name, func(t *testing.T) {
			trie := buildTrie(t, []string{string(long), "b"}, cfg.opts...)
			assert.Equal(t, []string{string(long), "b"}, slices.Collect(trie.All()))
			assert.True(t, trie.Has(string(long)))
		})
	}
}

func TestUTF8Decoder(t *testing.T) {
	var d utf8Decoder
	for _, c := range []byte("a日") {
		d.push(c)
	}
	assert.Equal(t, "a日", d.String())

	st := d.save()
	d.push(0xE6) // first byte of 本
	assert.Equal(t, "a日\uFFFD", d.String())
	d.push(0x9C)
	d.push(0xAC)
	assert.Equal(t, "a日本", d.String())

	d.restore(st)
	assert.Equal(t, "a日", d.String())
}
