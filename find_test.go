package packedtrie

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForbiddenWords(t *testing.T) {
	trie := buildTrie(t, []string{"walk", "!walkk", "!colour"})

	assert.True(t, trie.IsForbidden("walkk"))
	assert.True(t, trie.IsForbidden("colour"))
	assert.False(t, trie.IsForbidden("walk"))
	assert.False(t, trie.Has("walkk"))
	assert.True(t, trie.MarkerUsage().Forbidden)

	res := trie.Find("walkk", false)
	assert.False(t, res.Found)
	assert.True(t, res.Forbidden)

	res = trie.Find("walk", true)
	assert.True(t, res.Found)
	assert.False(t, res.Forbidden)
}

func TestCompoundWords(t *testing.T) {
	words := []string{"foot+", "+ball", "+ball+", "+game", "foot", "hand+"}

	for _, cfg := range buildConfigs {
		t.Run(cfg.name, func(t *testing.T) {
			trie := buildTrie(t, words, cfg.opts...)
			assert.True(t, trie.MarkerUsage().Compound)

			tests := []struct {
				word     string
				found    bool
				compound bool
			}{
				{"foot", true, false},
				{"football", true, true},
				{"handball", true, true},
				{"footballgame", true, true},
				{"footballballgame", true, true},
				{"footgame", true, true},
				{"ballfoot", false, false},
				{"footfoot", false, false},
				{"footbal", false, false},
				{"hand", false, false},
				{"ball", false, false},
			}
			for _, tt := range tests {
				res := trie.Find(tt.word, true)
				assert.Equal(t, tt.found, res.Found, tt.word)
				assert.Equal(t, tt.compound, res.CompoundUsed, tt.word)
				if tt.found {
					assert.True(t, res.CaseMatched, tt.word)
				}
			}
			assert.False(t, trie.Has("football"))
		})
	}
}

func TestStrippedLookup(t *testing.T) {
	trie := buildTrie(t, []string{"Café", "~cafe", "~cafe+", "~+bar"})
	assert.True(t, trie.MarkerUsage().Strip)

	res := trie.Find("Café", false)
	assert.True(t, res.Found)
	assert.True(t, res.CaseMatched)

	res = trie.Find("cafe", false)
	assert.True(t, res.Found)
	assert.False(t, res.CaseMatched)

	res = trie.Find("cafe", true)
	assert.False(t, res.Found)

	res = trie.Find("cafebar", false)
	assert.True(t, res.Found)
	assert.True(t, res.CompoundUsed)
	assert.False(t, res.CaseMatched)
}

func TestUnknownCharacters(t *testing.T) {
	trie := buildTrie(t, scenarioWords)

	assert.False(t, trie.Has("wölk"))
	assert.Equal(t, FindResult{}, trie.Find("wölk", false))
	assert.False(t, trie.IsForbidden("qqq"))
}

func TestMarkerUsage(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		trie := buildTrie(t, scenarioWords)
		assert.Equal(t, DefaultMarkers(), trie.Markers())
		assert.Equal(t, MarkerUsage{}, trie.MarkerUsage())
	})

	t.Run("Suggest", func(t *testing.T) {
		trie := buildTrie(t, []string{"walk:"})
		assert.True(t, trie.MarkerUsage().Suggest)
		assert.False(t, trie.MarkerUsage().Forbidden)
	})

	t.Run("Disabled", func(t *testing.T) {
		trie := buildTrie(t, []string{"!walkk", "foot+", "+ball", "~cafe"}, WithMarkers(Markers{}))
		assert.Equal(t, MarkerUsage{}, trie.MarkerUsage())
		assert.False(t, trie.IsForbidden("walkk"))
		assert.False(t, trie.Find("football", false).Found)
		assert.False(t, trie.Find("cafe", false).Found)
		assert.True(t, trie.Has("!walkk"))
	})

	t.Run("Custom", func(t *testing.T) {
		m := Markers{Forbidden: "#", Compound: "*", Strip: "^", Suggest: "@"}
		trie := buildTrie(t, []string{"#bad", "foot*", "*ball"}, WithMarkers(m))
		assert.Equal(t, m, trie.Markers())
		assert.True(t, trie.IsForbidden("bad"))
		assert.True(t, trie.Find("football", true).CompoundUsed)
	})
}

func TestLookupInsideFoldedChains(t *testing.T) {
	// Every entry below is a single unbranching chain, so with the pool
	// each marker and compound split falls inside a folded string.
	m := Markers{Forbidden: "¬", Compound: "+", Strip: "~"}
	trie := buildTrie(t, []string{"¬bad", "hand+", "+ball", "~+ware"},
		WithStringPool(true), WithMarkers(m))
	require.NotNil(t, trie.pool)

	assert.True(t, trie.IsForbidden("bad"))
	assert.True(t, trie.MarkerUsage().Strip)

	res := trie.Find("handball", true)
	assert.True(t, res.Found)
	assert.True(t, res.CompoundUsed)

	assert.False(t, trie.Find("handware", true).Found)
	assert.False(t, trie.Find("hand", false).Found)
}
