package packedtrie

import (
	"encoding/binary"

	"github.com/rs/zerolog"
	"github.com/tamirms/packedtrie/internal/strpool"
)

const (
	// smallTrieNodes is the node count below which Build merges equal
	// subtrees even without WithOptimize.
	smallTrieNodes = 1000

	defaultFoldMinLength = 2
)

// BuildOption is a functional option for configuring builds.
type BuildOption func(*buildConfig)

type buildConfig struct {
	optimize      bool
	stringPool    bool
	markers       Markers
	foldMinLength int
	foldMaxLength int
	logger        zerolog.Logger
}

func defaultBuildConfig() *buildConfig {
	return &buildConfig{
		markers:       DefaultMarkers(),
		foldMinLength: defaultFoldMinLength,
		foldMaxLength: strpool.DefaultMaxLength,
		logger:        zerolog.Nop(),
	}
}

// WithOptimize enables structural merging of equal subtrees regardless of
// trie size. Small tries are always merged.
func WithOptimize(on bool) BuildOption {
	return func(c *buildConfig) {
		c.optimize = on
	}
}

// WithStringPool enables suffix folding: unbranching chains of nodes are
// collapsed into references into a shared byte pool.
func WithStringPool(on bool) BuildOption {
	return func(c *buildConfig) {
		c.stringPool = on
	}
}

// WithMarkers replaces the dictionary marker characters. An empty marker
// disables that feature.
func WithMarkers(m Markers) BuildOption {
	return func(c *buildConfig) {
		c.markers = m
	}
}

// WithFoldMinLength sets the shortest chain, in edge bytes, that suffix
// folding rewrites into a pool reference. Values below 2 are raised to 2.
func WithFoldMinLength(n int) BuildOption {
	return func(c *buildConfig) {
		c.foldMinLength = max(n, 2)
	}
}

// WithFoldMaxLength caps the length of a folded string. It also bounds the
// string pool's length field. Values outside [1, 255] select 255.
func WithFoldMaxLength(n int) BuildOption {
	return func(c *buildConfig) {
		if n <= 0 || n > strpool.DefaultMaxLength {
			n = strpool.DefaultMaxLength
		}
		c.foldMaxLength = n
	}
}

// WithLogger sets the logger used for build statistics. The default
// discards everything.
func WithLogger(l zerolog.Logger) BuildOption {
	return func(c *buildConfig) {
		c.logger = l
	}
}

// EncodeOption is a functional option for EncodeBin and Save.
type EncodeOption func(*encodeConfig)

type encodeConfig struct {
	order binary.ByteOrder
}

func defaultEncodeConfig() *encodeConfig {
	return &encodeConfig{order: binary.NativeEndian}
}

// WithByteOrder selects the byte order of the encoded container. Readers
// only accept their native order, so this is mainly useful for producing
// files for another platform.
func WithByteOrder(order binary.ByteOrder) EncodeOption {
	return func(c *encodeConfig) {
		c.order = order
	}
}
