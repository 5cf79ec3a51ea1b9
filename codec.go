package packedtrie

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	streamerrors "github.com/tamirms/packedtrie/errors"
	"github.com/tamirms/packedtrie/internal/charindex"
	"github.com/tamirms/packedtrie/internal/container"
	"github.com/tamirms/packedtrie/internal/strpool"
)

const (
	trieMagic     = "PKDTRIE\x00"
	formatVersion = "0.1.0"

	flagStringPool = 1 << 0
	knownFlags     = flagStringPool
)

const (
	fieldFlags         = "flags"
	fieldNumNodes      = "numNodes"
	fieldSize          = "size"
	fieldPoolLenBits   = "poolLenBits"
	fieldNodes         = "nodes"
	fieldCharacters    = "characters"
	fieldPool          = "pool"
	fieldPoolRefs      = "poolRefs"
	fieldMarkForbidden = "markForbidden"
	fieldMarkCompound  = "markCompound"
	fieldMarkStrip     = "markStrip"
	fieldMarkSuggest   = "markSuggest"
)

var trieSchema = container.NewSchema(trieMagic, formatVersion,
	container.Field{Name: fieldFlags, Kind: container.Uint32},
	container.Field{Name: fieldNumNodes, Kind: container.Uint32},
	container.Field{Name: fieldSize, Kind: container.Uint64},
	container.Field{Name: fieldPoolLenBits, Kind: container.Uint8},
	container.Field{Name: fieldNodes, Kind: container.Words},
	container.Field{Name: fieldCharacters, Kind: container.Bytes},
	container.Field{Name: fieldPool, Kind: container.Bytes},
	container.Field{Name: fieldPoolRefs, Kind: container.Words},
	container.Field{Name: fieldMarkForbidden, Kind: container.Bytes},
	container.Field{Name: fieldMarkCompound, Kind: container.Bytes},
	container.Field{Name: fieldMarkStrip, Kind: container.Bytes},
	container.Field{Name: fieldMarkSuggest, Kind: container.Bytes},
)

// EncodeBin serializes the trie. The container is written in native byte
// order unless WithByteOrder says otherwise.
func (t *Trie) EncodeBin(opts ...EncodeOption) ([]byte, error) {
	cfg := defaultEncodeConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	var (
		flags   uint64
		pool    []byte
		refs    []uint32
		lenBits uint
	)
	if t.pool != nil {
		flags |= flagStringPool
		pool, refs, lenBits = t.pool.Buffer(), t.pool.Refs(), t.pool.LenBits()
	}

	w := trieSchema.NewWriter(cfg.order)
	err := errors.Join(
		w.SetUint(fieldFlags, flags),
		w.SetUint(fieldNumNodes, uint64(t.numNodes)),
		w.SetUint(fieldSize, uint64(t.size)),
		w.SetUint(fieldPoolLenBits, uint64(lenBits)),
		w.SetWords(fieldNodes, t.nodes),
		w.SetString(fieldCharacters, t.chars.Text()),
		w.SetBytes(fieldPool, pool),
		w.SetWords(fieldPoolRefs, refs),
		w.SetString(fieldMarkForbidden, t.markers.Forbidden),
		w.SetString(fieldMarkCompound, t.markers.Compound),
		w.SetString(fieldMarkStrip, t.markers.Strip),
		w.SetString(fieldMarkSuggest, t.markers.Suggest),
	)
	if err != nil {
		return nil, fmt.Errorf("encode trie: %w", err)
	}
	return w.Bytes(), nil
}

// DecodeBin rebuilds a trie from EncodeBin output. data is not retained.
// Containers written in the other byte order fail with ErrEndianMismatch.
func DecodeBin(data []byte) (*Trie, error) {
	r, err := trieSchema.Open(data, binary.NativeEndian)
	if err != nil {
		return nil, err
	}

	f := fieldReader{r: r}
	flags := f.uint(fieldFlags)
	numNodes := f.uint(fieldNumNodes)
	size := f.uint(fieldSize)
	lenBits := f.uint(fieldPoolLenBits)
	nodes := f.words(fieldNodes)
	chars := f.str(fieldCharacters)
	poolBuf := f.bytes(fieldPool)
	poolRefs := f.words(fieldPoolRefs)
	markers := Markers{
		Forbidden: f.str(fieldMarkForbidden),
		Compound:  f.str(fieldMarkCompound),
		Strip:     f.str(fieldMarkStrip),
		Suggest:   f.str(fieldMarkSuggest),
	}
	if f.err != nil {
		return nil, fmt.Errorf("decode trie: %w", f.err)
	}
	if flags&^knownFlags != 0 {
		return nil, fmt.Errorf("%w: unknown flags %#x", streamerrors.ErrCorruptedTrie, flags)
	}

	var pool *strpool.Pool
	if flags&flagStringPool != 0 {
		pool, err = strpool.FromParts(bytes.Clone(poolBuf), poolRefs, uint(lenBits))
		if err != nil {
			return nil, err
		}
	}

	t, err := newTrie(nodes, charindex.FromText(chars), pool, markers)
	if err != nil {
		return nil, err
	}
	if uint64(t.numNodes) != numNodes || uint64(t.size) != size {
		return nil, fmt.Errorf("%w: header counts disagree with node array", streamerrors.ErrCorruptedTrie)
	}
	return t, nil
}

// fieldReader keeps the first field access error so a decode can read
// every field and check once.
type fieldReader struct {
	r   *container.Reader
	err error
}

func (f *fieldReader) uint(name string) uint64 {
	if f.err != nil {
		return 0
	}
	v, err := f.r.Uint(name)
	f.err = err
	return v
}

func (f *fieldReader) bytes(name string) []byte {
	if f.err != nil {
		return nil
	}
	b, err := f.r.Bytes(name)
	f.err = err
	return b
}

func (f *fieldReader) str(name string) string {
	return string(f.bytes(name))
}

func (f *fieldReader) words(name string) []uint32 {
	if f.err != nil {
		return nil
	}
	w, err := f.r.Words(name)
	f.err = err
	return w
}
