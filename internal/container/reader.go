package container

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
	streamerrors "github.com/tamirms/packedtrie/errors"
)

// Reader gives typed access to a validated container. Bytes results alias
// the input buffer.
type Reader struct {
	schema *Schema
	order  binary.ByteOrder
	data   []byte
}

// Open validates data against the schema. Checks run in order: size,
// signature, version, endianness marker, declared size, checksum and
// finally every pointer bound, so no pointer is trusted before the
// header has been verified.
func (s *Schema) Open(data []byte, order binary.ByteOrder) (*Reader, error) {
	if len(data) < s.fixedSize {
		return nil, streamerrors.ErrTruncatedFile
	}
	if !bytes.Equal(data[offMagic:offMagic+magicSize], s.magic[:]) {
		return nil, streamerrors.ErrInvalidMagic
	}
	if !bytes.Equal(data[offVersion:offVersion+versionSize], s.version[:]) {
		return nil, fmt.Errorf("%w: %q", streamerrors.ErrInvalidVersion, trimNUL(data[offVersion:offVersion+versionSize]))
	}
	if order.Uint32(data[offEndian:]) != endianMarker {
		return nil, streamerrors.ErrEndianMismatch
	}

	total := int(order.Uint32(data[offTotal:]))
	if total > len(data) {
		return nil, streamerrors.ErrTruncatedFile
	}
	if total < s.fixedSize {
		return nil, fmt.Errorf("%w: declared size %d below header size %d", streamerrors.ErrCorruptedTrie, total, s.fixedSize)
	}
	data = data[:total]

	if xxhash.Sum64(data[prefixSize:]) != order.Uint64(data[offChecksum:]) {
		return nil, streamerrors.ErrChecksumFailed
	}

	r := &Reader{schema: s, order: order, data: data}
	for _, f := range s.fields {
		if !f.Kind.isPointer() {
			continue
		}
		off, n := r.pointer(s.slots[f.Name])
		if off < s.fixedSize || off+n > total {
			return nil, fmt.Errorf("%w: field %q points outside the container", streamerrors.ErrCorruptedTrie, f.Name)
		}
		if f.Kind == Words && n%4 != 0 {
			return nil, fmt.Errorf("%w: field %q is not a whole number of words", streamerrors.ErrCorruptedTrie, f.Name)
		}
	}
	return r, nil
}

func (r *Reader) pointer(sl slot) (off, n int) {
	return int(r.order.Uint32(r.data[sl.offset:])), int(r.order.Uint32(r.data[sl.offset+4:]))
}

// Size returns the declared container size.
func (r *Reader) Size() int { return len(r.data) }

// Uint returns a scalar field.
func (r *Reader) Uint(name string) (uint64, error) {
	sl, err := r.schema.lookup(name, isScalar)
	if err != nil {
		return 0, err
	}
	return getScalar(r.order, r.data[sl.offset:], sl.kind), nil
}

// Bytes returns a Bytes field. The result aliases the container.
func (r *Reader) Bytes(name string) ([]byte, error) {
	sl, err := r.schema.lookup(name, isBytes)
	if err != nil {
		return nil, err
	}
	off, n := r.pointer(sl)
	return r.data[off : off+n : off+n], nil
}

// String returns a Bytes field as a string.
func (r *Reader) String(name string) (string, error) {
	b, err := r.Bytes(name)
	return string(b), err
}

// Words decodes a Words field into a new slice.
func (r *Reader) Words(name string) ([]uint32, error) {
	sl, err := r.schema.lookup(name, isWords)
	if err != nil {
		return nil, err
	}
	off, n := r.pointer(sl)
	words := make([]uint32, n/4)
	for i := range words {
		words[i] = r.order.Uint32(r.data[off+4*i:])
	}
	return words, nil
}
