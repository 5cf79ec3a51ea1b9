// Package container implements the small self-describing binary container
// used to persist a packed trie.
//
// A container is described by a Schema: a magic signature, a version
// string and an ordered list of fields. Scalar fields are stored inline;
// Bytes and Words fields are stored as an (offset, length) pointer into
// the variable region that follows the fixed header.
//
// Layout:
//
//	Offset  Size  Field
//	0       8     Magic            schema signature
//	8       8     Version          NUL-padded version string
//	16      4     EndianMarker     0x04030201 in the writer's byte order
//	20      4     TotalSize        size of the whole container in bytes
//	24      8     Checksum         xxHash64 of bytes [32, TotalSize)
//	32      ...   Fields           declaration order, each aligned to its width
//	...     ...   Variable region  pointer payloads, each aligned to 4 bytes
//
// Readers never byte-swap: a container written in the other byte order is
// rejected with ErrEndianMismatch.
package container

import (
	"encoding/binary"
	"fmt"

	streamerrors "github.com/tamirms/packedtrie/errors"
)

const (
	magicSize   = 8
	versionSize = 8

	offMagic    = 0
	offVersion  = 8
	offEndian   = 16
	offTotal    = 20
	offChecksum = 24

	// prefixSize is the size of the schema-independent header prefix.
	prefixSize = 32

	endianMarker = uint32(0x04030201)

	payloadAlign = 4
)

// Kind is the storage class of a field.
type Kind uint8

const (
	Uint8 Kind = iota + 1
	Uint16
	Uint32
	Uint64
	Bytes // pointer to raw bytes
	Words // pointer to a []uint32 stored in the container byte order
)

func (k Kind) width() int {
	switch k {
	case Uint8:
		return 1
	case Uint16:
		return 2
	case Uint32:
		return 4
	case Uint64:
		return 8
	case Bytes, Words:
		return 8 // uint32 offset + uint32 length
	default:
		panic(fmt.Sprintf("container: invalid field kind %d", k))
	}
}

// align returns the alignment of the field's scalar components.
func (k Kind) align() int {
	if k == Bytes || k == Words {
		return 4
	}
	return k.width()
}

func (k Kind) isPointer() bool { return k == Bytes || k == Words }

// Field declares one named entry of a schema.
type Field struct {
	Name string
	Kind Kind
}

type slot struct {
	offset int
	kind   Kind
}

// Schema is an immutable container description.
type Schema struct {
	magic     [magicSize]byte
	version   [versionSize]byte
	fields    []Field
	slots     map[string]slot
	fixedSize int
}

// NewSchema lays out fields after the header prefix. magic must be exactly
// 8 bytes and version at most 8. It panics on invalid declarations, which
// are programming errors.
func NewSchema(magic, version string, fields ...Field) *Schema {
	if len(magic) != magicSize {
		panic("container: magic must be 8 bytes")
	}
	if len(version) > versionSize {
		panic("container: version longer than 8 bytes")
	}
	s := &Schema{
		fields: fields,
		slots:  make(map[string]slot, len(fields)),
	}
	copy(s.magic[:], magic)
	copy(s.version[:], version)

	off := prefixSize
	for _, f := range fields {
		if _, dup := s.slots[f.Name]; dup {
			panic("container: duplicate field " + f.Name)
		}
		off = alignUp(off, f.Kind.align())
		s.slots[f.Name] = slot{offset: off, kind: f.Kind}
		off += f.Kind.width()
	}
	s.fixedSize = alignUp(off, payloadAlign)
	return s
}

// HeaderSize returns the size of the fixed part of a container.
func (s *Schema) HeaderSize() int { return s.fixedSize }

// Version returns the schema version string without padding.
func (s *Schema) Version() string { return trimNUL(s.version[:]) }

func (s *Schema) lookup(name string, want func(Kind) bool) (slot, error) {
	sl, ok := s.slots[name]
	if !ok {
		return slot{}, fmt.Errorf("%w: %q", streamerrors.ErrUnknownField, name)
	}
	if !want(sl.kind) {
		return slot{}, fmt.Errorf("%w: %q", streamerrors.ErrFieldKind, name)
	}
	return sl, nil
}

func isScalar(k Kind) bool { return !k.isPointer() }
func isBytes(k Kind) bool  { return k == Bytes }
func isWords(k Kind) bool  { return k == Words }

func alignUp(n, a int) int {
	return (n + a - 1) / a * a
}

func trimNUL(b []byte) string {
	n := len(b)
	for n > 0 && b[n-1] == 0 {
		n--
	}
	return string(b[:n])
}

// putScalar writes v at buf[off:] with the field's width.
func putScalar(order binary.ByteOrder, buf []byte, k Kind, v uint64) {
	switch k {
	case Uint8:
		buf[0] = byte(v)
	case Uint16:
		order.PutUint16(buf, uint16(v))
	case Uint32:
		order.PutUint32(buf, uint32(v))
	case Uint64:
		order.PutUint64(buf, v)
	}
}

func getScalar(order binary.ByteOrder, buf []byte, k Kind) uint64 {
	switch k {
	case Uint8:
		return uint64(buf[0])
	case Uint16:
		return uint64(order.Uint16(buf))
	case Uint32:
		return uint64(order.Uint32(buf))
	case Uint64:
		return order.Uint64(buf)
	}
	return 0
}

func fits(k Kind, v uint64) bool {
	switch k {
	case Uint8:
		return v <= 0xff
	case Uint16:
		return v <= 0xffff
	case Uint32:
		return v <= 0xffffffff
	}
	return true
}
