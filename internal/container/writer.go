package container

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"
	streamerrors "github.com/tamirms/packedtrie/errors"
)

// Writer assembles one container. Unset fields are written as zero or as
// empty pointers.
type Writer struct {
	schema   *Schema
	order    binary.ByteOrder
	scalars  map[string]uint64
	payloads map[string][]byte
}

// NewWriter returns a writer producing containers in the given byte order.
func (s *Schema) NewWriter(order binary.ByteOrder) *Writer {
	return &Writer{
		schema:   s,
		order:    order,
		scalars:  make(map[string]uint64),
		payloads: make(map[string][]byte),
	}
}

// SetUint stores a scalar field.
func (w *Writer) SetUint(name string, v uint64) error {
	sl, err := w.schema.lookup(name, isScalar)
	if err != nil {
		return err
	}
	if !fits(sl.kind, v) {
		return fmt.Errorf("%w: value %d overflows field %q", streamerrors.ErrFieldKind, v, name)
	}
	w.scalars[name] = v
	return nil
}

// SetBytes stores a Bytes field. b is not copied until Bytes is called.
func (w *Writer) SetBytes(name string, b []byte) error {
	if _, err := w.schema.lookup(name, isBytes); err != nil {
		return err
	}
	w.payloads[name] = b
	return nil
}

// SetString stores a Bytes field from a string.
func (w *Writer) SetString(name, v string) error {
	return w.SetBytes(name, []byte(v))
}

// SetWords stores a Words field encoded in the writer's byte order.
func (w *Writer) SetWords(name string, words []uint32) error {
	if _, err := w.schema.lookup(name, isWords); err != nil {
		return err
	}
	buf := make([]byte, 4*len(words))
	for i, v := range words {
		w.order.PutUint32(buf[4*i:], v)
	}
	w.payloads[name] = buf
	return nil
}

// Size returns the size of the container Bytes would produce.
func (w *Writer) Size() int {
	size := w.schema.fixedSize
	for _, f := range w.schema.fields {
		if f.Kind.isPointer() {
			size = alignUp(size+len(w.payloads[f.Name]), payloadAlign)
		}
	}
	return size
}

// Bytes encodes the container.
func (w *Writer) Bytes() []byte {
	s := w.schema
	buf := make([]byte, w.Size())
	if len(buf) > math.MaxUint32 {
		panic("container: size exceeds 4 GiB")
	}

	copy(buf[offMagic:], s.magic[:])
	copy(buf[offVersion:], s.version[:])
	w.order.PutUint32(buf[offEndian:], endianMarker)
	w.order.PutUint32(buf[offTotal:], uint32(len(buf)))

	data := s.fixedSize
	for _, f := range s.fields {
		sl := s.slots[f.Name]
		if !f.Kind.isPointer() {
			putScalar(w.order, buf[sl.offset:], f.Kind, w.scalars[f.Name])
			continue
		}
		p := w.payloads[f.Name]
		w.order.PutUint32(buf[sl.offset:], uint32(data))
		w.order.PutUint32(buf[sl.offset+4:], uint32(len(p)))
		copy(buf[data:], p)
		data = alignUp(data+len(p), payloadAlign)
	}

	w.order.PutUint64(buf[offChecksum:], xxhash.Sum64(buf[prefixSize:]))
	return buf
}
