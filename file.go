package packedtrie

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/edsrzf/mmap-go"
	streamerrors "github.com/tamirms/packedtrie/errors"
)

// Save writes the encoded trie to path. The data goes to a temporary
// file in the same directory that is renamed over path once complete, so
// a failed Save leaves any existing file untouched.
func (t *Trie) Save(path string, opts ...EncodeOption) error {
	data, err := t.EncodeBin(opts...)
	if err != nil {
		return err
	}

	file, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create trie file: %w", err)
	}
	tmp := file.Name()
	abort := func(primaryErr error, cleanup ...error) error {
		cleanup = append(cleanup, file.Close(), os.Remove(tmp))
		return errors.Join(append([]error{primaryErr}, cleanup...)...)
	}

	if err := file.Chmod(0o644); err != nil {
		return abort(fmt.Errorf("chmod trie file: %w", err))
	}

	// Reserve blocks up front so a full disk fails here instead of
	// faulting on a mapped write.
	if err := fallocateFile(file, int64(len(data))); err != nil {
		return abort(fmt.Errorf("allocate disk space: %w", err))
	}

	mm, err := mmap.MapRegion(file, len(data), mmap.RDWR, 0, 0)
	if err != nil {
		return abort(fmt.Errorf("mmap trie file: %w", err))
	}
	prefaultRegion(mm)
	copy(mm, data)

	if err := mm.Flush(); err != nil {
		return abort(fmt.Errorf("mmap flush failed: %w", err), mm.Unmap())
	}
	if err := mm.Unmap(); err != nil {
		return abort(fmt.Errorf("mmap unmap failed: %w", err))
	}
	if err := file.Close(); err != nil {
		return errors.Join(fmt.Errorf("close trie file: %w", err), os.Remove(tmp))
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Join(fmt.Errorf("rename trie file: %w", err), os.Remove(tmp))
	}
	return nil
}

// Open reads a trie saved with Save. The file is mapped only while it is
// decoded; the returned trie holds no file resources.
func Open(path string) (*Trie, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trie file: %w", err)
	}
	defer file.Close()
	return OpenFile(file)
}

// OpenFile decodes a trie from f. The caller is responsible for closing f.
func OpenFile(f *os.File) (*Trie, error) {
	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat trie file: %w", err)
	}
	size := stat.Size()
	if size < int64(trieSchema.HeaderSize()) {
		return nil, streamerrors.ErrTruncatedFile
	}

	fadviseSequential(int(f.Fd()), 0, size)
	mm, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mmap trie file: %w", err)
	}

	t, err := DecodeBin(mm)
	if unmapErr := mm.Unmap(); unmapErr != nil {
		return nil, errors.Join(err, fmt.Errorf("mmap unmap failed: %w", unmapErr))
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}
