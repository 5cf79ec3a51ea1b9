//go:build darwin

package packedtrie

import (
	"os"

	"golang.org/x/sys/unix"
)

// fallocateFile reserves size bytes for a trie file with F_PREALLOCATE
// and sets the file length.
func fallocateFile(file *os.File, size int64) error {
	fst := unix.Fstore_t{
		Flags:   unix.F_ALLOCATEALL,
		Posmode: unix.F_PEOFPOSMODE,
		Length:  size,
	}
	if err := unix.FcntlFstore(file.Fd(), unix.F_PREALLOCATE, &fst); err != nil {
		return unix.Ftruncate(int(file.Fd()), size)
	}
	return unix.Ftruncate(int(file.Fd()), size)
}
