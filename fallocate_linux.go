//go:build linux

package packedtrie

import (
	"os"

	"golang.org/x/sys/unix"
)

// fallocateFile reserves size bytes for a trie file before it is mapped
// for writing, so a full disk surfaces as an error instead of SIGBUS.
func fallocateFile(file *os.File, size int64) error {
	fd := int(file.Fd())
	if err := unix.Fallocate(fd, 0, 0, size); err != nil {
		// Not every filesystem supports fallocate (NFS, some FUSE mounts).
		return unix.Ftruncate(fd, size)
	}
	// fallocate reserves blocks without growing the file past its size.
	return unix.Ftruncate(fd, size)
}
