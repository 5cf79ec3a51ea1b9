//go:build !linux && !darwin

package packedtrie

import "os"

// fallocateFile sets the file length. Blocks may not be reserved on this
// platform.
func fallocateFile(file *os.File, size int64) error {
	return file.Truncate(size)
}
