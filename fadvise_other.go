//go:build !linux

package packedtrie

// fadviseSequential is a no-op outside Linux.
func fadviseSequential(fd int, offset, length int64) {}
