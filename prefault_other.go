//go:build !linux

package packedtrie

// prefaultRegion is a no-op outside Linux.
func prefaultRegion(data []byte) {}
