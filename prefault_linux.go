//go:build linux

package packedtrie

import "golang.org/x/sys/unix"

// MADV_POPULATE_WRITE, Linux 5.14+. Older kernels return EINVAL.
const madvPopulateWrite = 23

// prefaultRegion populates a freshly mapped output region before it is
// filled. Errors are ignored.
func prefaultRegion(data []byte) {
	if len(data) == 0 {
		return
	}
	_ = unix.Madvise(data, madvPopulateWrite)
}
