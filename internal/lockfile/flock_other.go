//go:build !unix && !windows

package lockfile

import "os"

// No lock support on this platform; writes proceed unguarded.

func flockExclusive(f *os.File) error {
	return nil
}

func flockUnlock(f *os.File) error {
	return nil
}
