//go:build !windows

package install

import "golang.org/x/sys/unix"

// canEscalate reports whether a sudo retry is worth attempting: it is
// pointless when the process is already root.
func canEscalate() bool {
	return unix.Geteuid() != 0
}
