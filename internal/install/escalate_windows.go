//go:build windows

package install

// canEscalate always reports false on windows; there is no sudo
// equivalent to retry with, so a permission failure is terminal.
func canEscalate() bool {
	return false
}
