//go:build !linux && !darwin && !dragonfly && !freebsd && !netbsd && !openbsd

package auth

// IsTerminal always reports false; prompts fall back to accessible mode.
func IsTerminal(fd uintptr) bool {
	return false
}
