//go:build linux

package executor

import "golang.org/x/sys/unix"

// dup2 via dup3 since some linux ports have no dup2 syscall.
func dup2(oldfd, newfd int) error {
	return unix.Dup3(oldfd, newfd, 0)
}

func pipe() (r, w int, err error) {
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_CLOEXEC); err != nil {
		return -1, -1, err
	}
	return fds[0], fds[1], nil
}
