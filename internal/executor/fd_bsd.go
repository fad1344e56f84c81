//go:build darwin || freebsd || netbsd || openbsd

package executor

import (
	"syscall"

	"golang.org/x/sys/unix"
)

func dup2(oldfd, newfd int) error {
	return unix.Dup2(oldfd, newfd)
}

// pipe marks both ends close-on-exec under ForkLock so no concurrent fork
// can inherit them.
func pipe() (r, w int, err error) {
	var fds [2]int
	syscall.ForkLock.RLock()
	defer syscall.ForkLock.RUnlock()
	if err := unix.Pipe(fds[:]); err != nil {
		return -1, -1, err
	}
	unix.CloseOnExec(fds[0])
	unix.CloseOnExec(fds[1])
	return fds[0], fds[1], nil
}
