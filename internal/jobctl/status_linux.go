//go:build linux

package jobctl

import "golang.org/x/sys/unix"

// waitFor blocks until pid exits or stops. settled runs after the change is
// visible but before pid is reaped, while the pid cannot yet be reused.
func waitFor(pid int, settled func()) (Status, error) {
	var info unix.Siginfo
	for {
		err := unix.Waitid(unix.P_PID, pid, &info, unix.WEXITED|unix.WSTOPPED|unix.WNOWAIT, nil)
		if err != unix.EINTR {
			break
		}
	}
	settled()
	return wait(pid)
}
