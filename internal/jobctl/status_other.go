//go:build !linux

package jobctl

// waitFor blocks until pid exits or stops, then runs settled. Without
// waitid(WNOWAIT) the pid is already reaped when settled runs.
func waitFor(pid int, settled func()) (Status, error) {
	st, err := wait(pid)
	settled()
	return st, err
}
