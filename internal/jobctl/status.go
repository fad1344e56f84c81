package jobctl

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Status is how a waited-for process changed state.
type Status struct {
	Pid int
	unix.WaitStatus
}

// Code folds the status into a shell-style exit code.
func (s Status) Code() int {
	switch {
	case s.Exited():
		return s.ExitStatus()
	case s.Signaled():
		return 128 + int(s.Signal())
	case s.Stopped():
		return 128 + int(s.StopSignal())
	default:
		return 0
	}
}

func (s Status) String() string {
	switch {
	case s.Exited():
		return fmt.Sprintf("pid %d exited with status %d", s.Pid, s.ExitStatus())
	case s.Signaled():
		return fmt.Sprintf("pid %d killed by %v", s.Pid, unix.SignalName(s.Signal()))
	case s.Stopped():
		return fmt.Sprintf("pid %d stopped by %v", s.Pid, unix.SignalName(s.StopSignal()))
	default:
		return fmt.Sprintf("pid %d changed state", s.Pid)
	}
}

// wait blocks until pid exits or stops.
func wait(pid int) (Status, error) {
	var ws unix.WaitStatus
	for {
		_, err := unix.Wait4(pid, &ws, unix.WUNTRACED, nil)
		switch err {
		case nil:
			return Status{Pid: pid, WaitStatus: ws}, nil
		case unix.EINTR:
			continue
		default:
			return Status{Pid: pid}, fmt.Errorf("waiting for %d: %w", pid, err)
		}
	}
}
