package jobctl

import "golang.org/x/sys/unix"

// State of a tracked job as last observed.
type State int

const (
	Running State = iota
	Stopped
	Done
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "Stopped"
	case Done:
		return "Done"
	default:
		return "Running"
	}
}

// Prober answers questions about processes the table tracks but does not
// control.
type Prober interface {
	// Poll collects a pending state change for pid without blocking. ok is
	// false when nothing changed or pid is not a child of this process. A Done
	// result means the process has been reaped.
	Poll(pid int) (state State, ok bool)
	// Alive reports whether pid still exists.
	Alive(pid int) bool
	// Continue resumes a stopped pid together with its process group.
	Continue(pid int) error
}

// OSProber asks the kernel.
type OSProber struct{}

func (OSProber) Poll(pid int) (State, bool) {
	var ws unix.WaitStatus
	wpid, err := unix.Wait4(pid, &ws, unix.WNOHANG|unix.WUNTRACED|unix.WCONTINUED, nil)
	if err != nil || wpid != pid {
		return Running, false
	}
	switch {
	case ws.Stopped():
		return Stopped, true
	case ws.Continued():
		return Running, true
	default:
		return Done, true
	}
}

func (OSProber) Alive(pid int) bool {
	return unix.Kill(pid, 0) == nil
}

func (OSProber) Continue(pid int) error {
	// A stopped job may have stopped children in its group.
	if pgid, err := unix.Getpgid(pid); err == nil && pgid == pid {
		return unix.Kill(-pgid, unix.SIGCONT)
	}
	return unix.Kill(pid, unix.SIGCONT)
}

var _ Prober = OSProber{}
