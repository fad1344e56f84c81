// Package tty hands the controlling terminal back and forth between the
// shell and the process group it runs in the foreground.
package tty

import (
	"errors"
	"fmt"
	"os/signal"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

var ErrNotTerminal = errors.New("not a terminal")

// Terminal is the shell's controlling terminal.
type Terminal struct {
	// fd is a private duplicate, so redirecting the shell's stdin never
	// changes which terminal is controlled.
	fd    int
	shell int
}

// Open duplicates fd and records the calling process group as the owner the
// terminal is returned to.
func Open(fd int) (*Terminal, error) {
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("descriptor %d: %w", fd, ErrNotTerminal)
	}
	dup, err := unix.FcntlInt(uintptr(fd), unix.F_DUPFD_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("duplicating descriptor %d: %w", fd, err)
	}
	return &Terminal{fd: dup, shell: unix.Getpgrp()}, nil
}

// Fd is the descriptor the terminal is controlled through. It is
// close-on-exec.
func (t *Terminal) Fd() int {
	return t.fd
}

// Close releases the duplicate descriptor.
func (t *Terminal) Close() error {
	return unix.Close(t.fd)
}

// Foreground returns the process group that currently owns the terminal.
func (t *Terminal) Foreground() (int, error) {
	return unix.IoctlGetInt(t.fd, unix.TIOCGPGRP)
}

// Give makes the process group of pid the terminal's foreground group.
func (t *Terminal) Give(pid int) error {
	pgid, err := unix.Getpgid(pid)
	if err != nil {
		return fmt.Errorf("process group of %d: %w", pid, err)
	}
	return t.set(pgid)
}

// Reclaim makes the shell's process group the foreground group again.
func (t *Terminal) Reclaim() error {
	return t.set(t.shell)
}

func (t *Terminal) set(pgid int) error {
	// The shell is a background group while a child owns the terminal, and a
	// background TIOCSPGRP raises SIGTTOU unless it is ignored.
	signal.Ignore(unix.SIGTTOU)
	defer signal.Reset(unix.SIGTTOU)

	if err := unix.IoctlSetPointerInt(t.fd, unix.TIOCSPGRP, pgid); err != nil {
		return fmt.Errorf("moving terminal to group %d: %w", pgid, err)
	}
	return nil
}
