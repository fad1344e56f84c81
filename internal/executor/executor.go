// Package executor starts child processes for parsed commands and wires their
// file descriptors: plain programs, redirected programs and two-stage pipes.
//
// The spawner keeps no state between commands. Waiting for children is the
// caller's job (see jobctl).
package executor

import (
	"errors"
	"os"
	"os/exec"
	"syscall"

	"github.com/Armaan1620/myshell/internal/parser"
	"github.com/Armaan1620/myshell/internal/tty"
	"golang.org/x/sys/unix"
)

// Spawner forks and execs programs. Children inherit Stdin, Stdout and Stderr
// as their descriptors 0, 1 and 2.
type Spawner struct {
	Stdin  int
	Stdout int
	Stderr int

	// Env is passed to children; nil means the interpreter's environment at
	// spawn time.
	Env []string

	// Terminal, when set, is handed to every foreground child before it
	// execs.
	Terminal *tty.Terminal
}

// New returns a spawner wired to the interpreter's own stdio.
func New() *Spawner {
	return &Spawner{
		Stdin:  unix.Stdin,
		Stdout: unix.Stdout,
		Stderr: unix.Stderr,
	}
}

// RunPlain starts argv[0], resolved on PATH, and returns its pid. Every
// child leads its own process group, so signals the terminal sends to one job
// never reach another. A foreground child also takes the terminal.
func (s *Spawner) RunPlain(argv []string, background bool) (int, error) {
	return s.start(argv, s.stdio(), s.group(0, !background))
}

// group places the child in process group pgid, a new one when pgid is 0. A
// new foreground group takes the terminal in the child, before exec, so the
// program never reads the terminal from the background.
func (s *Spawner) group(pgid int, foreground bool) *syscall.SysProcAttr {
	sys := &syscall.SysProcAttr{Setpgid: true, Pgid: pgid}
	if foreground && pgid == 0 && s.Terminal != nil {
		sys.Foreground = true
		sys.Ctty = s.Terminal.Fd()
	}
	return sys
}

// RunRedirected installs the redirection in the interpreter's descriptor
// table, then starts argv so the child inherits it. The returned guard must be
// released once the child has been waited for (or right after a background
// launch). On error nothing is left redirected.
func (s *Spawner) RunRedirected(argv []string, kind parser.Kind, filename string, background bool) (int, *Redirection, error) {
	guard, err := s.Redirect(kind, filename)
	if err != nil {
		return 0, nil, err
	}

	pid, err := s.RunPlain(argv, background)
	if err != nil {
		if relErr := guard.Release(); relErr != nil {
			return 0, nil, &FatalError{Op: "restore descriptor", Err: relErr}
		}
		return 0, nil, err
	}
	return pid, guard, nil
}

func (s *Spawner) stdio() []uintptr {
	return []uintptr{uintptr(s.Stdin), uintptr(s.Stdout), uintptr(s.Stderr)}
}

func (s *Spawner) environ() []string {
	if s.Env != nil {
		return s.Env
	}
	return os.Environ()
}

// start does the fork/exec. Descriptors not listed in files are close-on-exec
// in this process, so the child sees exactly files as 0, 1, 2.
func (s *Spawner) start(argv []string, files []uintptr, sys *syscall.SysProcAttr) (int, error) {
	if len(argv) == 0 || argv[0] == "" {
		return 0, &ExecError{Err: errEmptyCommand}
	}

	path, err := exec.LookPath(argv[0])
	if err != nil && !errors.Is(err, exec.ErrDot) {
		return 0, &ExecError{Name: argv[0], Err: unwrapExec(err)}
	}

	pid, err := syscall.ForkExec(path, argv, &syscall.ProcAttr{
		Env:   s.environ(),
		Files: files,
		Sys:   sys,
	})
	if err != nil {
		if isForkFailure(err) {
			return 0, &FatalError{Op: "fork", Err: err}
		}
		return 0, &ExecError{Name: argv[0], Err: err}
	}
	return pid, nil
}

// isForkFailure separates errors from fork itself from errors raised by the
// child between fork and exec.
func isForkFailure(err error) bool {
	return errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.ENOMEM) || errors.Is(err, unix.ENOSYS)
}

func unwrapExec(err error) error {
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return execErr.Err
	}
	return err
}
