package executor

import (
	"fmt"
	"os"

	"github.com/Armaan1620/myshell/internal/parser"
	"golang.org/x/sys/unix"
)

// Redirection is a scoped replacement of one of the interpreter's own
// descriptors. Until Release is called, the descriptor refers to the
// redirect target and every child started meanwhile inherits it.
type Redirection struct {
	fd    int
	saved int
	tmp   int
	done  bool
}

// Redirect points stdin (parser.Input) or stdout (parser.Output) at filename.
// The file is created if absent and opened read-write; output targets are
// truncated.
func (s *Spawner) Redirect(kind parser.Kind, filename string) (*Redirection, error) {
	var fd, flags int
	switch kind {
	case parser.Input:
		fd, flags = s.Stdin, unix.O_CREAT|unix.O_RDWR
	case parser.Output:
		fd, flags = s.Stdout, unix.O_CREAT|unix.O_RDWR|unix.O_TRUNC
	default:
		return nil, fmt.Errorf("%v is not a redirection", kind)
	}

	// The saved copy must not leak into children.
	saved, err := unix.FcntlInt(uintptr(fd), unix.F_DUPFD_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("saving descriptor %d: %w", fd, err)
	}

	tmp, err := unix.Open(filename, flags|unix.O_CLOEXEC, 0644)
	if err != nil {
		unix.Close(saved)
		return nil, &os.PathError{Op: "open", Path: filename, Err: err}
	}

	if err := dup2(tmp, fd); err != nil {
		unix.Close(tmp)
		unix.Close(saved)
		return nil, fmt.Errorf("redirecting descriptor %d: %w", fd, err)
	}

	return &Redirection{fd: fd, saved: saved, tmp: tmp}, nil
}

// Release puts the original descriptor back and closes the temporary and
// saved copies. It is safe to call more than once and on a nil guard.
func (r *Redirection) Release() error {
	if r == nil || r.done {
		return nil
	}
	r.done = true

	err := dup2(r.saved, r.fd)
	unix.Close(r.tmp)
	unix.Close(r.saved)
	if err != nil {
		return fmt.Errorf("restoring descriptor %d: %w", r.fd, err)
	}
	return nil
}
