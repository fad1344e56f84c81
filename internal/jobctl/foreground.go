// Package jobctl tracks the foreground process the interpreter is blocked on
// and the table of background jobs.
package jobctl

import (
	"errors"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"

	"github.com/Armaan1620/myshell/internal/tty"
	"golang.org/x/sys/unix"
)

// Foreground is the controller for the process(es) the interpreter is
// currently waiting on.
//
// target is the only value shared between the main control flow and the
// signal forwarding goroutine. It is replaced, never mutated; nil means Idle.
type Foreground struct {
	target atomic.Pointer[[]int]
	kill   unix.Signal
	tty    *tty.Terminal
	log    *log.Logger

	sigs      chan os.Signal
	done      chan struct{}
	install   sync.Once
	closeOnce sync.Once
}

// Option configures a Foreground.
type Option func(*Foreground)

// WithKillSignal sets the signal an interrupt delivers to the foreground
// process. The default is SIGKILL.
func WithKillSignal(sig unix.Signal) Option {
	return func(f *Foreground) {
		f.kill = sig
	}
}

// WithTerminal hands the terminal to the foreground process group for the
// duration of Run and takes it back afterwards.
func WithTerminal(t *tty.Terminal) Option {
	return func(f *Foreground) {
		f.tty = t
	}
}

// WithLogger sets the debug logger.
func WithLogger(l *log.Logger) Option {
	return func(f *Foreground) {
		f.log = l
	}
}

// NewForeground returns an Idle controller. Call Install to start receiving
// interrupts from the terminal.
func NewForeground(opts ...Option) *Foreground {
	f := &Foreground{
		kill: unix.SIGKILL,
		log:  log.New(io.Discard, "", 0),
		done: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Install subscribes to SIGINT and SIGTSTP. SIGINT is forwarded to Interrupt;
// SIGTSTP is dropped so the interpreter itself never stops. Because both are
// caught rather than ignored, children start with the default dispositions.
func (f *Foreground) Install() {
	f.install.Do(func() {
		f.sigs = make(chan os.Signal, 1)
		signal.Notify(f.sigs, unix.SIGINT, unix.SIGTSTP)
		go f.forward()
	})
}

// Close stops signal delivery.
func (f *Foreground) Close() {
	f.closeOnce.Do(func() {
		if f.sigs != nil {
			signal.Stop(f.sigs)
		}
		close(f.done)
	})
}

func (f *Foreground) forward() {
	for {
		select {
		case sig := <-f.sigs:
			if sig == unix.SIGINT {
				f.Interrupt()
			}
		case <-f.done:
			return
		}
	}
}

// Interrupt sends the kill signal to every tracked process. It is a no-op
// while Idle and never changes state: the transition back to Idle happens
// when the blocked wait returns.
func (f *Foreground) Interrupt() {
	pids := f.target.Load()
	if pids == nil {
		return
	}
	for _, pid := range *pids {
		unix.Kill(pid, f.kill)
	}
}

// Current returns the tracked pids, empty when Idle.
func (f *Foreground) Current() []int {
	pids := f.target.Load()
	if pids == nil {
		return nil
	}
	return append([]int(nil), *pids...)
}

// Busy reports whether the controller is Running.
func (f *Foreground) Busy() bool {
	return f.target.Load() != nil
}

// Run makes pids the foreground and waits for each in order until it exits or
// stops. A pid leaves the target once its change is observed and before it is
// reaped; the controller is Idle again when Run returns.
func (f *Foreground) Run(pids ...int) ([]Status, error) {
	return f.run(pids, nil)
}

// Continue moves a job that was stopped or running in the background to the
// foreground: its group gets the terminal, then cont resumes it, then it is
// waited for as by Run.
func (f *Foreground) Continue(pid int, cont func(pid int) error) ([]Status, error) {
	return f.run([]int{pid}, cont)
}

func (f *Foreground) run(pids []int, cont func(int) error) ([]Status, error) {
	if len(pids) == 0 {
		return nil, nil
	}

	remaining := append([]int(nil), pids...)
	f.target.Store(&remaining)
	defer f.target.Store(nil)
	f.log.Printf("foreground: %v", pids)

	if f.tty != nil {
		if err := f.tty.Give(pids[0]); err != nil {
			f.log.Printf("terminal: %v", err)
		}
		defer func() {
			if err := f.tty.Reclaim(); err != nil {
				f.log.Printf("terminal: %v", err)
			}
		}()
	}

	if cont != nil {
		if err := cont(pids[0]); err != nil {
			return nil, err
		}
	}

	statuses := make([]Status, 0, len(pids))
	var errs []error
	for i, pid := range pids {
		rest := append([]int(nil), pids[i+1:]...)
		st, err := waitFor(pid, func() { f.target.Store(&rest) })
		if err != nil {
			errs = append(errs, err)
			continue
		}
		f.log.Print(st)
		statuses = append(statuses, st)
	}
	return statuses, errors.Join(errs...)
}
