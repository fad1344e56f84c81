package repl

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/Armaan1620/myshell/internal/builtins"
	"github.com/Armaan1620/myshell/internal/executor"
	"github.com/Armaan1620/myshell/internal/jobctl"
	"github.com/Armaan1620/myshell/internal/parser"
	"github.com/abiosoft/readline"
)

// LineReader yields one line of input per call. io.EOF ends the session and
// readline.ErrInterrupt discards the partial line.
type LineReader interface {
	Readline() (string, error)
}

// Options wires a Shell. Zero fields get the interpreter's own stdio, a
// MaxJobs table and a SIGKILL foreground controller.
type Options struct {
	In         LineReader
	Stdout     io.Writer
	Stderr     io.Writer
	Spawner    *executor.Spawner
	Foreground *jobctl.Foreground
	Jobs       *jobctl.Table
	Logger     *log.Logger
}

// Shell is the main loop: read, classify, run, repeat.
type Shell struct {
	in      LineReader
	stdout  io.Writer
	stderr  io.Writer
	spawner *executor.Spawner
	fg      *jobctl.Foreground
	jobs    *jobctl.Table
	log     *log.Logger

	lastStatus int
	quit       bool
	exitCode   int
}

var _ builtins.Env = (*Shell)(nil)

func New(opts Options) *Shell {
	s := &Shell{
		in:      opts.In,
		stdout:  opts.Stdout,
		stderr:  opts.Stderr,
		spawner: opts.Spawner,
		fg:      opts.Foreground,
		jobs:    opts.Jobs,
		log:     opts.Logger,
	}
	if s.stdout == nil {
		s.stdout = os.Stdout
	}
	if s.stderr == nil {
		s.stderr = os.Stderr
	}
	if s.spawner == nil {
		s.spawner = executor.New()
	}
	if s.fg == nil {
		s.fg = jobctl.NewForeground()
	}
	if s.jobs == nil {
		s.jobs = jobctl.NewTable(jobctl.MaxJobs, nil)
	}
	if s.log == nil {
		s.log = log.New(io.Discard, "", 0)
	}
	return s
}

func (s *Shell) Stdout() io.Writer              { return s.stdout }
func (s *Shell) Stderr() io.Writer              { return s.stderr }
func (s *Shell) Jobs() *jobctl.Table            { return s.jobs }
func (s *Shell) Foreground() *jobctl.Foreground { return s.fg }

// Exit stops the loop once the current command returns.
func (s *Shell) Exit(code int) {
	s.quit = true
	s.exitCode = code
}

// LastStatus is the status code of the most recent command.
func (s *Shell) LastStatus() int { return s.lastStatus }

// ExitCode is the code passed to the exit builtin, 0 otherwise.
func (s *Shell) ExitCode() int { return s.exitCode }

// Run reads and executes lines until exit, end of input, or a fatal error.
func (s *Shell) Run() error {
	for !s.quit {
		line, err := s.in.Readline()
		switch {
		case errors.Is(err, io.EOF):
			return nil
		case errors.Is(err, readline.ErrInterrupt):
			continue
		case err != nil:
			return fmt.Errorf("reading input: %w", err)
		}

		if err := s.Execute(line); err != nil {
			return err
		}
	}
	return nil
}

// Execute runs one line. Only fatal errors are returned; everything else is
// reported to the user and reflected in LastStatus.
func (s *Shell) Execute(line string) error {
	cmd, err := parser.Parse(line)
	if err != nil {
		fmt.Fprintf(s.stderr, "myshell: syntax error: %v\n", err)
		s.lastStatus = 2
		return nil
	}
	if cmd.Empty() {
		return nil
	}
	s.log.Printf("%v: %s", cmd.Kind, cmd)

	switch cmd.Kind {
	case parser.Pipe:
		err = s.runPipeline(cmd)
	case parser.Input, parser.Output:
		err = s.runRedirected(cmd)
	default:
		err = s.runPlain(cmd)
	}
	s.log.Printf("status %d", s.lastStatus)
	return err
}

func (s *Shell) runPlain(cmd parser.Command) error {
	if b, ok := builtins.Lookup(cmd.Args); ok {
		s.lastStatus = b.Main(s, cmd.Args)
		return nil
	}

	pid, err := s.spawner.RunPlain(cmd.Args, cmd.Background)
	if err != nil {
		return s.spawnFailed(err)
	}
	return s.settle(cmd, pid)
}

func (s *Shell) runRedirected(cmd parser.Command) error {
	// Builtins write through the interpreter's own stdout, so they follow
	// the redirection too.
	if b, ok := builtins.Lookup(cmd.Args); ok {
		guard, err := s.spawner.Redirect(cmd.Kind, cmd.File)
		if err != nil {
			return s.spawnFailed(err)
		}
		s.lastStatus = b.Main(s, cmd.Args)
		return s.release(guard)
	}

	pid, guard, err := s.spawner.RunRedirected(cmd.Args, cmd.Kind, cmd.File, cmd.Background)
	if err != nil {
		return s.spawnFailed(err)
	}
	settleErr := s.settle(cmd, pid)
	if err := s.release(guard); err != nil {
		return err
	}
	return settleErr
}

func (s *Shell) runPipeline(cmd parser.Command) error {
	if cmd.Background {
		s.log.Print("pipelines run in the foreground, ignoring &")
	}

	p, err := s.spawner.RunPipeline(cmd.Left, cmd.Right)
	if err != nil {
		return err
	}
	for _, sideErr := range []error{p.LeftErr, p.RightErr} {
		if sideErr != nil {
			s.reportExec(sideErr)
		}
	}

	statuses, err := s.fg.Run(p.Pids()...)
	if err != nil {
		s.log.Print(err)
	}
	s.lastStatus = builtins.Settle(s, cmd.String(), statuses)
	if p.RightErr != nil {
		s.lastStatus = executor.ExitNotRun
	}
	return nil
}

// settle hands a started process to the job table or the foreground.
func (s *Shell) settle(cmd parser.Command, pid int) error {
	if cmd.Background {
		slot := s.jobs.Insert(pid, cmd.String(), jobctl.Running)
		fmt.Fprintf(s.stderr, "[%d] %d\n", slot, pid)
		s.lastStatus = 0
		return nil
	}

	statuses, err := s.fg.Run(pid)
	if err != nil {
		s.log.Print(err)
	}
	s.lastStatus = builtins.Settle(s, cmd.String(), statuses)
	return nil
}

func (s *Shell) spawnFailed(err error) error {
	var execErr *executor.ExecError
	switch {
	case executor.IsFatal(err):
		return err
	case errors.As(err, &execErr):
		s.reportExec(err)
		s.lastStatus = executor.ExitNotRun
	default:
		fmt.Fprintf(s.stderr, "myshell: %v\n", err)
		s.lastStatus = 1
	}
	return nil
}

func (s *Shell) reportExec(err error) {
	fmt.Fprintf(s.stderr, "Command execution error: %v\n", err)
}

func (s *Shell) release(guard *executor.Redirection) error {
	if err := guard.Release(); err != nil {
		return &executor.FatalError{Op: "restore descriptor", Err: err}
	}
	return nil
}
