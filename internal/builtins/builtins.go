package builtins

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/Armaan1620/myshell/internal/jobctl"
	"github.com/fatih/color"
	"github.com/pborman/getopt/v2"
)

// Env is the part of the interpreter builtins may touch.
type Env interface {
	Stdout() io.Writer
	Stderr() io.Writer
	Jobs() *jobctl.Table
	Foreground() *jobctl.Foreground
	// Exit asks the interpreter to stop after the current command.
	Exit(code int)
}

// Builtin is a command run inside the interpreter process.
type Builtin interface {
	Main(env Env, args []string) int
}

// Func adapts a function to Builtin.
type Func func(env Env, args []string) int

func (f Func) Main(env Env, args []string) int {
	return f(env, args)
}

var _ Builtin = (Func)(nil)

// All holds the registered builtins by name.
var All = make(map[string]Builtin)

// Lookup returns the builtin for args[0], if any.
func Lookup(args []string) (Builtin, bool) {
	if len(args) == 0 {
		return nil, false
	}
	b, ok := All[args[0]]
	return b, ok
}

// Names lists the registered builtins in order.
func Names() []string {
	var names []string
	for name := range All {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var errColor = color.New(color.FgRed)

func fail(env Env, code int, msg string) int {
	errColor.Fprintln(env.Stderr(), msg)
	return code
}

// Cd changes the working directory, to $HOME without an argument.
func Cd(env Env, args []string) int {
	switch len(args) {
	case 1:
		home, err := os.UserHomeDir()
		if err != nil {
			return fail(env, 1, "Invalid path.")
		}
		args = append(args, home)
	case 2:
	default:
		return fail(env, 1, "cd: too many arguments")
	}

	if err := os.Chdir(args[1]); err != nil {
		return fail(env, 1, "Invalid path.")
	}
	return 0
}

// Pwd prints the working directory.
func Pwd(env Env, args []string) int {
	dir, err := os.Getwd()
	if err != nil {
		return fail(env, 1, fmt.Sprintf("pwd: %v", err))
	}
	fmt.Fprintln(env.Stdout(), dir)
	return 0
}

// Exit stops the interpreter, successfully unless a status is given.
func Exit(env Env, args []string) int {
	code := 0
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			fail(env, 2, fmt.Sprintf("exit: %s: numeric argument required", args[1]))
			n = 2
		}
		code = n
	}
	env.Exit(code)
	return code
}

// Fg resumes job N in the foreground.
func Fg(env Env, args []string) int {
	if len(args) != 2 {
		return fail(env, 2, "usage: fg N")
	}

	slot, err := strconv.Atoi(args[1])
	if err != nil {
		return fail(env, 1, "Invalid job number.")
	}
	job, err := env.Jobs().Get(slot)
	if err != nil {
		return fail(env, 1, "Invalid job number.")
	}

	statuses, err := env.Jobs().Resume(slot, env.Foreground())
	switch {
	case errors.Is(err, jobctl.ErrInvalidJob):
		return fail(env, 1, "Invalid job number.")
	case err != nil:
		return fail(env, 1, fmt.Sprintf("fg: %v", err))
	}
	return Settle(env, job.Cmd, statuses)
}

const rule = "--------------------------------------------------------"

// Jobs lists background jobs that are still alive.
func Jobs(env Env, args []string) int {
	opts := getopt.New()
	pidsOnly := opts.Bool('p', "list process IDs only")
	helpOpt := opts.BoolLong("help", 'h', "show help and exit")

	if err := opts.Getopt(args, nil); err != nil || *helpOpt || opts.NArgs() > 0 {
		w := env.Stderr()
		if err != nil {
			fmt.Fprintln(w, err)
		}
		fmt.Fprintln(w, "usage: jobs [-p]")
		fmt.Fprintln(w, "Display the status of background jobs.")
		fmt.Fprintln(w)
		opts.PrintOptions(w)
		return 2
	}

	jobs := env.Jobs().List()
	w := env.Stdout()
	if *pidsOnly {
		for _, job := range jobs {
			fmt.Fprintln(w, job.Pid)
		}
		return 0
	}

	fmt.Fprintln(w, rule)
	tw := tabwriter.NewWriter(w, 0, 8, 3, ' ', 0)
	fmt.Fprintln(tw, "Background jobs\tStatus\tPID\tCommand")
	for _, job := range jobs {
		fmt.Fprintf(tw, "[%d]\t%s\t%d\t%s\n", job.Slot, job.State, job.Pid, job.Cmd)
	}
	tw.Flush()
	fmt.Fprintln(w, rule)
	return 0
}

// Settle records the outcome of a foreground wait. Processes that stopped
// instead of exiting become jobs so fg can resume them. The result is the
// status code of the last process.
func Settle(env Env, cmd string, statuses []jobctl.Status) int {
	code := 0
	for _, st := range statuses {
		if st.Stopped() {
			slot := env.Jobs().Insert(st.Pid, cmd, jobctl.Stopped)
			fmt.Fprintf(env.Stderr(), "\n[%d] Stopped\t%d\t%s\n", slot, st.Pid, strings.TrimSpace(cmd))
		}
		code = st.Code()
	}
	return code
}

func init() {
	All["cd"] = Func(Cd)
	All["pwd"] = Func(Pwd)
	All["exit"] = Func(Exit)
	All["fg"] = Func(Fg)
	All["jobs"] = Func(Jobs)
}
