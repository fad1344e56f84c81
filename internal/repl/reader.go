package repl

import (
	"os"

	"github.com/abiosoft/readline"
	"golang.org/x/term"
)

// Interactive reports whether stdin is a terminal.
func Interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// NewReader returns a line editor on the interpreter's stdin. The prompt and
// history are only used when stdin is a terminal; piped input is read
// silently, line by line.
func NewReader(prompt, historyFile string) (*readline.Instance, error) {
	interactive := Interactive()
	if !interactive {
		prompt = ""
		historyFile = ""
	}

	return readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		Stdin:           readline.NewCancelableStdin(os.Stdin),
		Stdout:          os.Stdout,
		Stderr:          os.Stderr,
		FuncIsTerminal: func() bool {
			return interactive
		},
	})
}
