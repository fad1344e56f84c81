package parser

import (
	"strings"

	"github.com/anmitsu/go-shlex"
)

// Kind is the execution topology of a command.
type Kind int

const (
	None Kind = iota
	Input
	Output
	Pipe
)

func (k Kind) String() string {
	switch k {
	case Input:
		return "input-redirect"
	case Output:
		return "output-redirect"
	case Pipe:
		return "pipe"
	default:
		return "plain"
	}
}

// Command is one parsed input line.
type Command struct {
	// Args is the argument vector; for pipes it holds the full token list.
	Args       []string
	Background bool

	Kind Kind
	// File is the redirect target for Input and Output.
	File string
	// Left and Right are the two sides of a Pipe.
	Left, Right []string
}

// Empty reports whether the line contained no command.
func (c Command) Empty() bool {
	return len(c.Args) == 0
}

// String rebuilds a display form of the command for job listings.
func (c Command) String() string {
	s := strings.Join(c.Args, " ")
	switch c.Kind {
	case Input:
		s += " < " + c.File
	case Output:
		s += " > " + c.File
	}
	if c.Background {
		s += " &"
	}
	return s
}

// Tokenize splits a line into whitespace separated words. Quoted words are
// kept together but nothing is expanded.
func Tokenize(line string) ([]string, error) {
	return shlex.Split(line, true)
}

// Parse tokenizes the line, strips a trailing & and classifies the rest.
func Parse(line string) (Command, error) {
	tokens, err := Tokenize(line)
	if err != nil {
		return Command{}, err
	}

	background := false
	if len(tokens) > 0 && tokens[len(tokens)-1] == "&" {
		tokens = tokens[:len(tokens)-1]
		background = true
	}

	cmd := Classify(tokens)
	cmd.Background = background
	return cmd, nil
}

// Classify picks the topology for args. Only the first marker is honored and
// lines with fewer than three tokens are never scanned.
func Classify(args []string) Command {
	if len(args) < 3 {
		return Command{Args: args}
	}

	marker := -1
	for i, tok := range args {
		if tok == "<" || tok == ">" || tok == "|" {
			marker = i
			break
		}
	}
	if marker == -1 {
		return Command{Args: args}
	}

	last := len(args) - 1
	switch args[marker] {
	case "|":
		return Command{
			Kind:  Pipe,
			Args:  args,
			Left:  args[:marker],
			Right: args[marker+1:],
		}
	case ">":
		return Command{Kind: Output, File: args[last], Args: without(args, marker, last)}
	default:
		return Command{Kind: Input, File: args[last], Args: without(args, marker, last)}
	}
}

// without returns a copy of args minus positions i and j.
func without(args []string, i, j int) []string {
	out := make([]string, 0, len(args)-2)
	for k, a := range args {
		if k == i || k == j {
			continue
		}
		out = append(out, a)
	}
	return out
}
