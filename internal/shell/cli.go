package shell

import (
	"fmt"
	"strings"
)

type ValidationError struct {
	Arg   string
	Cause string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid argument %q: %s", e.Arg, e.Cause)
}

type Op int

const (
	OpList Op = iota
	OpOpen
	OpBack
	OpPwd
	OpTheme
	OpUpload
	OpHelp
	OpQuit
)

var ops = map[string]Op{
	"ls":     OpList,
	"open":   OpOpen,
	"cd":     OpOpen,
	"back":   OpBack,
	"..":     OpBack,
	"pwd":    OpPwd,
	"theme":  OpTheme,
	"upload": OpUpload,
	"new":    OpUpload,
	"help":   OpHelp,
	"quit":   OpQuit,
	"exit":   OpQuit,
}

type Command struct {
	Op  Op
	Arg string
}

// ParseCommand reads one input line. Everything after "open" is the
// folder name, so names may contain spaces.
func ParseCommand(line string) (Command, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Command{}, &ValidationError{Arg: "<command>", Cause: "no command given"}
	}

	word, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	op, ok := ops[strings.ToLower(word)]
	if !ok {
		return Command{}, &ValidationError{Arg: word, Cause: "unknown command"}
	}

	if op == OpOpen {
		if rest == "" {
			return Command{}, &ValidationError{Arg: word, Cause: "folder name required"}
		}
		return Command{Op: op, Arg: rest}, nil
	}
	if rest != "" {
		return Command{}, &ValidationError{Arg: rest, Cause: "unexpected argument"}
	}
	return Command{Op: op}, nil
}
