// Package shell is a line-oriented drive browser for the terminal.
package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"drive/internal/core"
	"drive/internal/theme"
)

const helpText = `commands:
  ls              list the current folder
  open <folder>   open a folder (alias: cd)
  back            go up one level (alias: ..)
  pwd             print the breadcrumb trail
  theme           toggle light/dark
  upload          start an upload (alias: new)
  quit            leave (alias: exit)
`

type Shell struct {
	tree  *core.Filetree
	nav   *core.State
	theme theme.Theme
	out   io.Writer
}

func New(tree *core.Filetree, rootLabel string, t theme.Theme, out io.Writer) *Shell {
	return &Shell{
		tree:  tree,
		nav:   core.NewState(rootLabel),
		theme: t,
		out:   out,
	}
}

// Run reads commands from in until quit or EOF.
func (s *Shell) Run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintf(s.out, "%s $ ", s.nav.Trail())
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}

		cmd, err := ParseCommand(scanner.Text())
		if err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) && ve.Arg == "<command>" {
				continue
			}
			fmt.Fprintf(s.out, "error: %v\n", err)
			continue
		}
		if quit := s.Exec(cmd); quit {
			return nil
		}
	}
}

// Exec runs one command and reports whether the shell should exit.
func (s *Shell) Exec(cmd Command) bool {
	switch cmd.Op {
	case OpList:
		s.list()
	case OpOpen:
		s.nav.Open(cmd.Arg)
		s.list()
	case OpBack:
		if s.nav.Back() {
			s.list()
		} else {
			fmt.Fprintln(s.out, "already at the top")
		}
	case OpPwd:
		fmt.Fprintln(s.out, s.nav.Trail())
	case OpTheme:
		s.theme = s.theme.Toggle()
		fmt.Fprintf(s.out, "theme: %s\n", s.theme)
	case OpUpload:
		fmt.Fprintln(s.out, core.UploadNotice)
	case OpHelp:
		fmt.Fprint(s.out, helpText)
	case OpQuit:
		return true
	}
	return false
}

func (s *Shell) list() {
	entries := core.Resolve(s.tree, s.nav.CurrentFolderID())
	if len(entries) == 0 {
		fmt.Fprintln(s.out, "(empty)")
		return
	}
	for _, e := range entries {
		switch n := e.(type) {
		case *core.Folder:
			fmt.Fprintf(s.out, "[dir]  %s\n", n.Name())
		case *core.File:
			fmt.Fprintf(s.out, "[file] %s  %s\n", n.Name(), n.Link())
		}
	}
}
