package main

import (
	"fmt"
	"os"

	"drive/internal/core"
	"drive/internal/shell"
	"drive/internal/theme"
)

// usage: drive [tree.json]
func main() {
	args := os.Args[1:]
	if len(args) > 1 {
		fmt.Fprintln(os.Stderr, "usage: drive [tree.json]")
		os.Exit(2)
	}

	tree := core.SampleFiletree()
	if len(args) == 1 {
		loaded, err := core.LoadTreeFile(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading tree: %v\n", err)
			os.Exit(1)
		}
		tree = loaded
	}

	rootLabel := os.Getenv("ROOT_LABEL")
	t := theme.Resolve(os.Getenv("DRIVE_THEME"), "", theme.Light)

	sh := shell.New(tree, rootLabel, t, os.Stdout)
	fmt.Println("type 'help' for commands")
	if err := sh.Run(os.Stdin); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
