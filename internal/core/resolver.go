package core

import (
	"errors"
	"fmt"
)

var ErrFolderNotFound = errors.New("folder not found")

// Resolve returns the entries to display for currentFolderID. Only direct
// children of the root are matched by name; an unknown name yields an
// empty list.
func Resolve(ft *Filetree, currentFolderID string) []Node {
	entries, err := Lookup(ft, currentFolderID)
	if err != nil {
		return []Node{}
	}
	return entries
}

// Lookup is Resolve with an explicit not-found outcome.
func Lookup(ft *Filetree, currentFolderID string) ([]Node, error) {
	if currentFolderID == RootID {
		return ft.Root(), nil
	}
	if folder := findFolder(ft.root, currentFolderID); folder != nil {
		return folder.Contents(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrFolderNotFound, currentFolderID)
}

// ResolvePath walks every breadcrumb after the root label, so folders at
// any depth can be reached.
func ResolvePath(ft *Filetree, breadcrumbs []string) ([]Node, error) {
	level := ft.root
	if len(breadcrumbs) <= 1 {
		return ft.Root(), nil
	}
	for _, name := range breadcrumbs[1:] {
		folder := findFolder(level, name)
		if folder == nil {
			return nil, fmt.Errorf("%w: %q", ErrFolderNotFound, name)
		}
		level = folder.contents
	}
	out := make([]Node, len(level))
	copy(out, level)
	return out, nil
}

func findFolder(level []Node, name string) *Folder {
	for _, n := range level {
		if folder, ok := n.(*Folder); ok && folder.name == name {
			return folder
		}
	}
	return nil
}
