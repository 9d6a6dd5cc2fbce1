package core

// Filetree is the immutable root sequence of the drive.
type Filetree struct {
	root []Node
}

func NewFiletree(nodes ...Node) *Filetree {
	return &Filetree{root: nodes}
}

// SampleFiletree returns the built-in demo drive.
func SampleFiletree() *Filetree {
	return NewFiletree(
		NewFolder("Documents",
			NewFile("Resume.pdf", "#"),
			NewFile("Cover Letter.docx", "#"),
		),
		NewFolder("Images",
			NewFile("Vacation.jpg", "#"),
			NewFile("Family.png", "#"),
		),
		NewFile("Project Plan.xlsx", "#"),
		NewFile("Meeting Notes.txt", "#"),
	)
}

// Root returns a copy of the top-level sequence in display order.
func (ft *Filetree) Root() []Node {
	out := make([]Node, len(ft.root))
	copy(out, ft.root)
	return out
}

// FlattenTree returns every node in depth-first display order.
func (ft *Filetree) FlattenTree() []Node {
	var nodes []Node
	var walk func([]Node)
	walk = func(level []Node) {
		for _, n := range level {
			nodes = append(nodes, n)
			if folder, ok := n.(*Folder); ok {
				walk(folder.contents)
			}
		}
	}
	walk(ft.root)
	return nodes
}

// Count reports the number of files and folders at every depth.
func (ft *Filetree) Count() (files, folders int) {
	for _, n := range ft.FlattenTree() {
		switch n.Kind() {
		case KindFile:
			files++
		case KindFolder:
			folders++
		}
	}
	return files, folders
}
