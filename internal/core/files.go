package core

// Kind tags the two node variants.
type Kind string

const (
	KindFile   Kind = "file"
	KindFolder Kind = "folder"
)

type Node interface {
	Name() string
	Kind() Kind
}

// File is a leaf that points at content it does not own.
type File struct {
	name string
	link string
}

// Folder owns its contents exclusively.
type Folder struct {
	name     string
	contents []Node
}

func NewFile(name, link string) *File {
	return &File{name: name, link: link}
}

func NewFolder(name string, contents ...Node) *Folder {
	return &Folder{name: name, contents: contents}
}

func (f *File) Name() string {
	return f.name
}

func (f *File) Kind() Kind {
	return KindFile
}

func (f *File) Link() string {
	return f.link
}

func (d *Folder) Name() string {
	return d.name
}

func (d *Folder) Kind() Kind {
	return KindFolder
}

// Contents returns a copy of the folder's children in display order.
func (d *Folder) Contents() []Node {
	out := make([]Node, len(d.contents))
	copy(out, d.contents)
	return out
}
