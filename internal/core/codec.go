package core

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/blake2b"
)

var ErrInvalidNode = errors.New("invalid node")

type fileJSON struct {
	Kind Kind   `json:"kind"`
	Name string `json:"name"`
	Link string `json:"link"`
}

type folderJSON struct {
	Kind     Kind   `json:"kind"`
	Name     string `json:"name"`
	Contents []Node `json:"contents"`
}

// rawNode accepts either variant while decoding.
type rawNode struct {
	Kind     Kind      `json:"kind"`
	Name     string    `json:"name"`
	Link     string    `json:"link"`
	Contents []rawNode `json:"contents"`
}

func (f *File) MarshalJSON() ([]byte, error) {
	return json.Marshal(fileJSON{Kind: KindFile, Name: f.name, Link: f.link})
}

func (d *Folder) MarshalJSON() ([]byte, error) {
	contents := d.contents
	if contents == nil {
		contents = []Node{}
	}
	return json.Marshal(folderJSON{Kind: KindFolder, Name: d.name, Contents: contents})
}

// EncodeTree writes the root sequence as a JSON array.
func (ft *Filetree) EncodeTree(w io.Writer) error {
	root := ft.root
	if root == nil {
		root = []Node{}
	}
	if err := json.NewEncoder(w).Encode(root); err != nil {
		return fmt.Errorf("failed to encode tree: %w", err)
	}
	return nil
}

// Fingerprint is a stable digest of the tree's JSON form.
func (ft *Filetree) Fingerprint() (string, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", fmt.Errorf("failed to create hasher: %w", err)
	}
	if err := ft.EncodeTree(h); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// DecodeTree reads a JSON array of nodes.
func DecodeTree(r io.Reader) (*Filetree, error) {
	var raw []rawNode
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode tree: %w", err)
	}
	nodes, err := buildNodes(raw, "")
	if err != nil {
		return nil, err
	}
	return NewFiletree(nodes...), nil
}

// LoadTreeFile decodes the tree stored at path.
func LoadTreeFile(path string) (*Filetree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open tree file %s: %w", path, err)
	}
	defer f.Close()

	return DecodeTree(f)
}

func buildNodes(raw []rawNode, parent string) ([]Node, error) {
	nodes := make([]Node, 0, len(raw))
	for i, r := range raw {
		if r.Name == "" {
			return nil, fmt.Errorf("%w: entry %d in %q has no name", ErrInvalidNode, i, parent)
		}
		switch r.Kind {
		case KindFile:
			nodes = append(nodes, NewFile(r.Name, r.Link))
		case KindFolder:
			children, err := buildNodes(r.Contents, r.Name)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, NewFolder(r.Name, children...))
		default:
			return nil, fmt.Errorf("%w: %q has unknown kind %q", ErrInvalidNode, r.Name, r.Kind)
		}
	}
	return nodes, nil
}
