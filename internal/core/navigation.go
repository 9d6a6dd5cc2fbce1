package core

import "strings"

const (
	// RootID identifies the top-level folder.
	RootID = "root"

	DefaultRootLabel = "My Drive"

	trailSeparator = " > "

	// UploadNotice stands in for the upload flow, which does not exist.
	UploadNotice = "Upload functionality not implemented in this demo."
)

// State tracks where a view has navigated. It records the intent to
// navigate; whether a breadcrumb names a real folder is left to the resolver.
//
// The breadcrumb list always starts with the root label and is never empty.
// State is not safe for concurrent use.
type State struct {
	breadcrumbs     []string
	currentFolderID string
}

func NewState(rootLabel string) *State {
	if rootLabel == "" {
		rootLabel = DefaultRootLabel
	}
	return &State{breadcrumbs: []string{rootLabel}, currentFolderID: RootID}
}

// Open navigates into folderName without checking that it exists.
func (s *State) Open(folderName string) {
	s.breadcrumbs = append(s.breadcrumbs, folderName)
	s.currentFolderID = folderName
}

// Back drops the last breadcrumb. At the root it does nothing and
// reports false. Landing on a crumb equal to the root label returns to
// the root, even when that crumb is a folder sharing the label's name.
func (s *State) Back() bool {
	if !s.CanGoBack() {
		return false
	}
	s.breadcrumbs = s.breadcrumbs[:len(s.breadcrumbs)-1]
	if last := s.breadcrumbs[len(s.breadcrumbs)-1]; last == s.RootLabel() {
		s.currentFolderID = RootID
	} else {
		s.currentFolderID = last
	}
	return true
}

func (s *State) CanGoBack() bool {
	return len(s.breadcrumbs) > 1
}

func (s *State) CurrentFolderID() string {
	return s.currentFolderID
}

func (s *State) RootLabel() string {
	return s.breadcrumbs[0]
}

// Breadcrumbs returns a copy of the path from the root label to the
// current folder.
func (s *State) Breadcrumbs() []string {
	out := make([]string, len(s.breadcrumbs))
	copy(out, s.breadcrumbs)
	return out
}

// Trail renders the breadcrumbs the way the toolbar shows them.
func (s *State) Trail() string {
	return strings.Join(s.breadcrumbs, trailSeparator)
}

func (s *State) Clone() *State {
	return &State{breadcrumbs: s.Breadcrumbs(), currentFolderID: s.currentFolderID}
}
