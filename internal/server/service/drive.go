package service

import (
	"errors"
	"fmt"
	"log/slog"

	"drive/internal/core"
	"drive/internal/server/metrics"
	"drive/internal/server/session"
	"drive/internal/theme"
)

// Sentinel errors for the service layer.
var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrFolderNotFound     = errors.New("folder not found")
	ErrUploadNotSupported = errors.New("upload not supported")
)

// UploadNotice is shown when the user presses "New".
const UploadNotice = core.UploadNotice

// Entry is one item of a folder listing.
type Entry struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
	Link string `json:"link,omitempty"`
}

// View is everything a rendering surface needs to paint the drive.
type View struct {
	SessionID     string      `json:"-"`
	RootLabel     string      `json:"root_label"`
	CurrentFolder string      `json:"current_folder"`
	Breadcrumbs   []string    `json:"breadcrumbs"`
	Trail         string      `json:"trail"`
	CanGoBack     bool        `json:"can_go_back"`
	Resolved      bool        `json:"resolved"`
	Entries       []Entry     `json:"entries"`
	Theme         theme.Theme `json:"theme"`
	Notice        string      `json:"notice,omitempty"`
}

// Options select how folder names are resolved.
type Options struct {
	// Strict validates a folder at open time and refuses unknown names
	// instead of showing an empty listing.
	Strict bool
	// Nested resolves the full breadcrumb path rather than only direct
	// children of the root.
	Nested bool
}

// DriveService contains the navigation logic shared by every surface.
type DriveService struct {
	tree     *core.Filetree
	sessions *session.Store
	opts     Options
}

// NewDriveService creates a new drive service.
func NewDriveService(tree *core.Filetree, sessions *session.Store, opts Options) *DriveService {
	files, folders := tree.Count()
	metrics.SetTreeSize(files, folders)

	return &DriveService{
		tree:     tree,
		sessions: sessions,
		opts:     opts,
	}
}

// Tree returns the immutable tree being browsed.
func (s *DriveService) Tree() *core.Filetree {
	return s.tree
}

// SessionCount reports the number of live sessions.
func (s *DriveService) SessionCount() int {
	return s.sessions.Count()
}

// StartSession opens a new view at the root.
func (s *DriveService) StartSession(t theme.Theme) (*View, error) {
	sess, err := s.sessions.Create(t)
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	metrics.SetSessionsActive(s.sessions.Count())

	slog.Debug("session started", "theme", t)
	return s.render(sess), nil
}

// View returns the current view and consumes any pending notice.
func (s *DriveService) View(id string) (*View, error) {
	var notice string
	sess, err := s.sessions.Update(id, func(sess *session.Session) error {
		notice = sess.Notice
		sess.Notice = ""
		return nil
	})
	if err != nil {
		return nil, mapSessionError(err)
	}

	v := s.render(sess)
	v.Notice = notice
	return v, nil
}

// Open navigates into folderName. Without Strict the name is taken on
// trust and an unknown folder shows as empty.
func (s *DriveService) Open(id, folderName string) (*View, error) {
	sess, err := s.sessions.Update(id, func(sess *session.Session) error {
		if s.opts.Strict {
			target := append(sess.Nav.Breadcrumbs(), folderName)
			if _, err := s.lookup(target); err != nil {
				return fmt.Errorf("%w: %q", ErrFolderNotFound, folderName)
			}
		}
		sess.Nav.Open(folderName)
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrFolderNotFound) {
			metrics.RecordUnresolvedFolder()
			slog.Info("refused to open unknown folder", "folder", folderName)
		}
		return nil, mapSessionError(err)
	}

	metrics.RecordNavigation("open")
	return s.render(sess), nil
}

// Back returns to the previous folder. At the root it is a no-op.
func (s *DriveService) Back(id string) (*View, error) {
	moved := false
	sess, err := s.sessions.Update(id, func(sess *session.Session) error {
		moved = sess.Nav.Back()
		return nil
	})
	if err != nil {
		return nil, mapSessionError(err)
	}

	if moved {
		metrics.RecordNavigation("back")
	}
	return s.render(sess), nil
}

// ToggleTheme flips between light and dark.
func (s *DriveService) ToggleTheme(id string) (*View, error) {
	sess, err := s.sessions.Update(id, func(sess *session.Session) error {
		sess.Theme = sess.Theme.Toggle()
		return nil
	})
	if err != nil {
		return nil, mapSessionError(err)
	}

	metrics.RecordThemeToggle(string(sess.Theme))
	return s.render(sess), nil
}

// Upload is a placeholder: it queues the notice on the session and
// always reports ErrUploadNotSupported.
func (s *DriveService) Upload(id string) error {
	_, err := s.sessions.Update(id, func(sess *session.Session) error {
		sess.Notice = UploadNotice
		return nil
	})
	if err != nil {
		return mapSessionError(err)
	}
	return ErrUploadNotSupported
}

func (s *DriveService) lookup(breadcrumbs []string) ([]core.Node, error) {
	if s.opts.Nested {
		return core.ResolvePath(s.tree, breadcrumbs)
	}
	id := core.RootID
	if len(breadcrumbs) > 1 {
		id = breadcrumbs[len(breadcrumbs)-1]
	}
	return core.Lookup(s.tree, id)
}

func (s *DriveService) render(sess *session.Session) *View {
	crumbs := sess.Nav.Breadcrumbs()

	nodes, err := s.lookup(crumbs)
	resolved := err == nil
	if !resolved {
		metrics.RecordUnresolvedFolder()
		nodes = nil
	}

	entries := make([]Entry, 0, len(nodes))
	for _, n := range nodes {
		e := Entry{Kind: string(n.Kind()), Name: n.Name()}
		if f, ok := n.(*core.File); ok {
			e.Link = f.Link()
		}
		entries = append(entries, e)
	}

	return &View{
		SessionID:     sess.ID,
		RootLabel:     sess.Nav.RootLabel(),
		CurrentFolder: sess.Nav.CurrentFolderID(),
		Breadcrumbs:   crumbs,
		Trail:         sess.Nav.Trail(),
		CanGoBack:     sess.Nav.CanGoBack(),
		Resolved:      resolved,
		Entries:       entries,
		Theme:         sess.Theme,
	}
}

func mapSessionError(err error) error {
	if errors.Is(err, session.ErrNotFound) {
		return ErrSessionNotFound
	}
	return err
}
