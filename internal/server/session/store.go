package session

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"drive/internal/core"
	"drive/internal/theme"
)

var ErrNotFound = errors.New("session not found")

const tokenLength = 32

// Session is one browser view: its navigation state, theme and a pending
// one-shot notice.
type Session struct {
	ID       string
	Nav      *core.State
	Theme    theme.Theme
	Notice   string
	LastSeen time.Time
}

func (s *Session) clone() *Session {
	c := *s
	c.Nav = s.Nav.Clone()
	return &c
}

// Store keeps sessions in memory. Callers only ever see copies; mutation
// goes through Update.
type Store struct {
	mu        sync.Mutex
	sessions  map[string]*Session
	rootLabel string
	now       func() time.Time
}

func NewStore(rootLabel string) *Store {
	return &Store{
		sessions:  make(map[string]*Session),
		rootLabel: rootLabel,
		now:       time.Now,
	}
}

// Create starts a session at the root.
func (st *Store) Create(t theme.Theme) (*Session, error) {
	id, err := generateSecureToken(tokenLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}

	sess := &Session{
		ID:       id,
		Nav:      core.NewState(st.rootLabel),
		Theme:    t,
		LastSeen: st.now(),
	}

	st.mu.Lock()
	st.sessions[id] = sess
	st.mu.Unlock()

	return sess.clone(), nil
}

func (st *Store) Get(id string) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	sess, ok := st.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	sess.LastSeen = st.now()
	return sess.clone(), nil
}

// Update runs fn against a working copy and commits it only when fn
// returns nil.
func (st *Store) Update(id string, fn func(*Session) error) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	sess, ok := st.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}

	work := sess.clone()
	if err := fn(work); err != nil {
		return nil, err
	}
	work.ID = sess.ID
	work.LastSeen = st.now()
	st.sessions[id] = work

	return work.clone(), nil
}

// Expire drops sessions not seen since cutoff and reports how many.
func (st *Store) Expire(cutoff time.Time) int {
	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for id, sess := range st.sessions {
		if sess.LastSeen.Before(cutoff) {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

func (st *Store) Count() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// generateSecureToken produces a cryptographically secure, URL-safe random string.
func generateSecureToken(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", fmt.Errorf("crypto/rand failure: %w", err)
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
