// Package session keeps the tag options dialogs opened through the API.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hmi-editor/backend/internal/tagoptions"
	"github.com/sirupsen/logrus"
)

// MaxSessions limits concurrently open dialogs
const MaxSessions = 32

// SessionMaxAge is how long an idle dialog is kept before cleanup
const SessionMaxAge = 30 * time.Minute

// SessionKeepAliveWindow protects dialogs that were used recently from cleanup
const SessionKeepAliveWindow = 5 * time.Minute

// ErrNotFound is returned for unknown or closed sessions.
var ErrNotFound = errors.New("session not found")

// Target names the project tags a dialog edits. The confirmed result is
// written back to them.
type Target struct {
	DeviceID string   `json:"deviceId"`
	TagIDs   []string `json:"tagIds"`
}

// Session is one open dialog.
type Session struct {
	ID           string             `json:"id"`
	Target       *Target            `json:"target,omitempty"`
	CreatedAt    time.Time          `json:"createdAt"`
	LastAccessed time.Time          `json:"lastAccessed"`
	Dialog       *tagoptions.Dialog `json:"-"`
}

// Manager handles open dialog sessions.
type Manager struct {
	sessions    map[string]*Session
	mu          sync.RWMutex
	source      tagoptions.ScriptSource
	log         *logrus.Entry
	maxSessions int
}

// NewManager creates a session manager whose dialogs read scripts from
// source. A maxSessions of zero or less uses MaxSessions.
func NewManager(source tagoptions.ScriptSource, maxSessions int, log *logrus.Entry) *Manager {
	if maxSessions <= 0 {
		maxSessions = MaxSessions
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Manager{
		sessions:    make(map[string]*Session),
		source:      source,
		log:         log,
		maxSessions: maxSessions,
	}
}

// Open starts a dialog for data. When the manager is full the least
// recently used dialog is closed first.
func (m *Manager) Open(data tagoptions.Data, target *Target) (*Session, error) {
	id := uuid.New().String()
	d, err := tagoptions.Open(m.source, data, m.log.WithField("session", shortID(id)))
	if err != nil {
		return nil, err
	}

	now := time.Now()
	s := &Session{
		ID:           id,
		Target:       target,
		CreatedAt:    now,
		LastAccessed: now,
		Dialog:       d,
	}

	m.mu.Lock()
	evicted := m.evictIfNeeded()
	m.sessions[id] = s
	m.mu.Unlock()

	for _, old := range evicted {
		old.Dialog.Close()
		m.log.Infof("closed idle dialog %s to make room", shortID(old.ID))
	}
	return s, nil
}

// evictIfNeeded removes the oldest sessions until there is room for one
// more. The caller closes the returned dialogs after releasing the lock.
func (m *Manager) evictIfNeeded() []*Session {
	var evicted []*Session
	for len(m.sessions) >= m.maxSessions {
		var oldest *Session
		for _, s := range m.sessions {
			if oldest == nil || s.LastAccessed.Before(oldest.LastAccessed) {
				oldest = s
			}
		}
		delete(m.sessions, oldest.ID)
		evicted = append(evicted, oldest)
	}
	return evicted
}

// Get returns an open session. Sessions whose dialog was confirmed are
// dropped on access.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if s.Dialog.Closed() {
		m.remove(id)
		return nil, false
	}
	return s, true
}

// Touch updates the LastAccessed timestamp so the session survives cleanup.
func (m *Manager) Touch(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return false
	}
	s.LastAccessed = time.Now()
	return true
}

// Close cancels the dialog of a session and forgets it.
func (m *Manager) Close(id string) error {
	s := m.remove(id)
	if s == nil {
		return ErrNotFound
	}
	s.Dialog.Cancel()
	return nil
}

func (m *Manager) remove(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil
	}
	delete(m.sessions, id)
	return s
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CleanupOldSessions closes dialogs idle for longer than maxAge, keeping
// those used within SessionKeepAliveWindow. It returns how many were closed.
func (m *Manager) CleanupOldSessions(maxAge time.Duration) int {
	now := time.Now()
	cutoff := now.Add(-maxAge)
	keepAliveCutoff := now.Add(-SessionKeepAliveWindow)

	var expired []*Session
	m.mu.Lock()
	for id, s := range m.sessions {
		if !s.Dialog.Closed() {
			if s.LastAccessed.After(keepAliveCutoff) || !s.LastAccessed.Before(cutoff) {
				continue
			}
		}
		delete(m.sessions, id)
		expired = append(expired, s)
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.Dialog.Close()
		m.log.Debugf("cleaned up dialog %s (last accessed %s ago)",
			shortID(s.ID), now.Sub(s.LastAccessed).Round(time.Second))
	}
	return len(expired)
}

// CloseAll closes every open dialog.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range all {
		s.Dialog.Close()
	}
}

// shortID truncates an ID for logging
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
