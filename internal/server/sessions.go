package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rifat0153/cleannotes/internal/editor"
	"github.com/rifat0153/cleannotes/internal/notes"
	"go.uber.org/zap"
)

var errMissingSessionUseCases = errors.New("session registry requires note use cases")

// IDProvider issues opaque identifiers for edit sessions.
type IDProvider interface {
	NewID() (string, error)
}

type uuidProvider struct{}

// NewUUIDProvider constructs an IDProvider that issues UUIDv7 identifiers.
func NewUUIDProvider() IDProvider {
	return &uuidProvider{}
}

func (p *uuidProvider) NewID() (string, error) {
	value, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return value.String(), nil
}

// SessionRegistryConfig describes the dependencies shared by every edit session.
type SessionRegistryConfig struct {
	UseCases    notes.UseCases
	IDProvider  IDProvider
	Clock       func() time.Time
	Logger      *zap.Logger
	EventBuffer int
}

// SessionRegistry owns the edit sessions opened over HTTP. Sessions outlive the
// request that created them and end on Close or CloseAll.
type SessionRegistry struct {
	config   SessionRegistryConfig
	mu       sync.RWMutex
	sessions map[string]*editor.Session
}

func NewSessionRegistry(cfg SessionRegistryConfig) (*SessionRegistry, error) {
	if !cfg.UseCases.Configured() {
		return nil, errMissingSessionUseCases
	}
	if cfg.IDProvider == nil {
		cfg.IDProvider = NewUUIDProvider()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &SessionRegistry{
		config:   cfg,
		sessions: make(map[string]*editor.Session),
	}, nil
}

// Open starts a session for noteID (NoNoteID for a new note) and returns its handle.
func (r *SessionRegistry) Open(noteID notes.NoteID) (string, *editor.Session, error) {
	sessionID, err := r.config.IDProvider.NewID()
	if err != nil {
		return "", nil, err
	}
	session := editor.NewSession(context.Background(), editor.SessionConfig{
		UseCases:    r.config.UseCases,
		NoteID:      noteID,
		Clock:       r.config.Clock,
		Logger:      r.config.Logger.With(zap.String("session_id", sessionID)),
		EventBuffer: r.config.EventBuffer,
	})

	r.mu.Lock()
	r.sessions[sessionID] = session
	r.mu.Unlock()
	return sessionID, session, nil
}

func (r *SessionRegistry) Get(sessionID string) (*editor.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[sessionID]
	return session, ok
}

// Close cancels and forgets one session. It reports whether the session existed.
func (r *SessionRegistry) Close(sessionID string) bool {
	r.mu.Lock()
	session, ok := r.sessions[sessionID]
	delete(r.sessions, sessionID)
	r.mu.Unlock()
	if ok {
		session.Close()
	}
	return ok
}

// CloseAll cancels every session and waits for their background work to return.
func (r *SessionRegistry) CloseAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*editor.Session)
	r.mu.Unlock()
	for _, session := range sessions {
		session.Close()
	}
	for _, session := range sessions {
		session.Wait()
	}
}

func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
