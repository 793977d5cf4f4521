// Package editor holds the add/edit note screen state machine.
package editor

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rifat0153/cleannotes/internal/notes"
	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
)

const (
	fallbackValidationMessage = "Unable to save note"
	fieldNoteID               = "note_id"
)

// SessionConfig describes the dependencies of an edit session.
type SessionConfig struct {
	UseCases notes.UseCases
	// NoteID selects the note to hydrate from; NoNoteID (or zero) starts a new note.
	NoteID      notes.NoteID
	Clock       func() time.Time
	Random      *rand.Rand
	Logger      *zap.Logger
	EventBuffer int
}

// Session is the in-memory state of one add/edit screen.
//
// Hydration and saves run on background goroutines. The mutex only keeps field access
// memory safe; it does not order events against hydration. A SaveNote dispatched before
// Hydrated() is closed persists whatever the fields hold at that moment, which for an
// existing note means the blank placeholders and no bound ID.
type Session struct {
	useCases notes.UseCases
	clock    func() time.Time
	logger   *zap.Logger

	mu      sync.Mutex
	title   TextFieldState
	content TextFieldState
	color   notes.Color
	noteID  notes.NoteID

	ctx      context.Context
	cancel   context.CancelFunc
	tasks    conc.WaitGroup
	events   *EventBus
	changes  chan struct{}
	hydrated chan struct{}
}

// NewSession builds a session in its "new note" configuration and starts hydration
// when cfg.NoteID names a stored note. Cancelling ctx tears the session down.
func NewSession(ctx context.Context, cfg SessionConfig) *Session {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	sessionCtx, cancel := context.WithCancel(ctx)
	session := &Session{
		useCases: cfg.UseCases,
		clock:    clock,
		logger:   logger,
		title:    newTextField(TitleHint),
		content:  newTextField(ContentHint),
		color:    notes.RandomColor(cfg.Random),
		ctx:      sessionCtx,
		cancel:   cancel,
		events:   NewEventBus(cfg.EventBuffer),
		changes:  make(chan struct{}, 1),
		hydrated: make(chan struct{}),
	}

	if cfg.NoteID == notes.NoNoteID || cfg.NoteID <= 0 {
		close(session.hydrated)
		return session
	}

	logger.Debug("hydrating edit session", zap.Int64(fieldNoteID, cfg.NoteID.Int64()))
	session.tasks.Go(func() {
		defer close(session.hydrated)
		session.hydrate(cfg.NoteID)
	})
	return session
}

func (s *Session) hydrate(id notes.NoteID) {
	note, found, err := s.useCases.GetNote.Execute(s.ctx, id)
	if err != nil {
		s.logger.Warn("edit session hydration failed", zap.Int64(fieldNoteID, id.Int64()), zap.Error(err))
		return
	}
	if !found {
		s.logger.Debug("edit session note not found", zap.Int64(fieldNoteID, id.Int64()))
		return
	}
	if s.ctx.Err() != nil {
		return
	}

	s.mu.Lock()
	s.noteID = note.ID
	s.title.Text = note.Title
	s.title.HintVisible = false
	s.content.Text = note.Content
	s.content.HintVisible = false
	s.color = note.Color
	s.mu.Unlock()

	s.notifyChanged()
}

// Dispatch applies an event. Field events mutate state synchronously; SaveNote captures
// the candidate note now and persists it in the background.
func (s *Session) Dispatch(event Event) {
	switch e := event.(type) {
	case EnteredTitle:
		s.mutate(func() { s.title.Text = e.Value })
	case ChangeTitleFocus:
		s.mutate(func() { s.title.HintVisible = HintVisible(e.Focused, s.title.Text) })
	case EnteredContent:
		s.mutate(func() { s.content.Text = e.Value })
	case ChangeContentFocus:
		s.mutate(func() { s.content.HintVisible = HintVisible(e.Focused, s.content.Text) })
	case ChangeColor:
		s.mutate(func() { s.color = e.Color })
	case SaveNote:
		s.save()
	}
}

func (s *Session) mutate(apply func()) {
	s.mu.Lock()
	apply()
	s.mu.Unlock()
	s.notifyChanged()
}

func (s *Session) save() {
	s.mu.Lock()
	candidate := notes.Note{
		ID:        s.noteID,
		Title:     s.title.Text,
		Content:   s.content.Text,
		Timestamp: s.clock().UnixMilli(),
		Color:     s.color,
	}
	s.mu.Unlock()

	s.tasks.Go(func() {
		id, err := s.useCases.AddNote.Execute(s.ctx, candidate)
		if s.ctx.Err() != nil {
			return
		}

		var invalid *notes.InvalidNoteError
		switch {
		case err == nil:
			s.logger.Info("note saved", zap.Int64(fieldNoteID, id.Int64()))
			s.events.Publish(UiEvent{Kind: UiEventSaved, NoteID: id})
		case errors.As(err, &invalid):
			message := invalid.Reason
			if message == "" {
				message = fallbackValidationMessage
			}
			s.events.Publish(UiEvent{Kind: UiEventValidationFailed, Message: message})
		default:
			s.logger.Error("note save failed", zap.Int64(fieldNoteID, candidate.ID.Int64()), zap.Error(err))
		}
	})
}

func (s *Session) notifyChanged() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}

// State returns a snapshot of the current fields.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Title:   s.title,
		Content: s.content,
		Color:   s.color,
		NoteID:  s.noteID,
	}
}

// StateChanges signals after every mutation. Bursts coalesce into one pending signal.
func (s *Session) StateChanges() <-chan struct{} {
	return s.changes
}

// Events attaches a terminal-event subscriber. See EventBus for delivery rules.
func (s *Session) Events(ctx context.Context) (<-chan UiEvent, func()) {
	return s.events.Subscribe(ctx)
}

// Hydrated is closed once the initial note lookup has finished (or was not needed).
func (s *Session) Hydrated() <-chan struct{} {
	return s.hydrated
}

// Wait blocks until all background work started by the session has returned.
func (s *Session) Wait() {
	s.tasks.Wait()
}

// Close abandons in-flight work. Results arriving after Close are discarded.
func (s *Session) Close() {
	s.cancel()
}
