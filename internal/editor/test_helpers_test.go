package editor

import (
	"context"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/rifat0153/cleannotes/internal/notes"
	"github.com/rifat0153/cleannotes/internal/notes/memory"
	"go.uber.org/zap"
)

const eventTimeout = 2 * time.Second

var fixedNow = time.UnixMilli(1700000000123)

// gatedRepository holds lookups and writes until the matching gate is released.
type gatedRepository struct {
	*memory.Repository
	readGate  chan struct{}
	writeGate chan struct{}

	mu      sync.Mutex
	inserts int
}

func newGatedRepository() *gatedRepository {
	return &gatedRepository{Repository: memory.NewRepository()}
}

func (g *gatedRepository) GetByID(ctx context.Context, id notes.NoteID) (notes.Note, bool, error) {
	if err := waitGate(ctx, g.readGate); err != nil {
		return notes.Note{}, false, err
	}
	return g.Repository.GetByID(ctx, id)
}

func (g *gatedRepository) InsertOrUpdate(ctx context.Context, note notes.Note) (notes.NoteID, error) {
	if err := waitGate(ctx, g.writeGate); err != nil {
		return 0, err
	}
	g.mu.Lock()
	g.inserts++
	g.mu.Unlock()
	return g.Repository.InsertOrUpdate(ctx, note)
}

func (g *gatedRepository) insertCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inserts
}

func waitGate(ctx context.Context, gate chan struct{}) error {
	if gate == nil {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func newTestSession(t *testing.T, repository notes.Repository, noteID notes.NoteID) *Session {
	t.Helper()
	useCases, err := notes.NewUseCases(notes.UseCasesConfig{Repository: repository, Logger: zap.NewNop()})
	if err != nil {
		t.Fatalf("failed to build use cases: %v", err)
	}
	session := NewSession(context.Background(), SessionConfig{
		UseCases: useCases,
		NoteID:   noteID,
		Clock:    func() time.Time { return fixedNow },
		Random:   rand.New(rand.NewPCG(7, 11)),
		Logger:   zap.NewNop(),
	})
	t.Cleanup(session.Close)
	return session
}

func waitHydrated(t *testing.T, session *Session) {
	t.Helper()
	select {
	case <-session.Hydrated():
	case <-time.After(eventTimeout):
		t.Fatal("session did not finish hydrating")
	}
}

func receiveEvent(t *testing.T, stream <-chan UiEvent) UiEvent {
	t.Helper()
	select {
	case event, ok := <-stream:
		if !ok {
			t.Fatal("event stream closed unexpectedly")
		}
		return event
	case <-time.After(eventTimeout):
		t.Fatal("expected terminal event within deadline")
	}
	return UiEvent{}
}

func expectNoEvent(t *testing.T, stream <-chan UiEvent) {
	t.Helper()
	select {
	case event, ok := <-stream:
		if ok {
			t.Fatalf("did not expect an event, got %#v", event)
		}
	case <-time.After(100 * time.Millisecond):
	}
}
