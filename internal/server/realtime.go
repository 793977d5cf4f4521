package server

import (
	"context"
	"sync"
	"time"

	"github.com/rifat0153/cleannotes/internal/notes"
)

const (
	RealtimeEventNotesChanged = "notes-changed"
	realtimeEventHeartbeat    = "heartbeat"
	realtimeHeartbeatInterval = 25 * time.Second
)

// RealtimeMessage tells list screens which notes changed.
type RealtimeMessage struct {
	EventType string    `json:"event"`
	NoteIDs   []int64   `json:"note_ids"`
	Timestamp time.Time `json:"timestamp"`
}

// RealtimeDispatcher broadcasts note changes to every attached list stream.
// Slow subscribers miss messages rather than blocking writers.
type RealtimeDispatcher struct {
	mu          sync.RWMutex
	subscribers map[int64]*realtimeSubscriber
	nextID      int64
	bufferSize  int
	clock       func() time.Time
}

type realtimeSubscriber struct {
	id     int64
	stream chan RealtimeMessage
}

func NewRealtimeDispatcher() *RealtimeDispatcher {
	return &RealtimeDispatcher{
		subscribers: make(map[int64]*realtimeSubscriber),
		bufferSize:  16,
		clock:       time.Now,
	}
}

func (d *RealtimeDispatcher) Subscribe(ctx context.Context) (<-chan RealtimeMessage, func()) {
	subscriber := &realtimeSubscriber{
		stream: make(chan RealtimeMessage, d.bufferSize),
	}
	d.registerSubscriber(subscriber)
	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			d.unregisterSubscriber(subscriber.id)
		})
	}
	go func() {
		<-ctx.Done()
		cleanup()
	}()
	return subscriber.stream, cleanup
}

func (d *RealtimeDispatcher) Publish(message RealtimeMessage) {
	if message.EventType == "" {
		return
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, subscriber := range d.subscribers {
		select {
		case subscriber.stream <- message:
		default:
		}
	}
}

// NotesChanged publishes a notes-changed message for ids.
func (d *RealtimeDispatcher) NotesChanged(ids ...notes.NoteID) {
	noteIDs := make([]int64, 0, len(ids))
	for _, id := range ids {
		noteIDs = append(noteIDs, id.Int64())
	}
	d.Publish(RealtimeMessage{
		EventType: RealtimeEventNotesChanged,
		NoteIDs:   noteIDs,
		Timestamp: d.clock().UTC(),
	})
}

// ObserveRepository returns a repository that announces successful writes on d.
func (d *RealtimeDispatcher) ObserveRepository(repository notes.Repository) notes.Repository {
	return &observedRepository{Repository: repository, dispatcher: d}
}

type observedRepository struct {
	notes.Repository
	dispatcher *RealtimeDispatcher
}

func (r *observedRepository) InsertOrUpdate(ctx context.Context, note notes.Note) (notes.NoteID, error) {
	id, err := r.Repository.InsertOrUpdate(ctx, note)
	if err == nil {
		r.dispatcher.NotesChanged(id)
	}
	return id, err
}

func (r *observedRepository) Delete(ctx context.Context, note notes.Note) error {
	err := r.Repository.Delete(ctx, note)
	if err == nil && note.IsPersisted() {
		r.dispatcher.NotesChanged(note.ID)
	}
	return err
}

func (d *RealtimeDispatcher) registerSubscriber(subscriber *realtimeSubscriber) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	subscriber.id = d.nextID
	d.subscribers[subscriber.id] = subscriber
}

func (d *RealtimeDispatcher) unregisterSubscriber(subscriberID int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if subscriber, ok := d.subscribers[subscriberID]; ok {
		delete(d.subscribers, subscriberID)
		close(subscriber.stream)
	}
}
