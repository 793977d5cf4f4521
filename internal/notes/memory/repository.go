// Package memory provides a map-backed notes.Repository for tests and ephemeral runs.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/rifat0153/cleannotes/internal/notes"
)

var _ notes.Repository = (*Repository)(nil)

// Repository keeps notes in process memory.
type Repository struct {
	mu     sync.RWMutex
	notes  map[notes.NoteID]notes.Note
	lastID notes.NoteID
}

// NewRepository creates an empty repository.
func NewRepository() *Repository {
	return &Repository{
		notes: make(map[notes.NoteID]notes.Note),
	}
}

// InsertOrUpdate assigns the next ID to unsaved notes and overwrites saved ones.
func (r *Repository) InsertOrUpdate(ctx context.Context, note notes.Note) (notes.NoteID, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if !note.IsPersisted() {
		r.lastID++
		note.ID = r.lastID
	} else if note.ID > r.lastID {
		r.lastID = note.ID
	}
	r.notes[note.ID] = note

	return note.ID, nil
}

func (r *Repository) Delete(ctx context.Context, note notes.Note) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.notes, note.ID)
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id notes.NoteID) (notes.Note, bool, error) {
	if err := ctx.Err(); err != nil {
		return notes.Note{}, false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	note, exists := r.notes[id]
	return note, exists, nil
}

// GetAll returns a copy of every note ordered by ID.
func (r *Repository) GetAll(ctx context.Context) ([]notes.Note, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]notes.Note, 0, len(r.notes))
	for _, note := range r.notes {
		all = append(all, note)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	return all, nil
}
