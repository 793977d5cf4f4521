package notes

import "context"

// Repository is the persistence boundary consumed by the use cases.
// Implementations may block on I/O; callers run them off the state-owning goroutine.
type Repository interface {
	// InsertOrUpdate upserts by ID when the note is persisted, otherwise assigns a fresh ID.
	InsertOrUpdate(ctx context.Context, note Note) (NoteID, error)
	// Delete removes the note. Deleting an unknown note is not an error.
	Delete(ctx context.Context, note Note) error
	// GetByID reports false when no note exists for id.
	GetByID(ctx context.Context, id NoteID) (Note, bool, error)
	GetAll(ctx context.Context) ([]Note, error)
}
