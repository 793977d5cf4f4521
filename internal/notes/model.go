package notes

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidNote indicates that a note failed validation and cannot be persisted.
	ErrInvalidNote = errors.New("notes: invalid note")
	// ErrInvalidNoteID indicates that a note identifier is not a positive integer.
	ErrInvalidNoteID = errors.New("notes: invalid note id")
)

const reasonEmptyNote = "note title and content cannot both be empty"

// InvalidNoteError describes why a note was rejected.
type InvalidNoteError struct {
	Reason string
}

func (e *InvalidNoteError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidNote.Error(), e.Reason)
}

// Is lets errors.Is match ErrInvalidNote.
func (e *InvalidNoteError) Is(target error) bool {
	return target == ErrInvalidNote
}

// NoteID identifies a persisted note. The zero value means the note has not been stored yet.
type NoteID int64

// NoNoteID is the sentinel callers pass when an edit session starts without an existing note.
const NoNoteID NoteID = -1

// NewNoteID validates raw input and returns a NoteID.
func NewNoteID(rawInput int64) (NoteID, error) {
	if rawInput <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidNoteID, rawInput)
	}
	return NoteID(rawInput), nil
}

// Int64 exposes the raw identifier.
func (id NoteID) Int64() int64 {
	return int64(id)
}

// Note is a single title/content/color record.
type Note struct {
	ID        NoteID
	Title     string
	Content   string
	Timestamp int64 // unix milliseconds, captured by the caller at save time
	Color     Color
}

// IsPersisted reports whether the repository has assigned an identifier.
func (n Note) IsPersisted() bool {
	return n.ID > 0
}

// Validate rejects notes whose title and content are both blank.
func Validate(note Note) error {
	if strings.TrimSpace(note.Title) == "" && strings.TrimSpace(note.Content) == "" {
		return &InvalidNoteError{Reason: reasonEmptyNote}
	}
	return nil
}
