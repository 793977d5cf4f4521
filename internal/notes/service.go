package notes

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"go.uber.org/zap"
)

var (
	errMissingRepository = errors.New("note repository is required")
	noOpLogger           = zap.NewNop()
)

type ServiceError struct {
	code string
	err  error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

func (e *ServiceError) Code() string {
	return e.code
}

const (
	opNewUseCases           = "notes.use_cases.new"
	opAddNote               = "notes.add_note"
	opDeleteNote            = "notes.delete_note"
	opGetNote               = "notes.get_note"
	opGetNotes              = "notes.get_notes"
	reasonMissingRepository = "missing_repository"
	reasonRepositoryFailed  = "repository_failed"
	fieldNoteID             = "note_id"
)

func newServiceError(operation, reason string, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &ServiceError{code: code, err: cause}
}

// UseCasesConfig describes the dependencies shared by every note use case.
type UseCasesConfig struct {
	Repository Repository
	Logger     *zap.Logger
}

// UseCases bundles the single-purpose note operations.
type UseCases struct {
	AddNote    AddNote
	DeleteNote DeleteNote
	GetNote    GetNote
	GetNotes   GetNotes
}

func NewUseCases(cfg UseCasesConfig) (UseCases, error) {
	if cfg.Repository == nil {
		return UseCases{}, newServiceError(opNewUseCases, reasonMissingRepository, errMissingRepository)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}

	base := useCase{repository: cfg.Repository, logger: logger}
	return UseCases{
		AddNote:    AddNote{base},
		DeleteNote: DeleteNote{base},
		GetNote:    GetNote{base},
		GetNotes:   GetNotes{base},
	}, nil
}

// Configured reports whether the bundle was built by NewUseCases.
func (u UseCases) Configured() bool {
	return u.AddNote.repository != nil
}

type useCase struct {
	repository Repository
	logger     *zap.Logger
}

func (u useCase) ready(operation string) error {
	if u.repository == nil {
		u.logError(operation, reasonMissingRepository, errMissingRepository)
		return newServiceError(operation, reasonMissingRepository, errMissingRepository)
	}
	return nil
}

func (u useCase) logError(operation, reason string, err error, fields ...zap.Field) {
	logger := u.logger
	if logger == nil {
		logger = noOpLogger
	}
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	logger.Error("notes use case error", attrs...)
}

// AddNote validates a note and upserts it. The timestamp is whatever the caller put on the note.
type AddNote struct {
	useCase
}

// Execute returns an *InvalidNoteError when the note is blank, otherwise the stored ID.
func (u AddNote) Execute(ctx context.Context, note Note) (NoteID, error) {
	if err := u.ready(opAddNote); err != nil {
		return 0, err
	}
	if err := Validate(note); err != nil {
		return 0, err
	}

	id, err := u.repository.InsertOrUpdate(ctx, note)
	if err != nil {
		u.logError(opAddNote, reasonRepositoryFailed, err, zap.Int64(fieldNoteID, note.ID.Int64()))
		return 0, newServiceError(opAddNote, reasonRepositoryFailed, err)
	}
	return id, nil
}

// DeleteNote removes a note without validating it.
type DeleteNote struct {
	useCase
}

func (u DeleteNote) Execute(ctx context.Context, note Note) error {
	if err := u.ready(opDeleteNote); err != nil {
		return err
	}
	if err := u.repository.Delete(ctx, note); err != nil {
		u.logError(opDeleteNote, reasonRepositoryFailed, err, zap.Int64(fieldNoteID, note.ID.Int64()))
		return newServiceError(opDeleteNote, reasonRepositoryFailed, err)
	}
	return nil
}

// GetNote looks a note up by ID. A missing note is reported as false, not as an error.
type GetNote struct {
	useCase
}

func (u GetNote) Execute(ctx context.Context, id NoteID) (Note, bool, error) {
	if err := u.ready(opGetNote); err != nil {
		return Note{}, false, err
	}
	note, found, err := u.repository.GetByID(ctx, id)
	if err != nil {
		u.logError(opGetNote, reasonRepositoryFailed, err, zap.Int64(fieldNoteID, id.Int64()))
		return Note{}, false, newServiceError(opGetNote, reasonRepositoryFailed, err)
	}
	return note, found, nil
}

// GetNotes lists notes lazily. Every range over the returned sequence reads the repository again.
type GetNotes struct {
	useCase
}

func (u GetNotes) Execute(ctx context.Context, order NoteOrder) iter.Seq2[Note, error] {
	return func(yield func(Note, error) bool) {
		if err := u.ready(opGetNotes); err != nil {
			yield(Note{}, err)
			return
		}
		notes, err := u.repository.GetAll(ctx)
		if err != nil {
			u.logError(opGetNotes, reasonRepositoryFailed, err)
			yield(Note{}, newServiceError(opGetNotes, reasonRepositoryFailed, err))
			return
		}
		SortNotes(notes, order)
		for _, note := range notes {
			if !yield(note, nil) {
				return
			}
		}
	}
}

// CollectNotes drains a note sequence, stopping at the first error.
func CollectNotes(sequence iter.Seq2[Note, error]) ([]Note, error) {
	var collected []Note
	for note, err := range sequence {
		if err != nil {
			return nil, err
		}
		collected = append(collected, note)
	}
	return collected, nil
}
