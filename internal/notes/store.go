package notes

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	columnID      = "id"
	orderIDAsc    = columnID + " ASC"
	queryNoteByID = columnID + " = ?"
)

var errMissingDatabase = errors.New("database handle is required")

// NoteRecord is the storage shape of a Note.
type NoteRecord struct {
	ID              int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Title           string `gorm:"column:title;type:text;not null;default:''"`
	Content         string `gorm:"column:content;type:text;not null;default:''"`
	TimestampMillis int64  `gorm:"column:timestamp_ms;not null;default:0;index:idx_notes_timestamp"`
	Color           uint32 `gorm:"column:color;not null;default:0"`
}

// TableName provides the explicit table binding for GORM.
func (NoteRecord) TableName() string {
	return "notes"
}

func recordFromNote(note Note) NoteRecord {
	id := note.ID.Int64()
	if id < 0 {
		id = 0
	}
	return NoteRecord{
		ID:              id,
		Title:           note.Title,
		Content:         note.Content,
		TimestampMillis: note.Timestamp,
		Color:           uint32(note.Color),
	}
}

func (record NoteRecord) toNote() Note {
	return Note{
		ID:        NoteID(record.ID),
		Title:     record.Title,
		Content:   record.Content,
		Timestamp: record.TimestampMillis,
		Color:     Color(record.Color),
	}
}

// GormRepository stores notes in a SQL database through GORM.
type GormRepository struct {
	db *gorm.DB
}

var _ Repository = (*GormRepository)(nil)

// NewGormRepository wraps an open, migrated database handle.
func NewGormRepository(db *gorm.DB) (*GormRepository, error) {
	if db == nil {
		return nil, errMissingDatabase
	}
	return &GormRepository{db: db}, nil
}

// InsertOrUpdate creates the note when it has no ID and overwrites the stored row otherwise.
func (repository *GormRepository) InsertOrUpdate(ctx context.Context, note Note) (NoteID, error) {
	record := recordFromNote(note)
	query := repository.db.WithContext(ctx)
	if record.ID != 0 {
		query = query.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: columnID}},
			UpdateAll: true,
		})
	}
	if err := query.Create(&record).Error; err != nil {
		return 0, fmt.Errorf("insert note: %w", err)
	}
	return NoteID(record.ID), nil
}

// Delete removes the stored row, if any.
func (repository *GormRepository) Delete(ctx context.Context, note Note) error {
	if !note.IsPersisted() {
		return nil
	}
	if err := repository.db.WithContext(ctx).
		Where(queryNoteByID, note.ID.Int64()).
		Delete(&NoteRecord{}).Error; err != nil {
		return fmt.Errorf("delete note %d: %w", note.ID, err)
	}
	return nil
}

// GetByID loads a single note.
func (repository *GormRepository) GetByID(ctx context.Context, id NoteID) (Note, bool, error) {
	var record NoteRecord
	err := repository.db.WithContext(ctx).Where(queryNoteByID, id.Int64()).Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Note{}, false, nil
	}
	if err != nil {
		return Note{}, false, fmt.Errorf("select note %d: %w", id, err)
	}
	return record.toNote(), true, nil
}

// GetAll loads every stored note in insertion order.
func (repository *GormRepository) GetAll(ctx context.Context) ([]Note, error) {
	var records []NoteRecord
	if err := repository.db.WithContext(ctx).Order(orderIDAsc).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("select notes: %w", err)
	}
	notes := make([]Note, 0, len(records))
	for _, record := range records {
		notes = append(notes, record.toNote())
	}
	return notes, nil
}
