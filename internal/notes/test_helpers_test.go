package notes

import (
	"context"
	"path/filepath"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newTestDatabase(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "notes.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&NoteRecord{}); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	return db
}

func newTestRepository(t *testing.T) *GormRepository {
	t.Helper()
	repository, err := NewGormRepository(newTestDatabase(t))
	if err != nil {
		t.Fatalf("failed to build repository: %v", err)
	}
	return repository
}

func mustInsert(t *testing.T, repository Repository, note Note) NoteID {
	t.Helper()
	id, err := repository.InsertOrUpdate(context.Background(), note)
	if err != nil {
		t.Fatalf("unexpected insert error: %v", err)
	}
	return id
}

// stubRepository fails every call with err.
type stubRepository struct {
	err   error
	calls int
}

func (s *stubRepository) InsertOrUpdate(context.Context, Note) (NoteID, error) {
	s.calls++
	return 0, s.err
}

func (s *stubRepository) Delete(context.Context, Note) error {
	s.calls++
	return s.err
}

func (s *stubRepository) GetByID(context.Context, NoteID) (Note, bool, error) {
	s.calls++
	return Note{}, false, s.err
}

func (s *stubRepository) GetAll(context.Context) ([]Note, error) {
	s.calls++
	return nil, s.err
}
