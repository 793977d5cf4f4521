package database

import (
	"errors"
	"time"

	"github.com/rifat0153/cleannotes/internal/notes"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	migrationBackfillNoteTimestamps = "2026-10-01_backfill_note_timestamps"
	migrationResetOffPaletteColors  = "2026-10-02_reset_off_palette_colors"
)

type migrationRecord struct {
	Name             string `gorm:"column:name;primaryKey;size:190;not null"`
	AppliedAtSeconds int64  `gorm:"column:applied_at_s;not null"`
}

func (migrationRecord) TableName() string {
	return "db_migrations"
}

type migrationDefinition struct {
	name  string
	apply func(db *gorm.DB, appliedAt time.Time) error
}

func applyMigrations(db *gorm.DB, logger *zap.Logger, clock func() time.Time) error {
	migrations := []migrationDefinition{
		{name: migrationBackfillNoteTimestamps, apply: backfillNoteTimestamps},
		{name: migrationResetOffPaletteColors, apply: resetOffPaletteColors},
	}

	for _, migration := range migrations {
		var record migrationRecord
		err := db.Where("name = ?", migration.name).Take(&record).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		appliedAt := clock().UTC()
		if err := migration.apply(db, appliedAt); err != nil {
			return err
		}
		if err := db.Create(&migrationRecord{Name: migration.name, AppliedAtSeconds: appliedAt.Unix()}).Error; err != nil {
			return err
		}
		if logger != nil {
			logger.Info("database migration applied", zap.String("migration", migration.name))
		}
	}
	return nil
}

// Rows written before timestamps were captured at save time carry zero.
func backfillNoteTimestamps(db *gorm.DB, appliedAt time.Time) error {
	return db.Model(&notes.NoteRecord{}).
		Where("timestamp_ms = 0").
		Update("timestamp_ms", appliedAt.UnixMilli()).Error
}

func resetOffPaletteColors(db *gorm.DB, _ time.Time) error {
	palette := make([]uint32, 0, len(notes.Palette))
	for _, color := range notes.Palette {
		palette = append(palette, uint32(color))
	}
	return db.Model(&notes.NoteRecord{}).
		Where("color NOT IN ?", palette).
		Update("color", uint32(notes.Palette[0])).Error
}
