package database

import (
	"errors"
	"time"

	"github.com/abhilekh-app/backend/internal/records"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Stores created by the previous generation of this application allowed NULL
// in the numeric amount columns; the Go model reads them as zero.
const migrationBackfillRecordAmounts = "2026-08-12_backfill_record_amounts"

type migrationRecord struct {
	Name             string `gorm:"column:name;primaryKey;size:190;not null"`
	AppliedAtSeconds int64  `gorm:"column:applied_at_s;not null"`
}

func (migrationRecord) TableName() string {
	return "db_migrations"
}

type migrationDefinition struct {
	name  string
	apply func(*gorm.DB) error
}

func applyMigrations(db *gorm.DB, logger *zap.Logger) error {
	migrations := []migrationDefinition{
		{name: migrationBackfillRecordAmounts, apply: backfillRecordAmounts},
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
		if err := migration.apply(db); err != nil {
			return err
		}
		appliedAt := time.Now().UTC().Unix()
		if err := db.Create(&migrationRecord{Name: migration.name, AppliedAtSeconds: appliedAt}).Error; err != nil {
			return err
		}
		if logger != nil {
			logger.Info("database migration applied", zap.String("migration", migration.name))
		}
	}
	return nil
}

func backfillRecordAmounts(db *gorm.DB) error {
	for _, column := range []string{"asul", "aniyamit", "paperProof", "peski", "total", "samparisayad_anurodh_rakam"} {
		if err := db.Model(&records.Record{}).
			Where(column + " IS NULL").
			Update(column, 0).Error; err != nil {
			return err
		}
	}
	return nil
}
