// manage.go: schema migration for the review subsystem tables.
package datastore

import (
	"fmt"
	"log"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/voicecorpus/voicecorpus-go/internal/logging"
)

// performAutoMigration migrates all review subsystem tables with per-table logging.
func performAutoMigration(db *gorm.DB, debug bool, dbType, connectionInfo string) error {
	migrated, err := migrateTables(db, dbType)
	if err != nil {
		return fmt.Errorf("failed to auto-migrate %s database after %d tables: %w", dbType, migrated, err)
	}

	if debug {
		log.Printf("%s database connection initialized: %s", dbType, connectionInfo)
	}

	return nil
}

// migrateTables performs the actual table migrations
func migrateTables(db *gorm.DB, dbType string) (int, error) {
	tableMappings := []struct {
		model any
		name  string
	}{
		{&Person{}, "people"},
		{&Sentence{}, "sentences"},
		{&Recording{}, "recordings"},
		{&Review{}, "reviews"},
	}

	migrationLogger := logging.ForService("datastore")

	successCount := 0
	for _, table := range tableMappings {
		if err := migrateTable(db, table.model, table.name, dbType, migrationLogger); err != nil {
			return successCount, err
		}
		successCount++
	}

	return successCount, nil
}

// migrateTable migrates a single table with detailed logging
func migrateTable(db *gorm.DB, model any, tableName, dbType string, migrationLogger *slog.Logger) error {
	tableStart := time.Now()
	tableExists := db.Migrator().HasTable(model)

	if err := db.AutoMigrate(model); err != nil {
		return dbError(err, "auto_migrate_table",
			"table", tableName,
			"db_type", dbType)
	}

	if migrationLogger != nil {
		migrationLogger.Debug("migrated table",
			"table", tableName,
			"existed", tableExists,
			"duration_ms", time.Since(tableStart).Milliseconds())
	}

	return nil
}
