package datastore

import (
	"fmt"

	gomysql "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/voicecorpus/voicecorpus-go/internal/conf"
)

// MySQLStore implements DataStore for MySQL
type MySQLStore struct {
	DataStore
	Settings *conf.Settings
}

func validateMySQLConfig(settings *conf.Settings) error {
	if settings.Output.MySQL.Database == "" {
		return validationError("mysql database name must not be empty", "database", settings.Output.MySQL.Database)
	}
	if settings.Output.MySQL.Host == "" {
		return validationError("mysql host must not be empty", "host", settings.Output.MySQL.Host)
	}
	return nil
}

// buildMySQLDSN constructs the connection string through the driver's own
// config type so credentials with special characters survive intact.
func buildMySQLDSN(settings *conf.Settings) string {
	cfg := gomysql.NewConfig()
	cfg.User = settings.Output.MySQL.Username
	cfg.Passwd = settings.Output.MySQL.Password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%s", settings.Output.MySQL.Host, settings.Output.MySQL.Port)
	cfg.DBName = settings.Output.MySQL.Database
	cfg.ParseTime = true
	// MySQL reports changed rows by default; the RowsAffected checks in
	// commit.go need matched rows, like SQLite reports.
	cfg.ClientFoundRows = true
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

// Open sets up the MySQL database connection and migrates the schema.
func (store *MySQLStore) Open() error {
	if err := validateMySQLConfig(store.Settings); err != nil {
		return err // validateMySQLConfig returns a properly formatted error
	}

	dsn := buildMySQLDSN(store.Settings)

	// TranslateError turns a unique-constraint violation into
	// gorm.ErrDuplicatedKey, which the commit protocol depends on.
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         createGormLogger(),
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to open MySQL database: %w", err)
	}

	store.DB = db
	return performAutoMigration(db, store.Settings.Debug, "MySQL", store.Settings.Output.MySQL.Host)
}

// Close closes the underlying MySQL connection.
func (store *MySQLStore) Close() error {
	if store.DB == nil {
		return nil
	}
	sqlDB, err := store.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to access underlying database: %w", err)
	}
	return sqlDB.Close()
}
