package db

import (
	"log"
	"os"
	"scrapbook/config"
	"strings"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var Instance *gorm.DB

// Init opens MySQL if MYSQL_DSN is configured, SQLite otherwise
func Init() error {
	if config.MYSQL_DSN == "" {
		return InitSQLite(config.SQLITE_FILE)
	}
	return InitMySQL(config.MYSQL_DSN)
}

func InitMySQL(dsn string) error {
	dsn, err := mysqlDSN(dsn)
	if err != nil {
		return err
	}
	db, err := Open(mysql.Open(dsn))
	if err != nil {
		return err
	}
	Instance = db
	return nil
}

// InitSQLite points Instance to a SQLite database, "file::memory:" works for tests
func InitSQLite(file string) error {
	db, err := Open(sqlite.Open(sqliteDSN(file)))
	if err != nil {
		return err
	}
	Instance = db
	return nil
}

// Open connects using the given dialector. SQLite connections are limited to one so that
// in-memory databases are shared and writes are serialised.
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	level := logger.Error
	if config.DEBUG_MODE {
		level = logger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
		Logger: logger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			logger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  level,
				IgnoreRecordNotFoundError: true,
				Colorful:                  config.DEBUG_MODE,
			},
		),
	})
	if err != nil {
		return nil, err
	}
	if dialector.Name() == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// mysqlDSN switches the connection to utf8mb4, text fields may contain emoji
func mysqlDSN(dsn string) (string, error) {
	cfg, err := gomysql.ParseDSN(dsn)
	if err != nil {
		return "", err
	}
	if cfg.Collation == "" || !strings.HasPrefix(cfg.Collation, "utf8mb4") {
		cfg.Collation = "utf8mb4_unicode_ci"
	}
	return cfg.FormatDSN(), nil
}

// sqliteDSN makes sure foreign keys are enforced, otherwise cascading deletes are ignored
func sqliteDSN(file string) string {
	if strings.Contains(file, "_foreign_keys") {
		return file
	}
	if strings.Contains(file, "?") {
		return file + "&_foreign_keys=on"
	}
	return file + "?_foreign_keys=on"
}

func Close() {
	if Instance == nil {
		return
	}
	sqlDB, err := Instance.DB()
	if err != nil {
		return
	}
	if err = sqlDB.Close(); err != nil {
		log.Printf("Failed to close DB: %v", err)
	}
}
