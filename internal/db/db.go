package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/greenplate/campus-client/internal/config"
)

func gormConfig() *gorm.Config {
	// gorm's default logger writes to stdout, which belongs to the terminal UI.
	return &gorm.Config{Logger: gormlogger.Discard}
}

// Open picks the driver named in conf. DATABASE_URL, when set, wins over the
// individual postgres fields.
func Open(conf *config.StoreConfig) (*gorm.DB, error) {
	switch conf.Driver {
	case "postgres":
		if conf.URL != "" {
			return OpenPostgresWithURL(conf.URL)
		}
		return OpenPostgres(conf)
	default:
		return OpenSQLite(conf.Path)
	}
}

func OpenPostgres(conf *config.StoreConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		conf.Host, conf.User, conf.Password, conf.DBName, conf.Port, conf.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("gorm.Open -> %w", err)
	}

	return db, nil
}

func OpenPostgresWithURL(url string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(url), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("gorm.Open -> %w", err)
	}

	return db, nil
}

func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path+"?_foreign_keys=on&_busy_timeout=5000"), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("gorm.Open -> %w", err)
	}

	// One writer at a time; sqlite serialises writes anyway.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db.DB -> %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}
