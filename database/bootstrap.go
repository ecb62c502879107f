// database/bootstrap.go
package database

import (
	"fmt"

	sqlite "github.com/glebarez/sqlite" // CGO-free driver
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"mkulima/entities"
)

// Open connects using dialect "sqlite" (dsn is a file path) or "postgres"
// (dsn is a connection URL) and migrates the schema.
func Open(dialect, dsn string) (*gorm.DB, error) {
	var dial gorm.Dialector
	switch dialect {
	case "", "sqlite":
		dial = sqlite.Open(dsn)
	case "postgres":
		if dsn == "" {
			return nil, fmt.Errorf("postgres: DATABASE_URL is empty")
		}
		dial = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unknown DB_DIALECT %q", dialect)
	}

	db, err := gorm.Open(dial, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true, // key conflicts surface as gorm.ErrDuplicatedKey
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}
	if dialect != "postgres" {
		// sqlite allows one writer; serialize through a single connection
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&entities.Farmer{},
		&entities.CropProcess{},
		&entities.Feedback{},
		&entities.KBDocument{},
		&entities.KBChunk{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}
