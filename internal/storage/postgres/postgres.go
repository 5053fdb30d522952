// Package postgresstorage implements the storage.Backend interface on a
// PostgreSQL connection. It wraps the GORM backend via composition; the
// only Postgres-specific concern is making and validating the connection.
package postgresstorage

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/virtualrange/weaponsim/internal/cache"
	"github.com/virtualrange/weaponsim/internal/database"
	"github.com/virtualrange/weaponsim/internal/logging"
	gormstorage "github.com/virtualrange/weaponsim/internal/storage/gorm"
)

// Backend wraps the GORM backend for Postgres-specific behavior.
type Backend struct {
	*gormstorage.Backend
	db *gorm.DB
}

// New creates a new Postgres storage backend. If db is nil, a connection
// is made from viper config.
func New(db *gorm.DB, weaponCache *cache.WeaponCache, logManager *logging.SlogManager) (*Backend, error) {
	if db == nil {
		var err error
		db, err = database.GetPostgresDBStandalone()
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access sql interface: %w", err)
		}
		if err = sqlDB.Ping(); err != nil {
			return nil, fmt.Errorf("failed to validate connection: %w", err)
		}
		sqlDB.SetMaxOpenConns(10)
	}

	gormBackend := gormstorage.New(gormstorage.Dependencies{
		DB:          db,
		WeaponCache: weaponCache,
		LogManager:  logManager,
	})

	return &Backend{
		Backend: gormBackend,
		db:      db,
	}, nil
}
