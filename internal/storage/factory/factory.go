// Package factory builds storage backends from configuration. It lives
// apart from the storage package so backend packages can import the
// Backend interface without pulling in every sibling.
package factory

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/virtualrange/weaponsim/internal/cache"
	"github.com/virtualrange/weaponsim/internal/config"
	"github.com/virtualrange/weaponsim/internal/logging"
	"github.com/virtualrange/weaponsim/internal/storage"
	"github.com/virtualrange/weaponsim/internal/storage/memory"
	postgresstorage "github.com/virtualrange/weaponsim/internal/storage/postgres"
	sqlitestorage "github.com/virtualrange/weaponsim/internal/storage/sqlite"
	"github.com/virtualrange/weaponsim/internal/storage/websocket"
)

// NewBackend creates a storage backend based on configuration
func NewBackend(cfg config.StorageConfig, weaponCache *cache.WeaponCache, logManager *logging.SlogManager) (storage.Backend, error) {
	switch cfg.Type {
	case "postgres":
		return postgresstorage.New(nil, weaponCache, logManager)
	case "sqlite":
		dumpPath := filepath.Join(
			cfg.SQLite.DumpDir,
			fmt.Sprintf("session_%s.db", time.Now().Format("20060102_150405")),
		)
		return sqlitestorage.New(sqlitestorage.Config{
			DumpInterval: cfg.SQLite.DumpInterval,
			DumpPath:     dumpPath,
		}, weaponCache, logManager)
	case "memory":
		return memory.New(cfg.Memory), nil
	case "websocket":
		return websocket.New(websocket.Config{
			URL:    cfg.Websocket.URL,
			Secret: cfg.Websocket.Secret,
		}), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
