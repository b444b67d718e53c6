package store

import (
	"fmt"
	"os"
	"path/filepath"

	"taskmanager/internal/config"
)

// Open creates the Store selected by cfg.Driver.
func Open(cfg config.Storage) (Store, error) {
	switch cfg.Driver {
	case "sqlite":
		if cfg.Path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
		return NewSQLiteStore(cfg.Path)
	case "mysql":
		return NewMySQLStore(cfg.DSN)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}
