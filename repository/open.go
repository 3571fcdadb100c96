package repository

import (
	"fmt"

	"github.com/kasuganosora/slotgrid/cache"
	"github.com/kasuganosora/slotgrid/config"
	"gorm.io/gorm"
)

// Open returns the backend selected by cfg for the save called name.
func Open(cfg config.PersistenceConfig, name string, db *gorm.DB, c cache.Cache) (Repository, error) {
	switch cfg.Backend {
	case "sql", "":
		if db == nil {
			return nil, fmt.Errorf("repository: sql backend needs a database")
		}
		return NewSQL(db, name), nil
	case "cache":
		if c == nil {
			return nil, fmt.Errorf("repository: cache backend needs a cache")
		}
		return NewCache(c, name), nil
	case "file":
		if cfg.FilePath == "" {
			return nil, fmt.Errorf("repository: file backend needs persistence.file_path")
		}
		return NewFile(cfg.FilePath), nil
	}
	return nil, fmt.Errorf("repository: unknown backend %q", cfg.Backend)
}
