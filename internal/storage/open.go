package storage

import (
	"shotbox/internal/config"
)

// Open builds the container described by cfg. It returns ErrNotConfigured
// when no connection string is set.
func Open(cfg config.StorageConfig) (Container, error) {
	target, err := ParseConnectionString(cfg.ConnectionString)
	if err != nil {
		return nil, err
	}
	if target.Memory {
		return NewMemoryContainer(cfg.Container), nil
	}
	return NewObjectStore(target, cfg.Container)
}
