package config

// StorageConfig defines where notification state is persisted
type StorageConfig struct {
	SQLitePath string `json:"sqlite_path,omitempty" yaml:"sqlite_path,omitempty" validate:"required"`
	// PruneRemovedSites drops state of sites no longer configured at startup and on reload.
	PruneRemovedSites bool `json:"prune_removed_sites" yaml:"prune_removed_sites"`
}

// NewDefaultStorageConfig creates default storage configuration
func NewDefaultStorageConfig() StorageConfig {
	return StorageConfig{
		SQLitePath:        DefaultSQLitePath,
		PruneRemovedSites: true,
	}
}
