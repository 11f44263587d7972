// Package config resolves the papervec configuration from defaults, an
// optional config.toml, and PAPERVEC_-prefixed environment variables.
package config

import (
	"os"
	"path/filepath"
)

// Config is the persistent papervec configuration. The TOML layout uses
// sections for logical grouping.
type Config struct {
	Debug bool        `toml:"debug,omitempty"`
	Store StoreConfig `toml:"store"`
}

// StoreConfig holds vector store settings.
type StoreConfig struct {
	// Provider selects the backend: "sqlitevec" or "memory".
	Provider string `toml:"provider,omitempty"`

	// Root is the default storage root directory.
	Root string `toml:"root,omitempty"`
}

// NewDefaultConfig returns the built-in defaults: the sqlite-vec backend
// rooted under the user's home directory.
func NewDefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Provider: "sqlitevec",
			Root:     defaultRoot(),
		},
	}
}

func defaultRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".papervec"
	}
	return filepath.Join(home, ".papervec")
}
