// Package storeutils constructs a store backend from a provider name or from
// the resolved configuration.
package storeutils

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/papervec/papervec/pkg/config"
	"github.com/papervec/papervec/pkg/store"
	"github.com/papervec/papervec/pkg/store/memory"
	"github.com/papervec/papervec/pkg/store/sqlitevec"
)

type NewStoreOpts struct {
	// Provider selects the backend: "sqlitevec" (default) or "memory".
	Provider string
	Root     string
	Logger   *zap.Logger
}

func NewStore(o *NewStoreOpts) (store.Store, error) {
	switch o.Provider {
	case "sqlitevec", "":
		return sqlitevec.New(sqlitevec.Config{Root: o.Root}, o.Logger)
	case "memory":
		return memory.New(memory.Config{Root: o.Root}, o.Logger)
	default:
		return nil, fmt.Errorf("unsupported store provider: %s", o.Provider)
	}
}

// NewStoreFromConfig wires the resolved configuration into NewStore.
func NewStoreFromConfig(cfg *config.Config, logger *zap.Logger) (store.Store, error) {
	return NewStore(&NewStoreOpts{
		Provider: cfg.Store.Provider,
		Root:     cfg.Store.Root,
		Logger:   logger,
	})
}
