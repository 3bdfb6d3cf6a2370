package providers

import (
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/tarifflyapp/tariffly-server/internal/config"
	"github.com/tarifflyapp/tariffly-server/internal/logger"
	"github.com/tarifflyapp/tariffly-server/internal/store"
	"github.com/tarifflyapp/tariffly-server/internal/store/sqlite"
)

// StoreHandle wraps the key-value store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the key-value store holding accounts,
// classifications, scores and subscriptions.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dbPath := filepath.Join(cfg.Data.BasePath, "db")
	db, err := store.New(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", dbPath)

	return &StoreHandle{Store: db}, nil
}

// HistoryHandle wraps the calculation history database with shutdown
// capability.
type HistoryHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *HistoryHandle) Shutdown() error {
	return h.Close()
}

// ProvideHistory provides the landed cost calculation history database.
func ProvideHistory(i do.Injector) (*HistoryHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dbPath := filepath.Join(cfg.Data.BasePath, "calculations.db")
	db, err := sqlite.Open(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Calculation history initialized", "path", dbPath)

	return &HistoryHandle{Store: db}, nil
}
