package providers

import (
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/luminalib/lumina-server/internal/config"
	"github.com/luminalib/lumina-server/internal/journal"
	"github.com/luminalib/lumina-server/internal/logger"
	"github.com/luminalib/lumina-server/internal/store"
)

// StoreHandle wraps the Badger store for dependency injection with cleanup.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable for graceful cleanup.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the Badger-backed catalog store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dbPath := filepath.Join(cfg.Metadata.BasePath, "db")
	st, err := store.New(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Store opened", "path", dbPath)
	return &StoreHandle{Store: st}, nil
}

// JournalHandle wraps the SQLite borrow journal for dependency injection with cleanup.
type JournalHandle struct {
	*journal.Journal
}

// Shutdown implements do.Shutdownable for graceful cleanup.
func (h *JournalHandle) Shutdown() error {
	return h.Close()
}

// ProvideJournal provides the SQLite journal for borrow and review history.
func ProvideJournal(i do.Injector) (*JournalHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dbPath := filepath.Join(cfg.Metadata.BasePath, "journal.db")
	jr, err := journal.Open(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Journal opened", "path", dbPath)
	return &JournalHandle{Journal: jr}, nil
}
