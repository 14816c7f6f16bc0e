package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/luminalib/lumina-server/internal/config"
	"github.com/luminalib/lumina-server/internal/logger"
	"github.com/luminalib/lumina-server/internal/search"
	"github.com/luminalib/lumina-server/internal/service"
)

// SearchIndexHandle wraps the Bleve index for dependency injection with cleanup.
type SearchIndexHandle struct {
	*search.Index
}

// Shutdown implements do.Shutdownable for graceful cleanup.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve full-text index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	idx, err := search.NewIndex(search.Options{
		DataPath: cfg.Metadata.BasePath,
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	return &SearchIndexHandle{Index: idx}, nil
}

// ProvideSearchService provides the catalog search service and hooks it
// into the store so catalog writes keep the index current.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	svc := service.NewSearchService(indexHandle.Index, storeHandle.Store, log.Logger)
	storeHandle.SetSearchIndexer(svc)

	if err := svc.ReindexIfEmpty(context.Background()); err != nil {
		log.Warn("Search reindex check failed", "error", err)
	}

	return svc, nil
}
