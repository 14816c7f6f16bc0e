package providers

import (
	"github.com/samber/do/v2"

	"github.com/luminalib/lumina-server/internal/config"
	"github.com/luminalib/lumina-server/internal/intelligence"
	"github.com/luminalib/lumina-server/internal/llm"
	"github.com/luminalib/lumina-server/internal/logger"
	"github.com/luminalib/lumina-server/internal/storage"
)

// ProvideGenerationProvider provides the configured text generation backend.
func ProvideGenerationProvider(i do.Injector) (llm.Provider, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	provider, err := llm.New(cfg.Generation, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Generation provider configured",
		"provider", cfg.Generation.Provider,
		"model", cfg.Generation.Model,
	)

	return provider, nil
}

// CoordinatorHandle wraps the intelligence coordinator for dependency
// injection with cleanup. Shutdown waits for in-flight analysis jobs.
type CoordinatorHandle struct {
	*intelligence.Coordinator
}

// Shutdown implements do.Shutdownable for graceful cleanup.
func (h *CoordinatorHandle) Shutdown() error {
	h.Wait()
	return nil
}

// ProvideCoordinator provides the book intelligence coordinator.
func ProvideCoordinator(i do.Injector) (*CoordinatorHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	stor := do.MustInvoke[*storage.Storage](i)
	provider := do.MustInvoke[llm.Provider](i)

	coordinator := intelligence.New(intelligence.Options{
		Store:       storeHandle.Store,
		Storage:     stor,
		Provider:    provider,
		Logger:      log.Logger,
		Timeout:     cfg.Generation.Timeout,
		MaxAttempts: cfg.Generation.MaxAttempts,
	})

	return &CoordinatorHandle{Coordinator: coordinator}, nil
}
