package providers

import (
	"github.com/samber/do/v2"

	"github.com/luminalib/lumina-server/internal/config"
	"github.com/luminalib/lumina-server/internal/storage"
)

// ProvideStorage provides the content blob storage rooted under the metadata path.
func ProvideStorage(i do.Injector) (*storage.Storage, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return storage.New(cfg.Metadata.BasePath)
}
