package providers

import (
	"github.com/samber/do/v2"

	"github.com/luminalib/lumina-server/internal/auth"
	"github.com/luminalib/lumina-server/internal/config"
	"github.com/luminalib/lumina-server/internal/logger"
	"github.com/luminalib/lumina-server/internal/recommend"
	"github.com/luminalib/lumina-server/internal/service"
	"github.com/luminalib/lumina-server/internal/storage"
)

// ProvideSessionService provides the session management service.
func ProvideSessionService(i do.Injector) (*service.SessionService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSessionService(storeHandle.Store, tokenService, log.Logger), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	sessionService := do.MustInvoke[*service.SessionService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokenService, sessionService, log.Logger), nil
}

// ProvideBookService provides the catalog service.
func ProvideBookService(i do.Injector) (*service.BookService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	stor := do.MustInvoke[*storage.Storage](i)
	coordinator := do.MustInvoke[*CoordinatorHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewBookService(storeHandle.Store, stor, coordinator.Coordinator, log.Logger), nil
}

// ProvideBorrowService provides the borrow lifecycle service.
func ProvideBorrowService(i do.Injector) (*service.BorrowService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	journalHandle := do.MustInvoke[*JournalHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewBorrowService(storeHandle.Store, journalHandle.Journal, log.Logger), nil
}

// ProvideReviewService provides the review service.
func ProvideReviewService(i do.Injector) (*service.ReviewService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	journalHandle := do.MustInvoke[*JournalHandle](i)
	coordinator := do.MustInvoke[*CoordinatorHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewReviewService(
		storeHandle.Store,
		journalHandle.Journal,
		coordinator.Coordinator,
		cfg.Recommend.AllowRepeatReviews,
		log.Logger,
	), nil
}

// ProvidePreferenceService provides the reader preference service.
func ProvidePreferenceService(i do.Injector) (*service.PreferenceService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewPreferenceService(storeHandle.Store, log.Logger), nil
}

// ProvideAnalysisService provides the book analysis service.
func ProvideAnalysisService(i do.Injector) (*service.AnalysisService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	coordinator := do.MustInvoke[*CoordinatorHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAnalysisService(storeHandle.Store, coordinator.Coordinator, log.Logger), nil
}

// ProvideRecommendationService provides the hybrid recommendation service.
func ProvideRecommendationService(i do.Injector) (*service.RecommendationService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	journalHandle := do.MustInvoke[*JournalHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	engine := recommend.New(storeHandle.Store, journalHandle.Journal, cfg.Recommend.Alpha, log.Logger)
	return service.NewRecommendationService(engine, storeHandle.Store, log.Logger), nil
}
