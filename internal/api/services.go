package api

import (
	"github.com/luminalib/lumina-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Auth           *service.AuthService
	Session        *service.SessionService
	Book           *service.BookService
	Borrow         *service.BorrowService
	Review         *service.ReviewService
	Preference     *service.PreferenceService
	Analysis       *service.AnalysisService
	Recommendation *service.RecommendationService
	Search         *service.SearchService
}
