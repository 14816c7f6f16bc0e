package api

import (
	"encoding/hex"
	"encoding/json/v2"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/luminalib/lumina-server/internal/auth"
	"github.com/luminalib/lumina-server/internal/intelligence"
	"github.com/luminalib/lumina-server/internal/journal"
	"github.com/luminalib/lumina-server/internal/llm"
	"github.com/luminalib/lumina-server/internal/recommend"
	"github.com/luminalib/lumina-server/internal/search"
	"github.com/luminalib/lumina-server/internal/service"
	"github.com/luminalib/lumina-server/internal/storage"
	"github.com/luminalib/lumina-server/internal/store"
)

// apiTestServer wraps the API server for handler testing.
type apiTestServer struct {
	*Server
	api         humatest.TestAPI
	coordinator *intelligence.Coordinator
}

// setupTestServer creates a fully wired test server backed by temp storage.
func setupTestServer(t *testing.T) *apiTestServer {
	t.Helper()

	dir := t.TempDir()
	logger := slog.New(slog.DiscardHandler)

	st, err := store.New(filepath.Join(dir, "store"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	stg, err := storage.New(dir)
	require.NoError(t, err)

	jr, err := journal.Open(filepath.Join(dir, "journal.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { jr.Close() })

	index, err := search.NewIndex(search.Options{DataPath: dir, Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { index.Close() })

	coordinator := intelligence.New(intelligence.Options{
		Store:    st,
		Storage:  stg,
		Provider: llm.NewMock(0, logger),
		Logger:   logger,
		Timeout:  5 * time.Second,
	})
	t.Cleanup(coordinator.Wait)

	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i + 1)
	}
	tokenService, err := auth.NewTokenService(hex.EncodeToString(key), 15*time.Minute, 30*24*time.Hour)
	require.NoError(t, err)

	sessionService := service.NewSessionService(st, tokenService, logger)
	engine := recommend.New(st, jr, 0.5, logger)

	services := &Services{
		Auth:           service.NewAuthService(st, tokenService, sessionService, logger),
		Session:        sessionService,
		Book:           service.NewBookService(st, stg, coordinator, logger),
		Borrow:         service.NewBorrowService(st, jr, logger),
		Review:         service.NewReviewService(st, jr, coordinator, false, logger),
		Preference:     service.NewPreferenceService(st, logger),
		Analysis:       service.NewAnalysisService(st, coordinator, logger),
		Recommendation: service.NewRecommendationService(engine, st, logger),
		Search:         service.NewSearchService(index, st, logger),
	}

	// Keep the index in sync with catalog writes, as production wiring does.
	st.SetSearchIndexer(services.Search)

	router := chi.NewRouter()
	router.Use(authMiddleware(services.Auth))

	humaConfig := huma.DefaultConfig("Lumina API Test", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}

	api := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s := &Server{
		store:           st,
		journal:         jr,
		services:        services,
		router:          router,
		api:             api,
		logger:          logger,
		authRateLimiter: NewRateLimiter(100, time.Minute, 50),
	}

	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerBookRoutes()
	s.registerBorrowRoutes()
	s.registerReviewRoutes()
	s.registerAnalysisRoutes()
	s.registerRecommendationRoutes()
	s.registerPreferenceRoutes()
	s.registerSearchRoutes()

	return &apiTestServer{
		Server:      s,
		api:         humatest.Wrap(t, api),
		coordinator: coordinator,
	}
}

// signupTestUser creates an account and returns the auth response.
func (ts *apiTestServer) signupTestUser(t *testing.T, email, username string) AuthResponse {
	t.Helper()

	resp := ts.api.Post("/api/v1/auth/signup", map[string]any{
		"email":    email,
		"username": username,
		"password": "correct horse battery",
	})
	require.Equal(t, 200, resp.Code, "Signup failed: %s", resp.Body.String())

	var body AuthResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	return body
}

// seedTestBook creates a book directly through the service layer.
func (ts *apiTestServer) seedTestBook(t *testing.T, title, author, genres string) string {
	t.Helper()

	book, err := ts.services.Book.CreateBook(t.Context(), service.CreateBookRequest{
		Title:    title,
		Author:   author,
		Genres:   genres,
		FileName: "book.txt",
		Content:  []byte("A long time ago, in a library far away, a story began. It grew with every page."),
	})
	require.NoError(t, err)
	return book.ID
}
