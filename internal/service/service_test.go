package service

import (
	"encoding/hex"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/luminalib/lumina-server/internal/auth"
	"github.com/luminalib/lumina-server/internal/intelligence"
	"github.com/luminalib/lumina-server/internal/journal"
	"github.com/luminalib/lumina-server/internal/llm"
	"github.com/luminalib/lumina-server/internal/storage"
	"github.com/luminalib/lumina-server/internal/store"
)

// testEnv wires real services over temporary storage.
type testEnv struct {
	store       *store.Store
	storage     *storage.Storage
	journal     *journal.Journal
	coordinator *intelligence.Coordinator

	auth         *AuthService
	sessions     *SessionService
	books        *BookService
	borrows      *BorrowService
	reviews      *ReviewService
	preferences  *PreferenceService
	analysis     *AnalysisService
	tokenService *auth.TokenService
}

func setupServices(t *testing.T) *testEnv {
	return setupServicesWithRepeats(t, false)
}

func setupServicesWithRepeats(t *testing.T, allowRepeats bool) *testEnv {
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

	sessions := NewSessionService(st, tokenService, logger)

	return &testEnv{
		store:        st,
		storage:      stg,
		journal:      jr,
		coordinator:  coordinator,
		auth:         NewAuthService(st, tokenService, sessions, logger),
		sessions:     sessions,
		books:        NewBookService(st, stg, coordinator, logger),
		borrows:      NewBorrowService(st, jr, logger),
		reviews:      NewReviewService(st, jr, coordinator, allowRepeats, logger),
		preferences:  NewPreferenceService(st, logger),
		analysis:     NewAnalysisService(st, coordinator, logger),
		tokenService: tokenService,
	}
}
