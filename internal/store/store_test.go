package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luminalib/lumina-server/internal/domain"
)

// setupTestStore creates a temporary store for testing
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	// Create temp directory for test database
	tmpDir, err := os.MkdirTemp("", "lumina-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := New(dbPath, nil)
	require.NoError(t, err)
	require.NotNil(t, store)

	// Return cleanup function
	cleanup := func() {
		store.Close()
		os.RemoveAll(tmpDir)
	}

	return store, cleanup
}

func TestUsers_UniqueEmailCaseInsensitive(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	user := &domain.User{
		Email:        "reader@example.com",
		Username:     "reader",
		PasswordHash: "hash",
	}
	user.ID = "user-001"
	user.InitTimestamps()

	err := store.Users.Create(ctx, user.ID, user)
	require.NoError(t, err)

	// Same email, different case
	dup := &domain.User{
		Email:        "Reader@Example.COM",
		Username:     "reader2",
		PasswordHash: "hash",
	}
	dup.ID = "user-002"
	dup.InitTimestamps()

	err = store.Users.Create(ctx, dup.ID, dup)
	assert.Error(t, err)
}

func TestUsers_GetByIndex(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	user := &domain.User{
		Email:        "reader@example.com",
		Username:     "Reader",
		PasswordHash: "hash",
	}
	user.ID = "user-001"
	user.InitTimestamps()

	require.NoError(t, store.Users.Create(ctx, user.ID, user))

	// Lookup is case-insensitive via the index transform
	found, err := store.Users.GetByIndex(ctx, "email", "READER@example.com")
	require.NoError(t, err)
	assert.Equal(t, "user-001", found.ID)

	found, err = store.Users.GetByIndex(ctx, "username", "reader")
	require.NoError(t, err)
	assert.Equal(t, "user-001", found.ID)
}
