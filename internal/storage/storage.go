// Package storage provides filesystem persistence for book content files.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Storage manages book content filesystem operations.
// Thread-safe for concurrent operations.
type Storage struct {
	basePath string
	mu       sync.RWMutex // Protects file operations
}

// New creates a new Storage instance for book content.
// basePath should be the data directory (e.g., ~/Lumina/data).
// Content files are stored in {basePath}/books/.
func New(basePath string) (*Storage, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}

	storagePath := filepath.Join(basePath, "books")

	// Create directory if it doesn't exist.
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create books directory: %w", err)
	}

	return &Storage{
		basePath: storagePath,
	}, nil
}

// Save stores content for a book.
// Filename format: {id}.{fileType}.
// Returns the absolute path of the stored file.
func (s *Storage) Save(id, fileType string, data []byte) (string, error) {
	if id == "" {
		return "", fmt.Errorf("ID cannot be empty")
	}
	if len(data) == 0 {
		return "", fmt.Errorf("content cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Path(id, fileType)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write content file: %w", err)
	}

	return path, nil
}

// Read retrieves the stored content for a book.
func (s *Storage) Read(id, fileType string) ([]byte, error) {
	if id == "" {
		return nil, fmt.Errorf("ID cannot be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	path := s.Path(id, fileType)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("content not found for %s: %w", id, err)
		}
		return nil, fmt.Errorf("failed to read content file: %w", err)
	}

	return data, nil
}

// Exists checks if content exists for a book.
func (s *Storage) Exists(id, fileType string) bool {
	if id == "" {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err := os.Stat(s.Path(id, fileType))
	return err == nil
}

// Delete removes the stored content for a book.
// Deleting missing content is not an error.
func (s *Storage) Delete(id, fileType string) error {
	if id == "" {
		return fmt.Errorf("ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.Path(id, fileType)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete content file: %w", err)
	}
	return nil
}

// Path returns the filesystem path for a book's content.
func (s *Storage) Path(id, fileType string) string {
	ext := strings.TrimPrefix(fileType, ".")
	if ext == "" {
		ext = "txt"
	}
	return filepath.Join(s.basePath, id+"."+ext)
}
