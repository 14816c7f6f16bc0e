// Package main provides a tool to seed the database with demo library data.
//
// This creates a handful of readers, a small catalog, and borrow and review
// history so recommendations and analysis have signal to work with.
//
// Usage:
//
//	DATA_PATH=~/lumina go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/luminalib/lumina-server/internal/auth"
	"github.com/luminalib/lumina-server/internal/domain"
	"github.com/luminalib/lumina-server/internal/id"
	"github.com/luminalib/lumina-server/internal/journal"
	"github.com/luminalib/lumina-server/internal/store"
)

type seedUser struct {
	email    string
	username string
	genres   []string
}

type seedBook struct {
	title  string
	author string
	isbn   string
	genres []string
}

var users = []seedUser{
	{"ada@example.com", "ada", []string{"science fiction", "nonfiction"}},
	{"borges@example.com", "jorge", []string{"fantasy", "mystery"}},
	{"clara@example.com", "clara", []string{"romance", "fantasy"}},
	{"dmitri@example.com", "dmitri", []string{"mystery", "thriller"}},
}

var books = []seedBook{
	{"The Glass Orchard", "M. Reyes", "978-1-0000-0001-1", []string{"fantasy", "mystery"}},
	{"Signal Decay", "T. Okafor", "978-1-0000-0002-8", []string{"science fiction", "thriller"}},
	{"A Winter Ledger", "H. Lindqvist", "978-1-0000-0003-5", []string{"mystery"}},
	{"Salt and Circuitry", "P. Anand", "978-1-0000-0004-2", []string{"science fiction", "romance"}},
	{"The Quiet Atlas", "M. Reyes", "978-1-0000-0005-9", []string{"nonfiction"}},
	{"Harvest of Echoes", "L. Moreau", "978-1-0000-0006-6", []string{"fantasy", "romance"}},
}

func main() {
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/lumina")
	}

	fmt.Printf("Seeding library data under: %s\n", dataPath)

	s, err := store.New(filepath.Join(dataPath, "db"), nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open store: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	jr, err := journal.Open(filepath.Join(dataPath, "journal.db"), nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open journal: %v\n", err)
		os.Exit(1)
	}
	defer jr.Close()

	ctx := context.Background()

	userIDs, err := seedUsers(ctx, s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to seed users: %v\n", err)
		os.Exit(1)
	}

	bookIDs, err := seedBooks(ctx, s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to seed books: %v\n", err)
		os.Exit(1)
	}

	if err := seedHistory(ctx, s, jr, userIDs, bookIDs); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to seed history: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Done. All demo accounts use the password 'reading-rainbow'.")
}

func seedUsers(ctx context.Context, s *store.Store) ([]string, error) {
	hash, err := auth.HashPassword("reading-rainbow")
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(users))
	for _, u := range users {
		userID, err := id.Generate("user")
		if err != nil {
			return nil, err
		}

		now := time.Now()
		user := &domain.User{
			Syncable: domain.Syncable{
				ID:        userID,
				CreatedAt: now,
				UpdatedAt: now,
			},
			Email:        u.email,
			Username:     u.username,
			PasswordHash: hash,
		}
		if err := s.Users.Create(ctx, userID, user); err != nil {
			return nil, fmt.Errorf("create user %s: %w", u.email, err)
		}

		if len(u.genres) > 0 {
			pref := &domain.UserPreference{
				UserID:         userID,
				FavoriteGenres: u.genres,
				UpdatedAt:      now,
			}
			if err := s.SetUserPreference(ctx, pref); err != nil {
				return nil, fmt.Errorf("set preference for %s: %w", u.email, err)
			}
		}

		fmt.Printf("  user %s (%s)\n", u.username, userID)
		ids = append(ids, userID)
	}
	return ids, nil
}

func seedBooks(ctx context.Context, s *store.Store) ([]string, error) {
	ids := make([]string, 0, len(books))
	for _, b := range books {
		bookID, err := id.Generate("book")
		if err != nil {
			return nil, err
		}

		now := time.Now()
		book := &domain.Book{
			Syncable: domain.Syncable{
				ID:        bookID,
				CreatedAt: now,
				UpdatedAt: now,
			},
			Title:    b.title,
			Author:   b.author,
			ISBN:     b.isbn,
			Genres:   b.genres,
			FileType: "txt",
		}
		if err := s.CreateBook(ctx, book); err != nil {
			return nil, fmt.Errorf("create book %q: %w", b.title, err)
		}

		fmt.Printf("  book %q (%s)\n", b.title, bookID)
		ids = append(ids, bookID)
	}
	return ids, nil
}

// seedHistory gives every reader a few borrows and rates about half of
// them, so both the popularity and collaborative signals are non-empty.
func seedHistory(ctx context.Context, s *store.Store, jr *journal.Journal, userIDs, bookIDs []string) error {
	rng := rand.New(rand.NewSource(42))

	reviewTexts := []string{
		"Could not put it down.",
		"Slow start, strong finish.",
		"The prose carries it even when the plot drifts.",
		"Not for me, but I can see the appeal.",
		"Exactly what I wanted it to be.",
	}

	for _, userID := range userIDs {
		count := 2 + rng.Intn(3)
		for _, bi := range rng.Perm(len(bookIDs))[:count] {
			bookID := bookIDs[bi]

			borrowID, err := id.Generate("borrow")
			if err != nil {
				return err
			}

			borrow := &domain.Borrow{
				ID:         borrowID,
				UserID:     userID,
				BookID:     bookID,
				BorrowedAt: time.Now().AddDate(0, 0, -rng.Intn(60)-7),
			}
			if err := s.CreateBorrow(ctx, borrow); err != nil {
				return fmt.Errorf("create borrow: %w", err)
			}
			if _, err := s.ReturnBorrow(ctx, userID, bookID); err != nil {
				return fmt.Errorf("return borrow: %w", err)
			}
			if err := jr.Append(ctx, &domain.Interaction{
				UserID: userID,
				BookID: bookID,
				Type:   domain.InteractionBorrow,
			}); err != nil {
				return fmt.Errorf("journal borrow: %w", err)
			}
			if err := jr.Append(ctx, &domain.Interaction{
				UserID: userID,
				BookID: bookID,
				Type:   domain.InteractionReturn,
			}); err != nil {
				return fmt.Errorf("journal return: %w", err)
			}

			if rng.Intn(2) == 0 {
				continue
			}

			reviewID, err := id.Generate("review")
			if err != nil {
				return err
			}
			rating := 2 + rng.Intn(4)
			review := &domain.Review{
				ID:        reviewID,
				UserID:    userID,
				BookID:    bookID,
				Rating:    rating,
				Text:      reviewTexts[rng.Intn(len(reviewTexts))],
				CreatedAt: time.Now(),
			}
			if err := s.CreateReview(ctx, review, false); err != nil {
				return fmt.Errorf("create review: %w", err)
			}
			ratingF := float64(rating)
			if err := jr.Append(ctx, &domain.Interaction{
				UserID: userID,
				BookID: bookID,
				Type:   domain.InteractionReview,
				Rating: &ratingF,
			}); err != nil {
				return fmt.Errorf("journal review: %w", err)
			}
		}
	}
	return nil
}
