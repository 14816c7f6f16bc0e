// Package journal provides an append-only SQLite log of user/book
// interactions. The journal is the behavioral input to collaborative
// recommendation scoring; rows are never updated or deleted.
package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/luminalib/lumina-server/internal/domain"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Journal provides SQLite-backed persistence for interaction events.
type Journal struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates a new journal at the given path.
// It configures WAL mode, sets pragmas, and runs schema migrations.
func Open(path string, logger *slog.Logger) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Set connection pool to 1 writer (SQLite limitation).
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	// Configure pragmas.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", pragma, err)
		}
	}

	// Run schema migration.
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	return &Journal{
		db:     db,
		logger: logger,
	}, nil
}

// Close closes the underlying database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Append writes an interaction event. The event's ID and CreatedAt are
// filled in on success.
func (j *Journal) Append(ctx context.Context, event *domain.Interaction) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	var rating sql.NullFloat64
	if event.Rating != nil {
		rating = sql.NullFloat64{Float64: *event.Rating, Valid: true}
	}

	res, err := j.db.ExecContext(ctx, `
		INSERT INTO interactions (user_id, book_id, type, rating, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		event.UserID,
		event.BookID,
		string(event.Type),
		rating,
		formatTime(event.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("append interaction: %w", err)
	}

	event.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("interaction id: %w", err)
	}

	if j.logger != nil {
		j.logger.Debug("interaction journaled",
			"user_id", event.UserID, "book_id", event.BookID, "type", string(event.Type))
	}
	return nil
}

// interactionColumns is the ordered list of columns selected in interaction queries.
const interactionColumns = `id, user_id, book_id, type, rating, created_at`

// scanInteraction scans a sql.Row (or sql.Rows via its Scan method) into a domain.Interaction.
func scanInteraction(scanner interface{ Scan(dest ...any) error }) (*domain.Interaction, error) {
	var event domain.Interaction

	var (
		eventType string
		rating    sql.NullFloat64
		createdAt string
	)

	err := scanner.Scan(
		&event.ID,
		&event.UserID,
		&event.BookID,
		&eventType,
		&rating,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	event.Type = domain.InteractionType(eventType)
	if rating.Valid {
		event.Rating = &rating.Float64
	}

	event.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	return &event, nil
}

// ListByUser returns a user's interactions, newest first.
// A limit of 0 means no limit.
func (j *Journal) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Interaction, error) {
	return j.list(ctx, `
		SELECT `+interactionColumns+`
		FROM interactions
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`, userID, limit)
}

// ListByBook returns a book's interactions, newest first.
// A limit of 0 means no limit.
func (j *Journal) ListByBook(ctx context.Context, bookID string, limit int) ([]*domain.Interaction, error) {
	return j.list(ctx, `
		SELECT `+interactionColumns+`
		FROM interactions
		WHERE book_id = ?
		ORDER BY created_at DESC, id DESC`, bookID, limit)
}

func (j *Journal) list(ctx context.Context, query, key string, limit int) ([]*domain.Interaction, error) {
	args := []any{key}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list interactions: %w", err)
	}
	defer rows.Close()

	var events []*domain.Interaction
	for rows.Next() {
		event, err := scanInteraction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// UserBookWeights aggregates the journal into per-user affinity weights,
// keyed user -> book -> weight. Rated events contribute their rating,
// unrated events a neutral 3.0; the strongest signal per (user, book)
// wins. This is the input matrix for collaborative scoring.
func (j *Journal) UserBookWeights(ctx context.Context) (map[string]map[string]float64, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT user_id, book_id, MAX(COALESCE(rating, 3.0))
		FROM interactions
		WHERE type != 'return'
		GROUP BY user_id, book_id`)
	if err != nil {
		return nil, fmt.Errorf("aggregate weights: %w", err)
	}
	defer rows.Close()

	weights := make(map[string]map[string]float64)
	for rows.Next() {
		var userID, bookID string
		var weight float64
		if err := rows.Scan(&userID, &bookID, &weight); err != nil {
			return nil, fmt.Errorf("scan weight: %w", err)
		}
		if weights[userID] == nil {
			weights[userID] = make(map[string]float64)
		}
		weights[userID][bookID] = weight
	}
	return weights, rows.Err()
}

// CountByBook returns the number of non-return events for a book.
// Popularity fallback uses this when a user has no history.
func (j *Journal) CountByBook(ctx context.Context, bookID string) (int, error) {
	var count int
	err := j.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM interactions WHERE book_id = ? AND type != 'return'`,
		bookID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count interactions: %w", err)
	}
	return count, nil
}

// BookCounts returns non-return event counts for every book seen in the
// journal, in one query.
func (j *Journal) BookCounts(ctx context.Context) (map[string]int, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT book_id, COUNT(*)
		FROM interactions
		WHERE type != 'return'
		GROUP BY book_id`)
	if err != nil {
		return nil, fmt.Errorf("count by book: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var bookID string
		var count int
		if err := rows.Scan(&bookID, &count); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[bookID] = count
	}
	return counts, rows.Err()
}

// formatTime formats a time.Time to RFC3339Nano for storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime parses a RFC3339Nano string back to time.Time.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
