// Package recommend implements the hybrid recommender: a collaborative
// signal mined from the interaction journal blended with a content
// signal from the user's stated preferences. Scores are computed on
// demand and never persisted.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/luminalib/lumina-server/internal/domain"
	"github.com/luminalib/lumina-server/internal/journal"
	"github.com/luminalib/lumina-server/internal/normalize"
	"github.com/luminalib/lumina-server/internal/store"
)

// Reason strings attached to recommendation results. Derived
// deterministically from the dominant score term.
const (
	ReasonSimilarTaste = "readers with similar taste also picked this"
	ReasonMatchesTaste = "matches your favorite genres/author"
	ReasonPopular      = "popular with other readers"
)

// DefaultLimit is used when the caller passes a non-positive limit.
const DefaultLimit = 10

// Weights for the cold-start popularity heuristic.
const (
	popularityWeight = 0.7
	recencyWeight    = 0.3
)

// Engine scores catalog books for a user.
type Engine struct {
	store   *store.Store
	journal *journal.Journal
	alpha   float64
	logger  *slog.Logger
}

// New creates a recommendation engine. Alpha is the collaborative/content
// blend weight and must already be validated to [0,1].
func New(st *store.Store, jr *journal.Journal, alpha float64, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:   st,
		journal: jr,
		alpha:   alpha,
		logger:  logger,
	}
}

// Recommend returns up to limit scored books for the user, ordered by
// score descending with book ID as the tie-break. Books the user already
// interacted with are never candidates. Users with no history and no
// preferences fall back to a popularity/recency heuristic, so the result
// is non-empty whenever there are unseen books in the catalog.
func (e *Engine) Recommend(ctx context.Context, userID string, limit int) ([]domain.RecommendationResult, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	books, err := e.store.ListAllBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	if len(books) == 0 {
		return []domain.RecommendationResult{}, nil
	}

	weights, err := e.journal.UserBookWeights(ctx)
	if err != nil {
		return nil, fmt.Errorf("load interaction weights: %w", err)
	}
	history := weights[userID]

	pref, err := e.store.GetUserPreference(ctx, userID)
	if err != nil && !errors.Is(err, store.ErrPreferenceNotFound) {
		return nil, fmt.Errorf("load preferences: %w", err)
	}

	candidates := make([]*domain.Book, 0, len(books))
	for _, book := range books {
		if _, seen := history[book.ID]; seen {
			continue
		}
		candidates = append(candidates, book)
	}
	if len(candidates) == 0 {
		return []domain.RecommendationResult{}, nil
	}

	hasPreferences := pref != nil && (len(pref.FavoriteGenres) > 0 || len(pref.FavoriteAuthors) > 0)
	if len(history) == 0 && !hasPreferences {
		return e.recommendPopular(ctx, userID, candidates, limit)
	}

	collab := e.collaborativeScores(userID, history, weights, candidates)
	content := contentScores(pref, candidates)

	results := make([]domain.RecommendationResult, 0, len(candidates))
	for _, book := range candidates {
		collabPart := e.alpha * collab[book.ID]
		contentPart := (1 - e.alpha) * content[book.ID]
		score := collabPart + contentPart
		if score <= 0 {
			continue
		}
		reason := ReasonMatchesTaste
		if collabPart >= contentPart {
			reason = ReasonSimilarTaste
		}
		results = append(results, domain.RecommendationResult{
			BookID: book.ID,
			Score:  score,
			Reason: reason,
		})
	}

	// A user can have history yet no overlap with anyone and no stated
	// preferences that match the catalog. Fall through to popularity so
	// they still get something to read.
	if len(results) == 0 {
		return e.recommendPopular(ctx, userID, candidates, limit)
	}

	sortResults(results)
	if len(results) > limit {
		results = results[:limit]
	}

	e.logger.Debug("recommendations computed",
		"user_id", userID,
		"candidates", len(candidates),
		"returned", len(results))
	return results, nil
}

// collaborativeScores mines user-user co-occurrence from the journal.
// A neighbor's similarity is the sum of min affinity over the books both
// users touched; each neighbor then votes for its other books with
// similarity * affinity. Raw sums are normalized by the max to [0,1].
func (e *Engine) collaborativeScores(userID string, history map[string]float64, weights map[string]map[string]float64, candidates []*domain.Book) map[string]float64 {
	scores := make(map[string]float64, len(candidates))
	if len(history) == 0 {
		return scores
	}

	candidateSet := make(map[string]bool, len(candidates))
	for _, book := range candidates {
		candidateSet[book.ID] = true
	}

	for neighborID, neighbor := range weights {
		if neighborID == userID {
			continue
		}
		similarity := 0.0
		for bookID, w := range history {
			nw, ok := neighbor[bookID]
			if !ok {
				continue
			}
			similarity += math.Min(w, nw)
		}
		if similarity == 0 {
			continue
		}
		for bookID, nw := range neighbor {
			if !candidateSet[bookID] {
				continue
			}
			scores[bookID] += similarity * nw
		}
	}

	maxScore := 0.0
	for _, s := range scores {
		if s > maxScore {
			maxScore = s
		}
	}
	if maxScore > 0 {
		for bookID := range scores {
			scores[bookID] /= maxScore
		}
	}
	return scores
}

// contentScores matches candidates against the user's stated taste:
// genre overlap ratio plus a flat author bonus, clamped to [0,1].
func contentScores(pref *domain.UserPreference, candidates []*domain.Book) map[string]float64 {
	scores := make(map[string]float64, len(candidates))
	if pref == nil {
		return scores
	}

	favoriteGenres := normalize.TagSet(pref.FavoriteGenres)
	favoriteAuthors := make(map[string]bool, len(pref.FavoriteAuthors))
	for _, author := range pref.FavoriteAuthors {
		if a := normalize.Author(author); a != "" {
			favoriteAuthors[a] = true
		}
	}

	for _, book := range candidates {
		score := 0.0
		if len(favoriteGenres) > 0 {
			matched := 0
			for _, genre := range normalize.Tags(book.Genres) {
				if favoriteGenres[genre] {
					matched++
				}
			}
			score = float64(matched) / float64(len(favoriteGenres))
		}
		if favoriteAuthors[normalize.Author(book.Author)] {
			score += 0.5
		}
		if score > 1 {
			score = 1
		}
		if score > 0 {
			scores[book.ID] = score
		}
	}
	return scores
}

// recommendPopular is the cold-start fallback: interaction counts
// blended with catalog recency, so new users see what is both read and
// fresh.
func (e *Engine) recommendPopular(ctx context.Context, userID string, candidates []*domain.Book, limit int) ([]domain.RecommendationResult, error) {
	counts, err := e.journal.BookCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load book counts: %w", err)
	}

	maxCount := 0
	for _, book := range candidates {
		if c := counts[book.ID]; c > maxCount {
			maxCount = c
		}
	}

	// Recency rank over the candidate set, newest first. Rank-based
	// rather than wall-clock so results stay deterministic.
	byRecency := make([]*domain.Book, len(candidates))
	copy(byRecency, candidates)
	sort.Slice(byRecency, func(i, j int) bool {
		if !byRecency[i].CreatedAt.Equal(byRecency[j].CreatedAt) {
			return byRecency[i].CreatedAt.After(byRecency[j].CreatedAt)
		}
		return byRecency[i].ID < byRecency[j].ID
	})
	recency := make(map[string]float64, len(byRecency))
	for i, book := range byRecency {
		recency[book.ID] = 1 - float64(i)/float64(len(byRecency))
	}

	results := make([]domain.RecommendationResult, 0, len(candidates))
	for _, book := range candidates {
		popularity := 0.0
		if maxCount > 0 {
			popularity = float64(counts[book.ID]) / float64(maxCount)
		}
		results = append(results, domain.RecommendationResult{
			BookID: book.ID,
			Score:  popularityWeight*popularity + recencyWeight*recency[book.ID],
			Reason: ReasonPopular,
		})
	}

	sortResults(results)
	if len(results) > limit {
		results = results[:limit]
	}

	e.logger.Debug("cold-start recommendations computed",
		"user_id", userID,
		"returned", len(results))
	return results, nil
}

// sortResults orders by score descending, book ID ascending on ties.
func sortResults(results []domain.RecommendationResult) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].BookID < results[j].BookID
	})
}
