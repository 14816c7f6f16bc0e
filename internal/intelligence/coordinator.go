// Package intelligence coordinates background generation of book
// summaries and review consensuses.
//
// Key design principles:
//   - Triggers are fire-and-forget; callers never block on generation
//   - Single-flight per (book, kind): concurrent triggers coalesce into
//     at most one pending rerun, never a queue
//   - No lock is held across the provider call; only the consensus
//     commit is transactional (optimistic CAS on consensus_version)
package intelligence

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/luminalib/lumina-server/internal/domain"
	"github.com/luminalib/lumina-server/internal/llm"
	"github.com/luminalib/lumina-server/internal/prompt"
	"github.com/luminalib/lumina-server/internal/storage"
	"github.com/luminalib/lumina-server/internal/store"
)

// Kind identifies which derived field a flight regenerates.
type Kind string

// Generation kinds.
const (
	KindSummary   Kind = "summary"
	KindConsensus Kind = "consensus"
)

// State describes where a (book, kind) pair is in its generation lifecycle.
type State string

// Generation states. Idle means never attempted; failed is sticky until
// the next trigger so callers can tell "no summary yet" from "generation
// broke".
const (
	StateIdle     State = "idle"
	StateInFlight State = "in_flight"
	StateReady    State = "ready"
	StateFailed   State = "failed"
)

// flightKey identifies a single-flight slot.
type flightKey struct {
	bookID string
	kind   Kind
}

// flight tracks one in-progress generation and its coalesced rerun flag.
type flight struct {
	mu    sync.Mutex
	rerun bool
	done  bool
}

// Coordinator schedules and runs generation flights.
type Coordinator struct {
	store    *store.Store
	storage  *storage.Storage
	provider llm.Provider
	logger   *slog.Logger

	timeout     time.Duration
	maxAttempts int
	backoffBase time.Duration

	flights *SyncMap[flightKey, *flight]
	states  *SyncMap[flightKey, State]

	wg sync.WaitGroup
}

// Options configures a Coordinator.
type Options struct {
	Store    *store.Store
	Storage  *storage.Storage
	Provider llm.Provider
	Logger   *slog.Logger

	// Timeout bounds a single provider call.
	Timeout time.Duration
	// MaxAttempts caps attempts for retryable consensus failures.
	MaxAttempts int
	// BackoffBase is the first retry delay; it doubles per attempt.
	// Defaults to one second.
	BackoffBase time.Duration
}

// New creates a Coordinator.
func New(opts Options) *Coordinator {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	maxAttempts := opts.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	backoffBase := opts.BackoffBase
	if backoffBase <= 0 {
		backoffBase = time.Second
	}

	return &Coordinator{
		store:       opts.Store,
		storage:     opts.Storage,
		provider:    opts.Provider,
		logger:      opts.Logger,
		timeout:     timeout,
		maxAttempts: maxAttempts,
		backoffBase: backoffBase,
		flights:     NewSyncMap[flightKey, *flight](),
		states:      NewSyncMap[flightKey, State](),
	}
}

// TriggerSummary schedules summary generation for a book.
// Returns immediately; generation happens in the background.
func (c *Coordinator) TriggerSummary(bookID string) {
	c.trigger(bookID, KindSummary)
}

// TriggerConsensus schedules review consensus regeneration for a book.
// Returns immediately; generation happens in the background.
func (c *Coordinator) TriggerConsensus(bookID string) {
	c.trigger(bookID, KindConsensus)
}

// State reports the generation state for a (book, kind) pair.
// Books that were never triggered report StateIdle.
func (c *Coordinator) State(bookID string, kind Kind) State {
	state, ok := c.states.Load(flightKey{bookID: bookID, kind: kind})
	if !ok {
		return StateIdle
	}
	return state
}

// Wait blocks until all in-flight generations finish.
// Used during shutdown and in tests; provider timeouts bound the wait.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

func (c *Coordinator) trigger(bookID string, kind Kind) {
	key := flightKey{bookID: bookID, kind: kind}

	for {
		f, loaded := c.flights.LoadOrStore(key, &flight{})
		if !loaded {
			c.states.Store(key, StateInFlight)
			c.wg.Add(1)
			go c.run(key, f)
			return
		}

		f.mu.Lock()
		if f.done {
			// The flight finished between Load and here; retry with a fresh slot.
			f.mu.Unlock()
			continue
		}
		// Coalesce: one pending rerun at most, no matter how many triggers land.
		f.rerun = true
		f.mu.Unlock()
		return
	}
}

// run executes a flight, rerunning once per coalesced trigger.
func (c *Coordinator) run(key flightKey, f *flight) {
	defer c.wg.Done()

	for {
		c.states.Store(key, StateInFlight)

		rerun, err := c.execute(key)
		if err != nil {
			c.states.Store(key, StateFailed)
			if c.logger != nil {
				c.logger.Error("generation failed",
					"book_id", key.bookID, "kind", string(key.kind), "error", err)
			}
		} else {
			c.states.Store(key, StateReady)
		}

		f.mu.Lock()
		if f.rerun || rerun {
			f.rerun = false
			f.mu.Unlock()
			continue
		}
		f.done = true
		c.flights.Delete(key)
		f.mu.Unlock()
		return
	}
}

// execute runs one generation attempt cycle for the key.
// The rerun result requests one follow-up flight (CAS loss).
func (c *Coordinator) execute(key flightKey) (rerun bool, err error) {
	switch key.kind {
	case KindSummary:
		return false, c.generateSummary(key.bookID)
	case KindConsensus:
		return c.generateConsensus(key.bookID)
	default:
		return false, fmt.Errorf("unknown generation kind %q", key.kind)
	}
}

// generateSummary produces a summary for a book that doesn't have one.
// Idempotent: if a summary exists the provider is not invoked, and the
// store write itself no-ops if a summary appeared meanwhile.
func (c *Coordinator) generateSummary(bookID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	book, err := c.store.GetBook(ctx, bookID)
	if err != nil {
		return fmt.Errorf("load book: %w", err)
	}
	if book.HasSummary() {
		return nil
	}

	content, err := c.storage.Read(book.ID, book.FileType)
	if err != nil {
		return fmt.Errorf("read book content: %w", err)
	}

	messages, err := prompt.RenderBookSummary(string(content))
	if err != nil {
		return fmt.Errorf("render summary prompt: %w", err)
	}

	text, err := c.provider.Generate(ctx, llm.GenerateRequest{
		System:    messages.System,
		User:      messages.User,
		MaxTokens: prompt.SummarizeBook.MaxTokens,
	})
	if err != nil {
		return fmt.Errorf("generate summary: %w", err)
	}

	if err := c.store.SetBookSummary(ctx, bookID, text); err != nil {
		return fmt.Errorf("store summary: %w", err)
	}

	if c.logger != nil {
		c.logger.Info("summary generated", "book_id", bookID, "chars", len(text))
	}
	return nil
}

// generateConsensus regenerates the review consensus for a book.
// The stored consensus_version is snapshotted before generation; the
// commit succeeds only if it hasn't moved. A lost CAS means a newer
// flight already committed, so the result is dropped and one follow-up
// flight picks up the newer reviews.
func (c *Coordinator) generateConsensus(bookID string) (rerun bool, err error) {
	loadCtx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	book, err := c.store.GetBook(loadCtx, bookID)
	if err != nil {
		return false, fmt.Errorf("load book: %w", err)
	}
	snapshotVersion := book.ConsensusVersion

	reviewList, err := c.store.ListBookReviews(loadCtx, bookID)
	if err != nil {
		return false, fmt.Errorf("load reviews: %w", err)
	}
	if len(reviewList) == 0 {
		return false, nil
	}

	reviews := make([]domain.Review, 0, len(reviewList))
	for _, r := range reviewList {
		reviews = append(reviews, *r)
	}

	previous := ""
	if book.HasConsensus() {
		previous = *book.ReviewConsensus
	}

	messages, err := prompt.RenderReviewConsensus(reviews, previous)
	if err != nil {
		return false, fmt.Errorf("render consensus prompt: %w", err)
	}

	text, err := c.generateWithRetry(llm.GenerateRequest{
		System:    messages.System,
		User:      messages.User,
		MaxTokens: prompt.ReviewConsensus.MaxTokens,
	})
	if err != nil {
		return false, fmt.Errorf("generate consensus: %w", err)
	}

	commitCtx, cancelCommit := context.WithTimeout(context.Background(), c.timeout)
	defer cancelCommit()

	swapped, err := c.store.CompareAndSwapConsensus(commitCtx, bookID, snapshotVersion, text)
	if err != nil {
		return false, fmt.Errorf("commit consensus: %w", err)
	}
	if !swapped {
		// A concurrent flight committed first. The generated text is
		// stale, so drop it and run once more against the new version.
		if c.logger != nil {
			c.logger.Debug("consensus version moved, rerunning",
				"book_id", bookID, "snapshot_version", snapshotVersion)
		}
		return true, nil
	}

	if c.logger != nil {
		c.logger.Info("consensus committed",
			"book_id", bookID, "version", snapshotVersion+1, "reviews", len(reviews))
	}
	return false, nil
}

// generateWithRetry calls the provider with exponential backoff.
// Only errors the provider marks retryable are retried; each attempt
// gets its own timeout.
func (c *Coordinator) generateWithRetry(req llm.GenerateRequest) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		text, err := c.provider.Generate(ctx, req)
		cancel()

		if err == nil {
			return text, nil
		}
		lastErr = err

		if !llm.IsRetryable(err) || attempt == c.maxAttempts {
			break
		}

		delay := c.backoffBase << (attempt - 1)
		if c.logger != nil {
			c.logger.Warn("generation attempt failed, backing off",
				"attempt", attempt, "delay", delay, "error", err)
		}
		time.Sleep(delay)
	}

	return "", lastErr
}
