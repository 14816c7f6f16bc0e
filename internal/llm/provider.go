// Package llm defines the text generation provider contract and its
// implementations. Providers only transport a rendered prompt to a
// backend and surface failures uniformly; retry policy lives with the
// caller, not here.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/luminalib/lumina-server/internal/config"
)

// GenerateRequest carries a rendered prompt to a provider.
type GenerateRequest struct {
	// System is the persona and constraint message.
	System string
	// User is the rendered user message.
	User string
	// MaxTokens is the output budget requested from the backend.
	MaxTokens int
}

// Provider generates text from a (system, user) message pair. Calls may
// be long-running network operations and must honor ctx cancellation.
type Provider interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
	Name() string
}

// GenerationError wraps every provider failure with a retryable flag so
// the caller can decide whether backing off makes sense. Network errors,
// 5xx responses, and timeouts are retryable; 4xx and auth failures are not.
type GenerationError struct {
	Provider  string
	Retryable bool
	cause     error
}

func (e *GenerationError) Error() string {
	kind := "permanent"
	if e.Retryable {
		kind = "retryable"
	}
	return fmt.Sprintf("%s generation failed (%s): %v", e.Provider, kind, e.cause)
}

func (e *GenerationError) Unwrap() error {
	return e.cause
}

// IsRetryable reports whether err is a retryable generation failure.
func IsRetryable(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr) && genErr.Retryable
}

// failed wraps err as a GenerationError, classifying context deadline
// and cancellation as retryable.
func failed(provider string, retryable bool, err error) *GenerationError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		retryable = true
	}
	return &GenerationError{Provider: provider, Retryable: retryable, cause: err}
}

// statusRetryable classifies an HTTP status code. 5xx and 429 are worth
// retrying; everything else in the error range is a caller problem.
func statusRetryable(status int) bool {
	return status >= 500 || status == 429
}

// New selects a provider from configuration at process start.
func New(cfg config.GenerationConfig, log *slog.Logger) (Provider, error) {
	switch cfg.Provider {
	case config.ProviderMock:
		return NewMock(300*time.Millisecond, log), nil
	case config.ProviderLocal:
		return NewOllama(cfg.BaseURL, cfg.Model, log), nil
	case config.ProviderHosted:
		return NewOpenAI(cfg.APIKey, cfg.Model, log), nil
	default:
		return nil, fmt.Errorf("unknown generation provider %q", cfg.Provider)
	}
}
