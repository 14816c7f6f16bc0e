package llm

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/luminalib/lumina-server/internal/prompt"
)

// Mock is a deterministic provider for running without a GPU or API
// access. Responses are derived from simple statistics of the input so
// tests can assert on them, and an artificial latency exercises the
// timeout and cancellation paths of callers.
type Mock struct {
	latency time.Duration
	logger  *slog.Logger
}

// NewMock creates a mock provider with the given artificial latency.
func NewMock(latency time.Duration, log *slog.Logger) *Mock {
	return &Mock{latency: latency, logger: log}
}

// Name implements Provider.
func (m *Mock) Name() string {
	return "mock"
}

var ratingPattern = regexp.MustCompile(`\[Rating: (\d)/5\]`)

// Generate implements Provider. Consensus-shaped prompts (carrying a
// reviews block) get a sentiment-banded consensus; everything else gets
// a summary derived from the input's word count.
func (m *Mock) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	if m.latency > 0 {
		timer := time.NewTimer(m.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", failed(m.Name(), true, ctx.Err())
		case <-timer.C:
		}
	}

	if strings.Contains(req.User, "--- REVIEWS (START) ---") {
		return m.consensus(req.User), nil
	}
	return m.summary(req.User), nil
}

func (m *Mock) summary(user string) string {
	content := extractBlock(user, "--- BOOK CONTENT (START) ---", "--- BOOK CONTENT (END) ---")
	words := len(strings.Fields(content))
	tokens := prompt.EstimateTokens(content)

	m.logger.Info("mock summary generated", "words", words, "estimated_tokens", tokens)

	return fmt.Sprintf(
		"This book contains approximately %d words across its content "+
			"(estimated %d tokens). It explores compelling themes through "+
			"well-structured prose, presenting arguments that build methodically "+
			"from foundational concepts to complex conclusions.\n\n"+
			"The author demonstrates deep expertise in the subject matter, weaving "+
			"together narrative elements with analytical insights. Key themes include "+
			"the interplay between theory and practice, the evolution of ideas over "+
			"time, and their practical implications for readers.\n\n"+
			"This work is recommended for both casual readers seeking an accessible "+
			"introduction and scholars looking for a comprehensive reference. The "+
			"writing style balances academic rigor with engaging readability.",
		words, tokens)
}

func (m *Mock) consensus(user string) string {
	ratings := ratingPattern.FindAllStringSubmatch(user, -1)
	count := len(ratings)

	var avg float64
	if count > 0 {
		var sum int
		for _, match := range ratings {
			n, _ := strconv.Atoi(match[1])
			sum += n
		}
		avg = float64(sum) / float64(count)
	}

	var sentiment string
	switch {
	case avg >= 4.0:
		sentiment = "overwhelmingly positive"
	case avg >= 3.0:
		sentiment = "generally positive with some reservations"
	case avg >= 2.0:
		sentiment = "mixed, with both praise and criticism"
	default:
		sentiment = "predominantly critical"
	}

	m.logger.Info("mock consensus generated", "reviews", count, "avg_rating", avg)

	return fmt.Sprintf(
		"Based on %d reader reviews with an average rating of %.1f/5, "+
			"the overall sentiment is %s.\n\n"+
			"Reviewers commonly praise the depth of content and quality of writing. "+
			"Some readers note that certain sections require careful attention, while "+
			"others appreciate the thoroughness of the coverage. The book's structure "+
			"receives generally positive feedback.\n\n"+
			"This book is recommended for readers with a genuine interest in the "+
			"subject matter who appreciate detailed, well-researched content.",
		count, avg, sentiment)
}

// extractBlock returns the text between two delimiters, or the whole
// input if the delimiters are absent.
func extractBlock(s, start, end string) string {
	i := strings.Index(s, start)
	if i < 0 {
		return s
	}
	s = s[i+len(start):]
	if j := strings.Index(s, end); j >= 0 {
		s = s[:j]
	}
	return strings.TrimSpace(s)
}
