package prompt

import (
	"fmt"
	"strings"

	"github.com/luminalib/lumina-server/internal/domain"
)

// SummarizeBook produces catalog summaries from raw book content.
var SummarizeBook = &Template{
	Name:    "summarize_book",
	Version: "1.2.0",
	System: "You are a skilled literary analyst working for a digital library system. " +
		"Your role is to produce clear, informative book summaries suitable for a " +
		"library catalog.\n\n" +
		"Guidelines:\n" +
		"- Write 3-5 concise paragraphs.\n" +
		"- Cover main themes, structure, and key arguments or plot points.\n" +
		"- Do NOT include spoilers for fiction.\n" +
		"- Use a neutral, professional tone.\n" +
		"- Mention who would benefit most from reading this book.\n" +
		"- If the content appears to be partial or corrupted, note this clearly.",
	UserTemplate: "Please summarize the following book content.\n\n" +
		"--- BOOK CONTENT (START) ---\n" +
		"{content}\n" +
		"--- BOOK CONTENT (END) ---\n\n" +
		"Provide a comprehensive summary in 3-5 paragraphs:",
	MaxTokens:        1024,
	InputTokenBudget: 4000,
	Tags:             []string{"summarization", "book", "ingestion"},
}

// ReviewConsensus synthesizes reader reviews into a balanced consensus.
// When a previous consensus exists it is framed as the starting point so
// the model updates rather than restarts.
var ReviewConsensus = &Template{
	Name:    "review_consensus",
	Version: "1.1.0",
	System: "You are a sentiment analysis expert specializing in literary reviews. " +
		"Your task is to synthesize multiple reader opinions into a balanced, " +
		"nuanced consensus.\n\n" +
		"Guidelines:\n" +
		"- Produce 2-3 paragraphs.\n" +
		"- Identify areas of agreement and disagreement among reviewers.\n" +
		"- Note the overall sentiment (positive, mixed, negative) with nuance.\n" +
		"- Highlight commonly praised strengths and commonly cited weaknesses.\n" +
		"- Conclude with who would likely enjoy this book.\n" +
		"- If a previous consensus exists, update it - don't start from scratch.",
	UserTemplate: "{previous_consensus_section}" +
		"Below are reader reviews for this book:\n\n" +
		"--- REVIEWS (START) ---\n" +
		"{reviews_text}\n" +
		"--- REVIEWS (END) ---\n\n" +
		"Synthesize these into an updated consensus summary:",
	MaxTokens:        512,
	InputTokenBudget: 3000,
	Tags:             []string{"sentiment", "reviews", "consensus"},
}

// registry indexes all templates by name for lookup and future API exposure.
var registry = map[string]*Template{
	SummarizeBook.Name:   SummarizeBook,
	ReviewConsensus.Name: ReviewConsensus,
}

// Get retrieves a template by name.
func Get(name string) (*Template, error) {
	t, ok := registry[name]
	if !ok {
		names := make([]string, 0, len(registry))
		for n := range registry {
			names = append(names, n)
		}
		return nil, fmt.Errorf("prompt %q not found, available: %s", name, strings.Join(names, ", "))
	}
	return t, nil
}

// Names returns the registered template names.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	return names
}

// RenderBookSummary renders the summarization prompt with safe truncation.
func RenderBookSummary(content string) (Messages, error) {
	return SummarizeBook.RenderWithTruncation("content", map[string]string{
		"content": content,
	})
}

// RenderReviewConsensus renders the consensus prompt from reviews and an
// optional previous consensus. Reviews are formatted as rating-tagged
// blocks; only the concatenated reviews are subject to truncation.
func RenderReviewConsensus(reviews []domain.Review, previousConsensus string) (Messages, error) {
	blocks := make([]string, 0, len(reviews))
	for _, r := range reviews {
		blocks = append(blocks, fmt.Sprintf("[Rating: %d/5]\n%s", r.Rating, r.Text))
	}

	previousSection := ""
	if previousConsensus != "" {
		previousSection = "--- PREVIOUS CONSENSUS (START) ---\n" +
			previousConsensus + "\n" +
			"--- PREVIOUS CONSENSUS (END) ---\n\n" +
			"Update the above consensus with the new reviews below.\n\n"
	}

	return ReviewConsensus.RenderWithTruncation("reviews_text", map[string]string{
		"reviews_text":               strings.Join(blocks, "\n\n"),
		"previous_consensus_section": previousSection,
	})
}
