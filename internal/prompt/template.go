// Package prompt holds the versioned prompt templates used for text
// generation, along with token estimation and sentence-safe truncation.
// Templates are immutable values; rendering is pure and deterministic so
// the same inputs always produce the same provider messages.
package prompt

import (
	"fmt"
	"regexp"
	"strings"
)

// CharsPerToken is the rough estimate of 1 token per 4 characters of
// English text. It avoids a tokenizer dependency while staying safe for
// context limits.
const CharsPerToken = 4

// TruncationMarker is appended to any content that was cut to fit a
// token budget, so downstream consumers can tell the input was partial.
const TruncationMarker = "\n\n[Content truncated for processing]"

// EstimateTokens estimates token count from character length.
func EstimateTokens(text string) int {
	return len(text) / CharsPerToken
}

// TruncateToTokens truncates text to approximately maxTokens. The cut
// prefers the last sentence terminator inside the window, as long as it
// falls past 80% of the window, so content is not chopped mid-sentence.
func TruncateToTokens(text string, maxTokens int) string {
	maxChars := maxTokens * CharsPerToken
	if len(text) <= maxChars {
		return text
	}
	truncated := text[:maxChars]
	if last := strings.LastIndexAny(truncated, ".!?"); last > int(float64(maxChars)*0.8) {
		truncated = truncated[:last+1]
	}
	return truncated + TruncationMarker
}

// Messages is a rendered (system, user) pair ready for any provider.
type Messages struct {
	System string
	User   string
}

// MissingPlaceholderError reports a template placeholder that had no
// value supplied at render time.
type MissingPlaceholderError struct {
	Template    string
	Placeholder string
}

func (e *MissingPlaceholderError) Error() string {
	return fmt.Sprintf("template %q: no value for placeholder {%s}", e.Template, e.Placeholder)
}

// Template is an immutable prompt template with a system persona and a
// user message carrying {placeholder} variables. Each template is
// versioned so prompt iterations stay traceable.
type Template struct {
	// Name uniquely identifies the template for logging and lookup.
	Name string
	// Version is the semantic version of this prompt iteration.
	Version string
	// System defines the persona and constraints.
	System string
	// UserTemplate is the user message with {variable} placeholders.
	UserTemplate string
	// MaxTokens is the output budget requested from the provider.
	MaxTokens int
	// InputTokenBudget caps input content to prevent context overflow.
	InputTokenBudget int
	// Tags categorize the template.
	Tags []string
}

var placeholderPattern = regexp.MustCompile(`\{([a-z_]+)\}`)

// Render substitutes placeholders from vars and returns the message
// pair. Every placeholder in the user template must have a value, even
// an empty one; a missing key returns *MissingPlaceholderError.
func (t *Template) Render(vars map[string]string) (Messages, error) {
	var missing *MissingPlaceholderError
	user := placeholderPattern.ReplaceAllStringFunc(t.UserTemplate, func(m string) string {
		key := m[1 : len(m)-1]
		val, ok := vars[key]
		if !ok && missing == nil {
			missing = &MissingPlaceholderError{Template: t.Name, Placeholder: key}
		}
		return val
	})
	if missing != nil {
		return Messages{}, missing
	}
	return Messages{System: t.System, User: user}, nil
}

// RenderWithTruncation renders the template after truncating the named
// content field to the template's input token budget.
func (t *Template) RenderWithTruncation(contentKey string, vars map[string]string) (Messages, error) {
	if content, ok := vars[contentKey]; ok {
		truncated := TruncateToTokens(content, t.InputTokenBudget)
		if truncated != content {
			copied := make(map[string]string, len(vars))
			for k, v := range vars {
				copied[k] = v
			}
			copied[contentKey] = truncated
			vars = copied
		}
	}
	return t.Render(vars)
}
