// Package normalize provides utilities for normalizing and sanitizing
// user-supplied catalog data. Genre tags and author names are normalized
// to a canonical form so the recommender and search compare like with like.
package normalize

import "strings"

// sanitizeString removes null bytes from strings, which can cause
// issues in databases and JSON parsing.
func sanitizeString(s string) string {
	return strings.Map(func(r rune) rune {
		if r == 0 { // null byte
			return -1 // drop it
		}
		return r
	}, s)
}

// collapseSpaces trims and collapses runs of whitespace into single spaces.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Tag normalizes a single genre tag to its canonical form:
// lowercase, trimmed, inner whitespace collapsed.
// Returns empty string for blank input.
func Tag(raw string) string {
	return strings.ToLower(collapseSpaces(sanitizeString(raw)))
}

// Tags normalizes a list of genre tags, dropping blanks and duplicates
// while preserving first-seen order.
func Tags(raw []string) []string {
	if len(raw) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		t := Tag(r)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// TagSet normalizes a list of genre tags into a membership set.
func TagSet(raw []string) map[string]bool {
	set := make(map[string]bool, len(raw))
	for _, r := range raw {
		if t := Tag(r); t != "" {
			set[t] = true
		}
	}
	return set
}

// Author normalizes an author name for comparison. Case and surrounding
// whitespace are ignored; inner whitespace is collapsed so
// "Ursula K.  Le Guin" and "ursula k. le guin" compare equal.
func Author(raw string) string {
	return strings.ToLower(collapseSpaces(sanitizeString(raw)))
}

// SplitCSV splits a comma-separated value list into trimmed parts,
// dropping empties. Used for multipart form fields like genres.
func SplitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
