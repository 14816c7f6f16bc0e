package store

import (
	"fmt"
	"time"
)

// formatTimestampIndexKey creates a timestamp index key with sortable timestamp.
// We use a custom format with zero-padded nanoseconds to ensure lexicographic sorting works correctly.
// Format: {prefix}{YYYY-MM-DDTHH:MM:SS.NNNNNNNNNZ}:{entityType}:{entityID}.
// Example: idx:reviews:book:book-123:2024-01-15T10:30:00.123456789Z:review:rev-456.
func formatTimestampIndexKey(prefix string, timestamp time.Time, entityType, entityID string) []byte {
	// Use custom format with fixed-width nanoseconds (always 9 digits).
	// This ensures proper lexicographic sorting of timestamps.
	timestampStr := timestamp.UTC().Format("2006-01-02T15:04:05") + fmt.Sprintf(".%09d", timestamp.Nanosecond()) + "Z"
	return fmt.Appendf(nil, "%s%s:%s:%s", prefix, timestampStr, entityType, entityID)
}
