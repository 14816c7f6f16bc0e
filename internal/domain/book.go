// Package domain contains the core business entities and domain logic for the Lumina library.
package domain

// Book represents a catalog entry with its content file and derived intelligence fields.
type Book struct {
	Syncable
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	ISBN     string   `json:"isbn,omitempty"`
	Genres   []string `json:"genres,omitempty"`
	FilePath string   `json:"file_path"`
	FileType string   `json:"file_type"`

	// Derived fields, written only through the intelligence coordinator.
	Summary         *string `json:"summary,omitempty"`
	ReviewConsensus *string `json:"review_consensus,omitempty"`
	// ConsensusVersion increments by exactly one per committed consensus
	// regeneration. Starts at 0 for books with no consensus yet.
	ConsensusVersion int `json:"consensus_version"`
}

// HasSummary returns true if a summary has been generated for this book.
func (b *Book) HasSummary() bool {
	return b.Summary != nil && *b.Summary != ""
}

// HasConsensus returns true if a review consensus has been generated.
func (b *Book) HasConsensus() bool {
	return b.ReviewConsensus != nil && *b.ReviewConsensus != ""
}
