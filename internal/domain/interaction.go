package domain

import "time"

// InteractionType classifies a journal event.
type InteractionType string

const (
	InteractionBorrow InteractionType = "borrow"
	InteractionReturn InteractionType = "return"
	InteractionReview InteractionType = "review"
)

// Interaction is a single append-only journal event. Interactions are the
// behavioral signal behind collaborative recommendations and are never
// updated or deleted once written.
type Interaction struct {
	ID        int64           `json:"id"`
	UserID    string          `json:"user_id"`
	BookID    string          `json:"book_id"`
	Type      InteractionType `json:"type"`
	Rating    *float64        `json:"rating,omitempty"` // set for review events
	CreatedAt time.Time       `json:"created_at"`
}

// Weight returns the affinity weight of this interaction for
// collaborative scoring. Rated events carry their rating, everything
// else counts as a neutral signal.
func (i *Interaction) Weight() float64 {
	if i.Rating != nil {
		return *i.Rating
	}
	return 3.0
}
