package domain

import "time"

// UserPreference holds a user's stated taste, used by the recommender's
// content scoring. One record per user, upserted in place.
type UserPreference struct {
	UserID          string    `json:"user_id"`
	FavoriteGenres  []string  `json:"favorite_genres,omitempty"`
	FavoriteAuthors []string  `json:"favorite_authors,omitempty"`
	UpdatedAt       time.Time `json:"updated_at"`
}
