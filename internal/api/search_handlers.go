package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/luminalib/lumina-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "search",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search catalog",
		Description: "Full-text search over book titles, authors, and genres",
		Tags:        []string{"Search"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSearch)
}

// === DTOs ===

// SearchInput contains parameters for searching the catalog.
type SearchInput struct {
	Authorization string `header:"Authorization"`
	Query         string `query:"q" doc:"Search query"`
	Genres        string `query:"genres" doc:"Comma-separated genre filter"`
	Limit         int    `query:"limit" doc:"Max results (default 20)"`
	Offset        int    `query:"offset" doc:"Pagination offset (default 0)"`
	SortBy        string `query:"sort_by" doc:"Sort field: relevance, title, author, or recent"`
	SortOrder     string `query:"sort_order" doc:"Sort direction: asc or desc"`
}

// SearchHitResult contains a single search result.
type SearchHitResult struct {
	ID     string   `json:"id" doc:"Book ID"`
	Score  float64  `json:"score" doc:"Search relevance score"`
	Title  string   `json:"title" doc:"Book title"`
	Author string   `json:"author,omitempty" doc:"Book author"`
	ISBN   string   `json:"isbn,omitempty" doc:"ISBN identifier"`
	Genres []string `json:"genres,omitempty" doc:"Genre tags"`
}

// SearchResponse contains search results.
type SearchResponse struct {
	Query  string            `json:"query" doc:"Original search query"`
	Total  uint64            `json:"total" doc:"Total matches"`
	TookMs int64             `json:"took_ms" doc:"Search duration in milliseconds"`
	Hits   []SearchHitResult `json:"hits" doc:"Search results"`
}

// SearchOutput wraps the search response for Huma.
type SearchOutput struct {
	Body SearchResponse
}

// === Handlers ===

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	params := search.DefaultParams()
	params.Query = input.Query
	if input.Limit > 0 {
		params.Limit = input.Limit
	}
	if input.Offset > 0 {
		params.Offset = input.Offset
	}
	if input.SortBy != "" {
		params.SortBy = input.SortBy
	}
	if input.SortOrder != "" {
		params.SortOrder = input.SortOrder
	}

	// Genre filter - parse comma-separated tags
	if input.Genres != "" {
		for g := range strings.SplitSeq(input.Genres, ",") {
			g = strings.TrimSpace(g)
			if g != "" {
				params.Genres = append(params.Genres, g)
			}
		}
	}

	result, err := s.services.Search.Search(ctx, params)
	if err != nil {
		return nil, err
	}

	hits := make([]SearchHitResult, 0, len(result.Hits))
	for _, hit := range result.Hits {
		hits = append(hits, SearchHitResult{
			ID:     hit.ID,
			Score:  hit.Score,
			Title:  hit.Title,
			Author: hit.Author,
			ISBN:   hit.ISBN,
			Genres: hit.Genres,
		})
	}

	return &SearchOutput{
		Body: SearchResponse{
			Query:  result.Query,
			Total:  result.Total,
			TookMs: result.TookMs,
			Hits:   hits,
		},
	}, nil
}
