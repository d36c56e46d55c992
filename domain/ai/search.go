package ai

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/Kantosaurus/test-01/pkg/apperror"
	"github.com/Kantosaurus/test-01/pkg/mathutil"
	"github.com/Kantosaurus/test-01/pkg/metrics"
)

// Search limits.
const (
	DefaultSearchLimit = 20
	MaxSearchLimit     = 100
)

// Search ranks indexed emails by cosine similarity to the query. When the
// query embeds to the zero vector it falls back to substring matching. A
// blank query is never embedded and matches every email.
func (s *Service) Search(ctx context.Context, req *SearchRequest) (*SearchResponse, error) {
	query := strings.TrimSpace(req.Query)
	limit := mathutil.ClampLimit(req.Limit, DefaultSearchLimit, MaxSearchLimit)

	if query == "" {
		return s.textSearch(ctx, query, limit)
	}

	vec, err := s.embeddings.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	if mathutil.IsZeroVector(vec) {
		return s.textSearch(ctx, query, limit)
	}

	metrics.SearchRequests.WithLabelValues(ModeSemantic).Inc()
	candidates, err := s.repo.Indexed(ctx)
	if err != nil {
		return nil, apperror.NewDatabase(err)
	}
	results := Rank(vec, candidates, limit)

	s.log.Debug("semantic search",
		slog.Int("candidates", len(candidates)),
		slog.Int("results", len(results)),
	)
	return &SearchResponse{Results: results, Mode: ModeSemantic}, nil
}

func (s *Service) textSearch(ctx context.Context, query string, limit int) (*SearchResponse, error) {
	metrics.SearchRequests.WithLabelValues(ModeText).Inc()
	results, err := s.repo.TextSearch(ctx, query, limit)
	if err != nil {
		return nil, apperror.NewDatabase(err)
	}
	return &SearchResponse{Results: results, Mode: ModeText}, nil
}

// Rank scores every candidate against query and returns the best limit
// results, highest score first. Ties keep candidate order.
func Rank(query []float32, candidates []Candidate, limit int) []SearchResult {
	results := make([]SearchResult, 0, len(candidates))
	for _, c := range candidates {
		results = append(results, SearchResult{
			EmailID: c.ID,
			Subject: c.Subject,
			Snippet: c.Snippet,
			Score:   mathutil.CosineSimilarity(query, c.Embedding),
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if limit >= 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}
