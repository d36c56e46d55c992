// Package embeddings provides embedding generation functionality.
package embeddings

import (
	"context"
)

// DefaultDimension is the embedding length used when none is configured.
const DefaultDimension = 1536

// Client provides embedding generation functionality
type Client interface {
	// EmbedQuery generates an embedding vector for a search query
	EmbedQuery(ctx context.Context, query string) ([]float32, error)

	// EmbedDocuments generates embedding vectors for stored documents
	EmbedDocuments(ctx context.Context, documents []string) ([][]float32, error)
}

// ZeroClient returns all-zero vectors of a fixed dimension. It stands in for
// the provider when no credential is configured.
type ZeroClient struct {
	dimension int
}

// NewZeroClient creates a ZeroClient producing vectors of length dimension.
func NewZeroClient(dimension int) *ZeroClient {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	return &ZeroClient{dimension: dimension}
}

func (c *ZeroClient) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	return make([]float32, c.dimension), nil
}

func (c *ZeroClient) EmbedDocuments(ctx context.Context, documents []string) ([][]float32, error) {
	out := make([][]float32, len(documents))
	for i := range documents {
		out[i] = make([]float32, c.dimension)
	}
	return out, nil
}
