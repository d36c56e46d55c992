// Package genai provides a Google Generative AI embeddings client.
package genai

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"
)

const (
	// DefaultModel is the default embedding model
	DefaultModel = "gemini-embedding-001"

	taskTypeQuery    = "RETRIEVAL_QUERY"
	taskTypeDocument = "RETRIEVAL_DOCUMENT"
)

// Config holds the configuration for the Generative AI client.
// Vertex AI is used when ProjectID is set, the Gemini API otherwise.
type Config struct {
	APIKey    string
	ProjectID string
	Location  string
	Model     string
	Dimension int
}

// Client is a Google Generative AI embeddings client. It makes exactly one
// API call per text and never retries.
type Client struct {
	client    *genai.Client
	model     string
	dimension int
	log       *slog.Logger
}

// ClientOption configures the Client
type ClientOption func(*Client)

// WithLogger sets the logger
func WithLogger(log *slog.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient creates a new Google Generative AI embeddings client
func NewClient(ctx context.Context, cfg Config, opts ...ClientOption) (*Client, error) {
	if cfg.APIKey == "" && cfg.ProjectID == "" {
		return nil, fmt.Errorf("API key or GCP project is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.ProjectID != "" {
		cc = &genai.ClientConfig{
			Project:  cfg.ProjectID,
			Location: cfg.Location,
			Backend:  genai.BackendVertexAI,
		}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	c := &Client{
		client:    client,
		model:     cfg.Model,
		dimension: cfg.Dimension,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// EmbedQuery generates an embedding for a single query
func (c *Client) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	return c.embed(ctx, query, taskTypeQuery)
}

// EmbedDocuments generates embeddings for multiple documents
func (c *Client) EmbedDocuments(ctx context.Context, documents []string) ([][]float32, error) {
	out := make([][]float32, 0, len(documents))
	for i, doc := range documents {
		vec, err := c.embed(ctx, doc, taskTypeDocument)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		out = append(out, vec)
	}
	return out, nil
}

func (c *Client) embed(ctx context.Context, text, taskType string) ([]float32, error) {
	cfg := &genai.EmbedContentConfig{TaskType: taskType}
	if c.dimension > 0 {
		dim := int32(c.dimension)
		cfg.OutputDimensionality = &dim
	}

	result, err := c.client.Models.EmbedContent(ctx, c.model, genai.Text(text), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to embed text: %w", err)
	}
	if len(result.Embeddings) == 0 || result.Embeddings[0] == nil {
		return nil, fmt.Errorf("no embeddings returned for text")
	}

	c.log.Debug("embedding generated",
		slog.String("model", c.model),
		slog.String("task_type", taskType),
		slog.Int("dimension", len(result.Embeddings[0].Values)),
	)
	return result.Embeddings[0].Values, nil
}
