package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

// ErrNotConfigured is returned by providers without credentials.
var ErrNotConfigured = errors.New("llm provider not configured")

// GenAIConfig configures a GenAIClient. Vertex AI is used when ProjectID is
// set, the Gemini API otherwise.
type GenAIConfig struct {
	APIKey          string
	ProjectID       string
	Location        string
	Model           string
	MaxOutputTokens int
	Temperature     float64
	Timeout         time.Duration
}

// GenAIClient completes prompts with Google's Generative AI models.
type GenAIClient struct {
	client *genai.Client
	cfg    GenAIConfig
}

// NewGenAIClient creates a completion client.
func NewGenAIClient(ctx context.Context, cfg GenAIConfig) (*GenAIClient, error) {
	if cfg.APIKey == "" && cfg.ProjectID == "" {
		return nil, ErrNotConfigured
	}

	cc := &genai.ClientConfig{APIKey: cfg.APIKey, Backend: genai.BackendGeminiAPI}
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
	return &GenAIClient{client: client, cfg: cfg}, nil
}

// Complete sends one non-streaming generation request.
func (c *GenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	temp := float32(c.cfg.Temperature)
	resp, err := c.client.Models.GenerateContent(ctx, c.cfg.Model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: int32(c.cfg.MaxOutputTokens),
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return "", fmt.Errorf("empty completion from model %s", c.cfg.Model)
	}
	return text, nil
}

func (c *GenAIClient) IsConfigured() bool { return true }

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(sb.String())
}
