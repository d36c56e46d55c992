package embeddings

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.uber.org/fx"
	"golang.org/x/time/rate"

	"github.com/Kantosaurus/test-01/internal/config"
	"github.com/Kantosaurus/test-01/pkg/apperror"
	"github.com/Kantosaurus/test-01/pkg/embeddings/genai"
	"github.com/Kantosaurus/test-01/pkg/logger"
	"github.com/Kantosaurus/test-01/pkg/metrics"
)

// Module provides the embeddings fx.Module
var Module = fx.Module("embeddings",
	fx.Provide(NewService),
)

// Service wraps the configured Client. Whether a real provider is available
// is decided once during startup and exposed through IsEnabled; when it is
// not, every call returns a zero vector of the configured dimension.
type Service struct {
	client    Client
	log       *slog.Logger
	enabled   bool
	dimension int
	limiter   *rate.Limiter
}

// NewService creates the embeddings service and initializes the provider
// client on application start.
func NewService(lc fx.Lifecycle, cfg *config.Config, log *slog.Logger) *Service {
	embCfg := cfg.Embeddings
	log = log.With(logger.Scope("embeddings"))

	svc := NewStaticService(NewZeroClient(embCfg.Dimension), embCfg.Dimension, false, log)
	svc.limiter = newLimiter(embCfg.RequestsPerMinute, embCfg.Burst)

	if !embCfg.IsEnabled() {
		log.Info("embeddings provider not configured, using zero-vector fallback",
			slog.Int("dimension", embCfg.Dimension))
		return svc
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("initializing Google Generative AI embeddings client",
				slog.String("model", embCfg.Model),
				slog.Bool("vertex", embCfg.UseVertexAI()),
				slog.Int("dimension", embCfg.Dimension),
			)

			gc := genai.Config{
				APIKey:    embCfg.GoogleAPIKey,
				Model:     embCfg.Model,
				Dimension: embCfg.Dimension,
			}
			if embCfg.UseVertexAI() {
				gc.ProjectID = embCfg.GCPProjectID
				gc.Location = embCfg.VertexAILocation
			}

			client, err := genai.NewClient(ctx, gc, genai.WithLogger(log))
			if err != nil {
				log.Error("failed to initialize embeddings client, keeping zero-vector fallback", logger.Error(err))
				return nil
			}
			svc.client = client
			svc.enabled = true
			return nil
		},
	})

	return svc
}

// NewStaticService builds a Service around an explicit client.
func NewStaticService(client Client, dimension int, enabled bool, log *slog.Logger) *Service {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	return &Service{
		client:    client,
		log:       log,
		enabled:   enabled,
		dimension: dimension,
	}
}

func newLimiter(perMinute, burst int) *rate.Limiter {
	if perMinute <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst)
}

// IsEnabled returns true if a real provider is available
func (s *Service) IsEnabled() bool {
	return s.enabled
}

// Dimension returns the expected vector length.
func (s *Service) Dimension() int {
	return s.dimension
}

// EmbedDocument embeds text that will be stored on an email.
func (s *Service) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	return s.embed(ctx, text, func(ctx context.Context) ([]float32, error) {
		vecs, err := s.client.EmbedDocuments(ctx, []string{text})
		if err != nil {
			return nil, err
		}
		if len(vecs) == 0 {
			return nil, fmt.Errorf("provider returned no embedding")
		}
		return vecs[0], nil
	})
}

// EmbedQuery embeds a search query.
func (s *Service) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	return s.embed(ctx, query, func(ctx context.Context) ([]float32, error) {
		return s.client.EmbedQuery(ctx, query)
	})
}

func (s *Service) embed(ctx context.Context, text string, call func(ctx context.Context) ([]float32, error)) ([]float32, error) {
	if !s.enabled {
		metrics.ProviderFallbacks.WithLabelValues("embed").Inc()
		return make([]float32, s.dimension), nil
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, apperror.NewProvider(fmt.Errorf("embedding rate limiter: %w", err))
		}
	}

	vec, err := call(ctx)
	if err == nil && len(vec) != s.dimension {
		err = fmt.Errorf("provider returned %d dimensions, expected %d", len(vec), s.dimension)
	}
	metrics.ProviderCalls.WithLabelValues("embed", metrics.Outcome(err)).Inc()
	if err != nil {
		s.log.Warn("embedding request failed", slog.Int("text_length", len(text)), logger.Error(err))
		return nil, apperror.NewProvider(err)
	}
	return vec, nil
}
