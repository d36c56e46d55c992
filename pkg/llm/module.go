package llm

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/Kantosaurus/test-01/internal/config"
	"github.com/Kantosaurus/test-01/pkg/apperror"
	"github.com/Kantosaurus/test-01/pkg/logger"
	"github.com/Kantosaurus/test-01/pkg/metrics"
)

var Module = fx.Module("llm",
	fx.Provide(NewService),
)

// Service holds the completion provider selected at startup.
type Service struct {
	provider Provider
	log      *slog.Logger
}

// NewService resolves the provider once, during application start.
func NewService(lc fx.Lifecycle, cfg *config.Config, log *slog.Logger) *Service {
	llmCfg := cfg.LLM
	log = log.With(logger.Scope("llm"))
	svc := NewStaticService(Unconfigured{}, log)

	if !llmCfg.IsEnabled() {
		log.Info("llm provider not configured, using heuristic fallbacks")
		return svc
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			gc := GenAIConfig{
				APIKey:          llmCfg.GoogleAPIKey,
				Model:           llmCfg.Model,
				MaxOutputTokens: llmCfg.MaxOutputTokens,
				Temperature:     llmCfg.Temperature,
				Timeout:         llmCfg.Timeout,
			}
			if llmCfg.UseVertexAI() {
				gc.ProjectID = llmCfg.GCPProjectID
				gc.Location = llmCfg.VertexAILocation
			}

			client, err := NewGenAIClient(ctx, gc)
			if err != nil {
				log.Error("failed to initialize llm client, keeping heuristic fallbacks", logger.Error(err))
				return nil
			}
			svc.provider = client
			log.Info("llm client initialized",
				slog.String("model", llmCfg.Model),
				slog.Bool("vertex", llmCfg.UseVertexAI()),
			)
			return nil
		},
	})

	return svc
}

// NewStaticService wraps an explicit provider.
func NewStaticService(p Provider, log *slog.Logger) *Service {
	if p == nil {
		p = Unconfigured{}
	}
	return &Service{provider: p, log: log}
}

// IsEnabled reports whether a real completion provider is available.
func (s *Service) IsEnabled() bool {
	return s.provider.IsConfigured()
}

// Complete runs exactly one completion. Failures come back as provider errors.
func (s *Service) Complete(ctx context.Context, operation, prompt string) (string, error) {
	out, err := s.provider.Complete(ctx, prompt)
	metrics.ProviderCalls.WithLabelValues("complete", metrics.Outcome(err)).Inc()
	if err != nil {
		s.log.Warn("completion failed", slog.String("operation", operation), logger.Error(err))
		return "", apperror.NewProvider(err)
	}
	return out, nil
}
