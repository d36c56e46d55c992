package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/fx"
)

var Module = fx.Module("config",
	fx.Provide(NewConfig),
)

// Config holds all application configuration
type Config struct {
	// Server settings
	ServerPort    int    `env:"SERVER_PORT" envDefault:"8080"`
	ServerAddress string `env:"SERVER_ADDRESS" envDefault:"0.0.0.0"`
	Environment   string `env:"ENVIRONMENT" envDefault:"local"`
	Debug         bool   `env:"DEBUG" envDefault:"false"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`

	// Graph database
	Neo4j Neo4jConfig

	// Mailbox owner, used as the sender of every created email
	Mailbox MailboxConfig

	// Embeddings configuration
	Embeddings EmbeddingsConfig

	// LLM configuration (summarize, compose, categorize)
	LLM LLMConfig

	// Scheduler configuration
	Scheduler SchedulerConfig

	// OpenTelemetry tracing
	Otel OtelConfig

	// Server timeouts
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"120s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Neo4jConfig holds graph database connection settings
type Neo4jConfig struct {
	URI      string `env:"NEO4J_URI" envDefault:"bolt://localhost:7687"`
	User     string `env:"NEO4J_USER" envDefault:"neo4j"`
	Password string `env:"NEO4J_PASSWORD" envDefault:"password123"`
	// Database is the target database name; empty selects the server default
	Database        string        `env:"NEO4J_DATABASE" envDefault:""`
	MaxPoolSize     int           `env:"NEO4J_MAX_POOL_SIZE" envDefault:"50"`
	AcquireTimeout  time.Duration `env:"NEO4J_ACQUIRE_TIMEOUT" envDefault:"30s"`
	ConnectTimeout  time.Duration `env:"NEO4J_CONNECT_TIMEOUT" envDefault:"10s"`
	VerifyOnStartup bool          `env:"NEO4J_VERIFY_ON_STARTUP" envDefault:"true"`
}

// MailboxConfig identifies the local user of the mailbox.
type MailboxConfig struct {
	OwnerAddress string `env:"MAILBOX_OWNER_ADDRESS" envDefault:"me@example.com"`
	OwnerName    string `env:"MAILBOX_OWNER_NAME" envDefault:"Me"`
}

// EmbeddingsConfig holds embedding service configuration
type EmbeddingsConfig struct {
	// GCP Project ID for Vertex AI
	GCPProjectID string `env:"GCP_PROJECT_ID" envDefault:""`

	// Vertex AI location (e.g., "us-central1")
	VertexAILocation string `env:"VERTEX_AI_LOCATION" envDefault:"us-central1"`

	// Embedding model name
	Model string `env:"EMBEDDING_MODEL" envDefault:"gemini-embedding-001"`

	// Embedding dimension; also the length of the zero-vector fallback
	Dimension int `env:"EMBEDDING_DIMENSION" envDefault:"1536"`

	// Google API Key for the Gemini API backend
	GoogleAPIKey string `env:"GOOGLE_API_KEY" envDefault:""`

	// Provider request budget
	RequestsPerMinute int `env:"EMBEDDING_REQUESTS_PER_MINUTE" envDefault:"300"`
	Burst             int `env:"EMBEDDING_BURST" envDefault:"10"`

	// Disable embeddings network calls (for testing)
	NetworkDisabled bool `env:"EMBEDDINGS_NETWORK_DISABLED" envDefault:"false"`
}

// IsEnabled returns true if embeddings are configured
func (e *EmbeddingsConfig) IsEnabled() bool {
	if e.NetworkDisabled {
		return false
	}
	return e.UseVertexAI() || e.GoogleAPIKey != ""
}

// UseVertexAI returns true if Vertex AI should be used
func (e *EmbeddingsConfig) UseVertexAI() bool {
	return e.GCPProjectID != "" && e.VertexAILocation != ""
}

// LLMConfig holds LLM (completion) configuration
type LLMConfig struct {
	// GCP Project ID for Vertex AI (shared with embeddings)
	GCPProjectID string `env:"GCP_PROJECT_ID" envDefault:""`

	// Vertex AI location
	VertexAILocation string `env:"VERTEX_AI_LOCATION" envDefault:"us-central1"`

	// Completion model name
	Model string `env:"LLM_MODEL" envDefault:"gemini-2.5-flash"`

	MaxOutputTokens int     `env:"LLM_MAX_OUTPUT_TOKENS" envDefault:"1024"`
	Temperature     float64 `env:"LLM_TEMPERATURE" envDefault:"0.3"`

	// Request timeout
	Timeout time.Duration `env:"LLM_TIMEOUT" envDefault:"60s"`

	// Google API Key for the Gemini API backend
	GoogleAPIKey string `env:"GOOGLE_API_KEY" envDefault:""`

	// Disable LLM network calls (for testing)
	NetworkDisabled bool `env:"LLM_NETWORK_DISABLED" envDefault:"false"`
}

// IsEnabled returns true if LLM is configured
func (l *LLMConfig) IsEnabled() bool {
	if l.NetworkDisabled {
		return false
	}
	return l.UseVertexAI() || l.GoogleAPIKey != ""
}

// UseVertexAI returns true if Vertex AI should be used (GCP credentials available)
func (l *LLMConfig) UseVertexAI() bool {
	return l.GCPProjectID != "" && l.VertexAILocation != ""
}

// SchedulerConfig controls background tasks.
type SchedulerConfig struct {
	Enabled bool `env:"SCHEDULER_ENABLED" envDefault:"true"`
	// EmbeddingBackfillInterval is how often unindexed emails are embedded; 0 disables the task
	EmbeddingBackfillInterval time.Duration `env:"EMBEDDING_BACKFILL_INTERVAL" envDefault:"10m"`
	// EmbeddingBackfillSchedule is a cron expression with seconds; when set it overrides the interval
	EmbeddingBackfillSchedule string `env:"EMBEDDING_BACKFILL_SCHEDULE" envDefault:""`
}

// NewConfig creates a new Config from environment variables
func NewConfig(log *slog.Logger) (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Embeddings.Dimension <= 0 {
		return nil, fmt.Errorf("EMBEDDING_DIMENSION must be positive, got %d", cfg.Embeddings.Dimension)
	}

	log.Info("configuration loaded",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.ServerPort),
		slog.String("neo4j_uri", cfg.Neo4j.URI),
		slog.Bool("embeddings_enabled", cfg.Embeddings.IsEnabled()),
		slog.Bool("llm_enabled", cfg.LLM.IsEnabled()),
		slog.Bool("otel_enabled", cfg.Otel.Enabled()),
	)

	return cfg, nil
}

// IsDevelopment reports whether the server runs in a local environment.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "local" || c.Environment == "development"
}
