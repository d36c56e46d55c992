// Package graphdb owns the Neo4j driver and exposes a narrow statement-level
// Store that every repository runs its Cypher through.
package graphdb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	neo4jconfig "github.com/neo4j/neo4j-go-driver/v5/neo4j/config"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/fx"

	"github.com/Kantosaurus/test-01/internal/config"
	"github.com/Kantosaurus/test-01/pkg/logger"
	"github.com/Kantosaurus/test-01/pkg/metrics"
	"github.com/Kantosaurus/test-01/pkg/tracing"
)

var Module = fx.Module("graphdb",
	fx.Provide(
		NewDriver,
		NewClient,
		fx.Annotate(
			func(c *Client) Store { return c },
			fx.As(new(Store)),
		),
	),
)

// ErrConstraintViolation is wrapped into errors caused by a uniqueness
// constraint rejecting a write.
var ErrConstraintViolation = errors.New("graph constraint violation")

const constraintViolationCode = "Neo.ClientError.Schema.ConstraintValidationFailed"

// Querier runs one Cypher statement and returns every record it produced.
type Querier interface {
	Run(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error)
}

// Store is the graph database capability used by repositories.
// Read and Write run a single auto-commit statement. InTx runs fn inside one
// explicit write transaction that is committed when fn returns nil and rolled
// back otherwise. Nothing is retried.
type Store interface {
	Read(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error)
	Write(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error)
	InTx(ctx context.Context, fn func(ctx context.Context, tx Querier) error) error
	Ping(ctx context.Context) error
}

// NewDriver creates the process-wide Neo4j driver.
func NewDriver(lc fx.Lifecycle, cfg *config.Config, log *slog.Logger) (neo4j.DriverWithContext, error) {
	log = log.With(logger.Scope("graphdb"))
	nc := cfg.Neo4j

	driver, err := neo4j.NewDriverWithContext(
		nc.URI,
		neo4j.BasicAuth(nc.User, nc.Password, ""),
		func(c *neo4jconfig.Config) {
			c.MaxConnectionPoolSize = nc.MaxPoolSize
			c.ConnectionAcquisitionTimeout = nc.AcquireTimeout
			c.SocketConnectTimeout = nc.ConnectTimeout
		},
	)
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}

	if nc.VerifyOnStartup {
		ctx, cancel := context.WithTimeout(context.Background(), nc.ConnectTimeout)
		defer cancel()
		if err := driver.VerifyConnectivity(ctx); err != nil {
			_ = driver.Close(context.Background())
			return nil, fmt.Errorf("verify neo4j connectivity: %w", err)
		}
	}

	log.Info("neo4j driver created",
		slog.String("uri", nc.URI),
		slog.String("database", nc.Database),
		slog.Int("max_pool_size", nc.MaxPoolSize),
	)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info("closing neo4j driver")
			return driver.Close(ctx)
		},
	})

	return driver, nil
}

// Client implements Store on top of a neo4j.DriverWithContext.
type Client struct {
	driver   neo4j.DriverWithContext
	database string
	log      *slog.Logger
}

// NewClient creates a Store bound to the configured database.
func NewClient(driver neo4j.DriverWithContext, cfg *config.Config, log *slog.Logger) *Client {
	return &Client{
		driver:   driver,
		database: cfg.Neo4j.Database,
		log:      log.With(logger.Scope("graphdb")),
	}
}

func (c *Client) Read(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	return c.run(ctx, neo4j.AccessModeRead, cypher, params)
}

func (c *Client) Write(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	return c.run(ctx, neo4j.AccessModeWrite, cypher, params)
}

func (c *Client) run(ctx context.Context, mode neo4j.AccessMode, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	modeName := accessModeName(mode)
	ctx, span := tracing.Start(ctx, "graphdb."+modeName,
		attribute.String("db.system", "neo4j"),
		attribute.String("db.name", c.database),
	)
	defer span.End()
	start := time.Now()

	session := c.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: mode, DatabaseName: c.database})
	defer session.Close(ctx)

	records, err := collect(ctx, func(ctx context.Context, cypher string, params map[string]any) (neo4j.ResultWithContext, error) {
		return session.Run(ctx, cypher, params)
	}, cypher, params)
	metrics.ObserveStoreQuery(modeName, start, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.log.Debug("statement failed", slog.String("mode", modeName), logger.Error(err))
		return nil, err
	}
	return records, nil
}

func (c *Client) InTx(ctx context.Context, fn func(ctx context.Context, tx Querier) error) (err error) {
	ctx, span := tracing.Start(ctx, "graphdb.transaction",
		attribute.String("db.system", "neo4j"),
		attribute.String("db.name", c.database),
	)
	defer span.End()
	start := time.Now()
	defer func() { metrics.ObserveStoreQuery("transaction", start, err) }()

	session := c.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite, DatabaseName: c.database})
	defer session.Close(ctx)

	tx, err := session.BeginTransaction(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Close(ctx)

	if err = fn(ctx, &explicitTx{tx: tx}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			c.log.Warn("transaction rollback failed", logger.Error(rbErr))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		err = classify(fmt.Errorf("commit transaction: %w", err))
		span.RecordError(err)
		return err
	}
	return nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.driver.VerifyConnectivity(ctx)
}

type explicitTx struct {
	tx neo4j.ExplicitTransaction
}

func (t *explicitTx) Run(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	return collect(ctx, t.tx.Run, cypher, params)
}

type runFunc func(ctx context.Context, cypher string, params map[string]any) (neo4j.ResultWithContext, error)

func collect(ctx context.Context, run runFunc, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	result, err := run(ctx, cypher, params)
	if err != nil {
		return nil, classify(err)
	}
	records, err := result.Collect(ctx)
	if err != nil {
		return nil, classify(err)
	}
	return records, nil
}

// classify marks constraint violations so callers can test them with
// errors.Is(err, ErrConstraintViolation).
func classify(err error) error {
	if IsConstraintViolation(err) {
		return fmt.Errorf("%w: %w", ErrConstraintViolation, err)
	}
	return err
}

// IsConstraintViolation reports whether err is a Neo4j uniqueness failure.
func IsConstraintViolation(err error) bool {
	if errors.Is(err, ErrConstraintViolation) {
		return true
	}
	var neoErr *neo4j.Neo4jError
	return errors.As(err, &neoErr) && neoErr.Code == constraintViolationCode
}

func accessModeName(mode neo4j.AccessMode) string {
	if mode == neo4j.AccessModeRead {
		return "read"
	}
	return "write"
}
