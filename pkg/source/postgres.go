// pkg/source/postgres.go
package source

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/David-Botos/data-cleanse/pkg/dataset"
)

// PostgresConfig holds the connection parameters for a PostgreSQL source
type PostgresConfig struct {
	DSN string

	StatementTimeout time.Duration
	QueryTimeout     time.Duration
}

// PostgresConnector reads datasets out of PostgreSQL
type PostgresConnector struct {
	db      *sql.DB
	logger  *zap.Logger
	timeout time.Duration
}

// NewPostgresConnector opens and verifies a PostgreSQL connection
func NewPostgresConnector(ctx context.Context, cfg PostgresConfig, logger *zap.Logger) (*PostgresConnector, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("postgres-source")

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL connection: %w", err)
	}
	applyPoolSettings(db)

	if cfg.StatementTimeout > 0 {
		_, err = db.ExecContext(ctx,
			fmt.Sprintf("SET statement_timeout = %d", cfg.StatementTimeout.Milliseconds()))
		if err != nil {
			logger.Warn("Failed to set statement timeout", zap.Error(err))
		}
	}

	if err := pingWithTimeout(ctx, db, 5*time.Second); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	timeout := cfg.QueryTimeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	connector := &PostgresConnector{db: db, logger: logger, timeout: timeout}
	logPoolStats(logger, "postgres", db)
	return connector, nil
}

// DB returns the underlying database connection
func (c *PostgresConnector) DB() *sql.DB {
	return c.db
}

// Validate verifies the PostgreSQL connection
func (c *PostgresConnector) Validate(ctx context.Context) error {
	var version string
	if err := c.db.QueryRowContext(ctx, "SELECT version()").Scan(&version); err != nil {
		return fmt.Errorf("failed to query PostgreSQL version: %w", err)
	}
	c.logger.Info("Connected to PostgreSQL", zap.String("version", version))
	return nil
}

// Close closes the connection and releases resources
func (c *PostgresConnector) Close() error {
	c.logger.Info("Closing PostgreSQL connection")
	return c.db.Close()
}

// ReadDataset runs a query and materializes its rows as a Dataset
func (c *PostgresConnector) ReadDataset(ctx context.Context, query string, args ...interface{}) (*dataset.Dataset, error) {
	ds, err := readDataset(ctx, c.db, c.timeout, query, args...)
	if err != nil {
		return nil, err
	}

	c.logger.Info("Materialized dataset from PostgreSQL",
		zap.Int("rows", ds.Rows()),
		zap.Int("columns", ds.Width()))
	return ds, nil
}
