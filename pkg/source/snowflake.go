// pkg/source/snowflake.go
package source

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sf "github.com/snowflakedb/gosnowflake"
	"go.uber.org/zap"

	"github.com/David-Botos/data-cleanse/pkg/dataset"
)

// SnowflakeConfig holds the connection parameters for a Snowflake source
type SnowflakeConfig struct {
	Account   string
	User      string
	Password  string
	Database  string
	Schema    string
	Warehouse string
	Role      string

	QueryTimeout time.Duration
}

// SnowflakeConnector reads datasets out of Snowflake
type SnowflakeConnector struct {
	db      *sql.DB
	logger  *zap.Logger
	cfg     SnowflakeConfig
	timeout time.Duration
}

// NewSnowflakeConnector opens and verifies a Snowflake connection
func NewSnowflakeConnector(ctx context.Context, cfg SnowflakeConfig, logger *zap.Logger) (*SnowflakeConnector, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("snowflake-source")

	dsn, err := sf.DSN(&sf.Config{
		Account:   cfg.Account,
		User:      cfg.User,
		Password:  cfg.Password,
		Database:  cfg.Database,
		Schema:    cfg.Schema,
		Warehouse: cfg.Warehouse,
		Role:      cfg.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build Snowflake DSN: %w", err)
	}

	logger.Info("Connecting to Snowflake",
		zap.String("account", cfg.Account),
		zap.String("user", cfg.User),
		zap.String("database", cfg.Database),
		zap.String("warehouse", cfg.Warehouse))

	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Snowflake connection: %w", err)
	}
	applyPoolSettings(db)

	if err := pingWithTimeout(ctx, db, 10*time.Second); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to Snowflake: %w", err)
	}

	timeout := cfg.QueryTimeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	connector := &SnowflakeConnector{db: db, logger: logger, cfg: cfg, timeout: timeout}
	logPoolStats(logger, cfg.Database, db)
	return connector, nil
}

// DB returns the underlying database connection
func (c *SnowflakeConnector) DB() *sql.DB {
	return c.db
}

// Validate verifies the Snowflake connection and access rights
func (c *SnowflakeConnector) Validate(ctx context.Context) error {
	var role, database, warehouse string
	err := c.db.QueryRowContext(ctx,
		"SELECT CURRENT_ROLE(), CURRENT_DATABASE(), CURRENT_WAREHOUSE()").Scan(
		&role, &database, &warehouse)
	if err != nil {
		return fmt.Errorf("failed to verify Snowflake access: %w", err)
	}

	if database != c.cfg.Database {
		return fmt.Errorf("connected to wrong database: %s (expected: %s)", database, c.cfg.Database)
	}

	c.logger.Info("Connected to Snowflake",
		zap.String("role", role),
		zap.String("database", database),
		zap.String("warehouse", warehouse))
	return nil
}

// Close closes the connection and releases resources
func (c *SnowflakeConnector) Close() error {
	return c.db.Close()
}

// ReadDataset runs a query and materializes its rows as a Dataset
func (c *SnowflakeConnector) ReadDataset(ctx context.Context, query string, args ...interface{}) (*dataset.Dataset, error) {
	ds, err := readDataset(ctx, c.db, c.timeout, query, args...)
	if err != nil {
		return nil, err
	}

	c.logger.Info("Materialized dataset from Snowflake",
		zap.Int("rows", ds.Rows()),
		zap.Int("columns", ds.Width()))
	return ds, nil
}
