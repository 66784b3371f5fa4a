// pkg/source/source.go
package source

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/data-cleanse/pkg/dataset"
)

// Connector materializes in-memory datasets from a tabular source. It
// is a thin I/O adapter: everything past the Dataset boundary is the
// pipeline's concern, not the connector's.
type Connector interface {
	// DB returns the underlying database connection
	DB() *sql.DB

	// Validate verifies the connection
	Validate(ctx context.Context) error

	// Close closes the connection and releases resources
	Close() error

	// ReadDataset runs a query and materializes its rows as a Dataset
	ReadDataset(ctx context.Context, query string, args ...interface{}) (*dataset.Dataset, error)
}

// readDataset is the shared query-to-dataset path for connectors
func readDataset(ctx context.Context, db *sql.DB, timeout time.Duration, query string, args ...interface{}) (*dataset.Dataset, error) {
	queryCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	rows, err := db.QueryContext(queryCtx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	return FromRows(rows)
}

// FromRows materializes sql.Rows into a column-ordered Dataset. Byte
// slices become strings; NULLs become nil cells.
func FromRows(rows *sql.Rows) (*dataset.Dataset, error) {
	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read column names: %w", err)
	}

	columns := make([]*dataset.Column, len(names))
	for i, name := range names {
		columns[i] = dataset.NewColumn(name, nil)
	}

	holders := make([]interface{}, len(names))
	for rows.Next() {
		for i := range holders {
			holders[i] = new(interface{})
		}
		if err := rows.Scan(holders...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		for i, holder := range holders {
			value := *holder.(*interface{})
			if b, ok := value.([]byte); ok {
				value = string(b)
			}
			columns[i].Values = append(columns[i].Values, value)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration failed: %w", err)
	}

	return dataset.FromColumns(columns)
}

// applyPoolSettings configures connection pool limits shared by the
// connectors
func applyPoolSettings(db *sql.DB) {
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)
}

// pingWithTimeout verifies a connection within a bounded wait
func pingWithTimeout(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	return nil
}

// logPoolStats logs connection pool statistics
func logPoolStats(logger *zap.Logger, name string, db *sql.DB) {
	if logger == nil {
		return
	}
	stats := db.Stats()
	logger.Debug("Connection pool stats",
		zap.String("database", name),
		zap.Int("open_connections", stats.OpenConnections),
		zap.Int("in_use", stats.InUse),
		zap.Int("idle", stats.Idle))
}
