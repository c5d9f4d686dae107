//go:build !wasm

package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xpttools/xpt/pkg/types"
)

// pgExecer is the subset of *pgxpool.Pool the Postgres sink needs.
type pgExecer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error)
}

// PostgresSink writes datasets into PostgreSQL, one table per dataset with
// a typed column per variable.
type PostgresSink struct {
	pool   *pgxpool.Pool
	conn   pgExecer
	logger *slog.Logger
}

// NewPostgres connects to the database named by dsn.
func NewPostgres(ctx context.Context, dsn string, logger *slog.Logger) (*PostgresSink, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging PostgreSQL: %w", err)
	}

	logger.Debug("connected to PostgreSQL", "host", poolConfig.ConnConfig.Host, "database", poolConfig.ConnConfig.Database)
	return &PostgresSink{pool: pool, conn: pool, logger: logger}, nil
}

// TableName derives a table name from a dataset name: lower case, with
// anything outside [a-z0-9_] replaced by '_'. prefix, when set, is joined
// with an underscore.
func TableName(prefix string, ds *types.Dataset) string {
	name := ds.Name
	if prefix != "" {
		name = prefix + "_" + name
	}
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return strings.ToLower(types.PlaceholderName)
	}
	return b.String()
}

// CreateTableSQL returns the CREATE TABLE statement for ds: double precision
// for numeric variables, text for character ones.
func CreateTableSQL(table string, ds *types.Dataset) string {
	cols := make([]string, len(ds.Variables))
	for i, v := range ds.Variables {
		typ := "text"
		if v.IsNumeric() {
			typ = "double precision"
		}
		cols[i] = pgx.Identifier{v.Name}.Sanitize() + " " + typ
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", pgx.Identifier{table}.Sanitize(), strings.Join(cols, ", "))
}

// copyRows converts the rows of ds into CopyFrom values. Missing numerics
// become NULL.
func copyRows(ds *types.Dataset) [][]any {
	out := make([][]any, len(ds.Rows))
	for i, row := range ds.Rows {
		values := make([]any, len(row))
		for j, c := range row {
			values[j] = c.Value()
		}
		out[i] = values
	}
	return out
}

// WriteDataset creates the table for ds if needed and bulk-loads its rows.
// It returns the number of rows copied.
func (p *PostgresSink) WriteDataset(ctx context.Context, table string, ds *types.Dataset) (int64, error) {
	if len(ds.Variables) == 0 {
		return 0, fmt.Errorf("dataset %s has no variables", ds.Name)
	}
	if _, err := p.conn.Exec(ctx, CreateTableSQL(table, ds)); err != nil {
		return 0, fmt.Errorf("creating table %s: %w", table, err)
	}

	n, err := p.conn.CopyFrom(ctx, pgx.Identifier{table}, columnNames(ds), pgx.CopyFromRows(copyRows(ds)))
	if err != nil {
		return n, fmt.Errorf("copying rows into %s: %w", table, err)
	}
	p.logger.Debug("copied dataset", "dataset", ds.Name, "table", table, "rows", n)
	return n, nil
}

// Close releases the connection pool.
func (p *PostgresSink) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

// columnNames returns the variable names of ds in column order.
func columnNames(ds *types.Dataset) []string {
	names := make([]string, len(ds.Variables))
	for i, v := range ds.Variables {
		names[i] = v.Name
	}
	return names
}
