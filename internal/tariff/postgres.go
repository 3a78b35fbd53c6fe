package tariff

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// PostgresRegistry reads codes from a table with a text column "code"
// holding digits only.
type PostgresRegistry struct {
	db    *sql.DB
	query string
}

// NewPostgresRegistry creates a registry over an open database
func NewPostgresRegistry(db *sql.DB, table string) *PostgresRegistry {
	if table == "" {
		table = "hts_codes"
	}
	return &PostgresRegistry{
		db:    db,
		query: fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE code = ANY($1))`, pq.QuoteIdentifier(table)),
	}
}

// OpenPostgres opens dsn with the lib/pq driver and pings it
func OpenPostgres(ctx context.Context, dsn, table string) (*PostgresRegistry, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping postgres: %v", ErrUnavailable, err)
	}
	return NewPostgresRegistry(db, table), nil
}

func (r *PostgresRegistry) Contains(ctx context.Context, code string) (bool, error) {
	cands := candidates(code)
	if len(cands) == 0 {
		return false, nil
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, r.query, pq.Array(cands)).Scan(&exists); err != nil {
		return false, fmt.Errorf("query tariff code: %w", err)
	}
	return exists, nil
}

// Close closes the database
func (r *PostgresRegistry) Close() error {
	return r.db.Close()
}
