package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/factorlab/pkg/database"
)

// PostgresStore persists catalog entries in the factor.catalog table.
// Metrics snapshots are stored as JSONB.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed catalog store
func NewPostgresStore(db *database.DB) *PostgresStore {
	return &PostgresStore{pool: db.Pool}
}

// Put inserts an entry; a factor name already present is rejected
func (s *PostgresStore) Put(ctx context.Context, e Entry) error {
	metrics, err := json.Marshal(e.Metrics)
	if err != nil {
		return fmt.Errorf("catalog: marshal metrics for %s: %w", e.FactorName, err)
	}

	query := `
		INSERT INTO factor.catalog
			(factor_name, version, evaluator, horizon, metrics, source, admitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (factor_name) DO NOTHING
	`
	tag, err := s.pool.Exec(ctx, query,
		e.FactorName, e.Version, e.Evaluator, e.Horizon, metrics, e.Source, e.AdmittedAt)
	if err != nil {
		return fmt.Errorf("catalog: insert %s: %w", e.FactorName, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrDuplicate, e.FactorName)
	}
	return nil
}

// Get returns an entry by factor name
func (s *PostgresStore) Get(ctx context.Context, factorName string) (Entry, error) {
	query := `
		SELECT factor_name, version, evaluator, horizon, metrics, source, admitted_at
		FROM factor.catalog
		WHERE factor_name = $1
	`
	row := s.pool.QueryRow(ctx, query, factorName)

	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, factorName)
		}
		return Entry{}, fmt.Errorf("catalog: get %s: %w", factorName, err)
	}
	return e, nil
}

// List returns all entries ordered by factor name
func (s *PostgresStore) List(ctx context.Context) ([]Entry, error) {
	query := `
		SELECT factor_name, version, evaluator, horizon, metrics, source, admitted_at
		FROM factor.catalog
		ORDER BY factor_name
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("catalog: list: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("catalog: scan: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: list rows: %w", err)
	}
	return out, nil
}

// Delete removes an entry by factor name
func (s *PostgresStore) Delete(ctx context.Context, factorName string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM factor.catalog WHERE factor_name = $1`, factorName)
	if err != nil {
		return fmt.Errorf("catalog: delete %s: %w", factorName, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, factorName)
	}
	return nil
}

func scanEntry(row pgx.Row) (Entry, error) {
	var e Entry
	var metrics []byte
	if err := row.Scan(&e.FactorName, &e.Version, &e.Evaluator, &e.Horizon,
		&metrics, &e.Source, &e.AdmittedAt); err != nil {
		return Entry{}, err
	}
	if err := json.Unmarshal(metrics, &e.Metrics); err != nil {
		return Entry{}, fmt.Errorf("unmarshal metrics: %w", err)
	}
	return e, nil
}
