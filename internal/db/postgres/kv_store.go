package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"Handlecache/internal/core/prefetch"
)

// undefinedTable is the PostgreSQL error code for a missing relation
const undefinedTable = "42P01"

type postgresKVStore struct {
	db *sql.DB
}

// NewKVStore creates a PostgreSQL-backed namespaced key-value store
func NewKVStore(db *sql.DB) prefetch.Store {
	return &postgresKVStore{db: db}
}

// Get returns the mapping stored under namespace, or nil when there is no row
func (r *postgresKVStore) Get(ctx context.Context, namespace string) (prefetch.Mapping, error) {
	query := `SELECT value FROM kv_store WHERE namespace = $1`

	var raw []byte
	err := r.db.QueryRowContext(ctx, query, namespace).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read namespace %s: %w", namespace, classifyError(err))
	}

	mapping := prefetch.Mapping{}
	if err := json.Unmarshal(raw, &mapping); err != nil {
		return nil, fmt.Errorf("failed to decode namespace %s: %w", namespace, err)
	}

	return mapping, nil
}

// Set upserts the whole mapping under namespace
func (r *postgresKVStore) Set(ctx context.Context, namespace string, mapping prefetch.Mapping) error {
	if mapping == nil {
		mapping = prefetch.Mapping{}
	}

	raw, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("failed to encode namespace %s: %w", namespace, err)
	}

	query := `
		INSERT INTO kv_store (namespace, value)
		VALUES ($1, $2)
		ON CONFLICT (namespace)
		DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = NOW()
	`

	if _, err := r.db.ExecContext(ctx, query, namespace, raw); err != nil {
		return fmt.Errorf("failed to write namespace %s: %w", namespace, classifyError(err))
	}

	return nil
}

// classifyError adds a hint for errors with a known operational cause
func classifyError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == undefinedTable {
		return fmt.Errorf("kv_store table missing, run migrations: %w", err)
	}
	return err
}
