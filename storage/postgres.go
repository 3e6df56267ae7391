package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// PostgresStore keeps the registry snapshot in a single-row table, updated
// with an upsert on every save. The table is created by the migrations in
// migrations/.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore wraps an already-connected database handle.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const snapshotKey = "sessions"

// Load reads the current snapshot; (nil, nil) when the row does not exist.
func (p *PostgresStore) Load(ctx context.Context) ([]byte, error) {
	var data []byte
	err := p.db.GetContext(ctx, &data,
		`SELECT data FROM snapshots WHERE key = $1`, snapshotKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: select snapshot: %w", err)
	}
	return data, nil
}

// Save upserts the snapshot row.
func (p *PostgresStore) Save(ctx context.Context, data []byte) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO snapshots (key, data, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		snapshotKey, data)
	if err != nil {
		return fmt.Errorf("storage: upsert snapshot: %w", err)
	}
	return nil
}
