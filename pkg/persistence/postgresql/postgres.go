// Package postgresql provides PostgreSQL persistence for run snapshots.
package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq" // postgres driver

	"github.com/inspecta/inspecta/pkg/persistence"
)

const schema = `
CREATE TABLE IF NOT EXISTS inspection_runs (
	id         TEXT PRIMARY KEY,
	data       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`

// Persistence implements the persistence layer for PostgreSQL. Run
// snapshots are stored as single JSONB documents keyed by run ID.
type Persistence struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPersistence connects, pings and ensures the schema exists.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	if err := database.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := database.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	logger.Debug("postgresql persistence ready")

	return &Persistence{db: database, logger: logger}, nil
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		if err := p.db.Close(); err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	if err := p.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// Runs returns every run snapshot, newest first.
func (p *Persistence) Runs(ctx context.Context) ([]*persistence.RunRecord, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT data FROM inspection_runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	records := make([]*persistence.RunRecord, 0)

	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}

		var record persistence.RunRecord
		if err := json.Unmarshal(body, &record); err != nil {
			return nil, fmt.Errorf("failed to decode run row: %w", err)
		}

		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate run rows: %w", err)
	}

	return records, nil
}

// RunByID returns one run snapshot by its ID.
func (p *Persistence) RunByID(ctx context.Context, id string) (*persistence.RunRecord, error) {
	var body []byte

	err := p.db.QueryRowContext(ctx,
		`SELECT data FROM inspection_runs WHERE id = $1`, id).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewRunError("RunByID", id, persistence.ErrRunNotFound)
		}

		return nil, persistence.NewRunError("RunByID", id, err)
	}

	var record persistence.RunRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, persistence.NewRunError("RunByID", id, err)
	}

	return &record, nil
}

// SaveRun upserts a run snapshot.
func (p *Persistence) SaveRun(ctx context.Context, record *persistence.RunRecord) error {
	body, err := json.Marshal(record)
	if err != nil {
		return persistence.NewRunError("SaveRun", record.ID, err)
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO inspection_runs (id, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET data = $2, updated_at = $4`,
		record.ID, body, record.CreatedAt, record.UpdatedAt)
	if err != nil {
		return persistence.NewRunError("SaveRun", record.ID, err)
	}

	return nil
}

// DeleteRun removes a run snapshot.
func (p *Persistence) DeleteRun(ctx context.Context, id string) error {
	result, err := p.db.ExecContext(ctx,
		`DELETE FROM inspection_runs WHERE id = $1`, id)
	if err != nil {
		return persistence.NewRunError("DeleteRun", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewRunError("DeleteRun", id, err)
	}

	if affected == 0 {
		return persistence.NewRunError("DeleteRun", id, persistence.ErrRunNotFound)
	}

	return nil
}
