package repository

import (
	"context"
	"fmt"

	"github.com/UnknownOlympus/scout/internal/models"
	"github.com/google/uuid"
)

const schemaQuery = `
	CREATE TABLE IF NOT EXISTS search_runs (
		run_id        UUID PRIMARY KEY,
		city          TEXT NOT NULL,
		business_type TEXT NOT NULL,
		result_limit  INTEGER NOT NULL,
		latitude      DOUBLE PRECISION NOT NULL,
		longitude     DOUBLE PRECISION NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL
	);
	CREATE TABLE IF NOT EXISTS search_businesses (
		run_id        UUID NOT NULL REFERENCES search_runs (run_id) ON DELETE CASCADE,
		position      INTEGER NOT NULL,
		name          TEXT NOT NULL,
		business_type TEXT NOT NULL,
		latitude      DOUBLE PRECISION NOT NULL,
		longitude     DOUBLE PRECISION NOT NULL,
		street        TEXT NOT NULL DEFAULT '',
		city          TEXT NOT NULL DEFAULT '',
		phone         TEXT NOT NULL DEFAULT '',
		website       TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (run_id, position)
	);
`

const insertRunQuery = `
	INSERT INTO search_runs (run_id, city, business_type, result_limit, latitude, longitude, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7);
`

const insertBusinessQuery = `
	INSERT INTO search_businesses
		(run_id, position, name, business_type, latitude, longitude, street, city, phone, website)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
`

// EnsureSchema creates the archive tables if they do not exist yet.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schemaQuery); err != nil {
		return fmt.Errorf("failed to create archive schema: %w", err)
	}

	return nil
}

// SaveSearch stores the search envelope and its businesses, in result order, in a
// single transaction.
func (r *Repository) SaveSearch(ctx context.Context, runID uuid.UUID, result models.SearchResult) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	search := result.Search
	_, err = tx.Exec(ctx, insertRunQuery,
		runID, search.City, search.BusinessType, search.Limit,
		search.Coordinates.Latitude, search.Coordinates.Longitude, result.CreatedAt,
	)
	if err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("failed to insert search run: %w", err)
	}

	for idx, b := range result.Businesses {
		_, err = tx.Exec(ctx, insertBusinessQuery,
			runID, idx, b.Name, b.BusinessType, b.Location.Latitude, b.Location.Longitude,
			b.Address.Street, b.Address.City, b.Phone, b.Website,
		)
		if err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("failed to insert business %q: %w", b.Name, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit search run: %w", err)
	}

	r.log.DebugContext(ctx, "Search run stored", "run_id", runID, "businesses", len(result.Businesses))

	return nil
}
