package repository

import (
	"context"
	"log/slog"

	"github.com/UnknownOlympus/scout/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Database is the subset of *pgxpool.Pool the repository needs.
type Database interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type Repository struct {
	db  Database
	log *slog.Logger
}

type Interface interface {
	EnsureSchema(ctx context.Context) error
	SaveSearch(ctx context.Context, runID uuid.UUID, result models.SearchResult) error
}

// NewRepository creates a new instance of Repository with the provided Database.
// It returns a pointer to the newly created Repository.
func NewRepository(db Database, log *slog.Logger) *Repository {
	return &Repository{db: db, log: log}
}
