package repo

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// OpenPostgres connects to the postgres instance backing the vector
// retrieval variant.
func OpenPostgres(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return db, nil
}

// EnsureVectorSchema creates the pgvector extension and the embeddings
// table. The dimension must match the configured embedding model.
func EnsureVectorSchema(ctx context.Context, db *sqlx.DB, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("embedding dimension must be positive, got %d", dimension)
	}
	if _, err := db.ExecContext(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return fmt.Errorf("create vector extension: %w", err)
	}
	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS record_embeddings (
		record_id INTEGER PRIMARY KEY,
		kind TEXT NOT NULL,
		organization TEXT NOT NULL,
		title TEXT NOT NULL,
		narrative TEXT NOT NULL,
		embedding vector(%d) NOT NULL
	)`, dimension)
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("create record_embeddings: %w", err)
	}
	return nil
}
