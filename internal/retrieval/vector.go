package retrieval

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/nextmile/chatbot/internal/ai"
	"github.com/nextmile/chatbot/internal/corpus"
	"github.com/nextmile/chatbot/internal/model"
)

// Vector is the embedding-backed retrieval variant: records live in a
// postgres table with a pgvector column and the query is matched by
// cosine distance. It honors the same contract as Lexical, including
// the strict score threshold.
type Vector struct {
	db       *sqlx.DB
	embedder ai.IEmbedder
	cfg      *Holder
}

func NewVector(db *sqlx.DB, embedder ai.IEmbedder, cfg *Holder) *Vector {
	return &Vector{db: db, embedder: embedder, cfg: cfg}
}

type vectorRow struct {
	RecordID     int     `db:"record_id"`
	Kind         string  `db:"kind"`
	Organization string  `db:"organization"`
	Title        string  `db:"title"`
	Narrative    string  `db:"narrative"`
	Score        float64 `db:"score"`
}

func (v *Vector) Retrieve(ctx context.Context, query string) ([]model.ScoredMatch, error) {
	return v.RetrieveN(ctx, query, 0)
}

func (v *Vector) RetrieveN(ctx context.Context, query string, topK int) ([]model.ScoredMatch, error) {
	cfg := v.cfg.Load()
	if topK <= 0 {
		topK = cfg.TopK
	}
	emb, err := v.embedder.Embed(ctx, query, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	const q = `SELECT record_id, kind, organization, title, narrative,
		1 - (embedding <=> $1) AS score
		FROM record_embeddings
		ORDER BY embedding <=> $1
		LIMIT $2`
	var rows []vectorRow
	if err := v.db.SelectContext(ctx, &rows, q, pgvector.NewVector(emb), topK); err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	matches := make([]model.ScoredMatch, 0, len(rows))
	for _, row := range rows {
		if row.Score <= cfg.MinScoreThreshold {
			continue
		}
		matches = append(matches, model.ScoredMatch{
			Score: row.Score,
			Record: model.Record{
				ID:           row.RecordID,
				Kind:         model.RecordKind(row.Kind),
				Organization: row.Organization,
				Title:        row.Title,
				Narrative:    row.Narrative,
			},
		})
	}
	return matches, nil
}

// Sync replaces the stored embeddings with the current corpus. Called
// after every corpus (re)load when the vector backend is enabled.
func (v *Vector) Sync(ctx context.Context, records []corpus.IndexedRecord) error {
	tx, err := v.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM record_embeddings`); err != nil {
		return fmt.Errorf("clear embeddings: %w", err)
	}
	const ins = `INSERT INTO record_embeddings
		(record_id, kind, organization, title, narrative, embedding)
		VALUES ($1, $2, $3, $4, $5, $6)`
	for _, item := range records {
		emb, err := v.embedder.Embed(ctx, item.JoinedText, "RETRIEVAL_DOCUMENT")
		if err != nil {
			return fmt.Errorf("embed record %d: %w", item.Record.ID, err)
		}
		rec := item.Record
		if _, err := tx.ExecContext(ctx, ins,
			rec.ID, string(rec.Kind), rec.Organization, rec.Title, rec.Narrative,
			pgvector.NewVector(emb)); err != nil {
			return fmt.Errorf("store embedding %d: %w", rec.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	logutil.GetLogger(ctx).Info("record embeddings synced", zap.Int("records", len(records)))
	return nil
}
