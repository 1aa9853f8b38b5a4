package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/Harshitk-cp/credence/internal/domain"
)

const (
	uniqueViolation     = "23505"
	readyHashConstraint = "documents_ready_content_hash_key"
)

var documentColumns = []string{
	"id",
	"text",
	"COALESCE(content_hash, '')",
	"status",
	`"timestamp"`,
	"COALESCE(metadata, '{}'::jsonb)",
	"COALESCE(entities, '{}')",
	"COALESCE(related_articles, '{}')",
	"COALESCE(fact_check_results, '{}'::jsonb)",
	"COALESCE(wikipedia_summaries, '{}'::jsonb)",
	"sentiment_score",
	"credibility_score",
	"embedding",
	"COALESCE(duplicate_of, '')",
	"created_at",
	"updated_at",
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type DocumentStore struct {
	db  *pgxpool.Pool
	now func() time.Time
}

func NewDocumentStore(db *pgxpool.Pool) *DocumentStore {
	return &DocumentStore{db: db, now: time.Now}
}

// buildSelect turns a filter into SQL. Status matching treats NULL as "missing"
// and only matches it when IncludeMissingStatus is set.
func buildSelect(f domain.DocumentFilter) (string, []any, error) {
	q := psql.Select(documentColumns...).From("documents")

	if len(f.IDs) > 0 {
		q = q.Where(sq.Eq{"id": f.IDs})
	}
	if f.ContentHash != "" {
		q = q.Where(sq.Eq{"content_hash": f.ContentHash})
	}
	if len(f.Statuses) > 0 || f.IncludeMissingStatus {
		var status sq.Or
		if len(f.Statuses) > 0 {
			values := make([]string, len(f.Statuses))
			for i, s := range f.Statuses {
				values[i] = string(s)
			}
			status = append(status, sq.Eq{"status": values})
		}
		if f.IncludeMissingStatus {
			status = append(status, sq.Eq{"status": nil})
		}
		q = q.Where(status)
	}
	if f.ExcludeDuplicates {
		q = q.Where(sq.Eq{"duplicate_of": nil})
	}
	if len(f.ExcludeIDs) > 0 {
		q = q.Where(sq.NotEq{"id": f.ExcludeIDs})
	}

	if f.NewestFirst {
		q = q.OrderBy(`"timestamp" DESC NULLS LAST`, "created_at DESC")
	} else {
		q = q.OrderBy("created_at ASC", "id ASC")
	}
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	return q.ToSql()
}

// Get returns the documents matching the filter with read defaults applied.
func (s *DocumentStore) Get(ctx context.Context, f domain.DocumentFilter) ([]domain.Document, error) {
	query, args, err := buildSelect(f)
	if err != nil {
		return nil, fmt.Errorf("build document query: %w", err)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	now := s.now()
	var docs []domain.Document
	for rows.Next() {
		var (
			d         domain.Document
			status    *string
			timestamp *time.Time
			embedding *pgvector.Vector
		)
		if err := rows.Scan(
			&d.ID, &d.Text, &d.ContentHash, &status, &timestamp, &d.Metadata,
			&d.Entities, &d.RelatedArticles, &d.FactCheckResults, &d.WikipediaSummaries,
			&d.SentimentScore, &d.CredibilityScore, &embedding, &d.DuplicateOf,
			&d.CreatedAt, &d.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		if status != nil {
			d.Status = domain.DocumentStatus(*status)
		}
		if timestamp != nil {
			d.Timestamp = *timestamp
		}
		if embedding != nil {
			d.Embedding = embedding.Slice()
		}
		d.ApplyReadDefaults(now)
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

// Add inserts the document or replaces the row with the same id. A second ready
// row with the same content hash is rejected with ErrDuplicateContent.
func (s *DocumentStore) Add(ctx context.Context, d *domain.Document) error {
	var embedding *pgvector.Vector
	if len(d.Embedding) > 0 {
		v := pgvector.NewVector(d.Embedding)
		embedding = &v
	}

	var timestamp *time.Time
	if !d.Timestamp.IsZero() {
		timestamp = &d.Timestamp
	}

	metadata := d.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	err := s.db.QueryRow(ctx,
		`INSERT INTO documents (id, text, content_hash, status, "timestamp", metadata, entities, related_articles,
		                        fact_check_results, wikipedia_summaries, sentiment_score, credibility_score, embedding, duplicate_of)
		 VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7, $8, $9, $10, $11, $12, $13, NULLIF($14, ''))
		 ON CONFLICT (id) DO UPDATE SET
		     text = EXCLUDED.text,
		     content_hash = EXCLUDED.content_hash,
		     status = EXCLUDED.status,
		     "timestamp" = EXCLUDED."timestamp",
		     metadata = EXCLUDED.metadata,
		     entities = EXCLUDED.entities,
		     related_articles = EXCLUDED.related_articles,
		     fact_check_results = EXCLUDED.fact_check_results,
		     wikipedia_summaries = EXCLUDED.wikipedia_summaries,
		     sentiment_score = EXCLUDED.sentiment_score,
		     credibility_score = EXCLUDED.credibility_score,
		     embedding = EXCLUDED.embedding,
		     duplicate_of = EXCLUDED.duplicate_of,
		     updated_at = NOW()
		 RETURNING created_at, updated_at`,
		d.ID, d.Text, d.ContentHash, string(d.Status), timestamp, metadata, nonNil(d.Entities), nonNil(d.RelatedArticles),
		d.FactCheckResults, d.WikipediaSummaries, d.SentimentScore, d.CredibilityScore, embedding, d.DuplicateOf,
	).Scan(&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if isReadyHashConflict(err) {
			return ErrDuplicateContent
		}
		return fmt.Errorf("upsert document %s: %w", d.ID, err)
	}
	return nil
}

// Create inserts a new raw document. It never touches an existing row: a taken
// id is reported as ErrAlreadyExists.
func (s *DocumentStore) Create(ctx context.Context, d *domain.Document) error {
	var timestamp *time.Time
	if !d.Timestamp.IsZero() {
		timestamp = &d.Timestamp
	}
	metadata := d.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	err := s.db.QueryRow(ctx,
		`INSERT INTO documents (id, text, status, "timestamp", metadata)
		 VALUES ($1, $2, NULLIF($3, ''), $4, $5)
		 ON CONFLICT (id) DO NOTHING
		 RETURNING created_at, updated_at`,
		d.ID, d.Text, string(d.Status), timestamp, metadata,
	).Scan(&d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("document %s: %w", d.ID, ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("insert document %s: %w", d.ID, err)
	}
	return nil
}

// MarkDuplicate records that a raw document repeats the content of another one.
func (s *DocumentStore) MarkDuplicate(ctx context.Context, id, duplicateOf string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE documents SET duplicate_of = $2, updated_at = NOW() WHERE id = $1`,
		id, duplicateOf,
	)
	if err != nil {
		return fmt.Errorf("mark duplicate %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func isReadyHashConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == uniqueViolation && pgErr.ConstraintName == readyHashConstraint
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
